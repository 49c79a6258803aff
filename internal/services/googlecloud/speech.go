package googlecloud

import (
	"context"
	"encoding/base64"
	"strings"

	"equalmedia/internal/captions"
	"equalmedia/internal/language"
	"equalmedia/internal/logging"
	"equalmedia/internal/services"
)

// Audio is an audio payload with its declared MIME type.
type Audio struct {
	Data     []byte
	MIMEType string
}

// DetectEncoding maps a MIME type onto a Speech-to-Text encoding. Unknown
// types are assumed to be 16-bit linear PCM.
func DetectEncoding(mimeType string) string {
	mimeType = strings.ToLower(mimeType)
	switch {
	case strings.Contains(mimeType, "webm"):
		return "WEBM_OPUS"
	case strings.Contains(mimeType, "mp4"):
		return "MP4"
	case strings.Contains(mimeType, "wav"):
		return "LINEAR16"
	case strings.Contains(mimeType, "flac"):
		return "FLAC"
	default:
		return "LINEAR16"
	}
}

type recognizeRequest struct {
	Config recognitionConfig `json:"config"`
	Audio  recognitionAudio  `json:"audio"`
}

type recognitionConfig struct {
	Encoding                   string `json:"encoding"`
	SampleRateHertz            int    `json:"sampleRateHertz"`
	LanguageCode               string `json:"languageCode"`
	EnableWordTimeOffsets      bool   `json:"enableWordTimeOffsets"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
}

type recognitionAudio struct {
	Content string `json:"content"`
}

// Transcribe sends audio to speech:recognize and converts the response into
// captions. An empty languageCode selects the configured default.
func (c *Client) Transcribe(ctx context.Context, audio Audio, languageCode string) ([]captions.Caption, error) {
	key, err := c.apiKey()
	if err != nil {
		return nil, err
	}
	lang, err := c.resolveLanguage(languageCode)
	if err != nil {
		return nil, err
	}

	encoding := DetectEncoding(audio.MIMEType)
	payload := recognizeRequest{
		Config: recognitionConfig{
			Encoding:                   encoding,
			SampleRateHertz:            c.cfg.SampleRateHertz,
			LanguageCode:               lang,
			EnableWordTimeOffsets:      true,
			EnableAutomaticPunctuation: true,
		},
		Audio: recognitionAudio{Content: base64.StdEncoding.EncodeToString(audio.Data)},
	}

	logger := logging.WithContext(ctx, c.logger)
	logger.Info("transcribing audio",
		logging.String("encoding", encoding),
		logging.String("language_code", lang),
		logging.Int("audio_bytes", len(audio.Data)),
	)

	var response captions.RecognizeResponse
	if err := c.postJSON(ctx, ServiceSpeechToText, c.cfg.SpeechBaseURL, "speech:recognize", key, payload, &response); err != nil {
		return nil, err
	}
	caps, err := c.builder.Build(response.Results)
	if err != nil {
		return nil, err
	}
	logger.Info("transcription complete",
		logging.Int("results", len(response.Results)),
		logging.Int("captions", len(caps)),
	)
	return caps, nil
}

func (c *Client) resolveLanguage(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return c.cfg.LanguageCode, nil
	}
	canonical, err := language.Canonicalize(code)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "googlecloud", "language", "", err)
	}
	return canonical, nil
}
