package googlecloud

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"equalmedia/internal/logging"
	"equalmedia/internal/narration"
	"equalmedia/internal/services"
)

type synthesizeRequest struct {
	Input       synthesisInput `json:"input"`
	Voice       voiceSelection `json:"voice"`
	AudioConfig audioConfig    `json:"audioConfig"`
}

type synthesisInput struct {
	Text string `json:"text"`
}

type voiceSelection struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
	SSMLGender   string `json:"ssmlGender"`
}

type audioConfig struct {
	AudioEncoding string  `json:"audioEncoding"`
	SpeakingRate  float64 `json:"speakingRate"`
	Pitch         float64 `json:"pitch"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize turns text into MP3 narration with a neutral voice at default
// rate and pitch. Empty languageCode and voiceName select configured defaults.
// Duration is estimated from the text length.
func (c *Client) Synthesize(ctx context.Context, text, languageCode, voiceName string) (narration.AudioNarration, error) {
	var empty narration.AudioNarration
	key, err := c.apiKey()
	if err != nil {
		return empty, err
	}
	if strings.TrimSpace(text) == "" {
		return empty, services.Wrap(services.ErrValidation, "googlecloud", "synthesize", "text is required", nil)
	}
	lang, err := c.resolveLanguage(languageCode)
	if err != nil {
		return empty, err
	}
	voice := strings.TrimSpace(voiceName)
	if voice == "" {
		voice = c.cfg.VoiceName
	}

	payload := synthesizeRequest{
		Input: synthesisInput{Text: text},
		Voice: voiceSelection{LanguageCode: lang, Name: voice, SSMLGender: "NEUTRAL"},
		AudioConfig: audioConfig{
			AudioEncoding: "MP3",
			SpeakingRate:  1.0,
			Pitch:         0.0,
		},
	}

	logger := logging.WithContext(ctx, c.logger)
	logger.Info("synthesizing narration",
		logging.String("language_code", lang),
		logging.String("voice", voice),
		logging.Int("characters", len([]rune(text))),
	)

	var response synthesizeResponse
	if err := c.postJSON(ctx, ServiceTextToSpeech, c.cfg.TTSBaseURL, "text:synthesize", key, payload, &response); err != nil {
		return empty, err
	}
	audio, err := base64.StdEncoding.DecodeString(response.AudioContent)
	if err != nil {
		return empty, fmt.Errorf("decode audio content: %w", err)
	}

	result := narration.AudioNarration{
		Audio:        audio,
		MIMEType:     narration.MIMEType,
		SourceText:   text,
		Duration:     narration.EstimateDuration(text, c.cfg.SecondsPerCharacter),
		LanguageCode: lang,
	}
	logger.Info("narration synthesized",
		logging.String("size", result.Size()),
		logging.Float64("estimated_seconds", result.Duration),
	)
	return result, nil
}
