package googlecloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"equalmedia/internal/captions"
	"equalmedia/internal/config"
	"equalmedia/internal/logging"
	"equalmedia/internal/narration"
)

const (
	defaultSpeechBaseURL = "https://speech.googleapis.com/v1"
	defaultTTSBaseURL    = "https://texttospeech.googleapis.com/v1"
	defaultLanguageCode  = "en-US"
	defaultVoiceName     = "en-US-Standard-C"
	defaultSampleRate    = 44100
	defaultHTTPTimeout   = 60 * time.Second
	maxErrorBodyBytes    = 64 << 10
)

// Credentials supplies the API key at call time. *config.Store satisfies it,
// so keys set after startup are picked up by the next request.
type Credentials interface {
	APIKey() string
}

// Config captures the runtime settings for both speech APIs.
type Config struct {
	SpeechBaseURL         string
	TTSBaseURL            string
	LanguageCode          string
	VoiceName             string
	SampleRateHertz       int
	Timeout               time.Duration
	FallbackWindowSeconds float64
	SecondsPerCharacter   float64
}

// ConfigFrom extracts adapter settings from the application configuration.
func ConfigFrom(cfg *config.Config) Config {
	if cfg == nil {
		return Config{}
	}
	return Config{
		SpeechBaseURL:         cfg.Google.SpeechBaseURL,
		TTSBaseURL:            cfg.Google.TTSBaseURL,
		LanguageCode:          cfg.Google.LanguageCode,
		VoiceName:             cfg.Google.VoiceName,
		SampleRateHertz:       cfg.Google.SampleRateHertz,
		Timeout:               cfg.RequestTimeout(),
		FallbackWindowSeconds: cfg.Captions.FallbackWindowSeconds,
		SecondsPerCharacter:   cfg.Narration.SecondsPerCharacter,
	}
}

// Client talks to Google Cloud Speech-to-Text and Text-to-Speech over REST
// using API-key authentication. No retries are attempted.
type Client struct {
	cfg        Config
	creds      Credentials
	httpClient *http.Client
	logger     *slog.Logger
	builder    captions.Builder
	now        func() time.Time
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger; the default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a client. Missing settings fall back to the public
// Google endpoints and the en-US defaults.
func NewClient(cfg Config, creds Credentials, opts ...Option) *Client {
	cfg.SpeechBaseURL = strings.TrimRight(strings.TrimSpace(cfg.SpeechBaseURL), "/")
	if cfg.SpeechBaseURL == "" {
		cfg.SpeechBaseURL = defaultSpeechBaseURL
	}
	cfg.TTSBaseURL = strings.TrimRight(strings.TrimSpace(cfg.TTSBaseURL), "/")
	if cfg.TTSBaseURL == "" {
		cfg.TTSBaseURL = defaultTTSBaseURL
	}
	if strings.TrimSpace(cfg.LanguageCode) == "" {
		cfg.LanguageCode = defaultLanguageCode
	}
	if strings.TrimSpace(cfg.VoiceName) == "" {
		cfg.VoiceName = defaultVoiceName
	}
	if cfg.SampleRateHertz <= 0 {
		cfg.SampleRateHertz = defaultSampleRate
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}
	if cfg.SecondsPerCharacter <= 0 {
		cfg.SecondsPerCharacter = narration.DefaultSecondsPerCharacter
	}

	client := &Client{
		cfg:        cfg,
		creds:      creds,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logging.NewNop(),
		builder:    captions.NewBuilder(cfg.FallbackWindowSeconds),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "googlecloud")
	return client
}

func (c *Client) apiKey() (string, error) {
	if c.creds == nil {
		return "", ErrMissingAPIKey
	}
	key := strings.TrimSpace(c.creds.APIKey())
	if key == "" {
		return "", ErrMissingAPIKey
	}
	return key, nil
}

// postJSON sends payload to base/method?key=K and decodes a 2xx body into out.
// Non-2xx responses become *APIError; transport and decoding errors are
// returned as produced.
func (c *Client) postJSON(ctx context.Context, service, base, method, key string, payload, out any) error {
	endpoint := base + "/" + method + "?key=" + url.QueryEscape(key)
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", service, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build %s request: %w", service, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := c.now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	logger := logging.WithContext(ctx, c.logger)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		apiErr := newAPIError(service, resp.StatusCode, body)
		logging.WarnWithContext(logger, "google api request failed", "google_api_error",
			logging.String("service", service),
			logging.Int("status_code", resp.StatusCode),
			logging.String("api_status", apiErr.Status),
			logging.String(logging.FieldErrorHint, "check the API key, enabled APIs, and request quota in the Google Cloud console"),
			logging.String(logging.FieldImpact, "feature output was not generated"),
		)
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return err
	}
	logger.Debug("google api request completed",
		logging.String("service", service),
		logging.Duration("elapsed", c.now().Sub(start)),
	)
	return nil
}
