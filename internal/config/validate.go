package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
//
// The Google API key is not required here. It may arrive later through the
// credential store; a missing key surfaces when a feature first needs it.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateGoogle(); err != nil {
		return err
	}
	if err := c.validateTuning(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.APIBind == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind %q must be host:port: %w", c.Paths.APIBind, err)
	}
	return nil
}

func (c *Config) validateGoogle() error {
	for name, raw := range map[string]string{
		"google.speech_base_url": c.Google.SpeechBaseURL,
		"google.tts_base_url":    c.Google.TTSBaseURL,
	} {
		parsed, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%s must be an http(s) URL, got %q", name, raw)
		}
	}
	if _, err := language.Parse(c.Google.LanguageCode); err != nil {
		return fmt.Errorf("google.language_code %q is not a valid BCP 47 tag: %w", c.Google.LanguageCode, err)
	}
	if c.Google.SampleRateHertz < 8000 || c.Google.SampleRateHertz > 48000 {
		return fmt.Errorf("google.sample_rate_hertz must be between 8000 and 48000, got %d", c.Google.SampleRateHertz)
	}
	return nil
}

func (c *Config) validateTuning() error {
	if c.Captions.FallbackWindowSeconds <= 0 {
		return errors.New("captions.fallback_window_seconds must be positive")
	}
	if c.Narration.SecondsPerCharacter <= 0 {
		return errors.New("narration.seconds_per_character must be positive")
	}
	if c.Avatar.X < 0 || c.Avatar.Y < 0 {
		return errors.New("avatar.x and avatar.y must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
