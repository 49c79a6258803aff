package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGoogle()
	c.normalizeTuning()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.NarrationDir) == "" {
		c.Paths.NarrationDir = defaultNarrationDir
	}
	if c.Paths.NarrationDir, err = expandPath(c.Paths.NarrationDir); err != nil {
		return fmt.Errorf("paths.narration_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SocketPath) == "" {
		c.Paths.SocketPath = filepath.Join(c.Paths.LogDir, defaultSocketName)
	}
	if c.Paths.SocketPath, err = expandPath(c.Paths.SocketPath); err != nil {
		return fmt.Errorf("paths.socket_path: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("EQUALMEDIA_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeGoogle() {
	c.normalizeGoogleCredentials()
	c.Google.SpeechBaseURL = strings.TrimRight(strings.TrimSpace(c.Google.SpeechBaseURL), "/")
	if c.Google.SpeechBaseURL == "" {
		c.Google.SpeechBaseURL = defaultSpeechBaseURL
	}
	c.Google.TTSBaseURL = strings.TrimRight(strings.TrimSpace(c.Google.TTSBaseURL), "/")
	if c.Google.TTSBaseURL == "" {
		c.Google.TTSBaseURL = defaultTTSBaseURL
	}
	c.Google.LanguageCode = strings.TrimSpace(c.Google.LanguageCode)
	if c.Google.LanguageCode == "" {
		c.Google.LanguageCode = defaultLanguageCode
	}
	c.Google.VoiceName = strings.TrimSpace(c.Google.VoiceName)
	if c.Google.VoiceName == "" {
		c.Google.VoiceName = defaultVoiceName
	}
	if c.Google.SampleRateHertz <= 0 {
		c.Google.SampleRateHertz = defaultSampleRateHertz
	}
	if c.Google.TimeoutSeconds <= 0 {
		c.Google.TimeoutSeconds = defaultGoogleTimeoutSeconds
	}
}

func (c *Config) normalizeGoogleCredentials() {
	c.Google.APIKey = strings.TrimSpace(c.Google.APIKey)
	if c.Google.APIKey == "" {
		if value, ok := os.LookupEnv(envGoogleAPIKey); ok {
			c.Google.APIKey = strings.TrimSpace(value)
		}
	}
	c.Google.ProjectID = strings.TrimSpace(c.Google.ProjectID)
	if c.Google.ProjectID == "" {
		if value, ok := os.LookupEnv(envGoogleProject); ok {
			c.Google.ProjectID = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv(envGoogleProjectLegacy); ok {
			c.Google.ProjectID = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeTuning() {
	if c.Captions.FallbackWindowSeconds <= 0 {
		c.Captions.FallbackWindowSeconds = defaultCaptionFallbackWindow
	}
	if c.Narration.SecondsPerCharacter <= 0 {
		c.Narration.SecondsPerCharacter = defaultNarrationSecondsPerChar
	}
	if c.Avatar.Width <= 0 {
		c.Avatar.Width = defaultAvatarWidth
	}
	if c.Avatar.Height <= 0 {
		c.Avatar.Height = defaultAvatarHeight
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.Format == "text" || c.Logging.Format == "pretty" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
