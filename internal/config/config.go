package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory, socket, and bind address configuration.
type Paths struct {
	LogDir       string `toml:"log_dir"`
	NarrationDir string `toml:"narration_dir"`
	SocketPath   string `toml:"socket_path"`
	APIBind      string `toml:"api_bind"`
	APIToken     string `toml:"api_token"`
}

// Google contains credentials and endpoints for the Google Cloud speech APIs.
type Google struct {
	APIKey          string `toml:"api_key"`
	ProjectID       string `toml:"project_id"`
	SpeechBaseURL   string `toml:"speech_base_url"`
	TTSBaseURL      string `toml:"tts_base_url"`
	LanguageCode    string `toml:"language_code"`
	VoiceName       string `toml:"voice_name"`
	SampleRateHertz int    `toml:"sample_rate_hertz"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
}

// Captions contains caption construction settings.
type Captions struct {
	// FallbackWindowSeconds is the span given to a transcript that arrives
	// without word timings.
	FallbackWindowSeconds float64 `toml:"fallback_window_seconds"`
}

// Narration contains narration estimation settings.
type Narration struct {
	SecondsPerCharacter float64 `toml:"seconds_per_character"`
}

// Avatar contains the default placement of the sign-language avatar placeholder.
type Avatar struct {
	X      float64 `toml:"x"`
	Y      float64 `toml:"y"`
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for EqualMedia.
//
// Configuration sections by subsystem:
//   - Paths: log directory, narration output, IPC socket, HTTP API bind
//   - Google: Speech-to-Text / Text-to-Speech credentials and endpoints
//   - Captions: caption construction tuning
//   - Narration: narration duration estimation
//   - Avatar: default avatar placeholder placement
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Google    Google    `toml:"google"`
	Captions  Captions  `toml:"captions"`
	Narration Narration `toml:"narration"`
	Avatar    Avatar    `toml:"avatar"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("equalmedia.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the daemon and CLI write into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.NarrationDir, filepath.Dir(c.Paths.SocketPath)} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Credentials returns the API credentials declared by the configuration.
func (c *Config) Credentials() APIConfig {
	return APIConfig{
		GoogleCloudAPIKey:    strings.TrimSpace(c.Google.APIKey),
		GoogleCloudProjectID: strings.TrimSpace(c.Google.ProjectID),
	}
}

// RequestTimeout returns the HTTP timeout applied to Google Cloud requests.
func (c *Config) RequestTimeout() time.Duration {
	if c.Google.TimeoutSeconds <= 0 {
		return time.Duration(defaultGoogleTimeoutSeconds) * time.Second
	}
	return time.Duration(c.Google.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ReadCredentials re-reads only the [google] credentials from a config file,
// applying the same trimming and environment fallbacks as Load. It is used to
// refresh the credential store when the file changes on disk.
func ReadCredentials(path string) (APIConfig, error) {
	var cfg Config
	if err := decodeFile(path, &cfg); err != nil {
		return APIConfig{}, err
	}
	cfg.normalizeGoogleCredentials()
	return cfg.Credentials(), nil
}
