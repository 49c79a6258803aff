package testsupport

import (
	"path/filepath"
	"testing"

	"equalmedia/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The API binds to an ephemeral loopback port and a dummy API key is set.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Google.APIKey = "test"
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.NarrationDir = filepath.Join(base, "narration")
	cfgVal.Paths.SocketPath = filepath.Join(base, "em.sock")
	cfgVal.Paths.APIBind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAPIKey overrides the Google Cloud API key; empty clears it.
func WithAPIKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Google.APIKey = key
	}
}

// WithAPIToken requires bearer authentication on the HTTP API.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// WithGoogleBaseURL points both speech APIs at a test server.
func WithGoogleBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Google.SpeechBaseURL = url
		b.cfg.Google.TTSBaseURL = url
	}
}

// WithoutAPI disables the HTTP API listener.
func WithoutAPI() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIBind = ""
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
