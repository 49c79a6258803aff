package config_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"equalmedia/internal/config"
)

func TestLoadDefaultConfigUsesEnvCredentialsAndExpandsPaths(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_API_KEY", "env-key")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "env-project")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogDir := filepath.Join(tempHome, ".local", "share", "equalmedia", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	if cfg.Paths.SocketPath != filepath.Join(wantLogDir, "equalmedia.sock") {
		t.Fatalf("unexpected socket path: %q", cfg.Paths.SocketPath)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7491" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Google.APIKey != "env-key" {
		t.Fatalf("expected API key from env, got %q", cfg.Google.APIKey)
	}
	if cfg.Google.ProjectID != "env-project" {
		t.Fatalf("expected project from env, got %q", cfg.Google.ProjectID)
	}
	if cfg.Google.VoiceName != "en-US-Standard-C" {
		t.Fatalf("unexpected default voice: %q", cfg.Google.VoiceName)
	}
	if cfg.Google.SampleRateHertz != 44100 {
		t.Fatalf("unexpected sample rate: %d", cfg.Google.SampleRateHertz)
	}
	if cfg.Captions.FallbackWindowSeconds != 5 {
		t.Fatalf("unexpected fallback window: %v", cfg.Captions.FallbackWindowSeconds)
	}
	if cfg.Narration.SecondsPerCharacter != 0.06 {
		t.Fatalf("unexpected seconds per character: %v", cfg.Narration.SecondsPerCharacter)
	}
	if cfg.RequestTimeout() != 60*time.Second {
		t.Fatalf("unexpected request timeout: %v", cfg.RequestTimeout())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.NarrationDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "equalmedia.toml")

	type payload struct {
		Google struct {
			APIKey        string `toml:"api_key"`
			SpeechBaseURL string `toml:"speech_base_url"`
			LanguageCode  string `toml:"language_code"`
		} `toml:"google"`
		Captions struct {
			FallbackWindowSeconds float64 `toml:"fallback_window_seconds"`
		} `toml:"captions"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Google.APIKey = "abc123"
	custom.Google.SpeechBaseURL = "https://example.com/speech/"
	custom.Google.LanguageCode = "fr-FR"
	custom.Captions.FallbackWindowSeconds = 3
	custom.Logging.Format = "JSON"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}
	t.Setenv("GOOGLE_CLOUD_API_KEY", "env-key")

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Google.APIKey != "abc123" {
		t.Fatalf("expected file key to win over env fallback, got %q", cfg.Google.APIKey)
	}
	if cfg.Google.SpeechBaseURL != "https://example.com/speech" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Google.SpeechBaseURL)
	}
	if cfg.Google.LanguageCode != "fr-FR" {
		t.Fatalf("unexpected language: %q", cfg.Google.LanguageCode)
	}
	if cfg.Captions.FallbackWindowSeconds != 3 {
		t.Fatalf("unexpected fallback window: %v", cfg.Captions.FallbackWindowSeconds)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lowercased log format, got %q", cfg.Logging.Format)
	}
	if cfg.Google.TTSBaseURL != config.Default().Google.TTSBaseURL {
		t.Fatalf("expected default TTS base url, got %q", cfg.Google.TTSBaseURL)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(configPath, []byte("[google\napi_key = "), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_google_cloud_api_key_here") {
		t.Fatalf("sample config missing placeholder key: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Google.VoiceName != "en-US-Standard-C" {
		t.Fatalf("unexpected sample voice: %q", cfg.Google.VoiceName)
	}

	loaded, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !strings.Contains(loaded.Paths.LogDir, "equalmedia") {
		t.Fatalf("expected log dir to contain equalmedia, got %q", loaded.Paths.LogDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"bad bind":        func(c *config.Config) { c.Paths.APIBind = "localhost" },
		"bad speech url":  func(c *config.Config) { c.Google.SpeechBaseURL = "ftp://example.com" },
		"bad language":    func(c *config.Config) { c.Google.LanguageCode = "not a tag!" },
		"low sample rate": func(c *config.Config) { c.Google.SampleRateHertz = 100 },
		"zero window":     func(c *config.Config) { c.Captions.FallbackWindowSeconds = 0 },
		"zero per char":   func(c *config.Config) { c.Narration.SecondsPerCharacter = 0 },
		"negative avatar": func(c *config.Config) { c.Avatar.X = -1 },
		"bad log format":  func(c *config.Config) { c.Logging.Format = "xml" },
		"bad log level":   func(c *config.Config) { c.Logging.Level = "loud" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func strPtr(v string) *string { return &v }

func TestStoreMergesPartialUpdates(t *testing.T) {
	store := config.NewStore(config.APIConfig{})
	store.Set(config.APIConfigUpdate{GoogleCloudAPIKey: strPtr("X")})
	got := store.Set(config.APIConfigUpdate{GoogleCloudProjectID: strPtr("Y")})
	if got.GoogleCloudAPIKey != "X" || got.GoogleCloudProjectID != "Y" {
		t.Fatalf("expected both fields, got %+v", got)
	}

	store.Set(config.APIConfigUpdate{})
	if store.APIKey() != "X" {
		t.Fatalf("absent field must not clear the key, got %q", store.APIKey())
	}

	store.Set(config.APIConfigUpdate{GoogleCloudAPIKey: strPtr("Z")})
	if store.Get().GoogleCloudAPIKey != "Z" {
		t.Fatalf("expected last write to win, got %q", store.Get().GoogleCloudAPIKey)
	}

	var nilStore *config.Store
	if nilStore.Get() != (config.APIConfig{}) {
		t.Fatal("nil store should read as empty")
	}
}

func TestStoreClearsFieldSentEmpty(t *testing.T) {
	store := config.NewStore(config.APIConfig{GoogleCloudAPIKey: "OLDKEY123", GoogleCloudProjectID: "proj"})
	got := store.Set(config.APIConfigUpdate{GoogleCloudAPIKey: strPtr("")})
	if got.GoogleCloudAPIKey != "" {
		t.Fatalf("expected key cleared, got %q", got.GoogleCloudAPIKey)
	}
	if got.GoogleCloudProjectID != "proj" {
		t.Fatalf("project must be kept, got %q", got.GoogleCloudProjectID)
	}
}

func TestAPIConfigUpdateCarriesOnlyNonEmptyFields(t *testing.T) {
	u := config.APIConfig{GoogleCloudAPIKey: " k ", GoogleCloudProjectID: "  "}.Update()
	if u.GoogleCloudAPIKey == nil || *u.GoogleCloudAPIKey != "k" {
		t.Fatalf("expected trimmed key, got %v", u.GoogleCloudAPIKey)
	}
	if u.GoogleCloudProjectID != nil {
		t.Fatal("blank project should be absent")
	}
	if !(config.APIConfig{}).Update().IsEmpty() {
		t.Fatal("empty config should produce an empty update")
	}
}

func TestAPIConfigUpdateDecodesExplicitEmpty(t *testing.T) {
	var u config.APIConfigUpdate
	if err := json.Unmarshal([]byte(`{"googleCloudApiKey":""}`), &u); err != nil {
		t.Fatal(err)
	}
	if u.GoogleCloudAPIKey == nil || *u.GoogleCloudAPIKey != "" || u.GoogleCloudProjectID != nil {
		t.Fatalf("unexpected update %+v", u)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := config.NewStore(config.APIConfig{GoogleCloudAPIKey: "seed"})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Set(config.APIConfigUpdate{GoogleCloudProjectID: strPtr("p")})
		}()
		go func() {
			defer wg.Done()
			if store.APIKey() != "seed" {
				t.Error("key changed unexpectedly")
			}
		}()
	}
	wg.Wait()
}

func TestRedactedHidesKey(t *testing.T) {
	cfg := config.APIConfig{GoogleCloudAPIKey: "secret-1234", GoogleCloudProjectID: "proj"}
	red := cfg.Redacted()
	if red.GoogleCloudAPIKey != "****1234" {
		t.Fatalf("unexpected redaction: %q", red.GoogleCloudAPIKey)
	}
	if red.GoogleCloudProjectID != "proj" {
		t.Fatalf("project should be kept, got %q", red.GoogleCloudProjectID)
	}
	if (config.APIConfig{}).Redacted().GoogleCloudAPIKey != "" {
		t.Fatal("empty key should stay empty")
	}
}

func TestWatchCredentialsMergesFileChanges(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_API_KEY", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[google]\nproject_id = \"first\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	store := config.NewStore(config.APIConfig{GoogleCloudProjectID: "first"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- config.WatchCredentials(ctx, path, store, nil) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("[google]\napi_key = \"fresh\"\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for store.APIKey() != "fresh" && time.Now().Before(deadline) {
		time.Sleep(25 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watcher returned error: %v", err)
	}

	got := store.Get()
	if got.GoogleCloudAPIKey != "fresh" {
		t.Fatalf("expected reloaded key, got %+v", got)
	}
	if got.GoogleCloudProjectID != "first" {
		t.Fatalf("reload must not clear project, got %+v", got)
	}
}

func TestSaveCredentialsPreservesOtherKeys(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_API_KEY", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT_ID", "")
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"debug\"\n\n[google]\nproject_id = \"keep\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := config.SaveCredentials(path, config.APIConfigUpdate{GoogleCloudAPIKey: strPtr(" saved-key ")}); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}
	creds, err := config.ReadCredentials(path)
	if err != nil {
		t.Fatalf("ReadCredentials: %v", err)
	}
	if creds.GoogleCloudAPIKey != "saved-key" || creds.GoogleCloudProjectID != "keep" {
		t.Fatalf("unexpected credentials %+v", creds)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging level lost: %q", cfg.Logging.Level)
	}
}

func TestSaveCredentialsCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.SaveCredentials(path, config.APIConfigUpdate{GoogleCloudProjectID: strPtr("p")}); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc["google"]["project_id"] != "p" {
		t.Fatalf("unexpected document %v", doc)
	}
	if _, ok := doc["google"]["api_key"]; ok {
		t.Fatal("empty key must not be written")
	}
}

func TestSaveCredentialsRemovesClearedKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[google]\napi_key = \"old\"\nproject_id = \"keep\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := config.SaveCredentials(path, config.APIConfigUpdate{GoogleCloudAPIKey: strPtr("")}); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := doc["google"]["api_key"]; ok {
		t.Fatalf("api_key should be removed, got %v", doc)
	}
	if doc["google"]["project_id"] != "keep" {
		t.Fatalf("project lost: %v", doc)
	}
}
