package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// APIConfig holds the credentials used by the cloud speech adapters.
// JSON names match the panel API payloads.
type APIConfig struct {
	GoogleCloudAPIKey    string `json:"googleCloudApiKey,omitempty"`
	GoogleCloudProjectID string `json:"googleCloudProjectId,omitempty"`
}

// Redacted returns a copy safe for logs and API responses.
func (a APIConfig) Redacted() APIConfig {
	out := a
	if out.GoogleCloudAPIKey != "" {
		out.GoogleCloudAPIKey = redact(out.GoogleCloudAPIKey)
	}
	return out
}

func redact(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

// APIConfigUpdate is a partial credential update. A nil field leaves the
// stored value alone; a non-nil field replaces it, and "" clears it.
type APIConfigUpdate struct {
	GoogleCloudAPIKey    *string `json:"googleCloudApiKey,omitempty"`
	GoogleCloudProjectID *string `json:"googleCloudProjectId,omitempty"`
}

// Update returns an APIConfigUpdate carrying only the non-empty fields of a.
func (a APIConfig) Update() APIConfigUpdate {
	var u APIConfigUpdate
	if v := strings.TrimSpace(a.GoogleCloudAPIKey); v != "" {
		u.GoogleCloudAPIKey = &v
	}
	if v := strings.TrimSpace(a.GoogleCloudProjectID); v != "" {
		u.GoogleCloudProjectID = &v
	}
	return u
}

// IsEmpty reports whether the update names no field.
func (u APIConfigUpdate) IsEmpty() bool {
	return u.GoogleCloudAPIKey == nil && u.GoogleCloudProjectID == nil
}

// Store is a process-wide, concurrency-safe credential holder.
//
// Set overlays every field present in an update onto the current value.
// Fields absent from the update are kept.
type Store struct {
	mu      sync.RWMutex
	current APIConfig
}

// NewStore returns a Store seeded with initial credentials.
func NewStore(initial APIConfig) *Store {
	s := &Store{}
	s.Set(initial.Update())
	return s
}

// Get returns a copy of the current credentials.
func (s *Store) Get() APIConfig {
	if s == nil {
		return APIConfig{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set merges partial into the stored credentials and returns the result.
func (s *Store) Set(partial APIConfigUpdate) APIConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	if partial.GoogleCloudAPIKey != nil {
		s.current.GoogleCloudAPIKey = strings.TrimSpace(*partial.GoogleCloudAPIKey)
	}
	if partial.GoogleCloudProjectID != nil {
		s.current.GoogleCloudProjectID = strings.TrimSpace(*partial.GoogleCloudProjectID)
	}
	return s.current
}

// APIKey returns the current Google Cloud API key.
func (s *Store) APIKey() string {
	return s.Get().GoogleCloudAPIKey
}

// SaveCredentials merges partial into the [google] table of the config file
// at path, creating the file if needed. A field set to "" removes the key.
// Other keys are preserved; comments are not.
func SaveCredentials(path string, partial APIConfigUpdate) error {
	doc := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("read config: %w", err)
	}

	google, _ := doc["google"].(map[string]any)
	if google == nil {
		google = map[string]any{}
	}
	setOrDelete(google, "api_key", partial.GoogleCloudAPIKey)
	setOrDelete(google, "project_id", partial.GoogleCloudProjectID)
	doc["google"] = google

	out, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setOrDelete(table map[string]any, key string, value *string) {
	if value == nil {
		return
	}
	if v := strings.TrimSpace(*value); v != "" {
		table[key] = v
		return
	}
	delete(table, key)
}
