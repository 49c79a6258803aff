package preflight

import (
	"context"
	"strings"

	"equalmedia/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
// The Google API check only runs when a key is configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	creds := cfg.Credentials()
	results := []Result{CheckAPIKey(creds)}

	results = append(results,
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Narration directory", cfg.Paths.NarrationDir),
		CheckSocketPath(cfg.Paths.SocketPath),
	)

	if strings.TrimSpace(cfg.Paths.APIBind) != "" {
		results = append(results, CheckListenAddress("HTTP API", cfg.Paths.APIBind))
	}

	if creds.GoogleCloudAPIKey != "" {
		results = append(results, CheckTextToSpeech(ctx, cfg.Google.TTSBaseURL, creds.GoogleCloudAPIKey, cfg.Google.LanguageCode))
	}

	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
