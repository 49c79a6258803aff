package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const credentialReloadDelay = 100 * time.Millisecond

// WatchCredentials merges credential changes from the config file at path
// into store until ctx is cancelled. The parent directory is watched so that
// editors which replace the file atomically are still observed.
func WatchCredentials(ctx context.Context, path string, store *Store, logger *slog.Logger) error {
	if store == nil {
		return fmt.Errorf("watch credentials: nil store")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("add watch path: %w", err)
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// Let the writer finish before decoding.
			select {
			case <-time.After(credentialReloadDelay):
			case <-ctx.Done():
				return nil
			}
			creds, err := ReadCredentials(target)
			if err != nil {
				logger.Warn("config reload failed",
					slog.String("event_type", "config_reload_failed"),
					slog.String("error_hint", "fix the TOML syntax; the previous credentials remain active"),
					slog.String("impact", "credential changes ignored"),
					slog.String("path", target),
					slog.String("error", err.Error()),
				)
				continue
			}
			merged := store.Set(creds.Update())
			logger.Info("credentials reloaded",
				slog.String("event_type", "config_reloaded"),
				slog.String("path", target),
				slog.Bool("api_key_present", merged.GoogleCloudAPIKey != ""),
				slog.Bool("project_present", merged.GoogleCloudProjectID != ""),
			)
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Warn("config watcher error",
				slog.String("event_type", "config_watch_error"),
				slog.String("error_hint", "restart the daemon if credential reload stops working"),
				slog.String("impact", "credential reload may be delayed"),
				slog.String("error", err.Error()),
			)
		}
	}
}
