package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"equalmedia/internal/avatar"
	"equalmedia/internal/config"
	"equalmedia/internal/document"
	"equalmedia/internal/logging"
	"equalmedia/internal/panels"
	"equalmedia/internal/services"
	"equalmedia/internal/services/googlecloud"
)

// Daemon hosts the document sandbox and enforces single-instance execution.
type Daemon struct {
	cfg        *config.Config
	configPath string
	logger     *slog.Logger
	creds      *config.Store

	scene     *document.Scene
	proxy     *document.Proxy
	captions  *panels.CaptionsPanel
	narration *panels.NarrationPanel
	avatar    *panels.AvatarPanel
	api       *apiServer

	lockPath string
	lock     *flock.Flock

	mu        sync.Mutex
	running   atomic.Bool
	startedAt time.Time
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running          bool      `json:"running"`
	PID              int       `json:"pid"`
	StartedAt        time.Time `json:"started_at,omitempty"`
	LockFilePath     string    `json:"lock_file_path"`
	SocketPath       string    `json:"socket_path"`
	APIAddress       string    `json:"api_address,omitempty"`
	ConfigPath       string    `json:"config_path,omitempty"`
	APIKeyConfigured bool      `json:"api_key_configured"`
	ProjectID        string    `json:"project_id,omitempty"`
	Elements         int       `json:"elements"`
	Captions         int       `json:"captions"`
	HasNarration     bool      `json:"has_narration"`
	HasAvatar        bool      `json:"has_avatar"`
	Generating       []string  `json:"generating,omitempty"`
}

// Snapshot is the current document content plus the last payloads received.
type Snapshot struct {
	Elements []document.Element `json:"elements"`
	State    document.State     `json:"state"`
}

type options struct {
	configPath string
	speech     panels.Transcriber
	tts        panels.Synthesizer
	sceneOpts  []document.SceneOption
}

// Option customizes daemon construction.
type Option func(*options)

// WithConfigPath enables credential hot reload from the given config file.
func WithConfigPath(path string) Option {
	return func(o *options) {
		o.configPath = strings.TrimSpace(path)
	}
}

// WithSpeechServices replaces the Google Cloud client used by the panels.
func WithSpeechServices(speech panels.Transcriber, tts panels.Synthesizer) Option {
	return func(o *options) {
		o.speech = speech
		o.tts = tts
	}
}

// WithSceneOptions passes options to the in-memory scene.
func WithSceneOptions(opts ...document.SceneOption) Option {
	return func(o *options) {
		o.sceneOpts = append(o.sceneOpts, opts...)
	}
}

// New constructs a daemon with initialized dependencies. creds may be nil, in
// which case a store seeded from cfg is created.
func New(cfg *config.Config, creds *config.Store, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if creds == nil {
		creds = config.NewStore(cfg.Credentials())
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.speech == nil || o.tts == nil {
		client := googlecloud.NewClient(googlecloud.ConfigFrom(cfg), creds, googlecloud.WithLogger(logger))
		if o.speech == nil {
			o.speech = client
		}
		if o.tts == nil {
			o.tts = client
		}
	}

	scene := document.NewScene(o.sceneOpts...)
	proxy := document.NewProxy(scene, logger, document.WithAvatarDefaults(avatar.Placement{
		Position: avatar.Point{X: cfg.Avatar.X, Y: cfg.Avatar.Y},
		Size:     avatar.Size{Width: cfg.Avatar.Width, Height: cfg.Avatar.Height},
	}))

	lockPath := filepath.Join(cfg.Paths.LogDir, "equalmedia.lock")
	d := &Daemon{
		cfg:        cfg,
		configPath: o.configPath,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		creds:      creds,
		scene:      scene,
		proxy:      proxy,
		captions:   panels.NewCaptionsPanel(o.speech, proxy, logger),
		narration:  panels.NewNarrationPanel(o.tts, proxy, logger),
		avatar:     panels.NewAvatarPanel(proxy, logger),
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, starts the HTTP API and the credential
// watcher.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("ensure lock directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return services.Wrap(services.ErrConflict, "daemon", "start", "another equalmedia sandbox is already running", nil)
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	if d.configPath != "" {
		d.wg.Add(1)
		go d.watchCredentials(runCtx)
	}

	d.cancel = cancel
	d.startedAt = time.Now().UTC()
	d.running.Store(true)
	d.logger.Info("equalmedia sandbox started",
		logging.String("lock", d.lockPath),
		logging.String("api", d.api.address()),
		logging.Bool("api_key_configured", d.creds.APIKey() != ""),
	)
	return nil
}

func (d *Daemon) watchCredentials(ctx context.Context) {
	defer d.wg.Done()
	if err := config.WatchCredentials(ctx, d.configPath, d.creds, d.logger); err != nil {
		logging.WarnWithContext(d.logger, "config watcher stopped", "config_watch_failed",
			logging.String("path", d.configPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "restart the sandbox to pick up credential changes"),
			logging.String(logging.FieldImpact, "config file edits are ignored until restart"),
		)
	}
}

// Stop shuts down the API and watcher and releases the daemon lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_unlock_failed"),
			logging.String(logging.FieldErrorHint, "remove the lock file if the next start fails"),
			logging.String(logging.FieldImpact, "a stale lock may block the next start"),
		)
	}
	d.running.Store(false)
	d.logger.Info("equalmedia sandbox stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Proxy returns the document proxy.
func (d *Daemon) Proxy() *document.Proxy {
	return d.proxy
}

// Credentials returns the shared credential store.
func (d *Daemon) Credentials() *config.Store {
	return d.creds
}

// Document returns a snapshot of the scene and proxy state.
func (d *Daemon) Document() Snapshot {
	return Snapshot{Elements: d.scene.Elements(), State: d.proxy.State()}
}

// SetAPIConfig merges partial into the credential store and returns the
// merged value. Runtime updates are not written back to the config file.
func (d *Daemon) SetAPIConfig(ctx context.Context, partial config.APIConfigUpdate) config.APIConfig {
	merged := d.creds.Set(partial)
	logging.WithContext(ctx, d.logger).Info("api config updated",
		logging.Bool("api_key_sent", partial.GoogleCloudAPIKey != nil),
		logging.Bool("project_id_sent", partial.GoogleCloudProjectID != nil),
		logging.Bool("api_key_present", merged.GoogleCloudAPIKey != ""),
	)
	return merged
}

// Status returns the current daemon status.
func (d *Daemon) Status(_ context.Context) Status {
	d.mu.Lock()
	startedAt := d.startedAt
	d.mu.Unlock()

	creds := d.creds.Get()
	state := d.proxy.State()
	status := Status{
		Running:          d.running.Load(),
		PID:              os.Getpid(),
		LockFilePath:     d.lockPath,
		SocketPath:       d.cfg.Paths.SocketPath,
		APIAddress:       d.api.address(),
		ConfigPath:       d.configPath,
		APIKeyConfigured: strings.TrimSpace(creds.GoogleCloudAPIKey) != "",
		ProjectID:        creds.GoogleCloudProjectID,
		Elements:         d.scene.Len(),
		Captions:         len(state.Captions),
		HasNarration:     state.Narration != nil,
		HasAvatar:        state.Avatar != nil,
	}
	if status.Running {
		status.StartedAt = startedAt
	}
	if d.captions.Busy() {
		status.Generating = append(status.Generating, services.FeatureCaptions)
	}
	if d.narration.Busy() {
		status.Generating = append(status.Generating, services.FeatureNarration)
	}
	if d.avatar.Busy() {
		status.Generating = append(status.Generating, services.FeatureAvatar)
	}
	return status
}
