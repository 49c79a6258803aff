package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"equalmedia/internal/config"
	"equalmedia/internal/daemon"
	"equalmedia/internal/ipc"
	"equalmedia/internal/logging"
)

// PIDFileName is written under paths.log_dir while the sandbox runs.
const PIDFileName = "equalmedia.pid"

// Options configures sandbox process runtime behavior.
type Options struct {
	LogLevel   string
	ConfigPath string
	// Ready, when set, is called once the IPC socket accepts connections.
	Ready func(status daemon.Status)
}

// Run starts the sandbox daemon and blocks until cmdCtx is cancelled or the
// process receives SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logStartupSnapshot(logger, cfg, opts.ConfigPath)

	var daemonOpts []daemon.Option
	if opts.ConfigPath != "" {
		daemonOpts = append(daemonOpts, daemon.WithConfigPath(opts.ConfigPath))
	}
	d, err := daemon.New(cfg, nil, logger, daemonOpts...)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	// The lock must be held before the socket is replaced, otherwise a second
	// instance would unlink the live socket of the first.
	if err := d.Start(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "sandbox start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "stop the other equalmedia sandbox or check paths.log_dir permissions"),
			logging.String(logging.FieldImpact, "document operations unavailable"),
		)
		return err
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, PIDFileName)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	ipcServer, err := ipc.NewServer(signalCtx, cfg.Paths.SocketPath, d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if opts.Ready != nil {
		opts.Ready(d.Status(signalCtx))
	}

	<-signalCtx.Done()
	logger.Info("equalmedia sandbox shutting down",
		logging.String(logging.FieldEventType, "daemon_shutdown"))
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logStartupSnapshot(logger *slog.Logger, cfg *config.Config, configPath string) {
	creds := cfg.Credentials()
	logger.Info("startup snapshot",
		logging.String(logging.FieldEventType, "startup_snapshot"),
		logging.String("config_path", configPath),
		logging.String("socket_path", cfg.Paths.SocketPath),
		logging.String("api_bind", cfg.Paths.APIBind),
		logging.Bool("api_token_set", strings.TrimSpace(cfg.Paths.APIToken) != ""),
		logging.Bool("google_key_present", creds.GoogleCloudAPIKey != ""),
		logging.String("language_code", cfg.Google.LanguageCode),
		logging.String("voice_name", cfg.Google.VoiceName),
	)
}
