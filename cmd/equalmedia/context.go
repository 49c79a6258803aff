package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"equalmedia/internal/config"
	"equalmedia/internal/ipc"
	"equalmedia/internal/logging"
	"equalmedia/internal/services/googlecloud"
)

type commandContext struct {
	socketFlag *string
	configFlag *string
	formatFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(socketFlag, configFlag, formatFlag *string) *commandContext {
	return &commandContext{
		socketFlag: socketFlag,
		configFlag: configFlag,
		formatFlag: formatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		if c.socketFlag != nil {
			if socket := strings.TrimSpace(*c.socketFlag); socket != "" {
				cfg.Paths.SocketPath = socket
			}
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) format() string {
	if c.formatFlag == nil || strings.TrimSpace(*c.formatFlag) == "" {
		return formatTable
	}
	return strings.ToLower(strings.TrimSpace(*c.formatFlag))
}

func (c *commandContext) socketPath() string {
	if c.socketFlag != nil {
		if socket := strings.TrimSpace(*c.socketFlag); socket != "" {
			return socket
		}
	}
	if cfg := c.configValue(); cfg != nil {
		return cfg.Paths.SocketPath
	}
	return defaultSocketPath()
}

// logger writes panel logs to stderr so stdout stays parseable.
func (c *commandContext) logger(cmd *cobra.Command) *slog.Logger {
	cfg := c.configValue()
	format, level := "console", "warn"
	if cfg != nil {
		format = cfg.Logging.Format
		if cfg.Logging.Level == "debug" {
			level = "debug"
		}
	}
	logger, err := logging.NewWriterLogger(cmd.ErrOrStderr(), format, level)
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// speechClient builds the Google client from the CLI's own configuration.
// Keys pushed into a running sandbox with `config set` are not visible here
// unless they were also saved to the config file.
func (c *commandContext) speechClient(cmd *cobra.Command) (*googlecloud.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store := config.NewStore(cfg.Credentials())
	return googlecloud.NewClient(googlecloud.ConfigFrom(cfg), store, googlecloud.WithLogger(c.logger(cmd))), nil
}

func (c *commandContext) withClient(fn func(*ipc.Client) error) error {
	client, err := c.dialClient()
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(client)
}

func (c *commandContext) dialClient() (*ipc.Client, error) {
	socket := c.socketPath()
	client, err := ipc.Dial(socket)
	if err != nil {
		return nil, wrapDialError(err, socket)
	}
	return client, nil
}

func wrapDialError(err error, socket string) error {
	switch {
	case errors.Is(err, syscall.ENOENT) || os.IsNotExist(err):
		return fmt.Errorf("connect to sandbox: socket %s not found; start it with `equalmedia start`", socket)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to sandbox: socket %s refused the connection; verify the sandbox is running", socket)
	default:
		return fmt.Errorf("connect to sandbox: %w", err)
	}
}

func defaultSocketPath() string {
	cfg, _, _, err := config.Load("")
	if err == nil {
		return cfg.Paths.SocketPath
	}
	return filepath.Join(os.TempDir(), "equalmedia.sock")
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
