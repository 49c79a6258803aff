package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"equalmedia/internal/daemon"
	"equalmedia/internal/daemonctl"
	"equalmedia/internal/daemonrun"
	"equalmedia/internal/ipc"
	"equalmedia/internal/preflight"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the document sandbox in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:   logLevel,
				ConfigPath: ctx.configPath,
				Ready: func(status daemon.Status) {
					fmt.Fprintf(out, "Sandbox listening on %s\n", status.SocketPath)
					if status.APIAddress != "" {
						fmt.Fprintf(out, "Panel API on http://%s\n", status.APIAddress)
					}
				},
			})
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
	return cmd
}

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the sandbox in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}
			result, err := daemonctl.EnsureStarted(cmd.Context(), ctx.socketPath(), exe, daemonLaunchOptions(ctx), 10*time.Second)
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			switch result.State {
			case daemonctl.StartStateStarted:
				fmt.Fprintf(stdout, "Sandbox started (pid %d)\n", result.PID)
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintf(stdout, "Sandbox already running (pid %d)\n", result.PID)
			}
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the background sandbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			pid, err := daemonctl.Stop(cmd.Context(), ctx.socketPath(), 5*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Sandbox is not running")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Sandbox stopped (pid %d)\n", pid)
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show sandbox and credential status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			report := statusReport{
				Sandbox: preflight.CheckSandbox(cmd.Context(), ctx.socketPath()),
				APIKey:  preflight.CheckAPIKey(cfg.Credentials()),
			}
			if report.Sandbox.Passed {
				_ = ctx.withClient(func(client *ipc.Client) error {
					status, err := client.Status(cmd.Context())
					if err == nil {
						report.Daemon = status
					}
					return err
				})
			}
			return writeOutput(cmd, ctx, report, func() error {
				renderStatus(cmd, report)
				return nil
			})
		},
	}

	return []*cobra.Command{startCmd, stopCmd, statusCmd}
}

type statusReport struct {
	Sandbox preflight.Result    `json:"sandbox"`
	APIKey  preflight.Result    `json:"api_key"`
	Daemon  *ipc.StatusResponse `json:"daemon,omitempty"`
}

func renderStatus(cmd *cobra.Command, report statusReport) {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	for _, line := range renderSectionHeader("System Status", colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout, checkLine(report.Sandbox, statusWarn, colorize))
	fmt.Fprintln(stdout, checkLine(report.APIKey, statusError, colorize))

	status := report.Daemon
	if status == nil {
		return
	}
	sandboxKey := preflight.Result{Name: "Sandbox API key", Passed: status.APIKeyConfigured, Detail: "configured"}
	if !status.APIKeyConfigured {
		sandboxKey.Detail = "missing (use `equalmedia config set --api-key`)"
	}
	fmt.Fprintln(stdout, checkLine(sandboxKey, statusWarn, colorize))
	api := "disabled"
	if status.APIAddress != "" {
		api = "http://" + status.APIAddress
	}
	fmt.Fprintln(stdout, renderStatusLine("Panel API", statusInfo, api, colorize))
	if !status.StartedAt.IsZero() {
		fmt.Fprintln(stdout, renderStatusLine("Uptime", statusInfo, "started "+humanize.Time(status.StartedAt), colorize))
	}
	if len(status.Generating) > 0 {
		fmt.Fprintln(stdout, renderStatusLine("Generating", statusInfo, strings.Join(status.Generating, ", "), colorize))
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Document", colorize) {
		fmt.Fprintln(stdout, line)
	}
	rows := [][]string{
		{"Elements", strconv.Itoa(status.Elements)},
		{"Captions", strconv.Itoa(status.Captions)},
		{"Narration", yesNo(status.HasNarration)},
		{"Avatar", yesNo(status.HasAvatar)},
	}
	fmt.Fprint(stdout, renderTable([]string{"Item", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
}

func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func daemonLaunchOptions(ctx *commandContext) daemonctl.LaunchOptions {
	var opts daemonctl.LaunchOptions
	if ctx.socketFlag != nil {
		if socket := strings.TrimSpace(*ctx.socketFlag); socket != "" {
			opts.SocketPath = socket
		}
	}
	if ctx.configFlag != nil {
		if config := strings.TrimSpace(*ctx.configFlag); config != "" {
			opts.ConfigPath = config
		}
	}
	return opts
}
