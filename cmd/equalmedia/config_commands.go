package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"equalmedia/internal/config"
	"equalmedia/internal/ipc"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigSetCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set google.api_key (or export GOOGLE_CLOUD_API_KEY) before generating captions or narration.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if _, err := os.Stat(ctx.configPath); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Google API key: %s\n", yesNo(cfg.Credentials().GoogleCloudAPIKey != ""))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigSetCommand(ctx *commandContext) *cobra.Command {
	var apiKey string
	var projectID string
	var save bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update Google Cloud credentials in the running sandbox",
		Long: "Merges the given credentials into the running sandbox. Flags that are not\n" +
			"passed leave the current setting unchanged; an explicit empty value such as\n" +
			"--api-key \"\" clears it. With --save the values are also written to the\n" +
			"config file, which a running sandbox reloads automatically.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var partial config.APIConfigUpdate
			if cmd.Flags().Changed("api-key") {
				value := strings.TrimSpace(apiKey)
				partial.GoogleCloudAPIKey = &value
			}
			if cmd.Flags().Changed("project") {
				value := strings.TrimSpace(projectID)
				partial.GoogleCloudProjectID = &value
			}
			if partial.IsEmpty() {
				return errors.New("nothing to set: pass --api-key and/or --project")
			}
			out := cmd.OutOrStdout()

			if save {
				if err := config.SaveCredentials(ctx.configPath, partial); err != nil {
					return err
				}
				fmt.Fprintf(out, "Saved credentials to %s\n", ctx.configPath)
			}

			var merged config.APIConfig
			err := ctx.withClient(func(client *ipc.Client) error {
				var callErr error
				merged, callErr = client.SetAPIConfig(cmd.Context(), partial)
				return callErr
			})
			if err != nil {
				if save {
					fmt.Fprintln(out, "Sandbox not reachable; it will read the saved file on next start")
					return nil
				}
				return err
			}
			return writeOutput(cmd, ctx, merged, func() error {
				fmt.Fprintf(out, "Sandbox credentials updated (api key %s", orDash(merged.GoogleCloudAPIKey))
				if merged.GoogleCloudProjectID != "" {
					fmt.Fprintf(out, ", project %s", merged.GoogleCloudProjectID)
				}
				fmt.Fprintln(out, ")")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "Google Cloud API key")
	cmd.Flags().StringVar(&projectID, "project", "", "Google Cloud project ID")
	cmd.Flags().BoolVar(&save, "save", false, "Also write the credentials to the config file")
	return cmd
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
