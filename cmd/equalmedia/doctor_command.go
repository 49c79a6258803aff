package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"equalmedia/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check credentials, directories and listeners",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			err = writeOutput(cmd, ctx, results, func() error {
				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)
				for _, line := range renderSectionHeader("Preflight", colorize) {
					fmt.Fprintln(stdout, line)
				}
				for _, r := range results {
					fmt.Fprintln(stdout, checkLine(r, statusError, colorize))
				}
				return nil
			})
			if err != nil {
				return err
			}
			if preflight.Failed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}
