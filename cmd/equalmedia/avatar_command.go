package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"equalmedia/internal/avatar"
	"equalmedia/internal/ipc"
	"equalmedia/internal/panels"
)

func newAvatarCommand(ctx *commandContext) *cobra.Command {
	var fromDocument bool
	var x, y, width, height float64

	cmd := &cobra.Command{
		Use:   "avatar [text]",
		Short: "Add a sign-language avatar placeholder to the document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) == 1 {
				text = args[0]
			}
			cfg := panels.DefaultAvatarConfig()
			flags := cmd.Flags()
			if flags.Changed("x") || flags.Changed("y") {
				pos := *cfg.Position
				if flags.Changed("x") {
					pos.X = x
				}
				if flags.Changed("y") {
					pos.Y = y
				}
				cfg.Position = &pos
			}
			if flags.Changed("width") || flags.Changed("height") {
				size := *cfg.Size
				if flags.Changed("width") {
					size.Width = width
				}
				if flags.Changed("height") {
					size.Height = height
				}
				cfg.Size = &size
			}

			return ctx.withClient(func(client *ipc.Client) error {
				panel := panels.NewAvatarPanel(client, ctx.logger(cmd))
				result, err := panel.Add(cmd.Context(), panels.AvatarRequest{
					Text:         text,
					FromDocument: fromDocument,
					Config:       cfg,
				})
				if err != nil {
					return err
				}
				return writeOutput(cmd, ctx, result, func() error {
					out := cmd.OutOrStdout()
					fmt.Fprintf(out, "%s for %q at %g,%g (%gx%g)\n", avatar.PlaceholderLabel, result.Avatar.SourceText,
						cfg.Position.X, cfg.Position.Y, cfg.Size.Width, cfg.Size.Height)
					printSummary(out, "avatar items", &result.Summary)
					return nil
				})
			})
		},
	}

	defaults := panels.DefaultAvatarConfig()
	cmd.Flags().BoolVar(&fromDocument, "from-document", false, "Use the text extracted from the document")
	cmd.Flags().Float64Var(&x, "x", defaults.Position.X, "Left edge of the placeholder")
	cmd.Flags().Float64Var(&y, "y", defaults.Position.Y, "Top edge of the placeholder")
	cmd.Flags().Float64Var(&width, "width", defaults.Size.Width, "Placeholder width")
	cmd.Flags().Float64Var(&height, "height", defaults.Size.Height, "Placeholder height")
	return cmd
}
