package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"equalmedia/internal/ipc"
)

func newDocumentCommand(ctx *commandContext) *cobra.Command {
	docCmd := &cobra.Command{
		Use:   "document",
		Short: "Inspect and edit the sandbox document",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "List the elements in the document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				snap, err := client.Document(cmd.Context())
				if err != nil {
					return err
				}
				return writeOutput(cmd, ctx, snap, func() error {
					out := cmd.OutOrStdout()
					if len(snap.Elements) == 0 {
						fmt.Fprintln(out, "Document is empty")
						return nil
					}
					fmt.Fprint(out, renderTable(
						[]string{"ID", "Kind", "Position", "Size", "Fill", "Text"},
						elementRows(snap.Elements),
						[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
					))
					return nil
				})
			})
		},
	}

	extractCmd := &cobra.Command{
		Use:   "extract-text",
		Short: "Print the text the document exposes to the panels",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				texts, err := client.ExtractTextFromDocument(cmd.Context())
				if err != nil {
					return err
				}
				payload := map[string][]string{"texts": texts}
				return writeOutput(cmd, ctx, payload, func() error {
					out := cmd.OutOrStdout()
					if len(texts) == 0 {
						fmt.Fprintln(out, "No text found in document")
						return nil
					}
					fmt.Fprintln(out, strings.Join(texts, "\n"))
					return nil
				})
			})
		},
	}

	rectCmd := &cobra.Command{
		Use:   "rectangle",
		Short: "Draw the demo rectangle",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				summary, err := client.CreateRectangle(cmd.Context())
				if err != nil {
					return err
				}
				return writeOutput(cmd, ctx, summary, func() error {
					printSummary(cmd.OutOrStdout(), "rectangle", &summary)
					return nil
				})
			})
		},
	}

	docCmd.AddCommand(showCmd, extractCmd, rectCmd)
	return docCmd
}
