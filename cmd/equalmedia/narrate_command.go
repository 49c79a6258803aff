package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"equalmedia/internal/language"
	"equalmedia/internal/narration"
	"equalmedia/internal/panels"
)

type narrateOutput struct {
	panels.NarrationResult
	SavedTo string `json:"savedTo,omitempty"`
}

func newNarrateCommand(ctx *commandContext) *cobra.Command {
	var fromDocument bool
	var languageCode string
	var voiceName string
	var outPath string
	var noInsert bool
	var noSave bool

	cmd := &cobra.Command{
		Use:   "narrate [text]",
		Short: "Synthesize narration and add its indicator to the document",
		Long: "Sends the text to Google Text-to-Speech, saves the MP3 under paths.narration_dir\n" +
			"(or --out) and inserts a narration indicator into the document.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var text string
			if len(args) == 1 {
				text = args[0]
			}

			var doc panels.DocumentAPI
			if !noInsert || fromDocument {
				client, err := ctx.dialClient()
				if err != nil {
					return err
				}
				defer client.Close()
				doc = client
			}
			speech, err := ctx.speechClient(cmd)
			if err != nil {
				return err
			}

			panel := panels.NewNarrationPanel(speech, doc, ctx.logger(cmd))
			result, err := panel.Generate(cmd.Context(), panels.NarrationRequest{
				Text:         text,
				FromDocument: fromDocument,
				LanguageCode: languageCode,
				VoiceName:    voiceName,
				SkipInsert:   noInsert,
			})
			if err != nil {
				return err
			}

			output := narrateOutput{NarrationResult: result}
			if !noSave {
				saved, err := narration.Save(result.Narration, cfg.Paths.NarrationDir, outPath, time.Now())
				if err != nil {
					return err
				}
				output.SavedTo = saved
			}
			output.Narration = result.Narration.WithoutAudio()

			return writeOutput(cmd, ctx, output, func() error {
				out := cmd.OutOrStdout()
				n := result.Narration
				rows := [][]string{
					{"Language", fmt.Sprintf("%s (%s)", n.LanguageCode, language.DisplayName(n.LanguageCode))},
					{"Duration", fmt.Sprintf("%.1fs (estimated)", n.Duration)},
					{"Size", n.Size()},
				}
				if output.SavedTo != "" {
					rows = append(rows, []string{"Saved to", output.SavedTo})
				}
				fmt.Fprint(out, renderTable([]string{"Narration", ""}, rows, nil))
				printSummary(out, "narration items", result.Summary)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&fromDocument, "from-document", false, "Narrate the text extracted from the document")
	cmd.Flags().StringVarP(&languageCode, "language", "l", "", "Synthesis language (BCP 47); defaults to google.language_code")
	cmd.Flags().StringVar(&voiceName, "voice", "", "Voice name; defaults to google.voice_name")
	cmd.Flags().StringVar(&outPath, "out", "", "Write the MP3 to this path instead of paths.narration_dir")
	cmd.Flags().BoolVar(&noInsert, "no-insert", false, "Do not add the narration indicator to the document")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not write the MP3 to disk")
	return cmd
}
