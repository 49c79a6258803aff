package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"equalmedia/internal/captions"
	"equalmedia/internal/panels"
	"equalmedia/internal/services/googlecloud"
)

var audioMIMETypes = map[string]string{
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".webm": "audio/webm",
	".mp4":  "audio/mp4",
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
}

func newCaptionsCommand(ctx *commandContext) *cobra.Command {
	var languageCode string
	var mimeType string
	var importSRT bool
	var writeSRT string
	var noInsert bool

	cmd := &cobra.Command{
		Use:   "captions <audio-file>",
		Short: "Transcribe audio into captions and add them to the document",
		Long: "Sends the audio file to Google Speech-to-Text and inserts one caption line per\n" +
			"recognized result. With --srt the file is read as SubRip subtitles instead and\n" +
			"no speech request is made.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			var doc panels.DocumentAPI
			if !noInsert {
				client, err := ctx.dialClient()
				if err != nil {
					return err
				}
				defer client.Close()
				doc = client
			}

			var result panels.CaptionsResult
			if importSRT {
				file, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open subtitles: %w", err)
				}
				caps, err := captions.ReadSRT(file)
				file.Close()
				if err != nil {
					return fmt.Errorf("read subtitles: %w", err)
				}
				if noInsert {
					result = panels.CaptionsResult{Captions: caps}
				} else {
					result, err = panels.NewCaptionsPanel(nil, doc, ctx.logger(cmd)).Insert(cmd.Context(), caps)
					if err != nil {
						return err
					}
				}
			} else {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read audio: %w", err)
				}
				speech, err := ctx.speechClient(cmd)
				if err != nil {
					return err
				}
				panel := panels.NewCaptionsPanel(speech, doc, ctx.logger(cmd))
				result, err = panel.Generate(cmd.Context(), panels.CaptionsRequest{
					Audio:        googlecloud.Audio{Data: data, MIMEType: resolveMIMEType(path, mimeType)},
					LanguageCode: languageCode,
					SkipInsert:   noInsert,
				})
				if err != nil {
					return err
				}
			}

			if writeSRT != "" {
				if err := saveSRT(writeSRT, result.Captions); err != nil {
					return err
				}
			}

			return writeOutput(cmd, ctx, result, func() error {
				out := cmd.OutOrStdout()
				if len(result.Captions) == 0 {
					fmt.Fprintln(out, "No speech recognized")
					return nil
				}
				rows := make([][]string, 0, len(result.Captions))
				for _, c := range result.Captions {
					rows = append(rows, []string{
						captions.FormatClock(c.StartTime),
						captions.FormatClock(c.EndTime),
						fmt.Sprintf("%.1fs", c.Duration()),
						c.Text,
					})
				}
				fmt.Fprint(out, renderTable([]string{"Start", "End", "Length", "Text"}, rows, []columnAlignment{alignRight, alignRight, alignRight, alignLeft}))
				start, end := captions.Span(result.Captions)
				fmt.Fprintf(out, "Covers %s-%s\n", captions.FormatClock(start), captions.FormatClock(end))
				printSummary(out, "captions", result.Summary)
				if writeSRT != "" {
					fmt.Fprintf(out, "Wrote %s\n", writeSRT)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&languageCode, "language", "l", "", "Recognition language (BCP 47, e.g. en-US); defaults to google.language_code")
	cmd.Flags().StringVar(&mimeType, "mime", "", "Audio MIME type; detected from the file extension when empty")
	cmd.Flags().BoolVar(&importSRT, "srt", false, "Read the file as SubRip subtitles instead of audio")
	cmd.Flags().StringVar(&writeSRT, "write-srt", "", "Also write the captions to this SubRip file")
	cmd.Flags().BoolVar(&noInsert, "no-insert", false, "Print the captions without adding them to the document")
	return cmd
}

func resolveMIMEType(path, override string) string {
	if override = strings.TrimSpace(override); override != "" {
		return override
	}
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := audioMIMETypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "audio/wav"
}

func saveSRT(path string, caps []captions.Caption) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create subtitles: %w", err)
	}
	if err := captions.WriteSRT(file, caps); err != nil {
		file.Close()
		return fmt.Errorf("write subtitles: %w", err)
	}
	return file.Close()
}
