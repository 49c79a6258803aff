package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case "", formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported --format %q (want table, json, or yaml)", format)
	}
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeYAML encodes v as YAML. Values are round-tripped through JSON first so
// field names match the json tags used everywhere else.
func writeYAML(cmd *cobra.Command, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

// writeOutput renders v in the selected structured format, or calls human
// for the default table output.
func writeOutput(cmd *cobra.Command, ctx *commandContext, v any, human func() error) error {
	switch ctx.format() {
	case formatJSON:
		return writeJSON(cmd, v)
	case formatYAML:
		return writeYAML(cmd, v)
	default:
		return human()
	}
}
