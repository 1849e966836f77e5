package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// writeOutput encodes v as json or yaml, or calls text for the plain format.
func writeOutput(w io.Writer, format string, v any, text func(w io.Writer) error) error {
	switch format {
	case outputJSON:
		b, err := json.MarshalIndent(v, "", "\t")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}

		if _, err := fmt.Fprintln(w, string(b)); err != nil {
			return fmt.Errorf("write: %w", err)
		}

		return nil
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		if err := enc.Close(); err != nil {
			return fmt.Errorf("close yaml encoder: %w", err)
		}

		return nil
	default:
		return text(w)
	}
}
