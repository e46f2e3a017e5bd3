package render

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

type Renderer[T any] interface {
	Render(result T) error
}

// Format selects how a renderer writes its result
type Format int

const (
	FormatText Format = iota
	FormatJSON
	FormatYAML
)

// writeJSON writes v as indented JSON
func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeYAML writes v as a YAML document
func writeYAML(out io.Writer, v any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// writeStructured writes v in a machine-readable format. It reports false
// for FormatText so the caller renders the human view.
func writeStructured(out io.Writer, format Format, v any) (bool, error) {
	switch format {
	case FormatJSON:
		return true, writeJSON(out, v)
	case FormatYAML:
		return true, writeYAML(out, v)
	default:
		return false, nil
	}
}
