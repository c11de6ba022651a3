package metadata

import (
	"fmt"

	json "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding of the model.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// MarshalIndent encodes the metadata as indented JSON with sorted map keys.
func (m *Metadata) MarshalIndent() ([]byte, error) {
	return json.Marshal(m, json.Deterministic(true), jsontext.WithIndent("  "))
}

// Encode renders the metadata in the given format. YAML keeps the JSON field
// order and names.
func (m *Metadata) Encode(format Format) ([]byte, error) {
	data, err := m.MarshalIndent()
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON, "":
		return append(data, '\n'), nil
	case FormatYAML:
		return JSONToYAML(data)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// JSONToYAML re-encodes a JSON document as block-style YAML.
func JSONToYAML(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode json as yaml: %w", err)
	}
	blockStyle(&doc)
	return yaml.Marshal(&doc)
}

func blockStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle
	if n.Kind == yaml.ScalarNode && n.Style&yaml.DoubleQuotedStyle != 0 && n.Tag == "!!str" {
		n.Style &^= yaml.DoubleQuotedStyle
	}
	for _, c := range n.Content {
		blockStyle(c)
	}
}
