package ranges

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/lox/poker-equity/poker"
)

// Format identifies the encoding of a range data file
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported range file extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// Load reads a range table from a JSON or YAML file mapping starting-hand
// notation to win rate, e.g. {"AA": 0.85, "AKs": 0.67, ...}.
func Load(path string) (*Table, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read range file: %w", err)
	}

	t, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("range file %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes range data in the given format
func Parse(data []byte, format Format) (*Table, error) {
	var raw map[string]float64
	switch format {
	case FormatJSON:
		if err := jsoniter.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
		}
	case FormatYAML:
		decoded, err := decodeYAML(data)
		if err != nil {
			return nil, err
		}
		raw = decoded
	default:
		return nil, fmt.Errorf("unknown range format %q", format)
	}
	return FromStrings(raw)
}

// decodeYAML walks the top-level mapping directly so that keys such as 22
// or 99 stay strings instead of resolving to integers.
func decodeYAML(data []byte) (map[string]float64, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}
	if len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrMalformedTable)
	}

	mapping := doc.Content[0]
	raw := make(map[string]float64, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i], mapping.Content[i+1]
		var rate float64
		if err := value.Decode(&rate); err != nil {
			return nil, fmt.Errorf("%w: %s (line %d): %v", ErrMalformedTable, key.Value, value.Line, err)
		}
		raw[key.Value] = rate
	}
	return raw, nil
}

// FromStrings builds a table from notation strings
func FromStrings(raw map[string]float64) (*Table, error) {
	rates := make(map[poker.StartingHand]float64, len(raw))
	for notation, rate := range raw {
		h, err := poker.ParseStartingHand(notation)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
		}
		if _, dup := rates[h]; dup {
			return nil, fmt.Errorf("%w: %s listed more than once", ErrMalformedTable, h)
		}
		rates[h] = rate
	}
	return NewTable(rates)
}
