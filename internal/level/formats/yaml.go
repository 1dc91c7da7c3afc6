// Package formats provides pluggable level file format parsers.
package formats

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLLevel represents the YAML structure for a level file.
type YAMLLevel struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	CellSize int               `yaml:"cell_size,omitempty"`
	Layout   []string          `yaml:"layout"`
	Links    []YAMLLink        `yaml:"links,omitempty"`
	Spawns   []YAMLSpawn       `yaml:"spawns,omitempty"`
	Dialog   []string          `yaml:"dialog,omitempty"`
	Metadata map[string]string `yaml:"metadata,omitempty"`
}

// YAMLCell is a cell coordinate.
type YAMLCell struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// YAMLLink represents an exit or jump link.
type YAMLLink struct {
	Kind   string    `yaml:"kind"` // "exit" or "jump"
	At     YAMLCell  `yaml:"at"`
	Target string    `yaml:"target,omitempty"`
	To     *YAMLCell `yaml:"to,omitempty"`
}

// YAMLSpawn represents an object placed when the level starts.
type YAMLSpawn struct {
	Kind string            `yaml:"kind"`
	At   YAMLCell          `yaml:"at"`
	Args map[string]string `yaml:"args,omitempty"`
}

// DefaultCellSize is used when a level file does not set cell_size.
const DefaultCellSize = 1

// ParseYAML parses a YAML level file.
func ParseYAML(data []byte) (YAMLLevel, error) {
	var yl YAMLLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return YAMLLevel{}, fmt.Errorf("yaml unmarshal: %w", err)
	}

	if yl.CellSize <= 0 {
		yl.CellSize = DefaultCellSize
	}

	for i, link := range yl.Links {
		switch link.Kind {
		case "exit":
			if link.Target == "" {
				return YAMLLevel{}, fmt.Errorf("link %d: exit without target", i)
			}
		case "jump":
			if link.To == nil {
				return YAMLLevel{}, fmt.Errorf("link %d: jump without destination", i)
			}
		default:
			return YAMLLevel{}, fmt.Errorf("link %d: unknown kind %q", i, link.Kind)
		}
	}

	return yl, nil
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml"}
}
