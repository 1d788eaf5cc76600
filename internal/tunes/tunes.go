// Package tunes holds the stock example tunes bundled with the binary.
package tunes

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed tunes.yaml
var raw []byte

// Tune is one bundled example.
type Tune struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

// All returns the bundled tunes in their fixed order.
func All() ([]Tune, error) {
	return Parse(raw)
}

// Parse decodes a tune table.
func Parse(data []byte) ([]Tune, error) {
	var tunes []Tune
	if err := yaml.Unmarshal(data, &tunes); err != nil {
		return nil, fmt.Errorf("decode tunes: %w", err)
	}
	for i, t := range tunes {
		if t.Name == "" {
			return nil, fmt.Errorf("tune %d has no name", i)
		}
	}
	return tunes, nil
}
