package config

import (
	stdjson "encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/fleetcost/trucktco/core/scenario"
)

// LoadScenario reads a scenario definition from a YAML or JSON file and
// validates it. Price tables are plain year-to-value maps in the file.
func LoadScenario(path string) (scenario.Scenario, error) {
	k := koanf.New(".")
	parser, err := parserFor(path)
	if err != nil {
		return scenario.Scenario{}, err
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return scenario.Scenario{}, fmt.Errorf("read scenario %s: %w", path, err)
	}

	// Round-trip through JSON so the scenario's own decoding rules apply,
	// price tables included.
	raw, err := stdjson.Marshal(k.Raw())
	if err != nil {
		return scenario.Scenario{}, err
	}
	var s scenario.Scenario
	if err := stdjson.Unmarshal(raw, &s); err != nil {
		return scenario.Scenario{}, fmt.Errorf("decode scenario %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return scenario.Scenario{}, err
	}
	return s, nil
}

// SaveScenario writes the scenario to a YAML or JSON file. A scenario saved
// and loaded again is value-equal to the original.
func SaveScenario(path string, s scenario.Scenario) error {
	data, err := stdjson.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		// data already holds the JSON form.
	case ".yaml", ".yml":
		var raw map[string]any
		if err := stdjson.Unmarshal(data, &raw); err != nil {
			return err
		}
		if data, err = yaml.Parser().Marshal(raw); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported scenario format: %s", filepath.Ext(path))
	}
	return os.WriteFile(path, data, 0o644)
}
