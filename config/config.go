// Package config loads the application configuration and scenario files.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/fleetcost/trucktco/core/metrics"
	"github.com/fleetcost/trucktco/infra/mqtt"
)

type Config struct {
	MQTT        mqtt.Config       `json:"mqtt"`
	Metrics     metrics.Config    `json:"metrics"`
	Server      ServerConfig      `json:"server"`
	Cache       CacheConfig       `json:"cache"`
	Sensitivity SensitivityConfig `json:"sensitivity"`
}

// ServerConfig defines the HTTP API listener.
type ServerConfig struct {
	Addr string `json:"addr"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// CacheConfig bounds the result memoization layer.
type CacheConfig struct {
	Enabled    bool `json:"enabled"`
	MaxEntries int  `json:"max_entries"`
}

// SetDefaults applies sane defaults.
func (c *CacheConfig) SetDefaults() {
	if c.MaxEntries <= 0 {
		c.MaxEntries = 64
	}
}

// SensitivityConfig sets the default sweep.
type SensitivityConfig struct {
	Variation  float64  `json:"variation"`
	Parameters []string `json:"parameters"`
}

// SetDefaults applies sane defaults.
func (c *SensitivityConfig) SetDefaults() {
	if c.Variation == 0 {
		c.Variation = 0.20
	}
}

// Validate checks mandatory fields.
func (c SensitivityConfig) Validate() error {
	if c.Variation <= 0 || c.Variation >= 1 {
		return fmt.Errorf("sensitivity variation must be in (0,1), got %v", c.Variation)
	}
	return nil
}

// Load reads the application configuration from path, applying TCO_
// environment overrides (double underscore separates nesting levels).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides. The double underscore is kept so the
	// provider can unflatten it into nesting levels.
	if err := k.Load(env.Provider("TCO_", "__", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "tco_")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Sensitivity.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied, used when no
// config file is supplied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	c.MQTT.SetDefaults()
	c.Metrics.SetDefaults()
	c.Server.SetDefaults()
	c.Cache.SetDefaults()
	c.Sensitivity.SetDefaults()
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}
}
