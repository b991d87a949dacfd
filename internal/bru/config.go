package bru

import (
	"encoding/json"
	"fmt"
)

// Config is the content of the collection's bruno.json.
type Config struct {
	Version string   `json:"version"`
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Ignore  []string `json:"ignore"`
}

func NewConfig(name string) Config {
	return Config{
		Version: "1",
		Name:    name,
		Type:    "collection",
		Ignore:  []string{"node_modules", ".git"},
	}
}

func MarshalConfig(cfg Config) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", ConfigFile, err)
	}
	return append(data, '\n'), nil
}

func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigFile, err)
	}
	return &cfg, nil
}

// Ignores reports whether a directory called name is excluded from the collection.
func (c *Config) Ignores(name string) bool {
	for _, ig := range c.Ignore {
		if ig == name {
			return true
		}
	}
	return false
}
