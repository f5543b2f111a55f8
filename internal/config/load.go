package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultPath is where a deployment installs the config file.
const DefaultPath = "/etc/dcc/config.toml"

// Load reads, parses and validates the configuration file at path.
// Any failure here is fatal to the process: the container never serves
// requests with a partial or defaulted mapping table.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parsing config file %s as TOML: %w", path, err)
	}

	cfg, err := fromFile(raw)
	if err != nil {
		return nil, fmt.Errorf("validating config file %s: %w", path, err)
	}

	return cfg, nil
}
