package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is the API root used when neither the config file nor the
// command line names one.
const DefaultAPIURL = "http://localhost:8000/api"

// Config is the chargectl client configuration, read from
// ~/.chargectl/config.yaml when present. Command-line flags override file
// values.
type Config struct {
	APIURL  string `yaml:"api_url"`
	DataDir string `yaml:"data_dir"`
}

// Load reads the config file at path. An empty path means the default
// location; a missing file yields the defaults, not an error.
func Load(path string) (Config, error) {
	cfg := Config{APIURL: DefaultAPIURL}

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".chargectl", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}

	return cfg, nil
}
