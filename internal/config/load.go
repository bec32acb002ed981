package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/nelsonlabs/morningreport/internal/logging"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "MORNINGREPORT_CONFIG"

// DefaultPath is where the config file is looked up when neither a
// flag nor the environment names one.
const DefaultPath = "./config.toml"

// ResolvePath picks the config file path: explicit argument, then the
// environment variable, then the default.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	return DefaultPath
}

// Load reads the config file at path. A missing file is not an error:
// the service runs on defaults plus environment API keys, which is the
// common deployment.
func Load(path string) (*Config, error) {
	log := logging.WithComponent("config")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Info().Str("path", path).Msg("no config file, using defaults")
		return Default(), nil
	} else if err != nil {
		return nil, fmt.Errorf("stat config file %s: %w", path, err)
	}

	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	config.applyDefaults()

	log.Info().Str("path", path).Msg("configuration loaded")
	return &config, nil
}
