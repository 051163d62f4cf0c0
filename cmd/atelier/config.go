// Config loading for the atelier CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	// Config keys.
	cfgKeyRoot = "root"

	// EnvConfigDir overrides the configuration directory.
	envConfigDir = "ATELIER_CONFIG_DIR"
)

// loadConfig reads config.yaml from the resolved config directory using
// Viper. A missing directory or config.yaml is not an error; every
// setting has a flag or environment fallback.
func loadConfig(flagDir string) (*viper.Viper, error) {
	dir, err := resolveConfigDir(flagDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		if os.IsNotExist(err) {
			return v, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return v, nil
}

// resolveConfigDir follows the precedence chain:
// --config-dir flag > ATELIER_CONFIG_DIR env > platform config dir.
func resolveConfigDir(flagDir string) (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}
	if env := os.Getenv(envConfigDir); env != "" {
		return env, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "atelier"), nil
}
