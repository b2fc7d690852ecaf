package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variable overrides, e.g. TRANSITBOARD_BUS_URL
const EnvPrefix = "TRANSITBOARD"

// Prepare points v at the config file (explicit path, ./transitboard.yaml or
// ~/.transitboard/config.yaml), registers defaults and environment overrides.
func Prepare(v *viper.Viper, cfgFile string) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigType("yaml")
		v.SetConfigName("transitboard")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".transitboard"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the config file if one exists, applies the routes file and validates the result
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Printf("No config file found, using defaults")
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if len(cfg.Disruption.Routes) == 0 && cfg.Disruption.RoutesFile != "" {
		routes, err := LoadRoutesCSV(cfg.Disruption.RoutesFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Printf("Warning: routes file %s not found, no lines will be monitored", cfg.Disruption.RoutesFile)
		case err != nil:
			return nil, err
		default:
			cfg.Disruption.Routes = routes
		}
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags of the whole configuration
func Validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
