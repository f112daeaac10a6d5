package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every env tag of Config.
const EnvPrefix = "GOPHAUTH_"

// parseEnv overlays Config with GOPHAUTH_* variables. Unset variables leave
// the current value untouched. Malformed values panic, as the other loaders
// do.
func parseEnv(config *Config) {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(fmt.Errorf("parse env: %w", err))
	}
}

// LoadFromEnv builds a Config from defaults and GOPHAUTH_* variables only.
// Tools that own the command line use it instead of LoadConfig.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
