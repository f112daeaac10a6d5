// Package config loads settings for the accountctl client: built-in
// defaults, then an optional JSON file, then GOPHAUTH_CLIENT_* environment
// variables. Command-line flags are applied by the cli package on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

const EnvPrefix = "GOPHAUTH_CLIENT_"

// Config holds runtime settings for accountctl.
//
// SessionFile is where the session handle returned by login is kept
// between invocations. CallTimeout bounds every RPC.
type Config struct {
	ServerEndpointAddr string        `env:"SERVER_ADDR"`
	SessionFile        string        `env:"SESSION_FILE"`
	CallTimeout        time.Duration `env:"CALL_TIMEOUT"`
}

// JsonConfig is the on-disk form. Empty fields keep the current value.
type JsonConfig struct {
	ServerEndpointAddr string          `json:"server_endpoint_addr"`
	SessionFile        string          `json:"session_file"`
	CallTimeout        *timex.Duration `json:"call_timeout"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.SessionFile = defaultSessionFile()
	c.CallTimeout = 10 * time.Second
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".gophauth-session"
	}
	return filepath.Join(dir, "gophauth", "session")
}

// LoadConfig applies defaults, the JSON file at path (skipped when empty)
// and the environment, in that order.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if path != "" {
		if err := parseJson(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func parseJson(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.SessionFile != "" {
		cfg.SessionFile = jc.SessionFile
	}
	if jc.CallTimeout != nil {
		cfg.CallTimeout = jc.CallTimeout.Duration
	}
	return nil
}
