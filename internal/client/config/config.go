package config

import (
	"os"

	"github.com/skycast-dev/skycast-be/internal/client/session"
)

// Config holds runtime settings for the Skycast CLI.
//
// Fields:
//   - ServerURL: base URL of the backend, without a trailing slash.
//   - SessionPath: location of the cached session file.
type Config struct {
	ServerURL   string
	SessionPath string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	if path, err := session.DefaultPath(); err == nil {
		c.SessionPath = path
	} else {
		c.SessionPath = "./skycast-session.json"
	}
}

// LoadConfig constructs a Config from defaults overlaid with environment
// variables (SKYCAST_SERVER, SKYCAST_SESSION_FILE).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	if v, ok := os.LookupEnv("SKYCAST_SERVER"); ok {
		cfg.ServerURL = v
	}
	if v, ok := os.LookupEnv("SKYCAST_SESSION_FILE"); ok {
		cfg.SessionPath = v
	}
	return cfg
}
