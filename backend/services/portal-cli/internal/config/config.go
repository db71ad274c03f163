package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	libconfig "docportal/backend/libs/config"
	"docportal/backend/libs/filtertabs"
)

// Config holds portal-cli settings loaded from YAML/env.
type Config struct {
	Server struct {
		BaseURL   string        `yaml:"baseUrl" env:"PORTAL_BASE_URL"`
		Timeout   time.Duration `yaml:"timeout" env:"PORTAL_HTTP_TIMEOUT"`
		Retries   uint64        `yaml:"retries" env:"PORTAL_HTTP_RETRIES"`
		RetryWait time.Duration `yaml:"retryWait" env:"PORTAL_HTTP_RETRY_WAIT"`
	} `yaml:"server"`
	Session struct {
		File string `yaml:"file" env:"PORTAL_SESSION_FILE"`
	} `yaml:"session"`
	Filter struct {
		Tabs   []string `yaml:"tabs" env:"PORTAL_FILTER_TABS"`
		Active string   `yaml:"active" env:"PORTAL_FILTER_ACTIVE"`
	} `yaml:"filter"`
}

// Load reads configuration and fills in defaults.
func Load() (*Config, error) {
	cfg := Default()
	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.BaseURL = "http://localhost:8080"
	cfg.Server.Timeout = 10 * time.Second
	cfg.Server.RetryWait = 200 * time.Millisecond
	cfg.Session.File = defaultSessionFile()
	cfg.Filter.Tabs = append([]string(nil), filtertabs.DefaultTabs...)
	return cfg
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".docportal", "session.yaml")
	}
	return filepath.Join(home, ".docportal", "session.yaml")
}

func (c *Config) validate() error {
	c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
	parsed, err := url.Parse(c.Server.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return errors.New("config: PORTAL_BASE_URL must be an absolute URL")
	}
	if strings.TrimSpace(c.Session.File) == "" {
		return errors.New("config: session file is required")
	}
	if len(c.Filter.Tabs) == 0 {
		c.Filter.Tabs = append([]string(nil), filtertabs.DefaultTabs...)
	}
	if c.Filter.Active == "" {
		c.Filter.Active = c.Filter.Tabs[0]
	}
	return nil
}
