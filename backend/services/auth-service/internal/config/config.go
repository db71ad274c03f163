package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "docportal/backend/libs/config"
)

// Config represents service configuration loaded from YAML/env.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"AUTH_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN            string        `yaml:"dsn" env:"AUTH_POSTGRES_DSN"`
		ConnectTimeout time.Duration `yaml:"connectTimeout" env:"AUTH_POSTGRES_CONNECT_TIMEOUT"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"AUTH_REDIS_ADDR"`
		Password string `yaml:"password" env:"AUTH_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"AUTH_REDIS_DB"`

		ConnectTimeout time.Duration `yaml:"connectTimeout" env:"AUTH_REDIS_CONNECT_TIMEOUT"`
	} `yaml:"redis"`
	JWT struct {
		Secret           string `yaml:"secret" env:"AUTH_JWT_SECRET"`
		ExpiresInMinutes int    `yaml:"expiresInMinutes" env:"AUTH_JWT_EXPIRES_MINUTES"`
	} `yaml:"jwt"`
	Cookie struct {
		Secure bool `yaml:"secure" env:"AUTH_COOKIE_SECURE"`
	} `yaml:"cookie"`
	Password struct {
		BcryptCost int `yaml:"bcryptCost" env:"AUTH_BCRYPT_COST"`
	} `yaml:"password"`
}

// Load reads configuration using the shared config loader.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.Redis.Addr = "localhost:6379"
	cfg.JWT.ExpiresInMinutes = 60
	cfg.Database.ConnectTimeout = 30 * time.Second
	cfg.Redis.ConnectTimeout = 30 * time.Second

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("config: database DSN is required")
	}
	if strings.TrimSpace(c.Redis.Addr) == "" {
		return errors.New("config: redis addr is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("config: jwt secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("config: jwt secret must be at least 32 bytes")
	}
	if c.JWT.ExpiresInMinutes <= 0 {
		c.JWT.ExpiresInMinutes = 60
	}
	return nil
}

// HTTPAddress ensures we always return host:port formatted string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.Contains(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// JWTExpiration converts configured expiry to duration.
func (c *Config) JWTExpiration() time.Duration {
	if c.JWT.ExpiresInMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.JWT.ExpiresInMinutes) * time.Minute
}
