package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`
}

// LoadConfig builds the config from defaults and environment variables, then
// overlays the yaml file when a path is given.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("ATOMIC_ADDR", ":8080"),
		JWTSecret:     getEnv("ATOMIC_JWT_SECRET", "supersecretkey"),
		APITimeout:    15 * time.Second,
		DatabasePath:  getEnv("ATOMIC_DATABASE_PATH", "atomic.db"),
		TokenDuration: 24 * time.Hour,
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate rejects configs that must never reach production: the shipped
// default JWT secret is allowed only when ATOMIC_ENV=development.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("jwt secret must not be empty")
	}
	if c.JWTSecret == "supersecretkey" && os.Getenv("ATOMIC_ENV") != "development" {
		return errors.New("default jwt secret is not allowed outside development")
	}
	if c.DatabasePath == "" {
		return errors.New("database path must not be empty")
	}
	if c.Addr == "" {
		return errors.New("listen address must not be empty")
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
