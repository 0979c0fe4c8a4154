// Package config loads service configuration from an optional YAML file with
// environment variables taking precedence.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port          string `yaml:"port"`
	DatabaseURL   string `yaml:"databaseUrl"`
	RedisURL      string `yaml:"redisUrl"`
	ORSAPIKey     string `yaml:"orsApiKey"`
	WeatherAPIKey string `yaml:"weatherApiKey"`
}

// Load reads the YAML file named by CONFIG_FILE (default config.yaml, missing
// file is fine) and overlays environment variables on top.
func Load() (Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	} else if !os.IsNotExist(err) {
		return Config{}, err
	}

	overlay(&cfg.Port, "PORT")
	overlay(&cfg.DatabaseURL, "DATABASE_URL")
	overlay(&cfg.RedisURL, "REDIS_URL")
	overlay(&cfg.ORSAPIKey, "ORS_API_KEY")
	overlay(&cfg.WeatherAPIKey, "WEATHER_API_KEY")

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	return cfg, nil
}

func overlay(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}
