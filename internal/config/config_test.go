package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileWithEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "port: \"9090\"\norsApiKey: file-key\nweatherApiKey: file-weather\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("ORS_API_KEY", "env-key")
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("WEATHER_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("port %q, want file value 9090", cfg.Port)
	}
	if cfg.ORSAPIKey != "env-key" {
		t.Fatalf("ors key %q, env should win over file", cfg.ORSAPIKey)
	}
	if cfg.WeatherAPIKey != "file-weather" {
		t.Fatalf("weather key %q, want file value", cfg.WeatherAPIKey)
	}
}

func TestLoadMissingFileDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("ORS_API_KEY", "")
	t.Setenv("WEATHER_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("default port %q, want 8080", cfg.Port)
	}
}
