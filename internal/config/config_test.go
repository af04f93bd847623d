package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadWithDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DB_PATH", "")
	os.Unsetenv("CONFIG_FILE")
	os.Unsetenv("DB_PATH")

	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.Database.Path != "backoffice.db" {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	if cfg.HTTP.Address != ":8080" {
		t.Errorf("http address = %q", cfg.HTTP.Address)
	}
	if cfg.Auth.JWTSecret == "" {
		t.Error("dev secret should be defaulted")
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	if _, err := Load(); err == nil {
		t.Fatal("Load should fail without JWT_SECRET")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	body := []byte("database:\n  path: from-file.db\nhttp:\n  address: \":9999\"\nkafka:\n  enabled: true\n  broker: file-broker:9092\n")
	if err := os.WriteFile(file, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", file)
	t.Setenv("DB_PATH", "from-env.db")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "from-env.db" {
		t.Errorf("env should win over file, got %q", cfg.Database.Path)
	}
	if cfg.HTTP.Address != ":9999" {
		t.Errorf("file value should apply, got %q", cfg.HTTP.Address)
	}
	if !cfg.Kafka.Enabled || cfg.Kafka.Broker != "file-broker:9092" {
		t.Errorf("kafka config not loaded: %+v", cfg.Kafka)
	}
}

func TestStringMasksSecret(t *testing.T) {
	cfg := &Config{Auth: AuthConfig{JWTSecret: "topsecret"}}
	if s := cfg.String(); s == "" || strings.Contains(s, "topsecret") {
		t.Errorf("config string leaks secret: %q", s)
	}
}
