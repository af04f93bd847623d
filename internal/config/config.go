package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // SQLite database file path
}

// HTTPConfig contains HTTP server settings.
type HTTPConfig struct {
	Address string `yaml:"address"` // listen address (e.g., ":8080")
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"` // JWT signing secret
}

// KafkaConfig contains settings for the shipment-event publisher.
// When Enabled is false, transition notifications go to the log only.
type KafkaConfig struct {
	Enabled bool   `yaml:"enabled"`
	Broker  string `yaml:"broker"`
	Topic   string `yaml:"topic"`
}

// Load loads configuration from an optional YAML file (CONFIG_FILE) with
// environment variables taking precedence. It fails if JWT_SECRET resolves
// empty.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses a safe default for JWT_SECRET in
// development. WARNING: only use in development.
func LoadWithDefaults() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "dev-secret-change-me"
	}
	return cfg, nil
}

func load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{Path: "backoffice.db"},
		HTTP:     HTTPConfig{Address: ":8080"},
		Kafka:    KafkaConfig{Topic: "shipment.events"},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Environment overrides the file.
	overlayEnv(&cfg.Database.Path, "DB_PATH")
	overlayEnv(&cfg.HTTP.Address, "HTTP_ADDRESS")
	overlayEnv(&cfg.Auth.JWTSecret, "JWT_SECRET")
	overlayEnv(&cfg.Kafka.Broker, "KAFKA_BROKER")
	overlayEnv(&cfg.Kafka.Topic, "KAFKA_TOPIC")
	if v, ok := os.LookupEnv("KAFKA_ENABLED"); ok {
		cfg.Kafka.Enabled = strings.EqualFold(v, "true") || v == "1"
	}

	return cfg, nil
}

func overlayEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

// String returns a representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{DB: %s, HTTP: %s, Kafka: %v/%s, Auth: *** (masked) ***}",
		c.Database.Path, c.HTTP.Address, c.Kafka.Enabled, c.Kafka.Topic)
}
