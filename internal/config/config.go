package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/berniyo/receeco-lambda/pkg/receeco"
)

// Config holds runtime configuration for the receipt Lambda.
type Config struct {
	Env      string         `yaml:"env"`
	LogLevel string         `yaml:"log_level"`
	Receeco  receeco.Config `yaml:"receeco"`
	Callback CallbackConfig `yaml:"callback"`
}

// CallbackConfig describes where processing outcomes are delivered.
type CallbackConfig struct {
	URL    string `yaml:"url"`
	Secret string `yaml:"secret"`
}

// Load reads configuration from an optional YAML file named by
// RECEECO_CONFIG_FILE, then from the environment. A .env file in the working
// directory is loaded first if present. Environment values win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path := strings.TrimSpace(os.Getenv("RECEECO_CONFIG_FILE")); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.Env = getEnv("ENV", cfg.Env, "production")
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel, "")
	cfg.Receeco.APIKey = getEnv("RECEECO_API_KEY", cfg.Receeco.APIKey, "")
	cfg.Receeco.BaseURL = getEnv("RECEECO_BASE_URL", cfg.Receeco.BaseURL, receeco.DefaultBaseURL)
	cfg.Callback.URL = getEnv("RECEIPT_CALLBACK_URL", cfg.Callback.URL, "")
	cfg.Callback.Secret = getEnv("RECEIPT_CALLBACK_SECRET", cfg.Callback.Secret, "")

	if v := strings.TrimSpace(os.Getenv("RECEECO_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RECEECO_TIMEOUT: %w", err)
		}
		cfg.Receeco.Timeout = d
	}
	if cfg.Receeco.Timeout <= 0 {
		cfg.Receeco.Timeout = receeco.DefaultTimeout
	}

	if cfg.Receeco.APIKey == "" {
		return nil, errors.New("RECEECO_API_KEY must be set")
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// getEnv returns the environment value for key, then current, then def.
func getEnv(key, current, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if current != "" {
		return current
	}
	return def
}
