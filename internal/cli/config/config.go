package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "tradehub"
	configFileName = "config.yaml"

	defaultAPIURL      = "http://localhost:8000"
	defaultEmailDomain = "apsit.edu.in"
)

// Config is the CLI configuration stored in ~/.config/tradehub/config.yaml.
// Environment variables prefixed TRADEHUB_ override file values.
type Config struct {
	APIURL             string `yaml:"api_url"`
	GoogleClientID     string `yaml:"google_client_id"`
	AllowedEmailDomain string `yaml:"allowed_email_domain"`
	CachePath          string `yaml:"cache_path"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, console
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", configDirName)
	return filepath.Join(configDir, configFileName), nil
}

// DefaultCachePath returns where the local message cache lives when the
// config does not name a path.
func DefaultCachePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "tradehub-cache.sqlite"
	}
	return filepath.Join(homeDir, ".config", configDirName, "cache.sqlite")
}

// Load reads the configuration file, applies defaults and environment
// overrides. A missing file yields the defaults, not an error.
func Load() (*Config, error) {
	// .env files fail silently if absent
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	cfg := &Config{}

	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

// Save writes the configuration to the config file, creating the directory
// if needed.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TRADEHUB_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("TRADEHUB_GOOGLE_CLIENT_ID"); v != "" {
		cfg.GoogleClientID = v
	}
	if v := os.Getenv("TRADEHUB_EMAIL_DOMAIN"); v != "" {
		cfg.AllowedEmailDomain = v
	}
	if v := os.Getenv("TRADEHUB_CACHE_PATH"); v != "" {
		cfg.CachePath = v
	}
	if v := os.Getenv("TRADEHUB_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TRADEHUB_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.AllowedEmailDomain == "" {
		cfg.AllowedEmailDomain = defaultEmailDomain
	}
	if cfg.CachePath == "" {
		cfg.CachePath = DefaultCachePath()
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}
