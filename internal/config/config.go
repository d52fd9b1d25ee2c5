package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all bot configuration
type Config struct {
	Server      string `yaml:"server" env:"TONKON_SERVER"`
	Port        int    `yaml:"port" env:"TONKON_PORT"`
	UseTLS      bool   `yaml:"use_tls" env:"TONKON_USE_TLS"`
	TLSInsecure bool   `yaml:"tls_insecure" env:"TONKON_TLS_INSECURE"`
	Nick        string `yaml:"nick" env:"TONKON_NICK"`
	Username    string `yaml:"username"`
	IRCName     string `yaml:"irc_name"`
	Channel     string `yaml:"channel" env:"TONKON_CHANNEL"`
	Key         string `yaml:"key" env:"TONKON_KEY"`
	LogDir      string `yaml:"log_dir" env:"TONKON_LOG_DIR"`
	DB          string `yaml:"db" env:"TONKON_DB"`
	MetricsAddr string `yaml:"metrics_addr" env:"TONKON_METRICS_ADDR"`

	// NickRetryLimit bounds how many altered nicknames are tried when the
	// configured nick collides before the connection is given up as failed.
	NickRetryLimit int `yaml:"nick_retry_limit"`

	Reconnect ReconnectConfig `yaml:"reconnect"`
}

// ReconnectConfig tunes the supervisor's backoff between reconnect attempts.
// MaxAttempts of 0 means retry forever.
type ReconnectConfig struct {
	InitialSeconds int `yaml:"initial_seconds"`
	MaxSeconds     int `yaml:"max_seconds"`
	MaxAttempts    int `yaml:"max_attempts"`
}

func defaults() Config {
	return Config{
		Port:           6697,
		UseTLS:         true,
		Username:       "tonkon",
		IRCName:        "tonkon the log bot",
		LogDir:         "logs",
		DB:             "tonkon.db",
		NickRetryLimit: 8,
		Reconnect: ReconnectConfig{
			InitialSeconds: 2,
			MaxSeconds:     60,
		},
	}
}

// Load reads and parses a YAML configuration file. A .env file in the working
// directory is loaded first if present, and TONKON_* environment variables
// override values from the file.
func Load(path string) (*Config, error) {
	// Missing .env is fine; it only supplies overrides.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server == "" {
		return fmt.Errorf("config: server is required")
	}
	if c.Nick == "" {
		return fmt.Errorf("config: nick is required")
	}
	if c.Channel == "" {
		return fmt.Errorf("config: channel is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d is out of range", c.Port)
	}
	return nil
}
