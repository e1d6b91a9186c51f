package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	APIBaseURL        string        `mapstructure:"api_base_url"`
	APITimeoutSeconds int64         `mapstructure:"api_timeout_seconds"`
	APITimeout        time.Duration `mapstructure:"-"`
	APITelegramID     string        `mapstructure:"api_telegram_id"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`

	PublishersFile string `mapstructure:"publishers_file"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "cabbage-shopctl")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("api_base_url", "http://localhost:8000")
	v.SetDefault("api_timeout_seconds", 10)
	v.SetDefault("api_telegram_id", "")
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/journal.db")
	v.SetDefault("storage_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("publishers_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Finalize validates raw values and derives durations. Call it again after
// overriding fields, e.g. from command line flags.
func (c *Config) Finalize() error {
	c.APIBaseURL = strings.TrimSpace(c.APIBaseURL)
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api_base_url %q (must be an absolute URL)", c.APIBaseURL)
	}

	if c.APITimeoutSeconds <= 0 {
		return fmt.Errorf("invalid api_timeout_seconds (must be positive seconds)")
	}
	c.APITimeout = time.Duration(c.APITimeoutSeconds) * time.Second

	if c.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if c.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	c.StorageTTL = time.Duration(c.StorageTTLSeconds) * time.Second
	c.StorageCleanupInterval = time.Duration(c.StorageCleanupSeconds) * time.Second

	return nil
}

// APIHeaders returns the default headers sent with every API request.
func (c *Config) APIHeaders() map[string]string {
	id := strings.TrimSpace(c.APITelegramID)
	if id == "" {
		return nil
	}
	return map[string]string{"X-Telegram-Id": id}
}
