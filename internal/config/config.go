package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// slskd
	SlskdURL          string
	SlskdAPIKey       string
	SlskdDownloadPath string // Where slskd writes completed downloads

	// Search
	SearchTimeout time.Duration // Timeout handed to slskd for each search
	CacheTTL      time.Duration // TTL for both the search and result caches
	ResultLimit   int           // Default and maximum Torznab page size

	// Scheduler
	CacheSweepInterval string // cron spec for the expired-entry sweep

	// Server
	ServerPort string
	PublicURL  string // Overrides request-derived base URL in Torznab links

	// Paths
	BlacklistFile string // $CONFIG_DIR/blacklist.txt

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = v.ReadInConfig()

	v.SetDefault("SLSKD_DOWNLOAD_PATH", "/downloads")
	v.SetDefault("SEARCH_TIMEOUT_SECONDS", 15)
	v.SetDefault("CACHE_TTL_MINUTES", 30)
	v.SetDefault("RESULT_LIMIT", 100)
	v.SetDefault("CACHE_SWEEP_INTERVAL", "@every 5m")
	v.SetDefault("SERVER_PORT", "8585")
	v.SetDefault("LOG_LEVEL", "info")

	configDir, err := resolveConfigDir(v.GetString("CONFIG_DIR"))
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		SlskdURL:          strings.TrimRight(v.GetString("SLSKD_URL"), "/"),
		SlskdAPIKey:       v.GetString("SLSKD_API_KEY"),
		SlskdDownloadPath: strings.TrimRight(v.GetString("SLSKD_DOWNLOAD_PATH"), "/"),

		SearchTimeout: time.Duration(v.GetInt("SEARCH_TIMEOUT_SECONDS")) * time.Second,
		CacheTTL:      time.Duration(v.GetInt("CACHE_TTL_MINUTES")) * time.Minute,
		ResultLimit:   v.GetInt("RESULT_LIMIT"),

		CacheSweepInterval: v.GetString("CACHE_SWEEP_INTERVAL"),

		ServerPort: v.GetString("SERVER_PORT"),
		PublicURL:  strings.TrimRight(v.GetString("PUBLIC_URL"), "/"),

		BlacklistFile: filepath.Join(configDir, "blacklist.txt"),

		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	if c.SlskdURL == "" {
		return fmt.Errorf("SLSKD_URL is required")
	}
	if c.SearchTimeout <= 0 {
		return fmt.Errorf("SEARCH_TIMEOUT_SECONDS must be positive")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL_MINUTES must be positive")
	}
	if c.ResultLimit <= 0 {
		return fmt.Errorf("RESULT_LIMIT must be positive")
	}
	return nil
}

func resolveConfigDir(configDir string) (string, error) {
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", "tunarr"), nil
	}

	absPath, err := filepath.Abs(configDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
	}
	return absPath, nil
}
