package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Trends    TrendsConfig    `mapstructure:"trends"`
	Marketing MarketingConfig `mapstructure:"marketing"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DatasetConfig holds input and report path configuration
type DatasetConfig struct {
	InputPath  string `mapstructure:"input_path"`
	ReportsDir string `mapstructure:"reports_dir"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// AnalysisConfig holds segmentation and inventory parameters
type AnalysisConfig struct {
	Segments int     `mapstructure:"segments"`
	Seed     int64   `mapstructure:"seed"`
	ServiceZ float64 `mapstructure:"service_z"`
}

// TrendsConfig holds revenue trend aggregation configuration
type TrendsConfig struct {
	Granularity string `mapstructure:"granularity"`
}

// MarketingConfig holds the campaign spend API configuration
type MarketingConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	APIBaseURL     string        `mapstructure:"api_base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("SHOPSIGHT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Dataset defaults
	v.SetDefault("dataset.input_path", "")
	v.SetDefault("dataset.reports_dir", "./reports")

	// Storage defaults
	v.SetDefault("storage.db_path", "./data/shopsight.db")

	// Analysis defaults
	v.SetDefault("analysis.segments", 4)
	v.SetDefault("analysis.seed", 42)
	v.SetDefault("analysis.service_z", 2.0)

	// Trends defaults
	v.SetDefault("trends.granularity", "week")

	// Marketing defaults
	v.SetDefault("marketing.enabled", false)
	v.SetDefault("marketing.timeout", "30s")
	v.SetDefault("marketing.max_retries", 3)
	v.SetDefault("marketing.retry_delay_base", "1s")

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Dataset.ReportsDir == "" {
		return fmt.Errorf("dataset.reports_dir is required")
	}

	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}

	if c.Analysis.Segments < 1 {
		return fmt.Errorf("analysis.segments must be at least 1")
	}
	if c.Analysis.ServiceZ < 0 {
		return fmt.Errorf("analysis.service_z must not be negative")
	}

	validGranularities := map[string]bool{"day": true, "week": true, "month": true}
	if !validGranularities[c.Trends.Granularity] {
		return fmt.Errorf("trends.granularity must be one of: day, week, month")
	}

	if c.Marketing.Enabled {
		if c.Marketing.APIBaseURL == "" {
			return fmt.Errorf("marketing.api_base_url is required when marketing is enabled")
		}
		if c.Marketing.Timeout < 1*time.Second {
			return fmt.Errorf("marketing.timeout must be at least 1 second")
		}
		if c.Marketing.MaxRetries < 1 {
			return fmt.Errorf("marketing.max_retries must be at least 1")
		}
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
