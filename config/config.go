package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the application's configuration
type Config struct {
	LLMHost              string        `mapstructure:"LLM_HOST"`
	LLMAPIKey            string        `mapstructure:"LLM_API_KEY"`
	LLMModel             string        `mapstructure:"LLM_MODEL"`
	LLMRequestTimeout    time.Duration `mapstructure:"LLM_REQUEST_TIMEOUT"`
	FetchTimeout         time.Duration `mapstructure:"FETCH_TIMEOUT"`
	FetchMaxURLs         int           `mapstructure:"FETCH_MAX_URLS"`
	FetchMaxContentChars int           `mapstructure:"FETCH_MAX_CONTENT_CHARS"`
	FetchCacheSize       int           `mapstructure:"FETCH_CACHE_SIZE"`
	DocContextChars      int           `mapstructure:"DOC_CONTEXT_CHARS"`
	DocWindowChars       int           `mapstructure:"DOC_WINDOW_CHARS"`
	HistoryWindow        int           `mapstructure:"HISTORY_WINDOW"`
	WebPort              int           `mapstructure:"WEB_PORT"`
	UploadDir            string        `mapstructure:"UPLOAD_DIR"`
	MaxUploadSize        int64         `mapstructure:"MAX_UPLOAD_SIZE"`
	RateLimitPerMin      int           `mapstructure:"RATE_LIMIT_MESSAGES_PER_MIN"`
	RateLimitBurstSize   int           `mapstructure:"RATE_LIMIT_BURST_SIZE"`
	LogLevel             string        `mapstructure:"LOG_LEVEL"`
}

// Load reads configuration from config.yaml and the environment. The
// environment is read here, during explicit initialization, not at import
// time; model credentials present only in the environment are still honored.
func Load(logger *zap.Logger) *Config {
	var config Config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")        // For running locally
	viper.AddConfigPath("../")      // For running from docker subdir
	viper.AddConfigPath("./config") // Common config folder
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("LLM_HOST", "")
	viper.SetDefault("LLM_API_KEY", "")
	viper.SetDefault("LLM_MODEL", "claude-sonnet-4-20250514")
	viper.SetDefault("LLM_REQUEST_TIMEOUT", 120)
	viper.SetDefault("FETCH_TIMEOUT", 15)
	viper.SetDefault("FETCH_MAX_URLS", 5)
	viper.SetDefault("FETCH_MAX_CONTENT_CHARS", 50000)
	viper.SetDefault("FETCH_CACHE_SIZE", 128)
	viper.SetDefault("DOC_CONTEXT_CHARS", 15000)
	viper.SetDefault("DOC_WINDOW_CHARS", 5000)
	viper.SetDefault("HISTORY_WINDOW", 10)
	viper.SetDefault("WEB_PORT", 8080)
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.SetDefault("MAX_UPLOAD_SIZE", 10*1024*1024)
	viper.SetDefault("RATE_LIMIT_MESSAGES_PER_MIN", 20)
	viper.SetDefault("RATE_LIMIT_BURST_SIZE", 5)
	viper.SetDefault("LOG_LEVEL", "info")

	if err := viper.ReadInConfig(); err != nil {
		if logger != nil {
			logger.Warn("Could not read config file, using defaults/env vars", zap.Error(err))
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		// Config unmarshaling is critical - fail fast during bootstrap
		if logger != nil {
			logger.Fatal("Unable to decode config into struct", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "FATAL: Unable to decode config into struct: %v\n", err)
			os.Exit(1)
		}
	}

	// Convert seconds to proper time.Duration
	config.LLMRequestTimeout = config.LLMRequestTimeout * time.Second
	config.FetchTimeout = config.FetchTimeout * time.Second

	return &config
}
