package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"bigsmall-bot/internal/common"
)

type Settings struct {
	Port          int
	FeedURL       string
	FeedTimeout   time.Duration
	FeedAttempts  int
	FeedBackoff   time.Duration
	FeedRateLimit float64
	FeedUserAgent string
	LogLevel      string
}

type ConfigFile struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Feed struct {
		URL       string  `yaml:"url"`
		Timeout   string  `yaml:"timeout"`
		Attempts  int     `yaml:"attempts"`
		Backoff   string  `yaml:"backoff"`
		RateLimit float64 `yaml:"rateLimit"`
		UserAgent string  `yaml:"userAgent"`
	} `yaml:"feed"`

	System struct {
		LogLevel string `yaml:"logLevel"`
	} `yaml:"system"`
}

func Load() (Settings, error) {
	// Try to load from YAML file first
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Parse durations
	timeout, err := time.ParseDuration(config.Feed.Timeout)
	if err != nil {
		timeout = common.DefaultFeedTimeout
	}

	backoff, err := time.ParseDuration(config.Feed.Backoff)
	if err != nil {
		backoff = common.DefaultFeedBackoff
	}

	// Override with environment variables if they exist
	settings := Settings{
		Port:          getIntFromEnvOrConfig(common.EnvPort, config.Server.Port, common.DefaultPort),
		FeedURL:       getStringFromEnvOrConfig(common.EnvFeedURL, config.Feed.URL, common.DefaultFeedURL),
		FeedTimeout:   getDurationOrDefault(common.EnvFeedTimeout, timeout),
		FeedAttempts:  getIntFromEnvOrConfig(common.EnvFeedAttempts, config.Feed.Attempts, common.DefaultFeedAttempts),
		FeedBackoff:   getDurationOrDefault(common.EnvFeedBackoff, backoff),
		FeedRateLimit: getFloatFromEnvOrConfig(common.EnvFeedRateLimit, config.Feed.RateLimit, common.DefaultFeedRateLimit),
		FeedUserAgent: getStringFromEnvOrConfig(common.EnvFeedUserAgent, config.Feed.UserAgent, common.DefaultFeedUserAgent),
		LogLevel:      getStringFromEnvOrConfig(common.EnvLogLevel, config.System.LogLevel, common.DefaultLogLevel),
	}

	// Validate configuration
	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		Port:          getIntOrDefault(common.EnvPort, common.DefaultPort),
		FeedURL:       getEnvOrDefault(common.EnvFeedURL, common.DefaultFeedURL),
		FeedTimeout:   getDurationOrDefault(common.EnvFeedTimeout, common.DefaultFeedTimeout),
		FeedAttempts:  getIntOrDefault(common.EnvFeedAttempts, common.DefaultFeedAttempts),
		FeedBackoff:   getDurationOrDefault(common.EnvFeedBackoff, common.DefaultFeedBackoff),
		FeedRateLimit: getFloatOrDefault(common.EnvFeedRateLimit, common.DefaultFeedRateLimit),
		FeedUserAgent: getEnvOrDefault(common.EnvFeedUserAgent, common.DefaultFeedUserAgent),
		LogLevel:      getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
	}

	// Validate configuration
	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

// ListenAddr returns the address the HTTP server binds to.
func (s *Settings) ListenAddr() string {
	return fmt.Sprintf(":%d", s.Port)
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getStringFromEnvOrConfig(key, configValue, defaultValue string) string {
	if env := os.Getenv(key); env != "" {
		return env
	}
	if configValue != "" {
		return configValue
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getFloatFromEnvOrConfig(key string, configValue, defaultValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

// validateSettings performs range validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.FeedURL == "" {
		return fmt.Errorf(common.ErrMsgFeedURLRequired)
	}

	if settings.Port < common.MinPort || settings.Port > common.MaxPort {
		return fmt.Errorf("port must be between %d and %d, got %d", common.MinPort, common.MaxPort, settings.Port)
	}

	if settings.FeedTimeout < common.MinFeedTimeout || settings.FeedTimeout > common.MaxFeedTimeout {
		return fmt.Errorf("feed timeout must be between %v and %v, got %v", common.MinFeedTimeout, common.MaxFeedTimeout, settings.FeedTimeout)
	}

	if settings.FeedAttempts < common.MinFeedAttempts || settings.FeedAttempts > common.MaxFeedAttempts {
		return fmt.Errorf("feed attempts must be between %d and %d, got %d", common.MinFeedAttempts, common.MaxFeedAttempts, settings.FeedAttempts)
	}

	if settings.FeedBackoff < common.MinFeedBackoff || settings.FeedBackoff > common.MaxFeedBackoff {
		return fmt.Errorf("feed backoff must be between %v and %v, got %v", common.MinFeedBackoff, common.MaxFeedBackoff, settings.FeedBackoff)
	}

	if settings.FeedRateLimit < common.MinFeedRateLimit || settings.FeedRateLimit > common.MaxFeedRateLimit {
		return fmt.Errorf("feed rate limit must be between %.1f and %.1f requests/sec, got %.2f", common.MinFeedRateLimit, common.MaxFeedRateLimit, settings.FeedRateLimit)
	}

	return nil
}
