package common

import "time"

// Service identity
const (
	ServiceName = "bigsmall-bot"
	Version     = "1.1.0"
)

// Environment variable keys
const (
	EnvPort          = "PORT"
	EnvFeedURL       = "FEED_URL"
	EnvFeedTimeout   = "FEED_TIMEOUT"
	EnvFeedAttempts  = "FEED_ATTEMPTS"
	EnvFeedBackoff   = "FEED_BACKOFF"
	EnvFeedRateLimit = "FEED_RATE_LIMIT"
	EnvFeedUserAgent = "FEED_USER_AGENT"
	EnvLogLevel      = "LOG_LEVEL"
	EnvConfigFile    = "CONFIG_FILE"
)

// Configuration defaults
const (
	DefaultPort          = 8080
	DefaultFeedURL       = "https://draw.ar-lottery01.com/WinGo/WinGo_1M/GetHistoryIssuePage.json"
	DefaultFeedTimeout   = 8 * time.Second
	DefaultFeedAttempts  = 3
	DefaultFeedBackoff   = time.Second
	DefaultFeedRateLimit = 2.0 // requests per second against the upstream
	DefaultLogLevel      = "info"
)

// DefaultFeedUserAgent is sent on every upstream request; the feed rejects
// clients without a browser-looking agent string.
const DefaultFeedUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Common error messages
const (
	ErrMsgFeedURLRequired = "feed URL is required"
	ErrMsgPortRange       = "port must be between 1024 and 65535"
)

// Validation constants
const (
	MinPort          = 1024
	MaxPort          = 65535
	MinFeedTimeout   = time.Second
	MaxFeedTimeout   = time.Minute
	MinFeedAttempts  = 1
	MaxFeedAttempts  = 10
	MinFeedBackoff   = 100 * time.Millisecond
	MaxFeedBackoff   = 30 * time.Second
	MinFeedRateLimit = 0.1
	MaxFeedRateLimit = 50.0
)
