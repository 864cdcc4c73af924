package lessons

import "time"

// Config holds lesson generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64

	// CacheTTL bounds how long shared lesson text lives in Redis.
	// Zero keeps it until evicted.
	CacheTTL time.Duration
}

// DefaultConfig returns the defaults for lesson generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1000,
		Temperature: 0.7,
		CacheTTL:    30 * 24 * time.Hour,
	}
}
