// internal/workers/matching/parse-feed-filters/config.go
package parsefeedfilters

import "time"

type Config struct {
	// MaxLimit caps the caller-requested feed size.
	MaxLimit int
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MaxLimit: 50,
		Timeout:  10 * time.Second,
	}
}
