// internal/workers/matching/calculate-match-score/config.go
package calculatematchscore

import "time"

type Config struct {
	CacheTTL          time.Duration
	Timeout           time.Duration
	DefaultPitchScore int
}

func LoadConfig() *Config {
	return &Config{
		CacheTTL:          10 * time.Minute,
		Timeout:           30 * time.Second,
		DefaultPitchScore: 50,
	}
}
