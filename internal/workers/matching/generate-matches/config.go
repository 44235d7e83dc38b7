// internal/workers/matching/generate-matches/config.go
package generatematches

import "time"

type Config struct {
	// MinScore is the persistence floor for batch-generated matches.
	// It is deliberately higher than the feed inclusion floor so batch
	// runs only materialize the stronger pairs.
	MinScore int
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MinScore: 40,
		Timeout:  60 * time.Second,
	}
}
