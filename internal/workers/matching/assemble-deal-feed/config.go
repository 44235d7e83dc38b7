// internal/workers/matching/assemble-deal-feed/config.go
package assembledealfeed

import "time"

type Config struct {
	// MinScore is the feed inclusion floor. Saved matches bypass it.
	MinScore int
	// Limit caps the feed length even when the caller asks for more.
	Limit int
	// TractionPeriods is how many reported periods the traction
	// snapshot needs (latest for mrr, prior for growth).
	TractionPeriods int
	// DeckScoreTTL bounds the per-founder deck score cache.
	DeckScoreTTL time.Duration
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MinScore:        30,
		Limit:           50,
		TractionPeriods: 2,
		DeckScoreTTL:    5 * time.Minute,
		Timeout:         30 * time.Second,
	}
}
