// internal/workers/analytics/compute-traction-kpis/config.go
package computetractionkpis

import "time"

type Config struct {
	// Periods is how many reported months feed the KPI window.
	Periods int
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Periods: 6,
		Timeout: 15 * time.Second,
	}
}
