// internal/workers/matching/check-pitch-readiness/config.go
package checkpitchreadiness

import "time"

type Config struct {
	// ReadyThreshold and GoodThreshold split the readiness labels.
	ReadyThreshold int
	GoodThreshold  int
	Timeout        time.Duration
}

func LoadConfig() *Config {
	return &Config{
		ReadyThreshold: 80,
		GoodThreshold:  50,
		Timeout:        15 * time.Second,
	}
}
