// internal/workers/engagement/fetch-inbox/config.go
package fetchinbox

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}
