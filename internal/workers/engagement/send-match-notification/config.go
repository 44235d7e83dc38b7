// internal/workers/engagement/send-match-notification/config.go
package sendmatchnotification

import "time"

type Config struct {
	EmailEnabled bool
	FromEmail    string
	SMSEnabled   bool
	// SMSMinScore gates SMS to the stronger matches; email has no floor.
	SMSMinScore int
	Timeout     time.Duration
}

func LoadConfig() *Config {
	return &Config{
		EmailEnabled: true,
		FromEmail:    "notifications@dealflow.example.com",
		SMSEnabled:   false,
		SMSMinScore:  70,
		Timeout:      15 * time.Second,
	}
}
