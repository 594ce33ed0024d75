// internal/workers/registration/advance-registration-step/config.go
package advanceregistrationstep

import "time"

type Config struct {
	// LockTTL bounds how long a stuck submission can block the next one.
	LockTTL     time.Duration
	MinimumWage float64
	Timeout     time.Duration
}

func LoadConfig() *Config {
	return &Config{
		LockTTL:     30 * time.Second,
		MinimumWage: 1518.00,
		Timeout:     30 * time.Second,
	}
}
