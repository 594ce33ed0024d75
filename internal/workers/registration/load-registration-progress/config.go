// internal/workers/registration/load-registration-progress/config.go
package loadregistrationprogress

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
