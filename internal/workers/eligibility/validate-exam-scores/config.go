// internal/workers/eligibility/validate-exam-scores/config.go
package validateexamscores

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
