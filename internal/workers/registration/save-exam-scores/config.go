// internal/workers/registration/save-exam-scores/config.go
package saveexamscores

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
