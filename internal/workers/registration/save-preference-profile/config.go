// internal/workers/registration/save-preference-profile/config.go
package savepreferenceprofile

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
