// internal/workers/matching/build-match-request/config.go
package buildmatchrequest

import "time"

type Config struct {
	DefaultPageSize int
	MaxPageSize     int
	Timeout         time.Duration
}

func LoadConfig() *Config {
	return &Config{
		DefaultPageSize: 20,
		MaxPageSize:     100,
		Timeout:         10 * time.Second,
	}
}
