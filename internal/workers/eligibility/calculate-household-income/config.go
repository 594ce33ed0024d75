// internal/workers/eligibility/calculate-household-income/config.go
package calculatehouseholdincome

import "time"

type Config struct {
	// MinimumWage is the reference wage the per-capita multiple is derived
	// from. Updated yearly via configuration, never hardcoded at call sites.
	MinimumWage float64
	Timeout     time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MinimumWage: 1518.00,
		Timeout:     10 * time.Second,
	}
}
