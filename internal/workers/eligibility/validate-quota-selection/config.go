// internal/workers/eligibility/validate-quota-selection/config.go
package validatequotaselection

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
