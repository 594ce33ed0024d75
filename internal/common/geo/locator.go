// internal/common/geo/locator.go
package geo

import (
	"context"
	"fmt"
	"time"

	"opportunity-workers/internal/common/config"
	"opportunity-workers/internal/common/http"
)

// Coordinates is a device location pair used to tag income submissions.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Locator resolves a device's approximate coordinates. Lookups are
// best-effort: any failure returns an error the caller logs and ignores.
type Locator interface {
	Locate(ctx context.Context, clientIP string) (*Coordinates, error)
}

type httpLocator struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewLocator(cfg config.GeolocationConfig) Locator {
	return &httpLocator{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  http.NewClient(time.Duration(cfg.Timeout) * time.Millisecond),
	}
}

func (l *httpLocator) Locate(ctx context.Context, clientIP string) (*Coordinates, error) {
	if l.baseURL == "" {
		return nil, fmt.Errorf("geolocation base URL not configured")
	}

	url := fmt.Sprintf("%s/%s?apiKey=%s", l.baseURL, clientIP, l.apiKey)

	var payload struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := l.client.GetJSON(ctx, url, &payload); err != nil {
		return nil, fmt.Errorf("geolocation lookup: %w", err)
	}

	return &Coordinates{Latitude: payload.Latitude, Longitude: payload.Longitude}, nil
}
