// internal/workers/matching/match-opportunities/models.go
package matchopportunities

import "encoding/json"

type Input struct {
	// Filters is passed through opaquely: the ranking lives in the database
	// function, not here.
	Filters     json.RawMessage `json:"filters"`
	Page        int             `json:"page"`
	PageSize    int             `json:"pageSize"`
	RequestHash string          `json:"requestHash"`
}

type Output struct {
	// Results is the matcher's response verbatim: ranked opportunities plus
	// its own metadata.
	Results  json.RawMessage `json:"results"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
	CacheHit bool            `json:"cacheHit"`
}
