// internal/workers/matching/build-match-request/models.go
package buildmatchrequest

type Input struct {
	UserID   string `json:"userId"`
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"pageSize,omitempty"`
}

// Filters is the matcher's contract. Nil slices serialize as JSON null,
// which the matcher reads as "no constraint"; an empty array would read as
// "match nothing".
type Filters struct {
	CourseInterests    []string `json:"courseInterests"`
	EnemScore          *float64 `json:"enemScore"`
	PreferredShifts    []string `json:"preferredShifts"`
	UniversityType     *string  `json:"universityType"`
	Program            *string  `json:"program"`
	MaxIncomePerCapita *float64 `json:"maxIncomePerCapita"`
	QuotaTypes         []string `json:"quotaTypes"`
	City               *string  `json:"city"`
	State              *string  `json:"state"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
}

type Output struct {
	Filters  Filters `json:"filters"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
	// RequestHash keys the result cache: identical filters and pagination
	// hash identically.
	RequestHash string `json:"requestHash"`
}
