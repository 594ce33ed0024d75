// internal/workers/eligibility/validate-exam-scores/models.go
package validateexamscores

import "opportunity-workers/internal/models"

type YearEntry struct {
	Year int `json:"year"`
	// Fields maps exam area name to the raw text the user typed, comma
	// decimals included. An empty string means the field was cleared.
	Fields map[string]string `json:"fields"`
}

type Input struct {
	UserID string `json:"userId"`
	// DidNotTakeExam replaces all entered scores with the zero-score marker.
	DidNotTakeExam bool        `json:"didNotTakeExam"`
	Years          []YearEntry `json:"years"`
}

type FieldError struct {
	Year    int    `json:"year"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Output struct {
	Valid              bool                     `json:"valid"`
	HasAnyCompleteYear bool                     `json:"hasAnyCompleteYear"`
	CompleteYears      []int                    `json:"completeYears"`
	Records            []models.ExamScoreRecord `json:"records"`
	FieldErrors        []FieldError             `json:"fieldErrors,omitempty"`
}
