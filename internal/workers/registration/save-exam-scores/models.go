// internal/workers/registration/save-exam-scores/models.go
package saveexamscores

type Input struct {
	UserID string `json:"userId"`
	Year   int    `json:"year"`
	Field  string `json:"field"`
	// RawValue is the text as typed, comma decimals included. Empty clears
	// the field.
	RawValue string `json:"rawValue"`
}

type Output struct {
	Saved bool     `json:"saved"`
	Year  int      `json:"year"`
	Field string   `json:"field"`
	Value *float64 `json:"value"`
}
