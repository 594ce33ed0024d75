// internal/workers/registration/load-registration-progress/models.go
package loadregistrationprogress

import "opportunity-workers/internal/models"

type Input struct {
	UserID string `json:"userId"`
}

type Output struct {
	Step      string `json:"step"`
	Completed bool   `json:"completed"`
	// NewUser signals that no preference row exists yet; the wizard starts
	// from the intro screen with nothing prefilled.
	NewUser bool `json:"newUser"`

	QuotaTypes      []string                 `json:"quotaTypes"`
	NoQuotaDeclared bool                     `json:"noQuotaDeclared"`
	IncomePerCapita *float64                 `json:"incomePerCapita"`
	HouseholdIncome *models.HouseholdIncome  `json:"householdIncome"`
	ExamScores      []models.ExamScoreRecord `json:"examScores"`
}
