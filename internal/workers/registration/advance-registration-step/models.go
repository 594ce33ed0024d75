// internal/workers/registration/advance-registration-step/models.go
package advanceregistrationstep

import "opportunity-workers/internal/models"

type Input struct {
	UserID string `json:"userId"`
	// Step is the wizard step being submitted: "scores", "quotas" or "income".
	Step     string `json:"step"`
	ClientIP string `json:"clientIp,omitempty"`

	// Scores step payload: validated complete records.
	ExamScores []models.ExamScoreRecord `json:"examScores,omitempty"`

	// Quotas step payload.
	QuotaTypes      []string `json:"quotaTypes,omitempty"`
	NoQuotaDeclared bool     `json:"noQuotaDeclared,omitempty"`

	// Income step payload. PerCapitaIncome is derived upstream; when absent
	// it is recomputed from the household composition. IncomeOptOut advances
	// past the step without income data, keeping whatever values are stored.
	HouseholdIncome *models.HouseholdIncome `json:"householdIncome,omitempty"`
	PerCapitaIncome *float64                `json:"perCapitaIncome,omitempty"`
	IncomeOptOut    bool                    `json:"incomeOptOut,omitempty"`
}

type Output struct {
	Step      string `json:"step"`
	Completed bool   `json:"completed"`
	// NoOp is set when the submitted step had already been passed; nothing
	// was written.
	NoOp bool `json:"noOp"`
}
