// internal/workers/eligibility/calculate-household-income/models.go
package calculatehouseholdincome

type Input struct {
	UserID         string    `json:"userId"`
	MemberCount    int       `json:"memberCount"`
	MemberIncomes  []float64 `json:"memberIncomes"`
	SocialBenefits float64   `json:"socialBenefits"`
	Alimony        float64   `json:"alimony"`
}

type Output struct {
	TotalIncome         float64 `json:"totalIncome"`
	PerCapitaIncome     float64 `json:"perCapitaIncome"`
	MinimumWageMultiple float64 `json:"minimumWageMultiple"`

	// Display strings in local currency format, e.g. "R$ 1.700,00".
	FormattedTotal        string `json:"formattedTotal"`
	FormattedPerCapita    string `json:"formattedPerCapita"`
	FormattedWageMultiple string `json:"formattedWageMultiple"`
}
