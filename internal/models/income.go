// internal/models/income.go
package models

import (
	"errors"
	"fmt"
)

var (
	ErrNoHouseholdMembers  = errors.New("household must have at least one member")
	ErrMemberIncomeCount   = errors.New("member incomes must match member count")
	ErrNegativeIncomeValue = errors.New("income values must be non-negative")
	ErrInvalidMinimumWage  = errors.New("minimum wage must be positive")
)

// HouseholdIncome is the raw household composition entered on the income
// step. The raw fields are persisted alongside the derived per-capita value
// so the step can be resumed with the exact inputs.
type HouseholdIncome struct {
	MemberCount    int       `json:"memberCount"`
	MemberIncomes  []float64 `json:"memberIncomes"`
	SocialBenefits float64   `json:"socialBenefits"`
	Alimony        float64   `json:"alimony"`
}

// IncomeSummary holds the derived eligibility values. All arithmetic is done
// at full float64 precision; rounding happens only when formatting.
type IncomeSummary struct {
	Total               float64 `json:"totalIncome"`
	PerCapita           float64 `json:"perCapitaIncome"`
	MinimumWageMultiple float64 `json:"minimumWageMultiple"`
}

// Compute derives total, per-capita and minimum-wage-multiple values.
// A non-positive member count is a precondition violation: the caller must
// never invoke this before the count is set, and division by zero is
// rejected rather than producing Inf/NaN.
func (h HouseholdIncome) Compute(minimumWage float64) (*IncomeSummary, error) {
	if h.MemberCount <= 0 {
		return nil, ErrNoHouseholdMembers
	}
	if len(h.MemberIncomes) != h.MemberCount {
		return nil, fmt.Errorf("%w: got %d incomes for %d members",
			ErrMemberIncomeCount, len(h.MemberIncomes), h.MemberCount)
	}
	if minimumWage <= 0 {
		return nil, ErrInvalidMinimumWage
	}

	total := h.SocialBenefits + h.Alimony
	if h.SocialBenefits < 0 || h.Alimony < 0 {
		return nil, ErrNegativeIncomeValue
	}
	for _, income := range h.MemberIncomes {
		if income < 0 {
			return nil, ErrNegativeIncomeValue
		}
		total += income
	}

	perCapita := total / float64(h.MemberCount)

	return &IncomeSummary{
		Total:               total,
		PerCapita:           perCapita,
		MinimumWageMultiple: perCapita / minimumWage,
	}, nil
}
