// internal/models/income_test.go
package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMinimumWage = 1518.00

func TestHouseholdIncomeCompute(t *testing.T) {
	tests := []struct {
		name          string
		household     HouseholdIncome
		wantTotal     float64
		wantPerCapita float64
		wantMultiple  float64
		wantErr       error
	}{
		{
			name: "three members with benefits and alimony",
			household: HouseholdIncome{
				MemberCount:    3,
				MemberIncomes:  []float64{1200.00, 0, 0},
				SocialBenefits: 300.00,
				Alimony:        200.00,
			},
			wantTotal:     1700.00,
			wantPerCapita: 566.6666666666666,
			wantMultiple:  0.3733,
		},
		{
			name: "single member single income",
			household: HouseholdIncome{
				MemberCount:   1,
				MemberIncomes: []float64{1518.00},
			},
			wantTotal:     1518.00,
			wantPerCapita: 1518.00,
			wantMultiple:  1.0,
		},
		{
			name: "zero income household",
			household: HouseholdIncome{
				MemberCount:   2,
				MemberIncomes: []float64{0, 0},
			},
			wantTotal:     0,
			wantPerCapita: 0,
			wantMultiple:  0,
		},
		{
			name: "zero member count rejected",
			household: HouseholdIncome{
				MemberCount:   0,
				MemberIncomes: []float64{},
			},
			wantErr: ErrNoHouseholdMembers,
		},
		{
			name: "negative member count rejected",
			household: HouseholdIncome{
				MemberCount:   -1,
				MemberIncomes: []float64{},
			},
			wantErr: ErrNoHouseholdMembers,
		},
		{
			name: "income slice shorter than member count",
			household: HouseholdIncome{
				MemberCount:   3,
				MemberIncomes: []float64{100.00},
			},
			wantErr: ErrMemberIncomeCount,
		},
		{
			name: "negative member income rejected",
			household: HouseholdIncome{
				MemberCount:   2,
				MemberIncomes: []float64{500.00, -1.00},
			},
			wantErr: ErrNegativeIncomeValue,
		},
		{
			name: "negative social benefits rejected",
			household: HouseholdIncome{
				MemberCount:    1,
				MemberIncomes:  []float64{500.00},
				SocialBenefits: -10.00,
			},
			wantErr: ErrNegativeIncomeValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := tt.household.Compute(testMinimumWage)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, summary)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, summary)
			assert.InDelta(t, tt.wantTotal, summary.Total, 0.0001)
			assert.InDelta(t, tt.wantPerCapita, summary.PerCapita, 0.0001)
			assert.InDelta(t, tt.wantMultiple, summary.MinimumWageMultiple, 0.0001)
		})
	}
}

func TestHouseholdIncomeComputePerCapitaAcrossCounts(t *testing.T) {
	// Per-capita must scale linearly with member count for a fixed total.
	for count := 1; count <= 10; count++ {
		t.Run(fmt.Sprintf("members_%d", count), func(t *testing.T) {
			incomes := make([]float64, count)
			incomes[0] = 3000.00

			summary, err := HouseholdIncome{
				MemberCount:   count,
				MemberIncomes: incomes,
			}.Compute(testMinimumWage)

			require.NoError(t, err)
			assert.InDelta(t, 3000.00/float64(count), summary.PerCapita, 0.0001)
		})
	}
}

func TestHouseholdIncomeComputeInvalidMinimumWage(t *testing.T) {
	household := HouseholdIncome{MemberCount: 1, MemberIncomes: []float64{100.00}}

	_, err := household.Compute(0)
	assert.ErrorIs(t, err, ErrInvalidMinimumWage)

	_, err = household.Compute(-1518.00)
	assert.ErrorIs(t, err, ErrInvalidMinimumWage)
}
