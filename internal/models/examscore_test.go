// internal/models/examscore_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr error
	}{
		{"integer", "750", 750, nil},
		{"comma decimal one digit", "750,5", 750.5, nil},
		{"comma decimal two digits", "750,55", 750.55, nil},
		{"zero", "0", 0, nil},
		{"max boundary", "1000", 1000, nil},
		{"surrounding whitespace", " 820 ", 820, nil},
		{"above max", "1000,01", 0, ErrScoreOutOfRange},
		{"above max integer", "1001", 0, ErrScoreOutOfRange},
		{"negative", "-1", 0, ErrScoreFormat},
		{"dot decimal", "750.5", 0, ErrScoreFormat},
		{"three decimals", "750,555", 0, ErrScoreFormat},
		{"letters", "abc", 0, ErrScoreFormat},
		{"empty", "", 0, ErrScoreFormat},
		{"comma only", "750,", 0, ErrScoreFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScore(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreCollectorSetField(t *testing.T) {
	c := NewScoreCollector()

	require.NoError(t, c.SetField(2024, FieldLanguages, "700,5"))
	record := c.Record(2024)
	require.NotNil(t, record)
	require.NotNil(t, record.Languages)
	assert.Equal(t, 700.5, *record.Languages)
	assert.False(t, record.IsComplete())

	// Empty input clears a previously entered value.
	require.NoError(t, c.SetField(2024, FieldLanguages, ""))
	assert.Nil(t, c.Record(2024).Languages)

	// Invalid input leaves the record untouched.
	require.NoError(t, c.SetField(2024, FieldWriting, "900"))
	err := c.SetField(2024, FieldWriting, "90,123")
	assert.ErrorIs(t, err, ErrScoreFormat)
	assert.Equal(t, 900.0, *c.Record(2024).Writing)

	err = c.SetField(2024, "geography", "500")
	assert.ErrorIs(t, err, ErrUnknownScoreField)
}

func TestScoreCollectorCompleteness(t *testing.T) {
	c := NewScoreCollector()
	assert.False(t, c.HasAnyCompleteYear())

	for _, field := range ScoreFieldNames {
		require.NoError(t, c.SetField(2023, field, "600"))
	}
	// 2024 left partial on purpose.
	require.NoError(t, c.SetField(2024, FieldMathematics, "800"))

	assert.True(t, c.IsComplete(2023))
	assert.False(t, c.IsComplete(2024))
	assert.True(t, c.HasAnyCompleteYear())
	assert.Equal(t, []int{2023}, c.CompleteYears())
}

func TestScoreCollectorYearsAreIndependent(t *testing.T) {
	c := NewScoreCollector()

	require.NoError(t, c.SetField(2022, FieldLanguages, "500"))
	require.NoError(t, c.SetField(2023, FieldLanguages, "600"))

	assert.Equal(t, 500.0, *c.Record(2022).Languages)
	assert.Equal(t, 600.0, *c.Record(2023).Languages)

	require.NoError(t, c.SetField(2022, FieldLanguages, ""))
	assert.Nil(t, c.Record(2022).Languages)
	assert.Equal(t, 600.0, *c.Record(2023).Languages)
}

func TestZeroScoreRecordSentinel(t *testing.T) {
	record := ZeroScoreRecord(2024)
	assert.True(t, record.IsComplete())
	assert.True(t, record.IsOptOutSentinel())

	scored := ZeroScoreRecord(2024)
	v := 1.0
	scored.Writing = &v
	assert.False(t, scored.IsOptOutSentinel())
}
