// internal/models/preference_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuotaTag(t *testing.T) {
	for _, tag := range AllQuotaTags {
		parsed, err := ParseQuotaTag(string(tag))
		require.NoError(t, err)
		assert.Equal(t, tag, parsed)
	}

	_, err := ParseQuotaTag("left_handed")
	assert.ErrorIs(t, err, ErrUnknownQuotaTag)
	_, err = ParseQuotaTag("")
	assert.ErrorIs(t, err, ErrUnknownQuotaTag)
}

func TestQuotaSelectionToggle(t *testing.T) {
	q := NewQuotaSelection()
	assert.False(t, q.IsValid())

	require.NoError(t, q.Toggle(QuotaPublicSchool))
	assert.True(t, q.Has(QuotaPublicSchool))
	assert.True(t, q.IsValid())

	// Toggling again deselects and the gate closes.
	require.NoError(t, q.Toggle(QuotaPublicSchool))
	assert.False(t, q.Has(QuotaPublicSchool))
	assert.False(t, q.IsValid())

	err := q.Toggle("left_handed")
	assert.ErrorIs(t, err, ErrUnknownQuotaTag)
}

func TestQuotaSelectionNoQuotaMutualExclusion(t *testing.T) {
	q := NewQuotaSelection()

	require.NoError(t, q.Toggle(QuotaLowIncome))
	require.NoError(t, q.Toggle(QuotaPublicSchool))

	// Declaring "no quota" wipes every selected tag.
	q.SetNoQuota(true)
	assert.True(t, q.NoQuotaDeclared)
	assert.Empty(t, q.Tags())
	assert.True(t, q.IsValid())

	// Selecting a tag afterwards clears the declaration.
	require.NoError(t, q.Toggle(QuotaIndigenous))
	assert.False(t, q.NoQuotaDeclared)
	assert.Equal(t, []QuotaTag{QuotaIndigenous}, q.Tags())
	assert.True(t, q.IsValid())
}

func TestQuotaSelectionTagsSorted(t *testing.T) {
	q := NewQuotaSelection()
	require.NoError(t, q.Toggle(QuotaTrans))
	require.NoError(t, q.Toggle(QuotaBlack))
	require.NoError(t, q.Toggle(QuotaRefugee))

	assert.Equal(t, []QuotaTag{QuotaBlack, QuotaRefugee, QuotaTrans}, q.Tags())
}

func TestParseShift(t *testing.T) {
	for _, s := range []string{"morning", "afternoon", "evening", "full_time", "remote"} {
		_, err := ParseShift(s)
		assert.NoError(t, err)
	}
	_, err := ParseShift("night")
	assert.ErrorIs(t, err, ErrUnknownShift)
}

func TestValidateUniversityTypeAndProgram(t *testing.T) {
	assert.NoError(t, ValidateUniversityType(UniversityPublic))
	assert.NoError(t, ValidateUniversityType(UniversityAny))
	assert.ErrorIs(t, ValidateUniversityType("federal"), ErrUnknownUniversityType)

	assert.NoError(t, ValidateProgram(ProgramSisu))
	assert.NoError(t, ValidateProgram(ProgramAny))
	assert.ErrorIs(t, ValidateProgram("fies"), ErrUnknownProgram)
}
