// pkg/registry/registry_test.go
package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestRegistry(t *testing.T) string {
	content := `{
		"version": "1.0.0",
		"lastUpdated": "2026-08-01",
		"activities": [
			{
				"id": "act-001",
				"taskType": "calculate-household-income",
				"category": "eligibility",
				"inputSchema": {
					"type": "object",
					"required": ["userId", "memberCount"],
					"properties": {
						"userId": {"type": "string"},
						"memberCount": {"type": "integer", "minimum": 1}
					}
				},
				"outputSchema": {
					"type": "object",
					"required": ["perCapitaIncome"],
					"properties": {
						"perCapitaIncome": {"type": "number"}
					}
				},
				"errorCodes": ["VALIDATION_FAILED"]
			},
			{
				"id": "act-002",
				"taskType": "match-opportunities",
				"category": "matching"
			}
		]
	}`

	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRegistry(t *testing.T) {
	reg, err := LoadRegistry(writeTestRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", reg.Version)
	assert.Len(t, reg.Activities, 2)
}

func TestLoadRegistry_ShippedFile(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activities.json"))
	require.NoError(t, err)

	taskTypes := []string{
		"calculate-household-income",
		"validate-exam-scores",
		"validate-quota-selection",
		"load-registration-progress",
		"advance-registration-step",
		"save-exam-scores",
		"save-preference-profile",
		"build-match-request",
		"match-opportunities",
		"send-completion-notification",
	}

	assert.Len(t, reg.Activities, len(taskTypes))
	for _, taskType := range taskTypes {
		activity := reg.FindByTaskType(taskType)
		require.NotNil(t, activity, taskType)
		assert.NotEmpty(t, activity.InputSchema, taskType)
		assert.NotEmpty(t, activity.ErrorCodes, taskType)
	}

	// The income opt-out submission is a valid step payload.
	assert.NoError(t, reg.ValidateInput("advance-registration-step", map[string]interface{}{
		"userId":       "user-001",
		"step":         "income",
		"incomeOptOut": true,
	}))
	assert.Error(t, reg.ValidateInput("advance-registration-step", map[string]interface{}{
		"userId": "user-001",
		"step":   "profile",
	}))
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry("/nonexistent/registry.json")
	assert.Error(t, err)
}

func TestFindByTaskType(t *testing.T) {
	reg, err := LoadRegistry(writeTestRegistry(t))
	require.NoError(t, err)

	activity := reg.FindByTaskType("calculate-household-income")
	require.NotNil(t, activity)
	assert.Equal(t, "eligibility", activity.Category)

	assert.Nil(t, reg.FindByTaskType("unknown-task"))
}

func TestValidateInput(t *testing.T) {
	reg, err := LoadRegistry(writeTestRegistry(t))
	require.NoError(t, err)

	err = reg.ValidateInput("calculate-household-income", map[string]interface{}{
		"userId":      "user-001",
		"memberCount": 3,
	})
	assert.NoError(t, err)

	err = reg.ValidateInput("calculate-household-income", map[string]interface{}{
		"userId": "user-001",
	})
	assert.Error(t, err)

	err = reg.ValidateInput("calculate-household-income", map[string]interface{}{
		"userId":      "user-001",
		"memberCount": 0,
	})
	assert.Error(t, err)
}

func TestValidateInput_UnknownTaskType(t *testing.T) {
	reg, err := LoadRegistry(writeTestRegistry(t))
	require.NoError(t, err)

	assert.Error(t, reg.ValidateInput("does-not-exist", nil))
}

func TestValidate_NoSchemaAcceptsAnything(t *testing.T) {
	reg, err := LoadRegistry(writeTestRegistry(t))
	require.NoError(t, err)

	assert.NoError(t, reg.ValidateInput("match-opportunities", map[string]interface{}{
		"whatever": true,
	}))
	assert.NoError(t, reg.ValidateOutput("match-opportunities", nil))
}

func TestValidateOutput(t *testing.T) {
	reg, err := LoadRegistry(writeTestRegistry(t))
	require.NoError(t, err)

	assert.NoError(t, reg.ValidateOutput("calculate-household-income", map[string]interface{}{
		"perCapitaIncome": 566.67,
	}))
	assert.Error(t, reg.ValidateOutput("calculate-household-income", map[string]interface{}{}))
}
