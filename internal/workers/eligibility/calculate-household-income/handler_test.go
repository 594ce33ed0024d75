// internal/workers/eligibility/calculate-household-income/handler_test.go
package calculatehouseholdincome

import (
	"context"
	"testing"

	"opportunity-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{MinimumWage: 1518.00}
}

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		UserID:         "user-001",
		MemberCount:    3,
		MemberIncomes:  []float64{1200.00, 0, 0},
		SocialBenefits: 300.00,
		Alimony:        200.00,
	})

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.InDelta(t, 1700.00, output.TotalIncome, 0.0001)
	assert.InDelta(t, 566.6667, output.PerCapitaIncome, 0.0001)
	assert.InDelta(t, 0.3733, output.MinimumWageMultiple, 0.0001)
	assert.Equal(t, "R$ 1.700,00", output.FormattedTotal)
	assert.Equal(t, "R$ 566,67", output.FormattedPerCapita)
	assert.Equal(t, "0,37", output.FormattedWageMultiple)
}

func TestHandler_Execute_SingleMemberAtMinimumWage(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		UserID:        "user-002",
		MemberCount:   1,
		MemberIncomes: []float64{1518.00},
	})

	require.NoError(t, err)
	assert.InDelta(t, 1.0, output.MinimumWageMultiple, 0.0001)
	assert.Equal(t, "1,00", output.FormattedWageMultiple)
}

func TestHandler_Execute_ZeroMemberCount(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		UserID:        "user-003",
		MemberCount:   0,
		MemberIncomes: []float64{},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPreconditionViolation)
	assert.Nil(t, output)
}

func TestHandler_Execute_MismatchedIncomes(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		UserID:        "user-004",
		MemberCount:   4,
		MemberIncomes: []float64{500.00},
	})

	assert.ErrorIs(t, err, ErrInvalidHousehold)
}

func TestHandler_Execute_NegativeIncome(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		UserID:        "user-005",
		MemberCount:   2,
		MemberIncomes: []float64{800.00, -100.00},
	})

	assert.ErrorIs(t, err, ErrInvalidHousehold)
}
