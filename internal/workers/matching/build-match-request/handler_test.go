// internal/workers/matching/build-match-request/handler_test.go
package buildmatchrequest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"opportunity-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{DefaultPageSize: 20, MaxPageSize: 100}
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

var preferenceColumns = []string{
	"course_interests", "enem_score", "preferred_shifts",
	"university_type", "program", "family_income_per_capita",
	"quota_types", "city", "state", "device_latitude", "device_longitude",
}

func expectFullProfile(mock sqlmock.Sqlmock, userID string) {
	mock.ExpectQuery(`SELECT course_interests`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(preferenceColumns).AddRow(
			pq.StringArray{"medicina"}, 720.5, pq.StringArray{"morning"},
			"public", "sisu", 566.67,
			pq.StringArray{"public_school"}, "Recife", "PE", -8.05, -34.9))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_FullProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectFullProfile(mock, "user-001")

	handler := NewHandler(createTestConfig(), db, newTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{UserID: "user-001"})

	require.NoError(t, err)
	assert.Equal(t, []string{"medicina"}, output.Filters.CourseInterests)
	require.NotNil(t, output.Filters.EnemScore)
	assert.Equal(t, 720.5, *output.Filters.EnemScore)
	assert.Equal(t, "public", *output.Filters.UniversityType)
	assert.Equal(t, "sisu", *output.Filters.Program)
	assert.InDelta(t, 566.67, *output.Filters.MaxIncomePerCapita, 0.0001)
	assert.Equal(t, []string{"public_school"}, output.Filters.QuotaTypes)
	assert.Equal(t, "Recife", *output.Filters.City)
	assert.InDelta(t, -8.05, *output.Filters.Latitude, 0.0001)
	assert.Equal(t, 1, output.Page)
	assert.Equal(t, 20, output.PageSize)
	assert.Len(t, output.RequestHash, 64)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_EmptyCollectionsSerializeAsNull(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT course_interests`).
		WithArgs("user-002").
		WillReturnRows(sqlmock.NewRows(preferenceColumns).AddRow(
			pq.StringArray{}, nil, pq.StringArray{},
			nil, nil, nil,
			pq.StringArray{}, nil, nil, nil, nil))

	handler := NewHandler(createTestConfig(), db, newTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{UserID: "user-002"})
	require.NoError(t, err)

	payload, err := json.Marshal(output.Filters)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "null", string(decoded["courseInterests"]))
	assert.Equal(t, "null", string(decoded["quotaTypes"]))
	assert.Equal(t, "null", string(decoded["enemScore"]))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_PaginationDefaultsAndCap(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{"defaults", 0, 0, 1, 20},
		{"negative page", -3, 10, 1, 10},
		{"capped page size", 2, 500, 2, 100},
		{"explicit values", 3, 50, 3, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			expectFullProfile(mock, "user-003")

			handler := NewHandler(createTestConfig(), db, newTestLogger(t))
			output, err := handler.Execute(context.Background(), &Input{
				UserID:   "user-003",
				Page:     tt.page,
				PageSize: tt.pageSize,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, output.Page)
			assert.Equal(t, tt.wantPageSize, output.PageSize)
		})
	}
}

func TestHandler_Execute_HashIsDeterministic(t *testing.T) {
	hashes := make([]string, 2)
	for i := range hashes {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)

		expectFullProfile(mock, "user-004")

		handler := NewHandler(createTestConfig(), db, newTestLogger(t))
		output, err := handler.Execute(context.Background(), &Input{UserID: "user-004"})
		require.NoError(t, err)
		hashes[i] = output.RequestHash
		db.Close()
	}
	assert.Equal(t, hashes[0], hashes[1])
}

func TestHandler_Execute_PaginationChangesHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectFullProfile(mock, "user-005")
	expectFullProfile(mock, "user-005")

	handler := NewHandler(createTestConfig(), db, newTestLogger(t))
	first, err := handler.Execute(context.Background(), &Input{UserID: "user-005", Page: 1})
	require.NoError(t, err)
	second, err := handler.Execute(context.Background(), &Input{UserID: "user-005", Page: 2})
	require.NoError(t, err)

	assert.NotEqual(t, first.RequestHash, second.RequestHash)
}

func TestHandler_Execute_NoProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT course_interests`).
		WithArgs("user-006").
		WillReturnRows(sqlmock.NewRows(preferenceColumns))

	handler := NewHandler(createTestConfig(), db, newTestLogger(t))
	_, err = handler.Execute(context.Background(), &Input{UserID: "user-006"})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestHandler_Execute_QueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT course_interests`).
		WithArgs("user-007").
		WillReturnError(errors.New("connection reset"))

	handler := NewHandler(createTestConfig(), db, newTestLogger(t))
	_, err = handler.Execute(context.Background(), &Input{UserID: "user-007"})

	assert.ErrorIs(t, err, ErrDatabaseQueryFailed)
}
