// Package errors defines the error codes workers report to the workflow
// engine and the retry policy attached to each code.
package errors

// ErrorCode identifies a failure class. Handlers put the code in the job
// fail message so the process model can branch on it.
type ErrorCode string

const (
	// Local validation: malformed numeric text, out-of-range score,
	// missing required field. Recovered inline, never retried.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Precondition violations are programming defects (e.g. computing
	// per-capita income for a zero-member household). Never retried.
	ErrCodePreconditionViolation ErrorCode = "PRECONDITION_VIOLATION"

	ErrCodeInvalidStepValue   ErrorCode = "INVALID_STEP_VALUE"
	ErrCodeStepConflict       ErrorCode = "STEP_CONFLICT"
	ErrCodeSubmissionInFlight ErrorCode = "SUBMISSION_IN_FLIGHT"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseQueryFailed      ErrorCode = "DATABASE_QUERY_FAILED"
	ErrCodePersistenceFailed        ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeMatchQueryFailed ErrorCode = "MATCH_QUERY_FAILED"
	ErrCodeMatchTimeout     ErrorCode = "MATCH_TIMEOUT"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	// Non-fatal: geolocation denied or unavailable. Logged and ignored,
	// never thrown to the workflow engine.
	ErrCodeGeolocationUnavailable ErrorCode = "GEOLOCATION_UNAVAILABLE"
)

// GetRetryCount returns the retry count handlers pass to FailJob for a code.
// Persistence gets exactly one retry before surfacing to the user.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseQueryFailed,
		ErrCodeMatchQueryFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeMatchTimeout:
		return 2

	case ErrCodePersistenceFailed:
		return 1

	default:
		return 0 // Business/validation errors: no retry
	}
}
