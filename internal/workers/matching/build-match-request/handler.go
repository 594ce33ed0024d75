// internal/workers/matching/build-match-request/handler.go
package buildmatchrequest

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "opportunity-workers/internal/common/errors"
	"opportunity-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/lib/pq"
)

const (
	TaskType = "build-match-request"
)

var (
	ErrInvalidInput        = errors.New("VALIDATION_FAILED")
	ErrDatabaseQueryFailed = errors.New("DATABASE_QUERY_FAILED")
)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "VALIDATION_FAILED"
		if errors.Is(err, ErrDatabaseQueryFailed) {
			errorCode = "DATABASE_QUERY_FAILED"
		}
		retries := int32(apperrors.GetRetryCount(apperrors.ErrorCode(errorCode)))
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

// execute assembles the matcher request from the stored preference profile.
// Only answered preferences constrain the search: absent fields stay null.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}

	var (
		courseInterests pq.StringArray
		enemScore       sql.NullFloat64
		shifts          pq.StringArray
		universityType  sql.NullString
		program         sql.NullString
		incomePerCapita sql.NullFloat64
		quotaTypes      pq.StringArray
		city            sql.NullString
		state           sql.NullString
		latitude        sql.NullFloat64
		longitude       sql.NullFloat64
	)

	err := h.db.QueryRowContext(ctx, `
		SELECT course_interests, enem_score, preferred_shifts,
		       university_type, program, family_income_per_capita,
		       quota_types, city, state, device_latitude, device_longitude
		FROM user_preferences
		WHERE user_id = $1`, input.UserID).
		Scan(&courseInterests, &enemScore, &shifts, &universityType, &program,
			&incomePerCapita, &quotaTypes, &city, &state, &latitude, &longitude)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no preference profile for user %s", ErrInvalidInput, input.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load preferences: %v", ErrDatabaseQueryFailed, err)
	}

	filters := Filters{
		CourseInterests: nonEmpty(courseInterests),
		PreferredShifts: nonEmpty(shifts),
		QuotaTypes:      nonEmpty(quotaTypes),
	}
	if enemScore.Valid {
		filters.EnemScore = &enemScore.Float64
	}
	if universityType.Valid {
		filters.UniversityType = &universityType.String
	}
	if program.Valid {
		filters.Program = &program.String
	}
	if incomePerCapita.Valid {
		filters.MaxIncomePerCapita = &incomePerCapita.Float64
	}
	if city.Valid {
		filters.City = &city.String
	}
	if state.Valid {
		filters.State = &state.String
	}
	if latitude.Valid && longitude.Valid {
		filters.Latitude = &latitude.Float64
		filters.Longitude = &longitude.Float64
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize < 1 {
		pageSize = h.config.DefaultPageSize
	}
	if pageSize > h.config.MaxPageSize {
		pageSize = h.config.MaxPageSize
	}

	hash, err := requestHash(filters, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: hash request: %v", ErrInvalidInput, err)
	}

	h.logger.Info("match request built", map[string]interface{}{
		"userId":      input.UserID,
		"page":        page,
		"pageSize":    pageSize,
		"requestHash": hash,
	})

	return &Output{
		Filters:     filters,
		Page:        page,
		PageSize:    pageSize,
		RequestHash: hash,
	}, nil
}

func nonEmpty(arr pq.StringArray) []string {
	if len(arr) == 0 {
		return nil
	}
	return []string(arr)
}

// requestHash canonicalizes via JSON: the Filters field order is fixed by
// the struct, so equal requests always produce equal digests.
func requestHash(filters Filters, page, pageSize int) (string, error) {
	payload, err := json.Marshal(struct {
		Filters  Filters `json:"filters"`
		Page     int     `json:"page"`
		PageSize int     `json:"pageSize"`
	}{filters, page, pageSize})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	} else {
		h.logger.Info("job completed successfully", map[string]interface{}{
			"jobKey": job.Key,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
