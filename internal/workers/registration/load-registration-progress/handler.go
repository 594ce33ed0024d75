// internal/workers/registration/load-registration-progress/handler.go
package loadregistrationprogress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "opportunity-workers/internal/common/errors"
	"opportunity-workers/internal/common/logger"
	"opportunity-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/lib/pq"
)

const (
	TaskType = "load-registration-progress"
)

var (
	ErrDatabaseQueryFailed = errors.New("DATABASE_QUERY_FAILED")
	ErrMissingUserID       = errors.New("VALIDATION_FAILED")
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrMissingUserID)
	}

	var (
		step            string
		quotaTypes      pq.StringArray
		noQuotaDeclared sql.NullBool
		incomePerCapita sql.NullFloat64
		householdJSON   []byte
	)

	err := h.db.QueryRowContext(ctx, `
		SELECT registration_step, quota_types, no_quota_declared,
		       family_income_per_capita, household_income
		FROM user_preferences
		WHERE user_id = $1`, input.UserID).
		Scan(&step, &quotaTypes, &noQuotaDeclared, &incomePerCapita, &householdJSON)

	if errors.Is(err, sql.ErrNoRows) {
		h.logger.Info("no registration progress found", map[string]interface{}{
			"userId": input.UserID,
		})
		return &Output{
			Step:       string(models.StepIntro),
			NewUser:    true,
			QuotaTypes: []string{},
			ExamScores: []models.ExamScoreRecord{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load preferences: %v", ErrDatabaseQueryFailed, err)
	}

	parsedStep, err := models.ParseStep(step)
	if err != nil {
		return nil, fmt.Errorf("%w: stored step invalid: %v", ErrDatabaseQueryFailed, err)
	}

	output := &Output{
		Step:            string(parsedStep),
		Completed:       parsedStep.IsTerminal(),
		QuotaTypes:      []string(quotaTypes),
		NoQuotaDeclared: noQuotaDeclared.Valid && noQuotaDeclared.Bool,
		ExamScores:      []models.ExamScoreRecord{},
	}
	if output.QuotaTypes == nil {
		output.QuotaTypes = []string{}
	}
	if incomePerCapita.Valid {
		output.IncomePerCapita = &incomePerCapita.Float64
	}
	if len(householdJSON) > 0 {
		var household models.HouseholdIncome
		if err := json.Unmarshal(householdJSON, &household); err != nil {
			h.logger.Warn("stored household income unreadable", map[string]interface{}{
				"userId": input.UserID,
				"error":  err,
			})
		} else {
			output.HouseholdIncome = &household
		}
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT exam_year, languages, humanities, natural_sciences, mathematics, writing
		FROM user_exam_scores
		WHERE user_id = $1
		ORDER BY exam_year`, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: load exam scores: %v", ErrDatabaseQueryFailed, err)
	}
	defer rows.Close()

	for rows.Next() {
		var record models.ExamScoreRecord
		if err := rows.Scan(&record.Year, &record.Languages, &record.Humanities,
			&record.NaturalSciences, &record.Mathematics, &record.Writing); err != nil {
			return nil, fmt.Errorf("%w: scan exam scores: %v", ErrDatabaseQueryFailed, err)
		}
		output.ExamScores = append(output.ExamScores, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate exam scores: %v", ErrDatabaseQueryFailed, err)
	}

	h.logger.Info("registration progress loaded", map[string]interface{}{
		"userId":     input.UserID,
		"step":       output.Step,
		"completed":  output.Completed,
		"examYears":  len(output.ExamScores),
		"quotaCount": len(output.QuotaTypes),
	})

	return output, nil
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
