// internal/workers/registration/save-preference-profile/handler.go
package savepreferenceprofile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "opportunity-workers/internal/common/errors"
	"opportunity-workers/internal/common/logger"
	"opportunity-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/lib/pq"
)

const (
	TaskType = "save-preference-profile"
)

var (
	ErrInvalidProfile    = errors.New("VALIDATION_FAILED")
	ErrPersistenceFailed = errors.New("PERSISTENCE_FAILED")
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
		if errors.Is(err, ErrPersistenceFailed) {
			errorCode = "PERSISTENCE_FAILED"
		}
		retries := int32(apperrors.GetRetryCount(apperrors.ErrorCode(errorCode)))
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

// execute saves the free-form preference editor, available any time after
// registration. Unlike the wizard it never touches registration_step.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidProfile)
	}
	if err := h.validate(input); err != nil {
		return nil, err
	}

	updatedAt := time.Now().UTC()
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO user_preferences (
			user_id, course_interests, enem_score, preferred_shifts,
			university_type, program, family_income_per_capita,
			quota_types, no_quota_declared, city, state,
			registration_step, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id) DO UPDATE SET
			course_interests = EXCLUDED.course_interests,
			enem_score = EXCLUDED.enem_score,
			preferred_shifts = EXCLUDED.preferred_shifts,
			university_type = EXCLUDED.university_type,
			program = EXCLUDED.program,
			family_income_per_capita = EXCLUDED.family_income_per_capita,
			quota_types = EXCLUDED.quota_types,
			no_quota_declared = EXCLUDED.no_quota_declared,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			updated_at = EXCLUDED.updated_at`,
		input.UserID,
		pq.Array(input.CourseInterests),
		input.EnemScore,
		pq.Array(input.PreferredShifts),
		input.UniversityType,
		input.Program,
		input.IncomePerCapita,
		pq.Array(input.QuotaTypes),
		input.NoQuotaDeclared,
		input.City,
		input.State,
		string(models.StepIntro),
		updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: upsert preferences: %v", ErrPersistenceFailed, err)
	}

	h.logger.Info("preference profile saved", map[string]interface{}{
		"userId":        input.UserID,
		"interestCount": len(input.CourseInterests),
		"quotaCount":    len(input.QuotaTypes),
	})

	return &Output{
		Saved:     true,
		UserID:    input.UserID,
		UpdatedAt: updatedAt.Format(time.RFC3339),
	}, nil
}

func (h *Handler) validate(input *Input) error {
	for _, raw := range input.PreferredShifts {
		if _, err := models.ParseShift(raw); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
		}
	}
	if input.UniversityType != nil {
		if err := models.ValidateUniversityType(*input.UniversityType); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
		}
	}
	if input.Program != nil {
		if err := models.ValidateProgram(*input.Program); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
		}
	}
	for _, raw := range input.QuotaTypes {
		if _, err := models.ParseQuotaTag(raw); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
		}
	}
	if input.NoQuotaDeclared && len(input.QuotaTypes) > 0 {
		return fmt.Errorf("%w: quota tags and no-quota declaration are mutually exclusive", ErrInvalidProfile)
	}
	if input.EnemScore != nil && (*input.EnemScore < 0 || *input.EnemScore > models.MaxExamScore) {
		return fmt.Errorf("%w: enem score out of range", ErrInvalidProfile)
	}
	if input.IncomePerCapita != nil && *input.IncomePerCapita < 0 {
		return fmt.Errorf("%w: income per capita must be non-negative", ErrInvalidProfile)
	}
	return nil
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
