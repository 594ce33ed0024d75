// internal/workers/registration/advance-registration-step/handler.go
package advanceregistrationstep

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "opportunity-workers/internal/common/errors"
	"opportunity-workers/internal/common/geo"
	"opportunity-workers/internal/common/logger"
	"opportunity-workers/internal/common/metrics"
	"opportunity-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "advance-registration-step"

	// CompletionMessageName correlates downstream processes (notification,
	// first match run) on the user who just finished the wizard.
	CompletionMessageName = "registration-completed"
)

var (
	ErrInvalidInput       = errors.New("VALIDATION_FAILED")
	ErrStepConflict       = errors.New("STEP_CONFLICT")
	ErrSubmissionInFlight = errors.New("SUBMISSION_IN_FLIGHT")
	ErrPersistenceFailed  = errors.New("PERSISTENCE_FAILED")
)

// CompletionPublisher announces wizard completion to the process engine.
type CompletionPublisher interface {
	PublishCompletion(ctx context.Context, userID string) error
}

type zeebePublisher struct {
	client zbc.Client
}

func NewZeebePublisher(client zbc.Client) CompletionPublisher {
	return &zeebePublisher{client: client}
}

func (p *zeebePublisher) PublishCompletion(ctx context.Context, userID string) error {
	cmd, err := p.client.NewPublishMessageCommand().
		MessageName(CompletionMessageName).
		CorrelationKey(userID).
		VariablesFromObject(map[string]interface{}{"userId": userID})
	if err != nil {
		return err
	}
	_, err = cmd.Send(ctx)
	return err
}

type Handler struct {
	config    *Config
	db        *sql.DB
	redis     *redis.Client
	locator   geo.Locator
	publisher CompletionPublisher
	logger    logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redisClient *redis.Client,
	locator geo.Locator, publisher CompletionPublisher, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		db:        db,
		redis:     redisClient,
		locator:   locator,
		publisher: publisher,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		switch {
		case errors.Is(err, ErrStepConflict):
			errorCode = "STEP_CONFLICT"
		case errors.Is(err, ErrSubmissionInFlight):
			errorCode = "SUBMISSION_IN_FLIGHT"
		case errors.Is(err, ErrPersistenceFailed):
			errorCode = "PERSISTENCE_FAILED"
		}
		retries := int32(apperrors.GetRetryCount(apperrors.ErrorCode(errorCode)))
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	submitted, err := models.ParseStep(input.Step)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := models.TargetStep(submitted); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// One submission per user at a time. The lock expires on its own if
	// this worker dies mid-write.
	lockKey := "registration:submit:" + input.UserID
	acquired, err := h.redis.SetNX(ctx, lockKey, "1", h.config.LockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: acquire submit lock: %v", ErrPersistenceFailed, err)
	}
	if !acquired {
		return nil, fmt.Errorf("%w: submission already in progress for user %s",
			ErrSubmissionInFlight, input.UserID)
	}
	defer h.redis.Del(context.Background(), lockKey)

	current, err := h.loadCurrentStep(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if models.AlreadyPassed(current, submitted) {
		h.logger.Info("step already passed, skipping", map[string]interface{}{
			"userId":    input.UserID,
			"current":   string(current),
			"submitted": string(submitted),
		})
		return &Output{
			Step:      string(current),
			Completed: current.IsTerminal(),
			NoOp:      true,
		}, nil
	}
	if !models.CanSubmit(current, submitted) {
		return nil, fmt.Errorf("%w: cannot submit %s while at %s",
			ErrStepConflict, submitted, current)
	}

	if err := h.validatePayload(input, submitted); err != nil {
		return nil, err
	}

	target, _ := models.TargetStep(submitted)

	// Step data and the new step land in one transaction. A failed write
	// gets one immediate retry before the job errors out.
	if err = h.persist(ctx, input, submitted, target); err != nil {
		h.logger.Warn("persist failed, retrying once", map[string]interface{}{
			"userId": input.UserID,
			"step":   string(submitted),
			"error":  err,
		})
		if err = h.persist(ctx, input, submitted, target); err != nil {
			return nil, err
		}
	}

	metrics.RegistrationStepAdvanced.WithLabelValues(string(target)).Inc()

	if target.IsTerminal() {
		h.onCompletion(ctx, input)
	}

	h.logger.Info("registration step advanced", map[string]interface{}{
		"userId": input.UserID,
		"from":   string(current),
		"to":     string(target),
	})

	return &Output{
		Step:      string(target),
		Completed: target.IsTerminal(),
	}, nil
}

func (h *Handler) loadCurrentStep(ctx context.Context, userID string) (models.Step, error) {
	var raw string
	err := h.db.QueryRowContext(ctx,
		`SELECT registration_step FROM user_preferences WHERE user_id = $1`,
		userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return models.StepIntro, nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: load current step: %v", ErrPersistenceFailed, err)
	}
	step, err := models.ParseStep(raw)
	if err != nil {
		return "", fmt.Errorf("%w: stored step invalid: %v", ErrPersistenceFailed, err)
	}
	return step, nil
}

func (h *Handler) validatePayload(input *Input, submitted models.Step) error {
	switch submitted {
	case models.StepScores:
		if len(input.ExamScores) == 0 {
			return fmt.Errorf("%w: scores step requires at least one record", ErrInvalidInput)
		}
		complete := false
		for _, record := range input.ExamScores {
			if record.IsComplete() {
				complete = true
				break
			}
		}
		if !complete {
			return fmt.Errorf("%w: scores step requires one complete exam year", ErrInvalidInput)
		}
	case models.StepQuotas:
		if input.NoQuotaDeclared && len(input.QuotaTypes) > 0 {
			return fmt.Errorf("%w: quota tags and no-quota declaration are mutually exclusive", ErrInvalidInput)
		}
		if !input.NoQuotaDeclared && len(input.QuotaTypes) == 0 {
			return fmt.Errorf("%w: quotas step requires a selection or an opt-out", ErrInvalidInput)
		}
		for _, raw := range input.QuotaTypes {
			if _, err := models.ParseQuotaTag(raw); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
		}
	case models.StepIncome:
		if input.IncomeOptOut {
			if input.HouseholdIncome != nil {
				return fmt.Errorf("%w: income data and the income opt-out are mutually exclusive", ErrInvalidInput)
			}
			return nil
		}
		if input.HouseholdIncome == nil {
			return fmt.Errorf("%w: income step requires the household composition or an opt-out", ErrInvalidInput)
		}
		if input.PerCapitaIncome == nil {
			if _, err := input.HouseholdIncome.Compute(h.config.MinimumWage); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
		}
	}
	return nil
}

func (h *Handler) persist(ctx context.Context, input *Input, submitted, target models.Step) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrPersistenceFailed, err)
	}
	defer tx.Rollback()

	switch submitted {
	case models.StepScores:
		for _, record := range input.ExamScores {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO user_exam_scores (
					user_id, exam_year, languages, humanities,
					natural_sciences, mathematics, writing, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
				ON CONFLICT (user_id, exam_year) DO UPDATE SET
					languages = EXCLUDED.languages,
					humanities = EXCLUDED.humanities,
					natural_sciences = EXCLUDED.natural_sciences,
					mathematics = EXCLUDED.mathematics,
					writing = EXCLUDED.writing,
					updated_at = NOW()`,
				input.UserID, record.Year, record.Languages, record.Humanities,
				record.NaturalSciences, record.Mathematics, record.Writing)
			if err != nil {
				return fmt.Errorf("%w: upsert exam scores: %v", ErrPersistenceFailed, err)
			}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO user_preferences (user_id, registration_step, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (user_id) DO UPDATE SET
				registration_step = EXCLUDED.registration_step,
				updated_at = NOW()`,
			input.UserID, string(target))

	case models.StepQuotas:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO user_preferences (
				user_id, quota_types, no_quota_declared, registration_step, updated_at
			) VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (user_id) DO UPDATE SET
				quota_types = EXCLUDED.quota_types,
				no_quota_declared = EXCLUDED.no_quota_declared,
				registration_step = EXCLUDED.registration_step,
				updated_at = NOW()`,
			input.UserID, pq.Array(input.QuotaTypes), input.NoQuotaDeclared, string(target))

	case models.StepIncome:
		if input.IncomeOptOut {
			// Opting out advances the step only; stored income values, if
			// any, are inherited untouched.
			_, err = tx.ExecContext(ctx, `
				INSERT INTO user_preferences (user_id, registration_step, updated_at)
				VALUES ($1, $2, NOW())
				ON CONFLICT (user_id) DO UPDATE SET
					registration_step = EXCLUDED.registration_step,
					updated_at = NOW()`,
				input.UserID, string(target))
			break
		}
		perCapita := input.PerCapitaIncome
		if perCapita == nil {
			summary, cerr := input.HouseholdIncome.Compute(h.config.MinimumWage)
			if cerr != nil {
				return fmt.Errorf("%w: %v", ErrInvalidInput, cerr)
			}
			perCapita = &summary.PerCapita
		}
		householdJSON, merr := json.Marshal(input.HouseholdIncome)
		if merr != nil {
			return fmt.Errorf("%w: marshal household income: %v", ErrPersistenceFailed, merr)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO user_preferences (
				user_id, family_income_per_capita, household_income,
				registration_step, updated_at
			) VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (user_id) DO UPDATE SET
				family_income_per_capita = EXCLUDED.family_income_per_capita,
				household_income = EXCLUDED.household_income,
				registration_step = EXCLUDED.registration_step,
				updated_at = NOW()`,
			input.UserID, *perCapita, householdJSON, string(target))
	}
	if err != nil {
		return fmt.Errorf("%w: write step: %v", ErrPersistenceFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrPersistenceFailed, err)
	}
	return nil
}

// onCompletion runs the side effects of finishing the wizard. Both are best
// effort: the registration is already committed and must not be rolled back
// by a flaky lookup or broker hiccup.
func (h *Handler) onCompletion(ctx context.Context, input *Input) {
	metrics.RegistrationCompleted.Inc()

	if h.locator != nil && input.ClientIP != "" {
		coords, err := h.locator.Locate(ctx, input.ClientIP)
		if err != nil {
			h.logger.Warn("geolocation lookup failed", map[string]interface{}{
				"userId": input.UserID,
				"error":  err,
			})
		} else {
			_, err = h.db.ExecContext(ctx, `
				UPDATE user_preferences
				SET device_latitude = $2, device_longitude = $3, updated_at = NOW()
				WHERE user_id = $1`,
				input.UserID, coords.Latitude, coords.Longitude)
			if err != nil {
				h.logger.Warn("device location update failed", map[string]interface{}{
					"userId": input.UserID,
					"error":  err,
				})
			}
		}
	}

	if h.publisher != nil {
		if err := h.publisher.PublishCompletion(ctx, input.UserID); err != nil {
			h.logger.Error("completion message publish failed", map[string]interface{}{
				"userId": input.UserID,
				"error":  err,
			})
		}
	}
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
