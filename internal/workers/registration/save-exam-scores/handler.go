// internal/workers/registration/save-exam-scores/handler.go
package saveexamscores

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "opportunity-workers/internal/common/errors"
	"opportunity-workers/internal/common/logger"
	"opportunity-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "save-exam-scores"
)

var (
	ErrInvalidScore      = errors.New("VALIDATION_FAILED")
	ErrPersistenceFailed = errors.New("PERSISTENCE_FAILED")
)

// scoreColumns whitelists the updatable columns; the field name is never
// interpolated from raw input.
var scoreColumns = map[string]string{
	models.FieldLanguages:       "languages",
	models.FieldHumanities:      "humanities",
	models.FieldNaturalSciences: "natural_sciences",
	models.FieldMathematics:     "mathematics",
	models.FieldWriting:         "writing",
}

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

// execute persists a single score field as the user types it, so a closed
// tab does not lose entered data. Whole-step validation happens on submit,
// not here.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidScore)
	}
	column, ok := scoreColumns[input.Field]
	if !ok {
		return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidScore, input.Field)
	}

	var value *float64
	if strings.TrimSpace(input.RawValue) != "" {
		parsed, err := models.ParseScore(input.RawValue)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidScore, err)
		}
		value = &parsed
	}

	query := fmt.Sprintf(`
		INSERT INTO user_exam_scores (user_id, exam_year, %s, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, exam_year) DO UPDATE SET
			%s = EXCLUDED.%s,
			updated_at = NOW()`, column, column, column)

	if _, err := h.db.ExecContext(ctx, query, input.UserID, input.Year, value); err != nil {
		return nil, fmt.Errorf("%w: upsert score field: %v", ErrPersistenceFailed, err)
	}

	h.logger.Debug("score field saved", map[string]interface{}{
		"userId": input.UserID,
		"year":   input.Year,
		"field":  input.Field,
	})

	return &Output{
		Saved: true,
		Year:  input.Year,
		Field: input.Field,
		Value: value,
	}, nil
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
