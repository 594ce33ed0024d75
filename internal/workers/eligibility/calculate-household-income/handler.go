// internal/workers/eligibility/calculate-household-income/handler.go
package calculatehouseholdincome

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"opportunity-workers/internal/common/logger"
	"opportunity-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "calculate-household-income"
)

var (
	ErrInvalidHousehold      = errors.New("VALIDATION_FAILED")
	ErrPreconditionViolation = errors.New("PRECONDITION_VIOLATION")
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
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
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "VALIDATION_FAILED"
		if errors.Is(err, ErrPreconditionViolation) {
			errorCode = "PRECONDITION_VIOLATION"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	household := models.HouseholdIncome{
		MemberCount:    input.MemberCount,
		MemberIncomes:  input.MemberIncomes,
		SocialBenefits: input.SocialBenefits,
		Alimony:        input.Alimony,
	}

	summary, err := household.Compute(h.config.MinimumWage)
	if err != nil {
		// A zero member count (or unset wage config) means the caller
		// invoked the calculation too early, not that the user typed
		// something wrong.
		if errors.Is(err, models.ErrNoHouseholdMembers) || errors.Is(err, models.ErrInvalidMinimumWage) {
			return nil, fmt.Errorf("%w: %v", ErrPreconditionViolation, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidHousehold, err)
	}

	h.logger.Info("household income calculated", map[string]interface{}{
		"userId":              input.UserID,
		"memberCount":         input.MemberCount,
		"perCapitaIncome":     summary.PerCapita,
		"minimumWageMultiple": summary.MinimumWageMultiple,
	})

	return &Output{
		TotalIncome:           summary.Total,
		PerCapitaIncome:       summary.PerCapita,
		MinimumWageMultiple:   summary.MinimumWageMultiple,
		FormattedTotal:        models.FormatBRL(summary.Total),
		FormattedPerCapita:    models.FormatBRL(summary.PerCapita),
		FormattedWageMultiple: models.FormatWageMultiple(summary.MinimumWageMultiple),
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
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
