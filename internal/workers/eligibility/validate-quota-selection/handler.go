// internal/workers/eligibility/validate-quota-selection/handler.go
package validatequotaselection

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
	TaskType = "validate-quota-selection"
)

var (
	ErrUnknownQuotaType = errors.New("VALIDATION_FAILED")
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
		h.failJob(client, job, "VALIDATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

// execute validates a quota-step submission. Unknown tag values fail the
// job outright since the UI only offers values from the closed set; an
// empty selection without the explicit opt-out is reported as not valid.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.NoQuotaDeclared && len(input.QuotaTypes) > 0 {
		return &Output{
			Valid:  false,
			Reason: "quota tags and the no-quota declaration are mutually exclusive",
		}, nil
	}

	selection := models.NewQuotaSelection()
	selection.SetNoQuota(input.NoQuotaDeclared)

	for _, raw := range input.QuotaTypes {
		tag, err := models.ParseQuotaTag(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnknownQuotaType, err)
		}
		if !selection.Has(tag) {
			if err := selection.Toggle(tag); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnknownQuotaType, err)
			}
		}
	}

	normalized := make([]string, 0, len(selection.Tags()))
	for _, tag := range selection.Tags() {
		normalized = append(normalized, string(tag))
	}

	output := &Output{
		Valid:           selection.IsValid(),
		NormalizedTags:  normalized,
		NoQuotaDeclared: selection.NoQuotaDeclared,
	}
	if !output.Valid {
		output.Reason = "select at least one quota type or declare no quota"
	}

	h.logger.Info("quota selection validated", map[string]interface{}{
		"userId":          input.UserID,
		"valid":           output.Valid,
		"tagCount":        len(normalized),
		"noQuotaDeclared": output.NoQuotaDeclared,
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
