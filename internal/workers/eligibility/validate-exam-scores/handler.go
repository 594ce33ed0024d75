// internal/workers/eligibility/validate-exam-scores/handler.go
package validateexamscores

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"opportunity-workers/internal/common/logger"
	"opportunity-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-exam-scores"
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

// execute validates the entered scores. Per-field problems are reported in
// the output rather than failing the job: the process routes on "valid" and
// shows the field errors back to the user.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.DidNotTakeExam {
		return h.optOutOutput(input), nil
	}

	collector := models.NewScoreCollector()
	fieldErrors := []FieldError{}

	for _, entry := range input.Years {
		for _, field := range models.ScoreFieldNames {
			raw, ok := entry.Fields[field]
			if !ok {
				continue
			}
			if err := collector.SetField(entry.Year, field, raw); err != nil {
				fieldErrors = append(fieldErrors, FieldError{
					Year:    entry.Year,
					Field:   field,
					Message: err.Error(),
				})
			}
		}
	}

	completeYears := collector.CompleteYears()
	records := make([]models.ExamScoreRecord, 0, len(completeYears))
	for _, year := range completeYears {
		records = append(records, *collector.Record(year))
	}

	valid := len(fieldErrors) == 0 && collector.HasAnyCompleteYear()

	h.logger.Info("exam scores validated", map[string]interface{}{
		"userId":        input.UserID,
		"valid":         valid,
		"completeYears": completeYears,
		"fieldErrors":   len(fieldErrors),
	})

	return &Output{
		Valid:              valid,
		HasAnyCompleteYear: collector.HasAnyCompleteYear(),
		CompleteYears:      completeYears,
		Records:            records,
		FieldErrors:        fieldErrors,
	}, nil
}

// optOutOutput produces one zero-score record per submitted year, the
// stored marker for "did not take the exam".
func (h *Handler) optOutOutput(input *Input) *Output {
	years := make([]int, 0, len(input.Years))
	for _, entry := range input.Years {
		years = append(years, entry.Year)
	}
	if len(years) == 0 {
		years = append(years, time.Now().Year())
	}
	sort.Ints(years)

	records := make([]models.ExamScoreRecord, 0, len(years))
	for _, year := range years {
		records = append(records, *models.ZeroScoreRecord(year))
	}

	h.logger.Info("exam opt-out recorded", map[string]interface{}{
		"userId": input.UserID,
		"years":  years,
	})

	return &Output{
		Valid:              true,
		HasAnyCompleteYear: true,
		CompleteYears:      years,
		Records:            records,
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
