// internal/workers/matching/match-opportunities/handler.go
package matchopportunities

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "opportunity-workers/internal/common/errors"
	"opportunity-workers/internal/common/logger"
	"opportunity-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "match-opportunities"
)

var (
	ErrInvalidInput     = errors.New("VALIDATION_FAILED")
	ErrMatchQueryFailed = errors.New("MATCH_QUERY_FAILED")
	ErrMatchTimeout     = errors.New("MATCH_TIMEOUT")
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redisClient *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redisClient,
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
		switch {
		case errors.Is(err, ErrMatchTimeout):
			errorCode = "MATCH_TIMEOUT"
		case errors.Is(err, ErrMatchQueryFailed):
			errorCode = "MATCH_QUERY_FAILED"
		}
		retries := int32(apperrors.GetRetryCount(apperrors.ErrorCode(errorCode)))
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

// execute runs the opaque match_opportunities database function. Its
// internals (eligibility rules, distance weighting, ranking) belong to the
// database; this worker only transports filters in and results out, with a
// short-lived cache in front keyed by the request hash.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if len(input.Filters) == 0 {
		return nil, fmt.Errorf("%w: filters are required", ErrInvalidInput)
	}
	if input.Page < 1 || input.PageSize < 1 {
		return nil, fmt.Errorf("%w: pagination must be positive", ErrInvalidInput)
	}

	cacheKey := ""
	if input.RequestHash != "" {
		cacheKey = "match:" + input.RequestHash
		cached, err := h.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			metrics.MatchCacheHits.WithLabelValues("hit").Inc()
			h.logger.Info("match served from cache", map[string]interface{}{
				"requestHash": input.RequestHash,
			})
			return &Output{
				Results:  json.RawMessage(cached),
				Page:     input.Page,
				PageSize: input.PageSize,
				CacheHit: true,
			}, nil
		}
		if !errors.Is(err, redis.Nil) {
			h.logger.Warn("match cache read failed", map[string]interface{}{
				"requestHash": input.RequestHash,
				"error":       err,
			})
		}
		metrics.MatchCacheHits.WithLabelValues("miss").Inc()
	}

	var results []byte
	err := h.db.QueryRowContext(ctx,
		`SELECT match_opportunities($1::jsonb, $2, $3)`,
		[]byte(input.Filters), input.PageSize, input.Page).Scan(&results)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrMatchTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrMatchQueryFailed, err)
	}

	if cacheKey != "" {
		if err := h.redis.Set(ctx, cacheKey, string(results), h.config.CacheTTL).Err(); err != nil {
			h.logger.Warn("match cache write failed", map[string]interface{}{
				"requestHash": input.RequestHash,
				"error":       err,
			})
		}
	}

	h.logger.Info("match query executed", map[string]interface{}{
		"requestHash": input.RequestHash,
		"page":        input.Page,
		"pageSize":    input.PageSize,
		"resultBytes": len(results),
	})

	return &Output{
		Results:  json.RawMessage(results),
		Page:     input.Page,
		PageSize: input.PageSize,
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
