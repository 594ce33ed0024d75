// internal/workers/communication/send-completion-notification/handler.go
package sendcompletionnotification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	commonaws "opportunity-workers/internal/common/aws"
	apperrors "opportunity-workers/internal/common/errors"
	"opportunity-workers/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-completion-notification"
)

var (
	ErrInvalidRecipient       = errors.New("VALIDATION_FAILED")
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func NewHandler(config *Config, log logger.Logger) (*Handler, error) {
	ctx := context.Background()

	sesClient, err := commonaws.NewSESClient(ctx, config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("init SES client: %w", err)
	}
	snsClient, err := commonaws.NewSNSClient(ctx, config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("init SNS client: %w", err)
	}

	return &Handler{
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		sesClient: sesClient,
		snsClient: snsClient,
	}, nil
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
		if errors.Is(err, ErrNotificationSendFailed) {
			errorCode = "NOTIFICATION_SEND_FAILED"
		}
		retries := int32(apperrors.GetRetryCount(apperrors.ErrorCode(errorCode)))
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

// execute notifies the user that registration finished and matching is
// live. Each enabled channel is attempted; the job fails only when every
// attempted channel fails.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidRecipient)
	}

	emailWanted := h.config.EmailEnabled && input.Email != ""
	smsWanted := h.config.SMSEnabled && input.PhoneNumber != ""

	if !emailWanted && !smsWanted {
		h.logger.Info("no notification channel available", map[string]interface{}{
			"userId": input.UserID,
		})
		return &Output{
			NotificationID: uuid.New().String(),
			Status:         StatusDisabled,
			Channels:       []string{},
			SentAt:         time.Now().UTC().Format(time.RFC3339),
		}, nil
	}

	sent := []string{}
	var lastErr error

	if emailWanted {
		if err := h.sendEmail(ctx, input); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"userId": input.UserID,
				"error":  err,
			})
			lastErr = err
		} else {
			sent = append(sent, ChannelEmail)
		}
	}

	if smsWanted {
		if err := h.sendSMS(ctx, input); err != nil {
			h.logger.Error("sms send failed", map[string]interface{}{
				"userId": input.UserID,
				"error":  err,
			})
			lastErr = err
		} else {
			sent = append(sent, ChannelSMS)
		}
	}

	if len(sent) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNotificationSendFailed, lastErr)
	}

	status := StatusSent
	if lastErr != nil {
		status = StatusPartial
	}

	h.logger.Info("completion notification sent", map[string]interface{}{
		"userId":   input.UserID,
		"status":   status,
		"channels": sent,
	})

	return &Output{
		NotificationID: uuid.New().String(),
		Status:         status,
		Channels:       sent,
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) sendEmail(ctx context.Context, input *Input) error {
	subject := "Seu cadastro foi concluído"
	body := fmt.Sprintf(
		"Olá %s,\n\nSeu cadastro foi concluído e já estamos buscando oportunidades para o seu perfil.\n",
		input.Name)
	if input.FormattedPerCapita != "" {
		body += fmt.Sprintf("\nRenda familiar per capita: %s", input.FormattedPerCapita)
	}
	if input.FormattedWageMultiple != "" {
		body += fmt.Sprintf("\nSalários mínimos por pessoa: %s", input.FormattedWageMultiple)
	}

	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(h.config.FromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{input.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, input *Input) error {
	message := fmt.Sprintf(
		"%s, seu cadastro foi concluído. Veja as oportunidades encontradas para você no app.",
		input.Name)

	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(input.PhoneNumber),
		Message:     aws.String(message),
	})
	return err
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
