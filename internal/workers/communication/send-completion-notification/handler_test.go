// internal/workers/communication/send-completion-notification/handler_test.go
package sendcompletionnotification

import (
	"context"
	"errors"
	"testing"

	"opportunity-workers/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		EmailEnabled: true,
		SMSEnabled:   true,
		FromEmail:    "noreply@example.com",
	}
}

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

type mockSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{}, nil
}

type mockSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &sns.PublishOutput{}, nil
}

func newTestHandler(t *testing.T, config *Config, sesMock SESService, snsMock SNSService) *Handler {
	return &Handler{
		config:    config,
		logger:    newTestLogger(t),
		sesClient: sesMock,
		snsClient: snsMock,
	}
}

func createTestInput() *Input {
	return &Input{
		UserID:                "user-001",
		Name:                  "Maria",
		Email:                 "maria@example.com",
		PhoneNumber:           "+5581999990000",
		FormattedPerCapita:    "R$ 566,67",
		FormattedWageMultiple: "0,37",
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_BothChannels(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	handler := newTestHandler(t, createTestConfig(), sesMock, snsMock)

	output, err := handler.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, []string{ChannelEmail, ChannelSMS}, output.Channels)
	assert.NotEmpty(t, output.NotificationID)

	require.Len(t, sesMock.inputs, 1)
	assert.Equal(t, "noreply@example.com", *sesMock.inputs[0].Source)
	assert.Contains(t, *sesMock.inputs[0].Message.Body.Text.Data, "R$ 566,67")

	require.Len(t, snsMock.inputs, 1)
	assert.Equal(t, "+5581999990000", *snsMock.inputs[0].PhoneNumber)
}

func TestHandler_Execute_EmailOnly(t *testing.T) {
	config := createTestConfig()
	config.SMSEnabled = false

	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	handler := newTestHandler(t, config, sesMock, snsMock)

	output, err := handler.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, []string{ChannelEmail}, output.Channels)
	assert.Empty(t, snsMock.inputs)
}

func TestHandler_Execute_NoChannelAvailable(t *testing.T) {
	config := createTestConfig()
	config.EmailEnabled = false
	config.SMSEnabled = false

	handler := newTestHandler(t, config, &mockSES{}, &mockSNS{})
	output, err := handler.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
	assert.Empty(t, output.Channels)
}

func TestHandler_Execute_MissingContactTreatedAsDisabled(t *testing.T) {
	input := createTestInput()
	input.Email = ""
	input.PhoneNumber = ""

	handler := newTestHandler(t, createTestConfig(), &mockSES{}, &mockSNS{})
	output, err := handler.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
}

func TestHandler_Execute_PartialFailure(t *testing.T) {
	sesMock := &mockSES{err: errors.New("ses throttled")}
	snsMock := &mockSNS{}
	handler := newTestHandler(t, createTestConfig(), sesMock, snsMock)

	output, err := handler.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, StatusPartial, output.Status)
	assert.Equal(t, []string{ChannelSMS}, output.Channels)
}

func TestHandler_Execute_AllChannelsFail(t *testing.T) {
	sesMock := &mockSES{err: errors.New("ses throttled")}
	snsMock := &mockSNS{err: errors.New("sns unavailable")}
	handler := newTestHandler(t, createTestConfig(), sesMock, snsMock)

	_, err := handler.Execute(context.Background(), createTestInput())

	assert.ErrorIs(t, err, ErrNotificationSendFailed)
}

func TestHandler_Execute_MissingUserID(t *testing.T) {
	handler := newTestHandler(t, createTestConfig(), &mockSES{}, &mockSNS{})

	_, err := handler.Execute(context.Background(), &Input{Name: "Maria"})

	assert.ErrorIs(t, err, ErrInvalidRecipient)
}
