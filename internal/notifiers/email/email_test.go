// internal/notifiers/email/email_test.go
package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "blueprint-leads/internal/common/errors"
	"blueprint-leads/internal/common/logger"
	"blueprint-leads/internal/lead"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

func testEmailConfig() Config {
	return Config{
		Region:        "ap-southeast-1",
		EmailEnabled:  true,
		FromEmail:     "noreply@purposetest.id",
		Recipients:    []string{"team@purposetest.id"},
		SMSEnabled:    true,
		OperatorPhone: "+6281111111111",
	}
}

func testLead() *lead.Lead {
	return &lead.Lead{
		ID:             "PT-1700000000000-ABCDEF",
		Name:           "Joshua",
		ContactHandle:  "+6281234567890",
		Email:          "joshua@example.com",
		Archetype:      "BUILDER",
		FaithJourney:   "stuck",
		Availability:   []string{"evenings"},
		SubmittedAtUTC: time.Date(2024, 11, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestLeadCreated_SendsSummaryEmail(t *testing.T) {
	var captured *ses.SendEmailInput
	sesMock := &MockSESService{
		SendEmailFunc: func(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			captured = params
			return &ses.SendEmailOutput{}, nil
		},
	}

	n := NewWithClients(logger.NewTestLogger(t), testEmailConfig(), sesMock, &MockSNSService{})

	err := n.LeadCreated(context.Background(), testLead())
	require.NoError(t, err)
	require.NotNil(t, captured)

	assert.Equal(t, []string{"team@purposetest.id"}, captured.Destination.ToAddresses)
	assert.Contains(t, *captured.Message.Subject.Data, "Joshua")
	assert.Contains(t, *captured.Message.Subject.Data, "BUILDER")
	assert.Contains(t, *captured.Message.Body.Text.Data, "+6281234567890")
	assert.Contains(t, *captured.Message.Body.Html.Data, "Joshua")
}

func TestLeadCreated_DisabledIsNoOp(t *testing.T) {
	cfg := testEmailConfig()
	cfg.EmailEnabled = false

	sesMock := &MockSESService{
		SendEmailFunc: func(_ context.Context, _ *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			t.Fatal("SendEmail must not be called when disabled")
			return nil, nil
		},
	}

	n := NewWithClients(logger.NewTestLogger(t), cfg, sesMock, &MockSNSService{})
	assert.NoError(t, n.LeadCreated(context.Background(), testLead()))
}

func TestLeadCreated_WrapsSESFailure(t *testing.T) {
	sesMock := &MockSESService{
		SendEmailFunc: func(_ context.Context, _ *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("throttled")
		},
	}

	n := NewWithClients(logger.NewTestLogger(t), testEmailConfig(), sesMock, &MockSNSService{})

	err := n.LeadCreated(context.Background(), testLead())
	require.Error(t, err)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeEmailSendFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestLeadCreated_HighIntentLeadPagesOperator(t *testing.T) {
	smsSent := false
	sesMock := &MockSESService{
		SendEmailFunc: func(_ context.Context, _ *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return &ses.SendEmailOutput{}, nil
		},
	}
	snsMock := &MockSNSService{
		PublishFunc: func(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
			smsSent = true
			assert.Contains(t, *params.Message, "follow-up")
			return &sns.PublishOutput{}, nil
		},
	}

	n := NewWithClients(logger.NewTestLogger(t), testEmailConfig(), sesMock, snsMock)

	l := testLead()
	l.FollowUpRequested = true
	require.NoError(t, n.LeadCreated(context.Background(), l))
	assert.True(t, smsSent)
}

func TestFollowUpFlagged_EmailsAndPagesOperator(t *testing.T) {
	emailSent := false
	smsSent := false

	sesMock := &MockSESService{
		SendEmailFunc: func(_ context.Context, _ *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			emailSent = true
			return &ses.SendEmailOutput{}, nil
		},
	}
	snsMock := &MockSNSService{
		PublishFunc: func(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
			smsSent = true
			assert.Equal(t, "+6281111111111", *params.PhoneNumber)
			assert.Contains(t, *params.Message, "+6281234567890")
			return &sns.PublishOutput{}, nil
		},
	}

	n := NewWithClients(logger.NewTestLogger(t), testEmailConfig(), sesMock, snsMock)

	require.NoError(t, n.FollowUpFlagged(context.Background(), "+6281234567890"))
	assert.True(t, emailSent)
	assert.True(t, smsSent)
}

func TestFollowUpFlagged_WrapsSNSFailure(t *testing.T) {
	cfg := testEmailConfig()
	cfg.EmailEnabled = false

	snsMock := &MockSNSService{
		PublishFunc: func(_ context.Context, _ *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("opted out")
		},
	}

	n := NewWithClients(logger.NewTestLogger(t), cfg, &MockSESService{}, snsMock)

	err := n.FollowUpFlagged(context.Background(), "+6281234567890")
	require.Error(t, err)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeSMSSendFailed, stdErr.Code)
}
