// internal/notifiers/email/email.go
package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"blueprint-leads/internal/common/errors"
	"blueprint-leads/internal/common/logger"
	"blueprint-leads/internal/lead"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Config carries the delivery settings for the email collaborator.
type Config struct {
	Region        string
	EmailEnabled  bool
	FromEmail     string
	Recipients    []string
	SMSEnabled    bool
	OperatorPhone string
}

// Notifier emails the ministry team about every new lead and escalates
// follow-up requests over SMS.
type Notifier struct {
	config    Config
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

// New builds the notifier against real AWS clients.
func New(ctx context.Context, log logger.Logger, cfg Config) (*Notifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewWithClients(log, cfg, ses.NewFromConfig(awsCfg), sns.NewFromConfig(awsCfg)), nil
}

// NewWithClients injects the SES and SNS services, used by tests.
func NewWithClients(log logger.Logger, cfg Config, sesClient SESService, snsClient SNSService) *Notifier {
	return &Notifier{
		config:    cfg,
		logger:    log.WithFields(map[string]interface{}{"notifier": "email"}),
		sesClient: sesClient,
		snsClient: snsClient,
	}
}

func (n *Notifier) Name() string { return "email" }

// LeadCreated sends a plain-text and HTML summary of the lead to every
// configured recipient.
func (n *Notifier) LeadCreated(ctx context.Context, l *lead.Lead) error {
	if n.config.EmailEnabled && len(n.config.Recipients) > 0 {
		subject := fmt.Sprintf("New lead: %s (%s)", l.Name, l.Archetype)
		if err := n.sendEmail(ctx, subject, leadSummaryText(l), leadSummaryHTML(l)); err != nil {
			return errors.NewEmailSendFailedError(err)
		}
	}

	// High-intent leads page the operator immediately.
	if l.FollowUpRequested && n.config.SMSEnabled && n.config.OperatorPhone != "" {
		sms := fmt.Sprintf("New lead %s (%s) asked for follow-up: %s", l.Name, l.Archetype, l.ContactHandle)
		if err := n.sendSMS(ctx, n.config.OperatorPhone, sms); err != nil {
			return errors.NewSMSSendFailedError(err)
		}
	}

	n.logger.Info("Lead notifications delivered", map[string]interface{}{
		"lead_id":    l.ID,
		"recipients": len(n.config.Recipients),
	})
	return nil
}

// FollowUpFlagged emails the team and, when SMS is enabled, pages the
// operator phone so no follow-up request sits unseen.
func (n *Notifier) FollowUpFlagged(ctx context.Context, handle string) error {
	message := fmt.Sprintf("Follow-up requested by %s. Please reach out within 24 hours.", handle)

	if n.config.EmailEnabled && len(n.config.Recipients) > 0 {
		subject := "Lead follow-up requested"
		if err := n.sendEmail(ctx, subject, message, "<p>"+message+"</p>"); err != nil {
			return errors.NewEmailSendFailedError(err)
		}
	}

	if n.config.SMSEnabled && n.config.OperatorPhone != "" {
		if err := n.sendSMS(ctx, n.config.OperatorPhone, message); err != nil {
			return errors.NewSMSSendFailedError(err)
		}
	}

	return nil
}

func (n *Notifier) sendEmail(ctx context.Context, subject, text, html string) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: n.config.Recipients,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(text)},
				Html: &types.Content{Data: aws.String(html)},
			},
		},
		Source: aws.String(n.config.FromEmail),
	})
	return err
}

func (n *Notifier) sendSMS(ctx context.Context, to, message string) error {
	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}

func leadSummaryText(l *lead.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", l.Name)
	fmt.Fprintf(&b, "WhatsApp: %s\n", l.ContactHandle)
	if l.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", l.Email)
	}
	fmt.Fprintf(&b, "Archetype: %s\n", l.Archetype)
	if l.FaithJourney != "" {
		fmt.Fprintf(&b, "Faith journey: %s\n", l.FaithJourney)
	}
	if l.ChurchStatus != "" {
		fmt.Fprintf(&b, "Church status: %s\n", l.ChurchStatus)
	}
	if l.OpennessToContact != "" {
		fmt.Fprintf(&b, "Open to contact: %s\n", l.OpennessToContact)
	}
	if len(l.Availability) > 0 {
		fmt.Fprintf(&b, "Availability: %s\n", strings.Join(l.Availability, ", "))
	}
	fmt.Fprintf(&b, "Submitted: %s\n", l.SubmittedAtUTC.Format("2006-01-02 15:04 UTC"))
	return b.String()
}

func leadSummaryHTML(l *lead.Lead) string {
	var b strings.Builder
	b.WriteString("<h2>New lead</h2><ul>")
	fmt.Fprintf(&b, "<li><b>Name:</b> %s</li>", l.Name)
	fmt.Fprintf(&b, "<li><b>WhatsApp:</b> %s</li>", l.ContactHandle)
	if l.Email != "" {
		fmt.Fprintf(&b, "<li><b>Email:</b> %s</li>", l.Email)
	}
	fmt.Fprintf(&b, "<li><b>Archetype:</b> %s</li>", l.Archetype)
	if len(l.Availability) > 0 {
		fmt.Fprintf(&b, "<li><b>Availability:</b> %s</li>", strings.Join(l.Availability, ", "))
	}
	b.WriteString("</ul>")
	return b.String()
}
