// internal/notifiers/crm/crm.go
package crm

import (
	"context"
	"fmt"
	"strings"

	"blueprint-leads/internal/common/errors"
	"blueprint-leads/internal/common/logger"
	"blueprint-leads/internal/common/zoho"
	"blueprint-leads/internal/lead"
)

const leadSource = "Blueprint Quiz"

// CRMService is the slice of the Zoho client the notifier needs.
// Wrapped in an interface for mocking.
type CRMService interface {
	CreateContact(ctx context.Context, contact *zoho.Contact) (string, error)
	UpdateContact(ctx context.Context, contactID string, contact *zoho.Contact) error
	SearchContactsByPhone(ctx context.Context, phone string) ([]zoho.Contact, error)
}

// Notifier mirrors each lead into Zoho CRM as a contact and annotates the
// contact when a follow-up is requested.
type Notifier struct {
	client CRMService
	logger logger.Logger
}

// New wires the notifier against the real Zoho client.
func New(log logger.Logger, apiKey, oauthToken string) *Notifier {
	return NewWithClient(log, zoho.NewCRMClient(apiKey, oauthToken))
}

// NewWithClient injects the CRM service, used by tests.
func NewWithClient(log logger.Logger, client CRMService) *Notifier {
	return &Notifier{
		client: client,
		logger: log.WithFields(map[string]interface{}{"notifier": "crm"}),
	}
}

func (n *Notifier) Name() string { return "crm" }

// LeadCreated creates a CRM contact for the lead.
func (n *Notifier) LeadCreated(ctx context.Context, l *lead.Lead) error {
	contact := contactFromLead(l)

	contactID, err := n.client.CreateContact(ctx, contact)
	if err != nil {
		return errors.NewCRMSyncFailedError(err)
	}

	n.logger.Info("CRM contact created", map[string]interface{}{
		"lead_id":    l.ID,
		"contact_id": contactID,
	})
	return nil
}

// FollowUpFlagged looks the contact up by phone and appends a follow-up
// note to its description. A handle with no matching contact is not an
// error.
func (n *Notifier) FollowUpFlagged(ctx context.Context, handle string) error {
	contacts, err := n.client.SearchContactsByPhone(ctx, handle)
	if err != nil {
		return errors.NewCRMSyncFailedError(err)
	}
	if len(contacts) == 0 {
		n.logger.Warn("No CRM contact for handle", map[string]interface{}{
			"handle": handle,
		})
		return nil
	}

	contact := contacts[0]
	updated := &zoho.Contact{
		FirstName:   contact.FirstName,
		LastName:    contact.LastName,
		Description: appendNote(contact.Description, "Follow-up requested."),
	}

	if err := n.client.UpdateContact(ctx, contact.ID, updated); err != nil {
		return errors.NewCRMSyncFailedError(err)
	}
	return nil
}

// contactFromLead maps a lead onto the Zoho contact shape. Zoho requires a
// last name, so single-word names land there whole.
func contactFromLead(l *lead.Lead) *zoho.Contact {
	first, last := splitName(l.Name)
	return &zoho.Contact{
		FirstName:   first,
		LastName:    last,
		Email:       l.Email,
		Phone:       l.ContactHandle,
		Source:      leadSource,
		Description: leadDescription(l),
	}
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return "", name
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}

func leadDescription(l *lead.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Blueprint: %s\n", l.Archetype)
	if l.FaithJourney != "" {
		fmt.Fprintf(&b, "Faith journey: %s\n", l.FaithJourney)
	}
	if l.ChurchStatus != "" {
		fmt.Fprintf(&b, "Church status: %s\n", l.ChurchStatus)
	}
	if len(l.Availability) > 0 {
		fmt.Fprintf(&b, "Availability: %s\n", strings.Join(l.Availability, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func appendNote(description, note string) string {
	if description == "" {
		return note
	}
	return description + "\n" + note
}
