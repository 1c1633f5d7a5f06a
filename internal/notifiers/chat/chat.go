// internal/notifiers/chat/chat.go
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"blueprint-leads/internal/common/errors"
	"blueprint-leads/internal/common/httpclient"
	"blueprint-leads/internal/common/logger"
	"blueprint-leads/internal/lead"
)

// TextMessage is the WhatsApp gateway send payload.
type TextMessage struct {
	To       string `json:"to"`
	IsGroup  bool   `json:"isgroup"`
	Messages string `json:"messages"`
}

// Notifier pushes a WhatsApp message to the operator for every intake
// event, through the wa.my.id style gateway.
type Notifier struct {
	gatewayURL    string
	token         string
	operatorPhone string
	client        *httpclient.Client
	logger        logger.Logger
}

// New builds the notifier. The gateway authenticates with a Token header.
func New(log logger.Logger, gatewayURL, token, operatorPhone string) *Notifier {
	return &Notifier{
		gatewayURL:    gatewayURL,
		token:         token,
		operatorPhone: operatorPhone,
		client:        httpclient.NewClient(30 * time.Second),
		logger:        log.WithFields(map[string]interface{}{"notifier": "chat"}),
	}
}

func (n *Notifier) Name() string { return "chat" }

// LeadCreated messages the operator with a short lead summary.
func (n *Notifier) LeadCreated(ctx context.Context, l *lead.Lead) error {
	var b strings.Builder
	fmt.Fprintf(&b, "*New Lead*\n%s (%s)\n%s", l.Name, l.Archetype, l.ContactHandle)
	if len(l.Availability) > 0 {
		fmt.Fprintf(&b, "\nAvailability: %s", strings.Join(l.Availability, ", "))
	}

	if err := n.send(ctx, b.String()); err != nil {
		return errors.NewChatSendFailedError(err)
	}

	n.logger.Info("Lead pushed to operator chat", map[string]interface{}{
		"lead_id": l.ID,
	})
	return nil
}

// FollowUpFlagged messages the operator that a contact wants a follow-up.
func (n *Notifier) FollowUpFlagged(ctx context.Context, handle string) error {
	msg := fmt.Sprintf("*Follow-up Requested*\n%s asked to be contacted.", handle)
	if err := n.send(ctx, msg); err != nil {
		return errors.NewChatSendFailedError(err)
	}
	return nil
}

func (n *Notifier) send(ctx context.Context, message string) error {
	dt := &TextMessage{
		To:       n.operatorPhone,
		IsGroup:  false,
		Messages: message,
	}

	payload, err := json.Marshal(dt)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.gatewayURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Token", n.token)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gateway rejected message (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}
