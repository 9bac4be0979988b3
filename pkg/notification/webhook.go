package notification

import (
	"context"
	"fmt"

	"github.com/carlmjohnson/requests"
)

// WebhookNotifier posts new-lead events as JSON to an operator-configured URL.
// An empty URL disables posting.
type WebhookNotifier struct {
	url string
}

// NewWebhookNotifier creates a webhook notifier
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{url: url}
}

// Configured reports whether a webhook URL is set
func (n *WebhookNotifier) Configured() bool {
	return n.url != ""
}

// LeadEvent is the payload posted on call completion
type LeadEvent struct {
	CallSID       string `json:"callSid"`
	Phone         string `json:"phone"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Company       string `json:"company,omitempty"`
	InterestLevel string `json:"interestLevel,omitempty"`
	Outcome       string `json:"outcome,omitempty"`
	Duration      int    `json:"durationSeconds"`
	Turns         int    `json:"turnCount"`
}

// NotifyLead posts the event; no-op when unconfigured
func (n *WebhookNotifier) NotifyLead(ctx context.Context, event LeadEvent) error {
	if n.url == "" {
		return nil
	}
	err := requests.
		URL(n.url).
		BodyJSON(&event).
		Fetch(ctx)
	if err != nil {
		return fmt.Errorf("lead webhook post failed: %w", err)
	}
	return nil
}
