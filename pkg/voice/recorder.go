package voice

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/widescopeindustries/ai-receptionist/internal/models"
	"github.com/widescopeindustries/ai-receptionist/pkg/logger"
	"github.com/widescopeindustries/ai-receptionist/pkg/notification"
)

// CallArchive persists call records and leads, and fires the owner
// notifications when a call flushes. Implements Recorder.
type CallArchive struct {
	db          *gorm.DB
	mailer      *notification.Mailer
	webhook     *notification.WebhookNotifier
	notifyEmail string
}

// NewCallArchive wires the persistence collaborator. Mailer and webhook
// may be nil or unconfigured; persistence still happens without them.
func NewCallArchive(db *gorm.DB, mailer *notification.Mailer, webhook *notification.WebhookNotifier, notifyEmail string) *CallArchive {
	return &CallArchive{
		db:          db,
		mailer:      mailer,
		webhook:     webhook,
		notifyEmail: notifyEmail,
	}
}

// CallStarted creates the lead and the call record at first contact
func (a *CallArchive) CallStarted(ctx context.Context, sess *Session) {
	businessID := ""
	if sess.Profile != nil {
		businessID = sess.Profile.BusinessID
	}

	lead, err := models.GetOrCreateLeadByPhone(a.db, sess.From, businessID)
	if err != nil {
		logger.Error("failed to create lead for call",
			zap.String("callId", sess.CallID),
			zap.Error(err))
	} else {
		sess.LeadID = lead.ID
	}

	record := &models.CallRecord{
		CallSID:    sess.CallID,
		LeadID:     sess.LeadID,
		BusinessID: businessID,
		FromNumber: sess.From,
		ToNumber:   sess.To,
	}
	if err := models.CreateCallRecord(a.db, record); err != nil {
		logger.Error("failed to create call record",
			zap.String("callId", sess.CallID),
			zap.Error(err))
	}
}

// LeadEnriched folds extracted caller details into the lead row.
// Only fills fields that are still empty; a later low-confidence match
// never overwrites an earlier one.
func (a *CallArchive) LeadEnriched(ctx context.Context, sess *Session, info LeadInfo) {
	if sess.LeadID == "" {
		return
	}

	lead, err := models.GetLeadByID(a.db, sess.LeadID)
	if err != nil {
		logger.Error("failed to load lead for enrichment",
			zap.String("leadId", sess.LeadID),
			zap.Error(err))
		return
	}

	fields := map[string]interface{}{}
	if info.Name != "" && lead.Name == "" {
		fields["name"] = info.Name
	}
	if info.Company != "" && lead.Company == "" {
		fields["company"] = info.Company
	}
	if info.Email != "" && lead.Email == "" {
		fields["email"] = info.Email
	}
	if info.InterestLevel == models.InterestHigh ||
		(info.InterestLevel == models.InterestMedium && lead.InterestLevel != models.InterestHigh) {
		fields["interest_level"] = info.InterestLevel
	}
	if len(fields) == 0 {
		return
	}

	if err := models.UpdateLeadFields(a.db, lead.ID, fields); err != nil {
		logger.Error("failed to enrich lead",
			zap.String("leadId", lead.ID),
			zap.Error(err))
	}
}

// CallFlushed writes the final transcript and outcome, then notifies the
// business owner. Called exactly once per call.
func (a *CallArchive) CallFlushed(ctx context.Context, sess *Session, durationSeconds int) {
	transcript := make(models.TranscriptLog, 0)
	var rendered strings.Builder
	for _, entry := range sess.Transcript() {
		transcript = append(transcript, models.TranscriptMessage{
			Speaker:   entry.Speaker,
			Text:      entry.Text,
			Timestamp: entry.Timestamp,
		})
		fmt.Fprintf(&rendered, "%s: %s\n", entry.Speaker, entry.Text)
	}

	fields := map[string]interface{}{
		"duration_seconds": durationSeconds,
		"turn_count":       sess.TurnCount(),
		"transcript":       transcript,
		"outcome":          sess.Outcome(),
	}
	if err := models.UpdateCallRecordFields(a.db, sess.CallID, fields); err != nil {
		logger.Error("failed to save call record",
			zap.String("callId", sess.CallID),
			zap.Error(err))
	}

	var lead *models.Lead
	if sess.LeadID != "" {
		var err error
		lead, err = models.GetLeadByID(a.db, sess.LeadID)
		if err != nil {
			logger.Error("failed to load lead at call end",
				zap.String("leadId", sess.LeadID),
				zap.Error(err))
			lead = nil
		}
	}

	a.notify(ctx, sess, lead, rendered.String(), durationSeconds)
}

func (a *CallArchive) notify(ctx context.Context, sess *Session, lead *models.Lead, transcript string, durationSeconds int) {
	notifyEmail := a.notifyEmail
	if sess.Profile != nil && sess.Profile.NotifyEmail != "" {
		notifyEmail = sess.Profile.NotifyEmail
	}

	summary := notification.LeadSummary{
		Phone:      sess.From,
		Duration:   durationSeconds,
		Turns:      sess.TurnCount(),
		Transcript: transcript,
	}
	event := notification.LeadEvent{
		CallSID:  sess.CallID,
		Phone:    sess.From,
		Outcome:  sess.Outcome(),
		Duration: durationSeconds,
		Turns:    sess.TurnCount(),
	}
	if lead != nil {
		summary.Name = lead.Name
		summary.Email = lead.Email
		summary.Company = lead.Company
		summary.InterestLevel = string(lead.InterestLevel)
		event.Name = lead.Name
		event.Email = lead.Email
		event.Company = lead.Company
		event.InterestLevel = string(lead.InterestLevel)
	}

	if a.mailer != nil && a.mailer.Configured() && notifyEmail != "" {
		if err := a.mailer.NotifyNewLead(ctx, notifyEmail, summary); err != nil {
			logger.Error("failed to send lead summary email",
				zap.String("callId", sess.CallID),
				zap.Error(err))
		}
	}

	if a.webhook != nil && a.webhook.Configured() {
		if err := a.webhook.NotifyLead(ctx, event); err != nil {
			logger.Error("failed to post lead webhook",
				zap.String("callId", sess.CallID),
				zap.Error(err))
		}
	}
}
