package voice

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/widescopeindustries/ai-receptionist/internal/models"
	"github.com/widescopeindustries/ai-receptionist/pkg/calendar"
	"github.com/widescopeindustries/ai-receptionist/pkg/llm"
	"github.com/widescopeindustries/ai-receptionist/pkg/logger"
)

// AppointmentBooker books a demo on the business calendar
type AppointmentBooker interface {
	Book(ctx context.Context, booking calendar.Booking) (*calendar.Result, error)
}

// SetupLinkSender emails the caller a self-serve setup link
type SetupLinkSender interface {
	SendSetupLink(ctx context.Context, to, name string) error
}

// Spoken lines for dispatch outcomes. Deterministic on purpose: the
// generator already spoke its piece, these report what actually happened.
const (
	lineStillWorking  = "I'm still working on that for you. Give me just a moment."
	lineMissingDetail = "I didn't quite catch all the details for that. Could you give me the day and time again?"
	lineBookingOK     = "Great news! I've scheduled that demo for you. You'll receive a calendar invitation shortly. Is there anything else I can help you with?"
	lineSetupLinkOK   = "Perfect! I've sent the setup link to your email. You can have your own AI receptionist answering calls within minutes. Anything else I can help with?"
	lineDispatchFail  = "I'm sorry, I wasn't able to get that finished just now. I'll have someone from our team follow up with you personally to sort it out."
)

// Dispatcher executes generator action requests against the outside
// world, one at a time per session.
type Dispatcher struct {
	booker     AppointmentBooker
	linkSender SetupLinkSender
	timeout    time.Duration
}

// NewDispatcher creates an action dispatcher. Either collaborator may be
// nil when the service runs without that integration configured.
func NewDispatcher(booker AppointmentBooker, linkSender SetupLinkSender, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Dispatcher{
		booker:     booker,
		linkSender: linkSender,
		timeout:    timeout,
	}
}

// Dispatch runs one action request and returns the line to speak plus an
// outcome tag for the call record. A request arriving while another is
// in flight is discarded without touching the collaborators. Results
// that land after the session ended are logged and dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *Session, action *llm.ActionRequest) (string, string) {
	if sess.Profile != nil && !sess.Profile.ActionEnabled(string(action.Kind)) {
		logger.Warn("action not enabled for profile",
			zap.String("callId", sess.CallID),
			zap.String("kind", string(action.Kind)))
		return lineDispatchFail, ""
	}

	if !sess.BeginAction(action.Kind, action.Args) {
		logger.Warn("action discarded, another is in flight",
			zap.String("callId", sess.CallID),
			zap.String("kind", string(action.Kind)))
		return lineStillWorking, ""
	}
	defer sess.FinishAction()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var (
		line    string
		outcome string
		err     error
	)

	switch action.Kind {
	case llm.ActionBookAppointment:
		line, outcome, err = d.bookAppointment(ctx, sess, action.Args)
	case llm.ActionSendSetupLink:
		line, outcome, err = d.sendSetupLink(ctx, sess, action.Args)
	default:
		logger.Warn("unknown action kind discarded",
			zap.String("callId", sess.CallID),
			zap.String("kind", string(action.Kind)))
		return lineDispatchFail, ""
	}

	if sess.Ended() {
		logger.Warn("action result arrived after session ended, discarding",
			zap.String("callId", sess.CallID),
			zap.String("kind", string(action.Kind)),
			zap.Error(err))
		return "", ""
	}

	if err != nil {
		logger.Error("action dispatch failed",
			zap.String("callId", sess.CallID),
			zap.String("kind", string(action.Kind)),
			zap.Error(err))
		return lineDispatchFail, ""
	}
	return line, outcome
}

func (d *Dispatcher) bookAppointment(ctx context.Context, sess *Session, args map[string]string) (string, string, error) {
	if d.booker == nil {
		return "", "", errCollaboratorUnavailable("calendar")
	}

	summary := args["summary"]
	startRaw := args["start_time"]
	endRaw := args["end_time"]
	if summary == "" || startRaw == "" || endRaw == "" {
		logger.Warn("booking request missing required arguments",
			zap.String("callId", sess.CallID))
		return lineMissingDetail, "", nil
	}

	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		logger.Warn("booking request has unparseable start time",
			zap.String("callId", sess.CallID),
			zap.String("startTime", startRaw))
		return lineMissingDetail, "", nil
	}
	end, err := time.Parse(time.RFC3339, endRaw)
	if err != nil {
		end = start.Add(30 * time.Minute)
	}

	result, err := d.booker.Book(ctx, calendar.Booking{
		Summary:       summary,
		Description:   args["description"],
		StartTime:     start,
		EndTime:       end,
		AttendeeEmail: args["attendee_email"],
	})
	if err != nil {
		return "", "", err
	}

	logger.Info("appointment booked",
		zap.String("callId", sess.CallID),
		zap.String("eventId", result.EventID))
	return lineBookingOK, models.OutcomeAppointmentBooked, nil
}

func (d *Dispatcher) sendSetupLink(ctx context.Context, sess *Session, args map[string]string) (string, string, error) {
	if d.linkSender == nil {
		return "", "", errCollaboratorUnavailable("mail")
	}

	email := args["email"]
	if email == "" {
		logger.Warn("setup link request missing email",
			zap.String("callId", sess.CallID))
		return lineMissingDetail, "", nil
	}

	if err := d.linkSender.SendSetupLink(ctx, email, args["name"]); err != nil {
		return "", "", err
	}

	logger.Info("setup link sent",
		zap.String("callId", sess.CallID),
		zap.String("email", email))
	return lineSetupLinkOK, models.OutcomeSetupLinkSent, nil
}

type errCollaboratorUnavailable string

func (e errCollaboratorUnavailable) Error() string {
	return string(e) + " collaborator is not configured"
}
