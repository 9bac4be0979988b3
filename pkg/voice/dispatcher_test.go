package voice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/widescopeindustries/ai-receptionist/internal/models"
	"github.com/widescopeindustries/ai-receptionist/pkg/calendar"
	"github.com/widescopeindustries/ai-receptionist/pkg/llm"
)

type fakeLinkSender struct {
	calls int
	err   error
	to    string
}

func (s *fakeLinkSender) SendSetupLink(ctx context.Context, to, name string) error {
	s.calls++
	s.to = to
	return s.err
}

func validBookingArgs() map[string]string {
	return map[string]string{
		"summary":        "Demo with Dana",
		"start_time":     "2026-09-02T14:00:00-05:00",
		"end_time":       "2026-09-02T14:30:00-05:00",
		"attendee_email": "dana@acme.com",
	}
}

func TestDispatchBookingHappyPath(t *testing.T) {
	booker := &fakeBooker{}
	d := NewDispatcher(booker, nil, time.Second)
	sess := newSession("CA20", "+15551230001", "+15550000000", nil)

	line, outcome := d.Dispatch(context.Background(), sess, &llm.ActionRequest{
		Kind: llm.ActionBookAppointment,
		Args: validBookingArgs(),
	})

	assert.Equal(t, 1, booker.calls)
	assert.Equal(t, lineBookingOK, line)
	assert.Equal(t, models.OutcomeAppointmentBooked, outcome)
	assert.Nil(t, sess.Pending(), "pending slot must be released")
}

func TestDispatchDiscardsWhileActionInFlight(t *testing.T) {
	booker := &fakeBooker{}
	d := NewDispatcher(booker, nil, time.Second)
	sess := newSession("CA21", "+15551230001", "+15550000000", nil)

	require.True(t, sess.BeginAction(llm.ActionBookAppointment, nil))

	line, outcome := d.Dispatch(context.Background(), sess, &llm.ActionRequest{
		Kind: llm.ActionBookAppointment,
		Args: validBookingArgs(),
	})

	assert.Equal(t, 0, booker.calls, "a replayed webhook must not re-invoke the collaborator")
	assert.Equal(t, lineStillWorking, line)
	assert.Empty(t, outcome)
	assert.NotNil(t, sess.Pending(), "the original pending action must survive")
}

func TestDispatchMissingArgumentsFallsBack(t *testing.T) {
	booker := &fakeBooker{}
	d := NewDispatcher(booker, nil, time.Second)
	sess := newSession("CA22", "+15551230001", "+15550000000", nil)

	line, outcome := d.Dispatch(context.Background(), sess, &llm.ActionRequest{
		Kind: llm.ActionBookAppointment,
		Args: map[string]string{"summary": "Demo"},
	})

	assert.Equal(t, 0, booker.calls)
	assert.Equal(t, lineMissingDetail, line)
	assert.Empty(t, outcome)
}

func TestDispatchUnparseableStartTimeFallsBack(t *testing.T) {
	booker := &fakeBooker{}
	d := NewDispatcher(booker, nil, time.Second)
	sess := newSession("CA23", "+15551230001", "+15550000000", nil)

	args := validBookingArgs()
	args["start_time"] = "next Tuesday around two"

	line, _ := d.Dispatch(context.Background(), sess, &llm.ActionRequest{
		Kind: llm.ActionBookAppointment,
		Args: args,
	})

	assert.Equal(t, 0, booker.calls)
	assert.Equal(t, lineMissingDetail, line)
}

func TestDispatchCollaboratorFailureApologizes(t *testing.T) {
	booker := &fakeBooker{err: errors.New("calendar unavailable")}
	d := NewDispatcher(booker, nil, time.Second)
	sess := newSession("CA24", "+15551230001", "+15550000000", nil)

	line, outcome := d.Dispatch(context.Background(), sess, &llm.ActionRequest{
		Kind: llm.ActionBookAppointment,
		Args: validBookingArgs(),
	})

	assert.Equal(t, lineDispatchFail, line)
	assert.Empty(t, outcome)
	assert.Nil(t, sess.Pending())
}

func TestDispatchLateResultDiscarded(t *testing.T) {
	sess := newSession("CA25", "+15551230001", "+15550000000", nil)

	// collaborator resolves after the status channel already tore the call down
	booker := &slowBooker{onBook: func() { sess.MarkEnded() }}
	d := NewDispatcher(booker, nil, time.Second)

	line, outcome := d.Dispatch(context.Background(), sess, &llm.ActionRequest{
		Kind: llm.ActionBookAppointment,
		Args: validBookingArgs(),
	})

	assert.Equal(t, 1, booker.calls)
	assert.Empty(t, line)
	assert.Empty(t, outcome)
}

func TestDispatchSetupLink(t *testing.T) {
	sender := &fakeLinkSender{}
	d := NewDispatcher(nil, sender, time.Second)
	sess := newSession("CA26", "+15551230001", "+15550000000", nil)

	line, outcome := d.Dispatch(context.Background(), sess, &llm.ActionRequest{
		Kind: llm.ActionSendSetupLink,
		Args: map[string]string{"email": "dana@acme.com", "name": "Dana"},
	})

	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, "dana@acme.com", sender.to)
	assert.Equal(t, lineSetupLinkOK, line)
	assert.Equal(t, models.OutcomeSetupLinkSent, outcome)
}

func TestDispatchActionDisabledByProfile(t *testing.T) {
	sender := &fakeLinkSender{}
	d := NewDispatcher(nil, sender, time.Second)
	profile := &models.ReceptionistProfile{EnabledActions: "book_appointment"}
	sess := newSession("CA27", "+15551230001", "+15550000000", profile)

	line, _ := d.Dispatch(context.Background(), sess, &llm.ActionRequest{
		Kind: llm.ActionSendSetupLink,
		Args: map[string]string{"email": "dana@acme.com"},
	})

	assert.Equal(t, 0, sender.calls)
	assert.Equal(t, lineDispatchFail, line)
}

type slowBooker struct {
	calls  int
	onBook func()
}

func (b *slowBooker) Book(ctx context.Context, booking calendar.Booking) (*calendar.Result, error) {
	b.calls++
	if b.onBook != nil {
		b.onBook()
	}
	return &calendar.Result{EventID: "evt-late"}, nil
}
