package voice

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/widescopeindustries/ai-receptionist/pkg/llm"
)

func TestTurnCountMatchesCallerEntries(t *testing.T) {
	sess := newSession("CA100", "+15551230001", "+15550000000", nil)

	sess.AppendAssistant("greeting")
	for i := 0; i < 5; i++ {
		sess.AppendCaller(fmt.Sprintf("caller line %d", i))
		sess.AppendAssistant(fmt.Sprintf("assistant line %d", i))
	}

	assert.Equal(t, 5, sess.TurnCount())

	callerEntries := 0
	for _, entry := range sess.Transcript() {
		if entry.Speaker == SpeakerCaller {
			callerEntries++
		}
	}
	assert.Equal(t, sess.TurnCount(), callerEntries)
}

func TestTranscriptChronologicalOrder(t *testing.T) {
	sess := newSession("CA101", "+15551230001", "+15550000000", nil)

	sess.AppendAssistant("hello")
	sess.AppendCaller("hi, this is Dana")
	sess.AppendAssistant("nice to meet you Dana")
	sess.AppendCaller("tell me about pricing")

	entries := sess.Transcript()
	require.Len(t, entries, 4)
	assert.Equal(t, SpeakerAssistant, entries[0].Speaker)
	assert.Equal(t, SpeakerCaller, entries[1].Speaker)
	assert.Equal(t, SpeakerAssistant, entries[2].Speaker)
	assert.Equal(t, SpeakerCaller, entries[3].Speaker)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].Timestamp.Before(entries[i-1].Timestamp))
	}
}

func TestHistoryRoles(t *testing.T) {
	sess := newSession("CA102", "+15551230001", "+15550000000", nil)
	sess.AppendAssistant("greeting")
	sess.AppendCaller("hello")

	history := sess.History()
	require.Len(t, history, 2)
	assert.Equal(t, "assistant", history[0].Role)
	assert.Equal(t, "user", history[1].Role)
	assert.Equal(t, "hello", history[1].Content)
}

func TestBeginActionSingleFlight(t *testing.T) {
	sess := newSession("CA103", "+15551230001", "+15550000000", nil)

	require.True(t, sess.BeginAction(llm.ActionBookAppointment, nil))
	assert.False(t, sess.BeginAction(llm.ActionSendSetupLink, nil))

	sess.FinishAction()
	assert.True(t, sess.BeginAction(llm.ActionSendSetupLink, nil))
}

func TestBeginFlushOnlyOnce(t *testing.T) {
	sess := newSession("CA104", "+15551230001", "+15550000000", nil)

	assert.True(t, sess.BeginFlush())
	assert.False(t, sess.BeginFlush())
}

func TestOutcomeFirstRealValueWins(t *testing.T) {
	sess := newSession("CA105", "+15551230001", "+15550000000", nil)

	sess.SetOutcome("Appointment Booked")
	sess.SetOutcome("Completed")
	assert.Equal(t, "Appointment Booked", sess.Outcome())
}

func TestResetConversation(t *testing.T) {
	sess := newSession("CA106", "+15551230001", "+15550000000", nil)
	sess.AppendAssistant("greeting")
	sess.AppendCaller("hello")
	sess.RecordGenFailure()
	sess.setState(StateListening)

	sess.ResetConversation()

	assert.Equal(t, StateGreeting, sess.State())
	assert.Equal(t, 0, sess.TurnCount())
	assert.Empty(t, sess.Transcript())
	assert.False(t, sess.Ended())
}

func TestStoreGetOrCreate(t *testing.T) {
	store := NewStore()

	sess, created := store.GetOrCreate("CA200", "+15551230001", "+15550000000", nil)
	require.True(t, created)
	require.NotNil(t, sess)
	assert.NotEmpty(t, sess.SessionID)

	again, created := store.GetOrCreate("CA200", "+15551230001", "+15550000000", nil)
	assert.False(t, created)
	assert.Same(t, sess, again)

	store.Remove("CA200")
	_, ok := store.Get("CA200")
	assert.False(t, ok)
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			callID := fmt.Sprintf("CA3%02d", n%10)
			sess, _ := store.GetOrCreate(callID, "+15551230001", "+15550000000", nil)
			sess.AppendCaller("hello")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, store.ActiveCount())
}
