package voice

import (
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid"

	"github.com/widescopeindustries/ai-receptionist/internal/models"
	"github.com/widescopeindustries/ai-receptionist/pkg/llm"
)

// State conversation state for one call
type State string

const (
	StateGreeting   State = "GREETING"
	StateListening  State = "LISTENING"
	StateTerminated State = "TERMINATED"
)

const (
	SpeakerCaller    = "caller"
	SpeakerAssistant = "assistant"
)

// TranscriptEntry one spoken line of the call
type TranscriptEntry struct {
	Speaker   string
	Text      string
	Timestamp time.Time
}

// PendingAction an in-flight external action, at most one per session
type PendingAction struct {
	Kind         llm.ActionKind
	Args         map[string]string
	IssuedAtTurn int
	RequestedAt  time.Time
}

// Session live conversation state for one call. The telephony platform
// serializes webhooks within a call, but status notifications arrive on
// their own channel, so the mutex still matters.
type Session struct {
	mu sync.Mutex

	CallID    string
	SessionID string
	From      string
	To        string

	Profile *models.ReceptionistProfile
	LeadID  string

	StartedAt  time.Time
	state      State
	turnCount  int
	transcript []TranscriptEntry
	pending    *PendingAction
	ended      bool
	flushed    bool

	noInputCount int
	genFailures  int
	outcome      string
}

func newSession(callID, from, to string, profile *models.ReceptionistProfile) *Session {
	sessionID, _ := gonanoid.Nanoid()
	return &Session{
		CallID:    callID,
		SessionID: sessionID,
		From:      from,
		To:        to,
		Profile:   profile,
		StartedAt: time.Now(),
		state:     StateGreeting,
	}
}

// AppendCaller appends a caller line and bumps the turn counter
func (s *Session) AppendCaller(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, TranscriptEntry{
		Speaker:   SpeakerCaller,
		Text:      text,
		Timestamp: time.Now(),
	})
	s.turnCount++
}

// AppendAssistant appends an assistant line
func (s *Session) AppendAssistant(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, TranscriptEntry{
		Speaker:   SpeakerAssistant,
		Text:      text,
		Timestamp: time.Now(),
	})
}

// History returns the transcript in generator message form
func (s *Session) History() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]llm.Message, 0, len(s.transcript))
	for _, entry := range s.transcript {
		role := "user"
		if entry.Speaker == SpeakerAssistant {
			role = "assistant"
		}
		history = append(history, llm.Message{Role: role, Content: entry.Text})
	}
	return history
}

// Transcript returns a copy of the transcript
func (s *Session) Transcript() []TranscriptEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]TranscriptEntry, len(s.transcript))
	copy(entries, s.transcript)
	return entries
}

// TurnCount caller turns so far
func (s *Session) TurnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnCount
}

// State current conversation state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// BeginAction claims the in-flight action slot. Returns false when an
// action is already pending, which means the caller must not dispatch.
func (s *Session) BeginAction(kind llm.ActionKind, args map[string]string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		return false
	}
	s.pending = &PendingAction{
		Kind:         kind,
		Args:         args,
		IssuedAtTurn: s.turnCount,
		RequestedAt:  time.Now(),
	}
	return true
}

// FinishAction releases the in-flight action slot
func (s *Session) FinishAction() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// Pending returns the current in-flight action, if any
func (s *Session) Pending() *PendingAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// MarkEnded transitions to TERMINATED. Safe to call more than once.
func (s *Session) MarkEnded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
	s.state = StateTerminated
}

// Ended reports whether the session has terminated
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// BeginFlush claims the one-time persistence flush. The status webhook
// and the in-band hangup path can both reach flush; only one proceeds.
func (s *Session) BeginFlush() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flushed {
		return false
	}
	s.flushed = true
	return true
}

// SetOutcome records the call outcome tag. First non-empty value wins
// so a booking outcome is not overwritten by the generic completion tag.
func (s *Session) SetOutcome(outcome string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == "" || s.outcome == models.OutcomeCompleted {
		s.outcome = outcome
	}
}

// Outcome the recorded outcome tag
func (s *Session) Outcome() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// RecordNoInput bumps the consecutive silence counter and returns the new value
func (s *Session) RecordNoInput() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noInputCount++
	return s.noInputCount
}

// ClearNoInput resets the silence counter after real speech arrives
func (s *Session) ClearNoInput() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noInputCount = 0
}

// RecordGenFailure bumps the consecutive generation failure counter
func (s *Session) RecordGenFailure() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genFailures++
	return s.genFailures
}

// ClearGenFailures resets the failure counter after a good reply
func (s *Session) ClearGenFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genFailures = 0
}

// ResetConversation wipes conversational state back to GREETING while
// keeping call identity. Used when generation keeps failing and the
// caller deserves a fresh start instead of a dropped call.
func (s *Session) ResetConversation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
	s.turnCount = 0
	s.pending = nil
	s.noInputCount = 0
	s.genFailures = 0
	s.state = StateGreeting
}

// Store concurrency-safe registry of live sessions keyed by call id
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Get looks up a session. A miss is not an error.
func (st *Store) Get(callID string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sess, ok := st.sessions[callID]
	return sess, ok
}

// GetOrCreate returns the live session for a call, creating it on first
// contact. The created flag lets callers log re-initialization anomalies.
func (st *Store) GetOrCreate(callID, from, to string, profile *models.ReceptionistProfile) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if sess, ok := st.sessions[callID]; ok {
		return sess, false
	}
	sess := newSession(callID, from, to, profile)
	st.sessions[callID] = sess
	return sess, true
}

// Remove drops a session from the store
func (st *Store) Remove(callID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, callID)
}

// ActiveCount live sessions in the store
func (st *Store) ActiveCount() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
