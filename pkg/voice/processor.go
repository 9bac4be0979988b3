package voice

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/widescopeindustries/ai-receptionist/internal/models"
	"github.com/widescopeindustries/ai-receptionist/pkg/llm"
	"github.com/widescopeindustries/ai-receptionist/pkg/logger"
)

// Webhook routes the emitted directives point back at
const (
	RouteIncoming      = "/voice/incoming"
	RouteProcessSpeech = "/voice/process-speech"
	RouteNoInput       = "/voice/no-input"
)

// Fixed spoken lines. Every failure path degrades to one of these; the
// caller never hears a raw error.
const (
	DefaultGreeting = "AI Always Answer. I don't do voicemail, I do business. Who am I speaking with?"
	lineReprompt    = "Are you still there? I'm ready to help whenever you are!"
	lineFarewell    = "Have a great day! Goodbye!"
	lineApology     = "I apologize, I'm having trouble understanding. Let's get back to business."
)

// closingPhrases end the call when the assistant's line contains one
var closingPhrases = []string{
	"goodbye",
	"have a great day",
	"talk to you later",
	"thank you for calling",
	"feel free to call back",
}

// Generator produces the assistant's reply for one caller turn
type Generator interface {
	Respond(ctx context.Context, systemPrompt string, history []llm.Message) (*llm.Reply, error)
}

// Recorder receives call lifecycle events for persistence and follow-up.
// Implementations must tolerate repeated LeadEnriched calls with partial data.
type Recorder interface {
	CallStarted(ctx context.Context, sess *Session)
	LeadEnriched(ctx context.Context, sess *Session, info LeadInfo)
	CallFlushed(ctx context.Context, sess *Session, durationSeconds int)
}

// ProcessorConfig turn processor limits and fixed lines
type ProcessorConfig struct {
	Greeting       string
	MaxTurns       int
	MaxDuration    time.Duration
	NoInputLimit   int
	MaxGenFailures int
}

// Processor drives the per-call conversation state machine. One webhook
// per caller turn; the platform serializes turns within a call.
type Processor struct {
	store      *Store
	generator  Generator
	dispatcher *Dispatcher
	recorder   Recorder
	config     ProcessorConfig
}

// NewProcessor wires the turn processor
func NewProcessor(store *Store, generator Generator, dispatcher *Dispatcher, recorder Recorder, cfg ProcessorConfig) *Processor {
	if cfg.Greeting == "" {
		cfg.Greeting = DefaultGreeting
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 20
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = 15 * time.Minute
	}
	if cfg.NoInputLimit <= 0 {
		cfg.NoInputLimit = 2
	}
	if cfg.MaxGenFailures <= 0 {
		cfg.MaxGenFailures = 3
	}
	return &Processor{
		store:      store,
		generator:  generator,
		dispatcher: dispatcher,
		recorder:   recorder,
		config:     cfg,
	}
}

// HandleIncoming answers a new call: speak the greeting, then listen.
// Also the re-entry point after a conversation reset.
func (p *Processor) HandleIncoming(ctx context.Context, callID, from, to string, profile *models.ReceptionistProfile) []any {
	sess, created := p.store.GetOrCreate(callID, from, to, profile)
	if created {
		logger.Info("call started",
			zap.String("callId", callID),
			zap.String("from", from),
			zap.String("to", to))
		if p.recorder != nil {
			p.recorder.CallStarted(ctx, sess)
		}
	}

	greeting := p.config.Greeting
	if profile != nil && profile.Greeting != "" {
		greeting = profile.Greeting
	}

	sess.AppendAssistant(greeting)
	sess.setState(StateListening)

	return []any{
		p.speak(sess, greeting),
		Listen{Action: RouteProcessSpeech},
	}
}

// HandleSpeech processes one transcribed caller utterance
func (p *Processor) HandleSpeech(ctx context.Context, callID, from, to string, profile *models.ReceptionistProfile, utterance string) []any {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return p.HandleNoInput(ctx, callID, from, to, profile)
	}

	sess, created := p.store.GetOrCreate(callID, from, to, profile)
	if created {
		// Session evicted mid-call, resume as if fresh rather than fail
		logger.Warn("speech webhook for unknown call, re-initializing session",
			zap.String("callId", callID))
		sess.setState(StateListening)
		if p.recorder != nil {
			p.recorder.CallStarted(ctx, sess)
		}
	}
	if sess.Ended() {
		return []any{Hangup{}}
	}

	sess.ClearNoInput()
	sess.AppendCaller(utterance)

	if info := ExtractLeadInfo(utterance); !info.Empty() && p.recorder != nil {
		p.recorder.LeadEnriched(ctx, sess, info)
	}

	reply, err := p.generator.Respond(ctx, p.systemPrompt(sess), sess.History())
	if sess.Ended() {
		// teardown won while the generator was in flight, drop the result
		logger.Warn("dropping generator result for terminated session",
			zap.String("callId", sess.CallID),
			zap.Error(err))
		return []any{Hangup{}}
	}
	if err != nil {
		return p.handleGenFailure(sess, err)
	}
	sess.ClearGenFailures()

	var directives []any

	if reply.Action != nil {
		if reply.Text != "" {
			sess.AppendAssistant(reply.Text)
			directives = append(directives, p.speak(sess, reply.Text))
		}
		line, outcome := p.dispatcher.Dispatch(ctx, sess, reply.Action)
		if outcome != "" {
			sess.SetOutcome(outcome)
		}
		if sess.Ended() {
			// Call was torn down while the action ran, stop cleanly
			return []any{Hangup{}}
		}
		if line != "" {
			sess.AppendAssistant(line)
			directives = append(directives, p.speak(sess, line))
		}
		directives = append(directives, Listen{Action: RouteProcessSpeech})
		return directives
	}

	line := reply.Text
	if line == "" {
		return p.handleGenFailure(sess, errEmptyReply)
	}
	sess.AppendAssistant(line)
	directives = append(directives, p.speak(sess, line))

	if p.shouldEnd(sess, line) {
		sess.AppendAssistant(lineFarewell)
		directives = append(directives, p.speak(sess, lineFarewell), Hangup{})
		p.finishCall(ctx, sess, 0)
		return directives
	}

	directives = append(directives, Listen{Action: RouteProcessSpeech})
	return directives
}

// HandleNoInput handles a silence timeout: re-prompt once, terminate on
// the second consecutive silence without consulting the generator.
func (p *Processor) HandleNoInput(ctx context.Context, callID, from, to string, profile *models.ReceptionistProfile) []any {
	sess, created := p.store.GetOrCreate(callID, from, to, profile)
	if created {
		logger.Warn("no-input webhook for unknown call, re-initializing session",
			zap.String("callId", callID))
		sess.setState(StateListening)
		if p.recorder != nil {
			p.recorder.CallStarted(ctx, sess)
		}
	}
	if sess.Ended() {
		return []any{Hangup{}}
	}

	if sess.RecordNoInput() >= p.config.NoInputLimit {
		logger.Info("terminating call after repeated silence",
			zap.String("callId", callID))
		sess.AppendAssistant(lineFarewell)
		directives := []any{p.speak(sess, lineFarewell), Hangup{}}
		p.finishCall(ctx, sess, 0)
		return directives
	}

	return []any{
		p.speak(sess, lineReprompt),
		Listen{Action: RouteProcessSpeech},
	}
}

// HandleStatus processes the call-status notification channel. Terminal
// statuses force termination and flush exactly once, whatever state the
// speech channel left the session in.
func (p *Processor) HandleStatus(ctx context.Context, callID, status string, durationSeconds int) {
	if status != "completed" && status != "failed" {
		return
	}

	sess, ok := p.store.Get(callID)
	if !ok {
		return
	}

	if status == "failed" {
		sess.SetOutcome(models.OutcomeFailed)
	}
	p.finishCall(ctx, sess, durationSeconds)
}

func (p *Processor) handleGenFailure(sess *Session, err error) []any {
	failures := sess.RecordGenFailure()
	logger.Error("text generation failed",
		zap.String("callId", sess.CallID),
		zap.Int("consecutiveFailures", failures),
		zap.Error(err))

	if failures >= p.config.MaxGenFailures {
		// Never cut the caller off for an internal error: start over
		logger.Warn("resetting conversation after repeated generation failures",
			zap.String("callId", sess.CallID))
		sess.ResetConversation()
		return []any{
			p.speak(sess, lineApology),
			Redirect{Target: RouteIncoming},
		}
	}

	return []any{
		p.speak(sess, lineApology),
		Listen{Action: RouteProcessSpeech},
	}
}

// shouldEnd decides end-of-call from the just-produced assistant line
func (p *Processor) shouldEnd(sess *Session, line string) bool {
	lowered := strings.ToLower(line)
	for _, phrase := range closingPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	if sess.TurnCount() > p.config.MaxTurns {
		return true
	}
	if time.Since(sess.StartedAt) > p.config.MaxDuration {
		return true
	}
	return false
}

// finishCall marks the session ended and flushes it exactly once
func (p *Processor) finishCall(ctx context.Context, sess *Session, durationSeconds int) {
	sess.MarkEnded()
	sess.SetOutcome(models.OutcomeCompleted)
	if !sess.BeginFlush() {
		return
	}
	if durationSeconds <= 0 {
		durationSeconds = int(time.Since(sess.StartedAt).Seconds())
	}
	if p.recorder != nil {
		p.recorder.CallFlushed(ctx, sess, durationSeconds)
	}
	p.store.Remove(sess.CallID)
	logger.Info("call finished",
		zap.String("callId", sess.CallID),
		zap.String("outcome", sess.Outcome()),
		zap.Int("turns", sess.TurnCount()),
		zap.Int("durationSeconds", durationSeconds))
}

func (p *Processor) systemPrompt(sess *Session) string {
	if sess.Profile != nil && sess.Profile.SystemPrompt != "" {
		return sess.Profile.SystemPrompt
	}
	return defaultSystemPrompt
}

func (p *Processor) speak(sess *Session, text string) Speak {
	voice, language := "Polly.Danielle-Neural", "en-US"
	if sess.Profile != nil {
		if sess.Profile.Voice != "" {
			voice = sess.Profile.Voice
		}
		if sess.Profile.Language != "" {
			language = sess.Profile.Language
		}
	}
	return Speak{Text: text, Voice: voice, Language: language}
}

type processorError string

func (e processorError) Error() string { return string(e) }

const errEmptyReply = processorError("generator returned an empty reply")

const defaultSystemPrompt = `You are a sharp, friendly AI receptionist for AI Always Answer, a service that gives small businesses a phone receptionist that never misses a call. Keep replies short and conversational, one or two sentences, suitable for being read aloud. Learn the caller's name, business, and what they need. When the caller agrees to see a demo at a specific time, book it with the book_appointment tool. When the caller wants to get started on their own, send the setup link with the send_setup_link tool. When the conversation is done, close warmly and say goodbye.`
