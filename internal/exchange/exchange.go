// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exchange

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cerevo/cerevo-tui/internal/backend"
	"github.com/cerevo/cerevo-tui/internal/model"
)

// Sentinel errors returned by Begin and Send.
var (
	ErrEmptyInput = errors.New("message is empty")
	ErrInFlight   = errors.New("an exchange is already in progress")
)

// ErrorReplyPrefix starts the synthetic reply appended when an exchange fails.
const ErrorReplyPrefix = "Sorry, there was an error processing your message: "

// DefaultLanguage is sent with structured-analysis requests.
const DefaultLanguage = "python"

// Client is the subset of the backend client an exchange needs.
type Client interface {
	Chat(ctx context.Context, req backend.ChatRequest) (*backend.ChatResponse, error)
	ExplainCode(ctx context.Context, code, language string) (*backend.ExplainResponse, error)
}

// SessionStore is the subset of the Session Collection an exchange writes to.
type SessionStore interface {
	Create(title string, messages []model.Message) model.Session
	Update(id string, messages []model.Message) error
}

// =============================================================================
// EXCHANGE
// =============================================================================

// Exchange holds the live conversation and admits one request at a time.
type Exchange struct {
	client   Client
	store    SessionStore
	logger   *zap.Logger
	language string

	mu         sync.Mutex
	transcript []model.Message
	sessionID  string
	inFlight   bool
	generation uint64 // bumped whenever the conversation is replaced

	// running counts backend calls per saved session. It survives Open and
	// Reset so a reopened session cannot start a second overlapping call.
	running map[string]int
}

// Option configures an Exchange.
type Option func(*Exchange)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Exchange) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLanguage sets the language sent with structured-analysis requests.
func WithLanguage(language string) Option {
	return func(e *Exchange) {
		if language != "" {
			e.language = language
		}
	}
}

// New creates an Exchange with an empty, unsaved conversation.
func New(client Client, store SessionStore, opts ...Option) *Exchange {
	e := &Exchange{
		client:   client,
		store:    store,
		logger:   zap.NewNop(),
		language: DefaultLanguage,
		running:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("exchange")
	return e
}

// Transcript returns a copy of the live transcript.
func (e *Exchange) Transcript() []model.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return model.CloneMessages(e.transcript)
}

// CurrentSessionID returns the ID of the open session, or "" for a
// conversation that has not been saved yet.
func (e *Exchange) CurrentSessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionID
}

// InFlight reports whether the live conversation is waiting for the backend,
// including a call started before its session was reopened.
func (e *Exchange) InFlight() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy()
}

// busy must be called with mu held.
func (e *Exchange) busy() bool {
	return e.inFlight || (e.sessionID != "" && e.running[e.sessionID] > 0)
}

// Open replaces the live conversation with a stored session.
func (e *Exchange) Open(id string, messages []model.Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replace(id, messages)
}

// Reset starts a new, empty conversation.
func (e *Exchange) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replace("", nil)
}

// replace must be called with mu held. A request still running for the old
// conversation no longer blocks a different one; its result is routed by
// generation in Finish.
func (e *Exchange) replace(id string, messages []model.Message) {
	e.transcript = model.CloneMessages(messages)
	e.sessionID = id
	e.inFlight = false
	e.generation++
}

// =============================================================================
// PHASES
// =============================================================================

// Pending is an admitted exchange waiting for its backend call.
type Pending struct {
	Input       string
	Mode        model.Mode
	Temperature float64

	client     Client
	language   string
	history    []model.Message // includes the new user message
	sessionID  string
	generation uint64
}

// Outcome is the result of Pending.Run.
type Outcome struct {
	Pending *Pending
	Reply   string
	Err     error
	Elapsed time.Duration
}

// Begin validates input, appends the user message and marks the exchange in
// flight. It returns ErrEmptyInput or ErrInFlight without changing anything.
func (e *Exchange) Begin(input string, mode model.Mode, temperature float64) (*Pending, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.busy() {
		return nil, ErrInFlight
	}
	if mode == "" {
		mode = model.DefaultMode
	}

	e.transcript = append(e.transcript, model.NewUserMessage(input))
	e.inFlight = true
	if e.sessionID != "" {
		e.running[e.sessionID]++
	}

	return &Pending{
		Input:       input,
		Mode:        mode,
		Temperature: model.ClampTemperature(temperature),
		client:      e.client,
		language:    e.language,
		history:     model.CloneMessages(e.transcript),
		sessionID:   e.sessionID,
		generation:  e.generation,
	}, nil
}

// Run makes exactly one backend call. It does not touch the Exchange and is
// safe to call off the UI loop.
func (p *Pending) Run(ctx context.Context) Outcome {
	start := time.Now()
	reply, err := p.call(ctx)
	return Outcome{
		Pending: p,
		Reply:   reply,
		Err:     err,
		Elapsed: time.Since(start),
	}
}

func (p *Pending) call(ctx context.Context) (string, error) {
	if p.Mode.IsStructured() {
		resp, err := p.client.ExplainCode(ctx, p.Input, p.language)
		if err != nil {
			return "", err
		}
		return FormatAnalysis(resp), nil
	}

	resp, err := p.client.Chat(ctx, backend.ChatRequest{
		Mode:        p.Mode.String(),
		Messages:    wireMessages(p.history),
		Temperature: p.Temperature,
		Memory:      false,
	})
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", backend.ErrInvalidResponse
	}
	return resp.Reply, nil
}

// Finish appends the assistant message for out and saves the conversation.
// On success a new conversation becomes a session titled from the user's
// input and an existing one is updated; on failure the error reply is
// appended and the session is left as it was.
//
// If the conversation was replaced while the request ran, the live
// transcript is left alone. A successful reply for a saved session is
// still written to that session so it is not lost.
func (e *Exchange) Finish(out Outcome) model.Message {
	p := out.Pending

	var reply model.Message
	if out.Err != nil {
		reply = model.NewAssistantMessage(ErrorReplyPrefix + out.Err.Error())
	} else {
		reply = model.NewAssistantMessage(out.Reply)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.release(p)

	if p.generation != e.generation {
		e.logger.Info("exchange finished after conversation changed",
			zap.String("session", p.sessionID),
			zap.Bool("failed", out.Err != nil))
		if out.Err == nil && p.sessionID != "" {
			messages := append(p.history, reply)
			e.save(p, messages, true)
			if p.sessionID == e.sessionID {
				// The session was reopened while the request ran. Begin was
				// refused meanwhile, so the live transcript is the stored one.
				e.transcript = model.CloneMessages(messages)
			}
		}
		return reply
	}

	e.inFlight = false
	e.transcript = append(e.transcript, reply)

	fields := []zap.Field{
		zap.String("mode", p.Mode.String()),
		zap.Duration("latency", out.Elapsed),
		zap.Int("messages", len(e.transcript)),
	}
	if out.Err != nil {
		e.logger.Warn("exchange failed", append(fields, zap.Error(out.Err))...)
		return reply
	}
	e.logger.Info("exchange completed", fields...)

	e.save(p, e.transcript, false)
	return reply
}

// release drops p's session from the running set. Must be called with mu held.
func (e *Exchange) release(p *Pending) {
	if p.sessionID == "" {
		return
	}
	if e.running[p.sessionID]--; e.running[p.sessionID] <= 0 {
		delete(e.running, p.sessionID)
	}
}

// save creates or updates the session for p. Must be called with mu held.
func (e *Exchange) save(p *Pending, messages []model.Message, stale bool) {
	if p.sessionID == "" {
		sess := e.store.Create(model.SessionTitle(p.Input), messages)
		if !stale {
			e.sessionID = sess.ID
		}
		return
	}
	if err := e.store.Update(p.sessionID, messages); err != nil {
		// The session was deleted while the request ran.
		e.logger.Warn("failed to update session",
			zap.String("session", p.sessionID),
			zap.Error(err))
	}
}

// Send runs Begin, Run and Finish synchronously.
func (e *Exchange) Send(ctx context.Context, input string, mode model.Mode, temperature float64) (model.Message, error) {
	p, err := e.Begin(input, mode, temperature)
	if err != nil {
		return model.Message{}, err
	}
	return e.Finish(p.Run(ctx)), nil
}

// IsErrorReply reports whether msg is the synthetic reply for a failed
// exchange.
func IsErrorReply(msg model.Message) bool {
	return msg.Role == model.RoleAssistant && strings.HasPrefix(msg.Content, ErrorReplyPrefix)
}

func wireMessages(msgs []model.Message) []backend.ChatMessage {
	out := make([]backend.ChatMessage, len(msgs))
	for i, m := range msgs {
		out[i] = backend.ChatMessage{Role: m.Role.String(), Content: m.Content}
	}
	return out
}
