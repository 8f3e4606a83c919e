// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/promptline/internal/cloud"
	"github.com/jeranaias/promptline/internal/model"
)

// DefaultTimeout bounds a single completion request.
const DefaultTimeout = 30 * time.Second

// User-visible failure texts. They are appended to the history as bot
// messages.
const (
	RateLimitText = "Too many requests. Please wait a moment and try again."
	FailureText   = "Sorry, something went wrong. Please try again."
)

// Outcome describes what Apply did with a Result.
type Outcome int

const (
	// OutcomeReply appended the server's reply.
	OutcomeReply Outcome = iota
	// OutcomeRateLimited appended RateLimitText.
	OutcomeRateLimited
	// OutcomeFailed appended FailureText.
	OutcomeFailed
	// OutcomeCanceled appended nothing; the request was cancelled.
	OutcomeCanceled
	// OutcomeStale appended nothing; a newer request superseded this one.
	OutcomeStale
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeReply:
		return "reply"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeFailed:
		return "failed"
	case OutcomeCanceled:
		return "canceled"
	case OutcomeStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Appended reports whether the outcome added a message to the history.
func (o Outcome) Appended() bool {
	return o == OutcomeReply || o == OutcomeRateLimited || o == OutcomeFailed
}

// Options configures a Session. Zero values select defaults.
type Options struct {
	// Timeout bounds each request. Default: DefaultTimeout.
	Timeout time.Duration
	// HistoryCap is the maximum number of messages kept.
	// Default: model.DefaultCapacity.
	HistoryCap int
	// Parent is the context every request derives from. Cancelling it
	// cancels the in-flight request. Default: context.Background().
	Parent context.Context
}

// =============================================================================
// SESSION
// =============================================================================

// Session owns the message history and the single in-flight request.
// It is meant to be driven from one event loop; the mutex only guards the
// in-flight token against a Request finishing on another goroutine while
// the loop reads Busy.
type Session struct {
	completer Completer
	history   *model.History
	parent    context.Context

	mu       sync.Mutex
	timeout  time.Duration
	seq      uint64
	inflight *Request
}

// New creates a session that sends prompts to completer.
func New(completer Completer, opts Options) *Session {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.HistoryCap == 0 {
		opts.HistoryCap = model.DefaultCapacity
	}
	if opts.Parent == nil {
		opts.Parent = context.Background()
	}
	return &Session{
		completer: completer,
		history:   model.NewHistory(opts.HistoryCap),
		parent:    opts.Parent,
		timeout:   opts.Timeout,
	}
}

// Request is one outstanding completion call.
type Request struct {
	Seq    uint64
	Prompt string

	completer Completer
	ctx       context.Context
	cancel    context.CancelFunc
}

// Result is what a Request produced. It is handed back to Session.Apply.
type Result struct {
	Seq     uint64
	Reply   string
	Err     error
	Elapsed time.Duration
}

// NormalizeInput converts text to NFC and trims surrounding whitespace.
// An empty result means there is nothing to send.
func NormalizeInput(text string) string {
	return strings.TrimSpace(norm.NFC.String(text))
}

// Begin starts a new request for text. Blank input is a no-op and returns
// false. Otherwise the current in-flight request, if any, is cancelled, the
// user's message is appended and the new Request is returned; the caller
// runs it with Run, off the event loop.
func (s *Session) Begin(text string) (*Request, bool) {
	prompt := NormalizeInput(text)
	if prompt == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight != nil {
		log.Printf("session: request %d superseded by %d", s.inflight.Seq, s.seq+1)
		s.inflight.cancel()
	}

	s.history.Append(model.NewUserMessage(prompt))

	s.seq++
	ctx, cancel := context.WithTimeout(s.parent, s.timeout)
	req := &Request{
		Seq:       s.seq,
		Prompt:    prompt,
		completer: s.completer,
		ctx:       ctx,
		cancel:    cancel,
	}
	s.inflight = req
	return req, true
}

// Run performs the request and blocks until it finishes, times out or is
// cancelled. onToken receives streamed content. Run only touches the
// Request, so it is safe to call from any goroutine.
func (r *Request) Run(onToken func(string)) Result {
	defer r.cancel()

	start := time.Now()
	reply, err := r.completer.Complete(r.ctx, r.Prompt, onToken)
	// A completer that ignores ctx may still report success after the
	// deadline; the deadline wins.
	if err == nil {
		if ctxErr := r.ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
	}
	return Result{Seq: r.Seq, Reply: reply, Err: err, Elapsed: time.Since(start)}
}

// Context returns the request's context.
func (r *Request) Context() context.Context {
	return r.ctx
}

// Apply folds a finished Result into the history and clears the in-flight
// token. Results from superseded or user-cancelled requests are ignored.
// The returned Message is the one appended, if any.
func (s *Session) Apply(res Result) (model.Message, Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight == nil || s.inflight.Seq != res.Seq {
		return model.Message{}, OutcomeStale
	}
	s.inflight = nil

	outcome, text := classify(res)
	log.Printf("session: request %d finished in %v: %s", res.Seq, res.Elapsed.Round(time.Millisecond), outcome)
	if res.Err != nil && outcome != OutcomeCanceled {
		log.Printf("session: request %d error: %v", res.Seq, res.Err)
	}
	if !outcome.Appended() {
		return model.Message{}, outcome
	}

	msg := model.NewBotMessage(text)
	s.history.Append(msg)
	return msg, outcome
}

// classify maps a Result to its outcome and the text to show.
func classify(res Result) (Outcome, string) {
	switch {
	case res.Err == nil && strings.TrimSpace(res.Reply) != "":
		return OutcomeReply, res.Reply
	case res.Err == nil:
		return OutcomeFailed, FailureText
	case cloud.IsCanceled(res.Err):
		return OutcomeCanceled, ""
	case errors.Is(res.Err, cloud.ErrRateLimited):
		return OutcomeRateLimited, RateLimitText
	default:
		return OutcomeFailed, FailureText
	}
}

// Send runs a full request synchronously: Begin, Run, Apply. Used by the
// line-oriented front ends, which have no event loop of their own.
func (s *Session) Send(text string, onToken func(string)) (model.Message, Outcome, bool) {
	req, ok := s.Begin(text)
	if !ok {
		return model.Message{}, OutcomeStale, false
	}
	msg, outcome := s.Apply(req.Run(onToken))
	return msg, outcome, true
}

// Cancel aborts the in-flight request, if any. Its Result will be ignored
// and no message is appended.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight == nil {
		return false
	}
	log.Printf("session: request %d cancelled", s.inflight.Seq)
	s.inflight.cancel()
	s.inflight = nil
	return true
}

// Busy reports whether a request is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight != nil
}

// InFlightSeq returns the sequence number of the in-flight request, or 0.
func (s *Session) InFlightSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight == nil {
		return 0
	}
	return s.inflight.Seq
}

// Messages returns a copy of the history, oldest first.
func (s *Session) Messages() []model.Message {
	return s.history.Messages()
}

// History returns the underlying history.
func (s *Session) History() *model.History {
	return s.history
}

// Timeout returns the per-request timeout.
func (s *Session) Timeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeout
}

// SetTimeout changes the timeout for future requests.
func (s *Session) SetTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = d
}

// SetCap changes the history cap, evicting the oldest messages if needed.
func (s *Session) SetCap(n int) {
	s.history.SetCap(n)
}

// SetCompleter replaces the completer for future requests.
func (s *Session) SetCompleter(c Completer) {
	if c == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completer = c
}

// Reset cancels any in-flight request and clears the history.
func (s *Session) Reset() {
	s.Cancel()
	s.history.Clear()
}
