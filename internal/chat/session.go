// Package chat holds the conversation shell behind the chat screen: the
// transcript and the translation of request outcomes into display turns.
//
// A Session is owned by a single execution context. The Job returned by
// Submit runs elsewhere and reports back only through its Outcome.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/longkey1/llmchat/internal/llmchat"
	"github.com/longkey1/llmchat/internal/markup"
	"github.com/longkey1/llmchat/internal/mdrender"
)

// Turn labels as they appear in the transcript
const (
	userLabel = "You:"
	botLabel  = "Bot:"
)

// Template builds the messages sent for one input
type Template interface {
	Messages(input string) []llmchat.Message
}

// Outcome is the single terminal result of one Job
type Outcome struct {
	RequestID string
	Reply     string
	Err       error
	Elapsed   time.Duration
}

// Job is the background work bound to one submission
type Job func(ctx context.Context) Outcome

// Session represents one conversation on screen
type Session struct {
	ID        string
	CreatedAt time.Time

	completer  llmchat.Completer
	template   Template
	transcript Transcript
	inFlight   int
	closed     bool
	logger     *slog.Logger
	now        func() time.Time
}

// NewSession creates a new session sending every input through template
func NewSession(completer llmchat.Completer, template Template) *Session {
	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		completer: completer,
		template:  template,
		logger:    slog.Default(),
		now:       time.Now,
	}
}

// WithLogger sets the logger used for request bookkeeping
func (s *Session) WithLogger(logger *slog.Logger) *Session {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// GetShortID returns the shortened session ID (first 8 characters)
func (s *Session) GetShortID() string {
	if len(s.ID) >= 8 {
		return s.ID[:8]
	}
	return s.ID
}

// Submit appends the user turn for text and returns the job that fetches the
// reply. Whitespace-only input produces neither a turn nor a job.
func (s *Session) Submit(text string) (Job, bool) {
	text = strings.TrimSpace(text)
	if text == "" || s.closed {
		return nil, false
	}

	s.append(RoleUser, markup.Bold(userLabel)+" "+markup.Escape(text))
	s.inFlight++

	requestID := uuid.New().String()
	messages := s.template.Messages(text)
	completer := s.completer
	logger := s.logger.With("session", s.GetShortID(), "request_id", requestID)

	logger.Debug("request queued", "messages", len(messages))
	return func(ctx context.Context) Outcome {
		start := time.Now()
		reply, err := completer.Complete(ctx, messages)
		elapsed := time.Since(start)
		if err != nil {
			logger.Warn("request failed", "elapsed", elapsed, "error", err)
		} else {
			logger.Info("reply received", "elapsed", elapsed, "bytes", len(reply))
		}
		return Outcome{RequestID: requestID, Reply: reply, Err: err, Elapsed: elapsed}
	}, true
}

// Complete turns an outcome into a bot or error turn. Outcomes arriving after
// Close are dropped.
func (s *Session) Complete(o Outcome) (Turn, bool) {
	if s.closed {
		s.logger.Debug("dropping late reply", "request_id", o.RequestID)
		return Turn{}, false
	}
	if s.inFlight > 0 {
		s.inFlight--
	}

	if o.Err != nil {
		return s.append(RoleError, errorText(o.Err)), true
	}
	return s.append(RoleBot, markup.Bold(botLabel)+" "+RenderReply(o.Reply)), true
}

// RenderReply translates a Markdown reply into markup without the
// surrounding blank lines left by block elements.
func RenderReply(reply string) string {
	return strings.Trim(mdrender.Render(strings.TrimSpace(reply)), "\n")
}

// ReportLinkError records a failed reference activation
func (s *Session) ReportLinkError(url string, err error) Turn {
	s.logger.Warn("failed to open link", "url", url, "error", err)
	return s.append(RoleError, markup.Color(markup.ColorError, markup.Escape("Error opening link: "+err.Error())))
}

// Close stops the session from accepting input or replies
func (s *Session) Close() {
	s.closed = true
}

// Closed reports whether Close was called
func (s *Session) Closed() bool {
	return s.closed
}

// InFlight returns the number of submitted jobs without a completed outcome
func (s *Session) InFlight() int {
	return s.inFlight
}

// Transcript returns a copy of the turns so far
func (s *Session) Transcript() []Turn {
	return s.transcript.Turns()
}

func (s *Session) append(role Role, text string) Turn {
	return s.transcript.append(Turn{
		ID:   uuid.New().String(),
		Role: role,
		Text: text,
		At:   s.now(),
	})
}

func errorText(err error) string {
	var statusErr llmchat.StatusError
	switch {
	case errors.As(err, &statusErr):
		return markup.Color(markup.ColorError,
			markup.Bold("Server Error:")+" "+markup.Escape(statusErr.DisplayMessage()))
	case errors.Is(err, llmchat.ErrMalformedResponse):
		return markup.Color(markup.ColorError, markup.Escape("[Error: "+capitalize(err.Error())+"]"))
	default:
		return markup.Color(markup.ColorError,
			markup.Bold("General Error:")+" "+markup.Escape(err.Error()))
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
