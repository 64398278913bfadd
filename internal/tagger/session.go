// Package tagger drives keyword generation for one editing session at a time.
package tagger

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"seotagger/app/internal/credentials"
	"seotagger/app/internal/llm"
	"seotagger/app/internal/secrets"
)

const (
	messageUnexpected    = "An unexpected error occurred."
	messageContentFailed = "Could not read the document content."
	messageApplyFailed   = "Generated keywords could not be saved to the document."
)

// Outcome reports what a Generate call did.
type Outcome string

const (
	// OutcomeSkipped means a request was already in flight or the session was closed.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeApplied means keywords were generated and sent to the host.
	OutcomeApplied Outcome = "applied"
	// OutcomeFailed means the error is available through State.
	OutcomeFailed Outcome = "failed"
	// OutcomeDiscarded means the session closed while the request was in flight.
	OutcomeDiscarded Outcome = "discarded"
)

// State is the part of a session the presentation layer reads.
type State struct {
	IsLoading   bool
	LastError   string
	LastReason  llm.Reason
	MaxKeywords int
}

// SessionOptions configures a Session.
type SessionOptions struct {
	ID         string
	DocumentID string
	Host       Host
	Generator  llm.KeywordGenerator
	Secrets    secrets.Source
	Namespace  string
	Explicit   credentials.Credentials
	Logger     *logrus.Logger
	SentryHub  *sentry.Hub
}

// Session is the generate/clear state machine for one editing session.
// A request in flight blocks further Generate calls; nothing else is queued.
type Session struct {
	id         string
	documentID string
	host       Host
	generator  llm.KeywordGenerator
	secrets    secrets.Source
	namespace  string
	explicit   credentials.Credentials
	logger     *logrus.Logger
	sentryHub  *sentry.Hub
	now        func() time.Time

	mu          sync.Mutex
	inFlight    bool
	lastError   string
	lastReason  llm.Reason
	maxKeywords int
	closed      bool
	lastActive  time.Time
}

// NewSession wires a session with its collaborators.
func NewSession(opts SessionOptions) (*Session, error) {
	if opts.Host == nil {
		return nil, eris.New("host is required")
	}
	if opts.Generator == nil {
		return nil, eris.New("keyword generator is required")
	}

	namespace := strings.TrimSpace(opts.Namespace)
	if namespace == "" {
		namespace = secrets.Namespace
	}

	return &Session{
		id:          opts.ID,
		documentID:  opts.DocumentID,
		host:        opts.Host,
		generator:   opts.Generator,
		secrets:     opts.Secrets,
		namespace:   namespace,
		explicit:    opts.Explicit,
		logger:      opts.Logger,
		sentryHub:   opts.SentryHub,
		now:         time.Now,
		maxKeywords: DefaultMaxKeywords,
		lastActive:  time.Now(),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// DocumentID returns the document the session edits.
func (s *Session) DocumentID() string {
	return s.documentID
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		IsLoading:   s.inFlight,
		LastError:   s.lastError,
		LastReason:  s.lastReason,
		MaxKeywords: s.maxKeywords,
	}
}

// SetMaxKeywords changes the limit used by the next Generate call.
func (s *Session) SetMaxKeywords(n int) error {
	if !ValidMaxKeywords(n) {
		return ErrInvalidMaxKeywords
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.maxKeywords = n
	s.lastActive = s.now()
	return nil
}

// Generate requests keywords for the current document content and applies
// them to the host. It never returns an error: failures land in State.
//
// The outbound request is detached from ctx cancellation and always runs to
// completion. Its result is dropped only if Close was called meanwhile.
func (s *Session) Generate(ctx context.Context) Outcome {
	s.mu.Lock()
	if s.inFlight || s.closed {
		s.mu.Unlock()
		return OutcomeSkipped
	}
	s.lastActive = s.now()
	s.mu.Unlock()

	fields := logrus.Fields{
		"session_id":  s.id,
		"document_id": s.documentID,
	}

	// Content is read before the session is marked loading, so a document
	// without content fails without ever reporting IsLoading.
	content, err := s.host.Content(ctx)
	if err != nil {
		s.recordError(fields, err, "reading document content")
		return s.reject(llm.ReasonUnexpected, messageContentFailed)
	}

	// Whitespace-only content counts as no content.
	if strings.TrimSpace(content) == "" {
		return s.reject(llm.ReasonNoContent, llm.MessageNoContent)
	}

	s.mu.Lock()
	if s.inFlight || s.closed {
		s.mu.Unlock()
		return OutcomeSkipped
	}
	s.inFlight = true
	maxKeywords := s.maxKeywords
	s.lastError = ""
	s.lastReason = ""
	s.mu.Unlock()

	fields["max_keywords"] = maxKeywords

	creds := s.explicit.Or(s.storedCredentials(ctx, fields))

	detached := context.WithoutCancel(ctx)
	keywords, err := s.generator.Generate(detached, llm.Request{
		Content:     content,
		Credentials: creds,
		MaxKeywords: maxKeywords,
	})

	if s.isClosed() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.WithFields(fields).Debug("discarding keyword result for closed session")
		}
		return OutcomeDiscarded
	}

	if err != nil {
		s.recordFailure(fields, err)
		return s.finish(failureDetails(err))
	}

	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}

	if applyErr := s.host.Apply(detached, Set(keywords)); applyErr != nil {
		s.recordError(fields, applyErr, "applying generated keywords")
		return s.finish(llm.ReasonUnexpected, messageApplyFailed)
	}

	if s.logger != nil {
		s.logger.WithFields(fields).WithField("keywords", len(keywords)).Info("keywords applied")
	}

	return s.finish("", "")
}

// Clear removes every keyword from the host document. The stored error is left as is.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.lastActive = s.now()
	s.mu.Unlock()

	if err := s.host.Apply(ctx, Unset()); err != nil {
		s.recordError(logrus.Fields{"session_id": s.id, "document_id": s.documentID}, err, "clearing keywords")
		return eris.Wrap(err, "clearing keywords")
	}

	return nil
}

// Close marks the session torn down. A result arriving afterwards is dropped.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
}

func (s *Session) idleSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastActive, s.inFlight
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// finish returns to idle with the given error; an empty message means success.
func (s *Session) finish(reason llm.Reason, message string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight = false
	s.lastError = message
	s.lastReason = reason
	s.lastActive = s.now()

	if message == "" {
		return OutcomeApplied
	}
	return OutcomeFailed
}

// reject stores an error for a call that never went in flight. A concurrent
// call that started meanwhile owns the state, so nothing is written then.
func (s *Session) reject(reason llm.Reason, message string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight || s.closed {
		return OutcomeSkipped
	}

	s.lastError = message
	s.lastReason = reason
	s.lastActive = s.now()
	return OutcomeFailed
}

func (s *Session) storedCredentials(ctx context.Context, fields logrus.Fields) credentials.Credentials {
	if s.secrets == nil {
		return credentials.Credentials{}
	}

	stored, err := s.secrets.Lookup(ctx, s.namespace)
	if err != nil {
		// Environment variables can still supply a key.
		s.recordError(fields, err, "loading stored credentials")
		return credentials.Credentials{}
	}

	return stored
}

func failureDetails(err error) (llm.Reason, string) {
	failure, ok := llm.AsFailure(err)
	if !ok {
		return llm.ReasonUnexpected, messageUnexpected
	}
	if strings.TrimSpace(failure.Message) == "" {
		return failure.Reason, messageUnexpected
	}
	return failure.Reason, failure.Message
}

func (s *Session) recordFailure(fields logrus.Fields, err error) {
	failure, ok := llm.AsFailure(err)
	if !ok {
		s.recordError(fields, err, "keyword generation failed")
		return
	}

	switch failure.Reason {
	case llm.ReasonUpstreamHTTPError, llm.ReasonTransportOrParseError:
		s.recordError(fields, err, "keyword generation failed")
	default:
		if s.logger != nil {
			s.logger.WithFields(fields).WithField("reason", string(failure.Reason)).Info("keyword generation rejected")
		}
	}
}

func (s *Session) recordError(fields logrus.Fields, err error, message string) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}

	if s.sentryHub != nil {
		s.sentryHub.CaptureException(err)
	}
}
