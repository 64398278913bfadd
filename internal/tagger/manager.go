package tagger

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"seotagger/app/internal/credentials"
	"seotagger/app/internal/llm"
	"seotagger/app/internal/secrets"
)

// ErrSessionNotFound is returned for unknown or closed session ids.
var ErrSessionNotFound = eris.New("session not found")

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	Hosts     HostFactory
	Generator llm.KeywordGenerator
	Secrets   secrets.Source
	IdleTTL   time.Duration
	Logger    *logrus.Logger
	SentryHub *sentry.Hub
}

// Manager owns the open editing sessions.
type Manager struct {
	hosts     HostFactory
	generator llm.KeywordGenerator
	secrets   secrets.Source
	idleTTL   time.Duration
	logger    *logrus.Logger
	sentryHub *sentry.Hub
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager constructs a session manager.
func NewManager(opts ManagerOptions) (*Manager, error) {
	if opts.Hosts == nil {
		return nil, eris.New("host factory is required")
	}
	if opts.Generator == nil {
		return nil, eris.New("keyword generator is required")
	}

	return &Manager{
		hosts:     opts.Hosts,
		generator: opts.Generator,
		secrets:   opts.Secrets,
		idleTTL:   opts.IdleTTL,
		logger:    opts.Logger,
		sentryHub: opts.SentryHub,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}, nil
}

// Open starts a session on the document. Explicit credentials, when given,
// take precedence over the stored bundle for every request of the session.
func (m *Manager) Open(ctx context.Context, documentID string, explicit credentials.Credentials) (*Session, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, eris.New("document id is required")
	}

	host, err := m.hosts.Host(ctx, documentID)
	if err != nil {
		return nil, eris.Wrapf(err, "opening host for document %s", documentID)
	}

	session, err := NewSession(SessionOptions{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Host:       host,
		Generator:  m.generator,
		Secrets:    m.secrets,
		Explicit:   explicit,
		Logger:     m.logger,
		SentryHub:  m.sentryHub,
	})
	if err != nil {
		return nil, eris.Wrap(err, "creating session")
	}
	session.now = m.now
	session.lastActive = m.now()

	m.mu.Lock()
	m.sessions[session.ID()] = session
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.WithFields(logrus.Fields{
			"session_id":  session.ID(),
			"document_id": documentID,
		}).Info("editing session opened")
	}

	return session, nil
}

// Get returns an open session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[strings.TrimSpace(id)]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Close tears the session down; an in-flight result will be discarded.
func (m *Manager) Close(id string) error {
	id = strings.TrimSpace(id)

	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	session.Close()
	return nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}

// Prune closes sessions idle for longer than the TTL. Sessions with a request
// in flight are kept.
func (m *Manager) Prune() int {
	if m.idleTTL <= 0 {
		return 0
	}

	now := m.now()

	m.mu.Lock()
	var stale []*Session
	for id, session := range m.sessions {
		lastActive, inFlight := session.idleSince()
		if inFlight || now.Sub(lastActive) <= m.idleTTL {
			continue
		}
		stale = append(stale, session)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, session := range stale {
		session.Close()
	}

	if len(stale) > 0 && m.logger != nil {
		m.logger.WithField("sessions", len(stale)).Info("pruned idle editing sessions")
	}

	return len(stale)
}

// Run prunes idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	if m.idleTTL <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(m.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Prune()
		}
	}
}
