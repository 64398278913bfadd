package tagger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"

	"seotagger/app/internal/credentials"
)

func TestManagerOpenAndGet(t *testing.T) {
	t.Parallel()

	hosts := newStubHostFactory()
	manager := newTestManager(t, hosts, &stubGenerator{keywords: []string{"alpha"}}, 0)

	session, err := manager.Open(context.Background(), " doc-1 ", credentials.Credentials{})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if session.ID() == "" {
		t.Fatalf("expected session id to be assigned")
	}
	if session.DocumentID() != "doc-1" {
		t.Fatalf("expected trimmed document id, got %q", session.DocumentID())
	}

	got, err := manager.Get(session.ID())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != session {
		t.Fatalf("expected Get to return the opened session")
	}
	if manager.Len() != 1 {
		t.Fatalf("expected one open session, got %d", manager.Len())
	}

	if outcome := got.Generate(context.Background()); outcome != OutcomeApplied {
		t.Fatalf("expected applied outcome, got %s", outcome)
	}
	if changes := hosts.host("doc-1").appliedChanges(); len(changes) != 1 {
		t.Fatalf("expected change on document host, got %d", len(changes))
	}
}

func TestManagerOpenRejectsUnknownDocument(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, newStubHostFactory(), &stubGenerator{}, 0)

	if _, err := manager.Open(context.Background(), "missing", credentials.Credentials{}); !eris.Is(err, errUnknownDocument) {
		t.Fatalf("expected unknown document error, got %v", err)
	}
	if _, err := manager.Open(context.Background(), "  ", credentials.Credentials{}); err == nil {
		t.Fatalf("expected error for blank document id")
	}
	if manager.Len() != 0 {
		t.Fatalf("expected no sessions after failed opens")
	}
}

func TestManagerCloseRemovesSession(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, newStubHostFactory(), &stubGenerator{}, 0)
	session, err := manager.Open(context.Background(), "doc-1", credentials.Credentials{})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	if err := manager.Close(session.ID()); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if _, err := manager.Get(session.ID()); !eris.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := manager.Close(session.ID()); !eris.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on second close, got %v", err)
	}
	if outcome := session.Generate(context.Background()); outcome != OutcomeSkipped {
		t.Fatalf("expected closed session to skip generate, got %s", outcome)
	}
}

func TestManagerPruneClosesIdleSessions(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	manager := newTestManager(t, newStubHostFactory(), &stubGenerator{}, time.Minute)
	manager.now = clock.Now

	idle, err := manager.Open(context.Background(), "doc-1", credentials.Credentials{})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	clock.Advance(45 * time.Second)
	active, err := manager.Open(context.Background(), "doc-2", credentials.Credentials{})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	clock.Advance(30 * time.Second)

	if pruned := manager.Prune(); pruned != 1 {
		t.Fatalf("expected one pruned session, got %d", pruned)
	}
	if _, err := manager.Get(idle.ID()); !eris.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected idle session to be pruned, got %v", err)
	}
	if _, err := manager.Get(active.ID()); err != nil {
		t.Fatalf("expected active session to remain, got %v", err)
	}
}

func TestManagerPruneKeepsInFlightSessions(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	generator := newBlockingGenerator([]string{"alpha"})
	manager := newTestManager(t, newStubHostFactory(), generator, time.Minute)
	manager.now = clock.Now

	session, err := manager.Open(context.Background(), "doc-1", credentials.Credentials{})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	done := make(chan Outcome, 1)
	go func() {
		done <- session.Generate(context.Background())
	}()
	<-generator.started

	clock.Advance(time.Hour)
	if pruned := manager.Prune(); pruned != 0 {
		t.Fatalf("expected in-flight session to be kept, pruned %d", pruned)
	}

	close(generator.release)
	if outcome := <-done; outcome != OutcomeApplied {
		t.Fatalf("expected applied outcome, got %s", outcome)
	}
}

func TestManagerPruneDisabledWithoutTTL(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, newStubHostFactory(), &stubGenerator{}, 0)
	if _, err := manager.Open(context.Background(), "doc-1", credentials.Credentials{}); err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	if pruned := manager.Prune(); pruned != 0 {
		t.Fatalf("expected prune to be disabled, got %d", pruned)
	}
}

func TestManagerRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, newStubHostFactory(), &stubGenerator{}, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- manager.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancellation")
	}
}

func TestNewManagerValidatesDependencies(t *testing.T) {
	t.Parallel()

	if _, err := NewManager(ManagerOptions{Generator: &stubGenerator{}}); err == nil {
		t.Fatalf("expected error without host factory")
	}
	if _, err := NewManager(ManagerOptions{Hosts: newStubHostFactory()}); err == nil {
		t.Fatalf("expected error without generator")
	}
}

func newTestManager(t *testing.T, hosts HostFactory, generator *stubGenerator, ttl time.Duration) *Manager {
	t.Helper()

	manager, err := NewManager(ManagerOptions{
		Hosts:     hosts,
		Generator: generator,
		IdleTTL:   ttl,
		Logger:    silentLogger(),
	})
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}
	return manager
}

var errUnknownDocument = eris.New("unknown document")

type stubHostFactory struct {
	mu    sync.Mutex
	hosts map[string]*stubHost
}

func newStubHostFactory() *stubHostFactory {
	return &stubHostFactory{hosts: map[string]*stubHost{
		"doc-1": {content: "first document"},
		"doc-2": {content: "second document"},
	}}
}

func (f *stubHostFactory) Host(_ context.Context, documentID string) (Host, error) {
	host := f.host(documentID)
	if host == nil {
		return nil, errUnknownDocument
	}
	return host, nil
}

func (f *stubHostFactory) host(documentID string) *stubHost {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.hosts[documentID]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}
