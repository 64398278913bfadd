package document

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"

	"seotagger/app/internal/tagger"
)

func TestHostReadsAndAppliesChanges(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "Article about rust vs go performance", FormatText)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	hosts, err := NewHosts(repo, nil)
	if err != nil {
		t.Fatalf("NewHosts returned error: %v", err)
	}

	host, err := hosts.Host(ctx, created.ID)
	if err != nil {
		t.Fatalf("Host returned error: %v", err)
	}

	content, err := host.Content(ctx)
	if err != nil {
		t.Fatalf("Content returned error: %v", err)
	}
	if content != created.Content {
		t.Fatalf("expected %q, got %q", created.Content, content)
	}

	if err := host.Apply(ctx, tagger.Set([]string{"rust", "go", "performance"})); err != nil {
		t.Fatalf("Apply(set) returned error: %v", err)
	}
	stored, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got := strings.Join(stored.Keywords, ","); got != "rust,go,performance" {
		t.Fatalf("expected keywords to be set, got %q", got)
	}

	if err := host.Apply(ctx, tagger.Unset()); err != nil {
		t.Fatalf("Apply(unset) returned error: %v", err)
	}
	stored, err = repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if stored.Keywords != nil {
		t.Fatalf("expected keywords to be unset, got %v", stored.Keywords)
	}
}

func TestHostForMissingDocument(t *testing.T) {
	t.Parallel()

	hosts, err := NewHosts(setupRepository(t), nil)
	if err != nil {
		t.Fatalf("NewHosts returned error: %v", err)
	}

	if _, err := hosts.Host(context.Background(), "missing"); !eris.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHostRejectsUnknownChange(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	created, err := repo.Create(context.Background(), "content", FormatText)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	hosts, err := NewHosts(repo, nil)
	if err != nil {
		t.Fatalf("NewHosts returned error: %v", err)
	}
	host, err := hosts.Host(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Host returned error: %v", err)
	}

	if err := host.Apply(context.Background(), tagger.Change{}); err == nil {
		t.Fatalf("expected error for zero change kind")
	}
}
