package document

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"seotagger/app/internal/db"
)

func TestNewRepositoryRequiresDatabase(t *testing.T) {
	t.Parallel()

	if _, err := NewRepository(nil, nil); err == nil {
		t.Fatalf("expected error when database is nil")
	}
}

func TestCreateAndGet(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "<p>Rust vs Go</p>", FormatHTML)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected id to be assigned")
	}

	stored, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if stored.Content != "Rust vs Go" {
		t.Fatalf("expected normalized content, got %q", stored.Content)
	}
	if stored.SourceFormat != FormatHTML {
		t.Fatalf("expected html source format, got %q", stored.SourceFormat)
	}
	if stored.Keywords != nil {
		t.Fatalf("expected keywords to be unset, got %v", stored.Keywords)
	}
}

func TestGetMissingDocument(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)

	if _, err := repo.Get(context.Background(), "missing"); !eris.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.SetKeywords(context.Background(), "missing", []string{"a"}); !eris.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from SetKeywords, got %v", err)
	}
}

func TestSetAndClearKeywords(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "content", FormatText)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := repo.SetKeywords(ctx, created.ID, []string{" rust ", "", "go"}); err != nil {
		t.Fatalf("SetKeywords returned error: %v", err)
	}

	stored, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got := strings.Join(stored.Keywords, ","); got != "rust,go" {
		t.Fatalf("expected rust,go, got %q", got)
	}

	if _, err := repo.ClearKeywords(ctx, created.ID); err != nil {
		t.Fatalf("ClearKeywords returned error: %v", err)
	}

	stored, err = repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if stored.Keywords != nil {
		t.Fatalf("expected keywords to be unset, got %v", stored.Keywords)
	}
}

func TestUpdateContentKeepsKeywords(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "first", FormatText)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := repo.SetKeywords(ctx, created.ID, []string{"alpha"}); err != nil {
		t.Fatalf("SetKeywords returned error: %v", err)
	}

	updated, err := repo.UpdateContent(ctx, created.ID, "# Second", FormatMarkdown)
	if err != nil {
		t.Fatalf("UpdateContent returned error: %v", err)
	}
	if updated.Content != "Second" {
		t.Fatalf("expected markdown to be normalized, got %q", updated.Content)
	}
	if len(updated.Keywords) != 1 || updated.Keywords[0] != "alpha" {
		t.Fatalf("expected keywords to survive content update, got %v", updated.Keywords)
	}
}

func setupRepository(t *testing.T) *GormRepository {
	t.Helper()

	gormDB, err := db.Open(db.Options{Path: filepath.Join(t.TempDir(), "documents.db")})
	if err != nil {
		t.Fatalf("db.Open returned error: %v", err)
	}

	t.Cleanup(func() {
		if closeErr := db.Close(gormDB); closeErr != nil {
			t.Fatalf("closing database failed: %v", closeErr)
		}
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	if err := Migrate(context.Background(), gormDB, logger); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}

	repo, err := NewRepository(gormDB, logger)
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}

	return repo
}
