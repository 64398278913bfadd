package document

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"seotagger/app/internal/db"
)

// Repository defines persistence operations for documents.
type Repository interface {
	Create(ctx context.Context, content string, format Format) (*Document, error)
	Get(ctx context.Context, id string) (*Document, error)
	UpdateContent(ctx context.Context, id, content string, format Format) (*Document, error)
	SetKeywords(ctx context.Context, id string, keywords []string) (*Document, error)
	ClearKeywords(ctx context.Context, id string) (*Document, error)
}

// GormRepository persists documents using a Gorm database connection.
type GormRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

var _ Repository = (*GormRepository)(nil)

// NewRepository constructs a Gorm-backed repository implementation.
func NewRepository(conn *gorm.DB, logger *logrus.Logger) (*GormRepository, error) {
	if conn == nil {
		return nil, eris.New("gorm DB is required")
	}

	return &GormRepository{db: conn, logger: logger}, nil
}

// Migrate creates the documents table.
func Migrate(ctx context.Context, conn *gorm.DB, logger *logrus.Logger) error {
	return db.Migrate(ctx, conn, logger, "document.migrate", &Document{})
}

// Create normalizes the content and stores it as a new document without keywords.
func (r *GormRepository) Create(ctx context.Context, content string, format Format) (*Document, error) {
	text, err := Normalize(content, format)
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = FormatText
	}

	doc := &Document{
		ID:           uuid.NewString(),
		Content:      text,
		SourceFormat: format,
	}

	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		r.logError(logrus.Fields{"document_id": doc.ID}, err, "creating document")
		return nil, eris.Wrap(err, "creating document")
	}

	return doc, nil
}

// Get returns the document or ErrNotFound.
func (r *GormRepository) Get(ctx context.Context, id string) (*Document, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, eris.New("document id is required")
	}

	var doc Document
	err := r.db.WithContext(ctx).First(&doc, "id = ?", trimmed).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, eris.Wrapf(ErrNotFound, "document %s", trimmed)
		}
		r.logError(logrus.Fields{"document_id": trimmed}, err, "fetching document")
		return nil, eris.Wrapf(err, "fetching document: %s", trimmed)
	}

	return &doc, nil
}

// UpdateContent replaces the document body. Keywords are left alone.
func (r *GormRepository) UpdateContent(ctx context.Context, id, content string, format Format) (*Document, error) {
	text, err := Normalize(content, format)
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = FormatText
	}

	return r.update(ctx, id, "updating document content", func(doc *Document) {
		doc.Content = text
		doc.SourceFormat = format
	})
}

// SetKeywords replaces the keyword list. Blank entries are dropped and order is kept.
func (r *GormRepository) SetKeywords(ctx context.Context, id string, keywords []string) (*Document, error) {
	cleaned := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if trimmed := strings.TrimSpace(keyword); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	return r.update(ctx, id, "setting document keywords", func(doc *Document) {
		doc.Keywords = cleaned
	})
}

// ClearKeywords unsets the keyword list.
func (r *GormRepository) ClearKeywords(ctx context.Context, id string) (*Document, error) {
	return r.update(ctx, id, "clearing document keywords", func(doc *Document) {
		doc.Keywords = nil
	})
}

func (r *GormRepository) update(ctx context.Context, id, action string, mutate func(*Document)) (*Document, error) {
	var doc Document
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&doc, "id = ?", strings.TrimSpace(id)).Error; err != nil {
			return err
		}
		mutate(&doc)
		return tx.Save(&doc).Error
	})
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, eris.Wrapf(ErrNotFound, "document %s", id)
		}
		r.logError(logrus.Fields{"document_id": id}, err, action)
		return nil, eris.Wrapf(err, "%s: %s", action, id)
	}

	return &doc, nil
}

func (r *GormRepository) logError(fields logrus.Fields, err error, message string) {
	if r.logger == nil {
		return
	}

	entry := r.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}
