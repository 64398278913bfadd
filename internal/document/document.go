// Package document stores the articles editors tag and exposes them as tagger hosts.
package document

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ErrNotFound is returned when no document has the requested id.
var ErrNotFound = eris.New("document not found")

// Format names how submitted content is encoded.
type Format string

const (
	FormatText     Format = "text"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// ErrUnknownFormat is returned for formats other than text, html and markdown.
var ErrUnknownFormat = eris.New("content format must be one of text, html, markdown")

// ParseFormat maps a user supplied format name to a Format. Blank means text.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatText:
		return FormatText, nil
	case FormatHTML:
		return FormatHTML, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	default:
		return "", eris.Wrapf(ErrUnknownFormat, "format %q", raw)
	}
}

// Document is an article with its plain text body and keyword list.
// A nil Keywords means the list is unset.
type Document struct {
	ID           string   `gorm:"primaryKey;size:36"`
	Content      string   `gorm:"type:text;not null"`
	SourceFormat Format   `gorm:"size:16;not null"`
	Keywords     []string `gorm:"serializer:json"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName defines the table name for the Document model.
func (Document) TableName() string {
	return "documents"
}
