package tagger

import "context"

// ChangeKind distinguishes the two whole-list patches a session emits.
type ChangeKind int

const (
	// ChangeSet replaces the keyword list.
	ChangeSet ChangeKind = iota + 1
	// ChangeUnset removes the keyword list.
	ChangeUnset
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeSet:
		return "set"
	case ChangeUnset:
		return "unset"
	default:
		return "unknown"
	}
}

// Change is a patch toward the host document. Keywords is only meaningful for ChangeSet.
type Change struct {
	Kind     ChangeKind
	Keywords []string
}

// Set builds a replace-list change. The slice is copied.
func Set(keywords []string) Change {
	copied := make([]string, len(keywords))
	copy(copied, keywords)
	return Change{Kind: ChangeSet, Keywords: copied}
}

// Unset builds a clear-list change.
func Unset() Change {
	return Change{Kind: ChangeUnset}
}

// Host is the editing surface a session works against. It owns the document:
// the session only reads its content and sends it whole-list changes.
type Host interface {
	Content(ctx context.Context) (string, error)
	Apply(ctx context.Context, change Change) error
}

// HostFactory opens the host for a document.
type HostFactory interface {
	Host(ctx context.Context, documentID string) (Host, error)
}
