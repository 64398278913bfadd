package document

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"seotagger/app/internal/tagger"
)

// Hosts opens stored documents as tagger hosts.
type Hosts struct {
	repo   Repository
	logger *logrus.Logger
}

var _ tagger.HostFactory = (*Hosts)(nil)

// NewHosts constructs a host factory over the repository.
func NewHosts(repo Repository, logger *logrus.Logger) (*Hosts, error) {
	if repo == nil {
		return nil, eris.New("document repository is required")
	}

	return &Hosts{repo: repo, logger: logger}, nil
}

// Host returns the editing surface for an existing document.
func (h *Hosts) Host(ctx context.Context, documentID string) (tagger.Host, error) {
	doc, err := h.repo.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	return &host{repo: h.repo, id: doc.ID, logger: h.logger}, nil
}

type host struct {
	repo   Repository
	id     string
	logger *logrus.Logger
}

func (h *host) Content(ctx context.Context) (string, error) {
	doc, err := h.repo.Get(ctx, h.id)
	if err != nil {
		return "", err
	}
	return doc.Content, nil
}

func (h *host) Apply(ctx context.Context, change tagger.Change) error {
	var err error
	switch change.Kind {
	case tagger.ChangeSet:
		_, err = h.repo.SetKeywords(ctx, h.id, change.Keywords)
	case tagger.ChangeUnset:
		_, err = h.repo.ClearKeywords(ctx, h.id)
	default:
		return eris.Errorf("unsupported change kind %d", change.Kind)
	}
	if err != nil {
		return err
	}

	if h.logger != nil {
		h.logger.WithFields(logrus.Fields{
			"document_id": h.id,
			"change":      change.Kind.String(),
			"keywords":    len(change.Keywords),
		}).Debug("document keywords changed")
	}

	return nil
}
