// Package secrets persists the OpenRouter credential bundle written by the settings surface.
package secrets

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"seotagger/app/internal/credentials"
	"seotagger/app/internal/db"
)

// Namespace is the key the tagger's bundle is stored under.
const Namespace = "automatic-tagger"

// ErrAPIKeyRequired is returned when saving a bundle without an API key.
var ErrAPIKeyRequired = eris.New("openrouter api key is required")

// Bundle is one namespaced set of stored credentials.
type Bundle struct {
	gorm.Model
	Namespace        string `gorm:"size:255;uniqueIndex:idx_secret_bundles_namespace;not null"`
	OpenRouterAPIKey string `gorm:"type:text"`
	OpenRouterModel  string `gorm:"size:255"`
}

// TableName defines the table name for the Bundle model.
func (Bundle) TableName() string {
	return "secret_bundles"
}

// Source is the read side used when resolving credentials.
type Source interface {
	Lookup(ctx context.Context, namespace string) (credentials.Credentials, error)
}

// Store reads and writes credential bundles.
type Store interface {
	Source
	Save(ctx context.Context, namespace string, creds credentials.Credentials) (credentials.Credentials, error)
}

// GormStore keeps bundles in SQLite.
type GormStore struct {
	db     *gorm.DB
	logger *logrus.Logger
}

var _ Store = (*GormStore)(nil)

// NewStore constructs a Gorm-backed secret store.
func NewStore(conn *gorm.DB, logger *logrus.Logger) (*GormStore, error) {
	if conn == nil {
		return nil, eris.New("gorm DB is required")
	}

	return &GormStore{db: conn, logger: logger}, nil
}

// Migrate creates the secret bundle table.
func Migrate(ctx context.Context, conn *gorm.DB, logger *logrus.Logger) error {
	return db.Migrate(ctx, conn, logger, "secrets.migrate", &Bundle{})
}

// Lookup returns the stored credentials, or empty credentials when nothing is stored.
func (s *GormStore) Lookup(ctx context.Context, namespace string) (credentials.Credentials, error) {
	bundle, err := s.find(ctx, namespace)
	if err != nil {
		return credentials.Credentials{}, err
	}
	if bundle == nil {
		return credentials.Credentials{}, nil
	}

	return credentials.Credentials{
		APIKey: bundle.OpenRouterAPIKey,
		Model:  bundle.OpenRouterModel,
	}, nil
}

// Save stores the bundle, defaulting a blank model the way the settings screen does.
func (s *GormStore) Save(ctx context.Context, namespace string, creds credentials.Credentials) (credentials.Credentials, error) {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return credentials.Credentials{}, eris.New("namespace is required")
	}

	apiKey := strings.TrimSpace(creds.APIKey)
	if apiKey == "" {
		return credentials.Credentials{}, ErrAPIKeyRequired
	}

	model := strings.TrimSpace(creds.Model)
	if model == "" {
		model = credentials.DefaultModel
	}

	bundle, err := s.find(ctx, namespace)
	if err != nil {
		return credentials.Credentials{}, err
	}
	if bundle == nil {
		bundle = &Bundle{Namespace: namespace}
	}
	bundle.OpenRouterAPIKey = apiKey
	bundle.OpenRouterModel = model

	if err := s.db.WithContext(ctx).Save(bundle).Error; err != nil {
		s.logError(logrus.Fields{"namespace": namespace}, err, "saving secret bundle")
		return credentials.Credentials{}, eris.Wrapf(err, "saving secret bundle: %s", namespace)
	}

	return credentials.Credentials{APIKey: apiKey, Model: model}, nil
}

func (s *GormStore) find(ctx context.Context, namespace string) (*Bundle, error) {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return nil, eris.New("namespace is required")
	}

	var bundle Bundle
	err := s.db.WithContext(ctx).First(&bundle, "namespace = ?", namespace).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logError(logrus.Fields{"namespace": namespace}, err, "fetching secret bundle")
		return nil, eris.Wrapf(err, "fetching secret bundle: %s", namespace)
	}

	return &bundle, nil
}

func (s *GormStore) logError(fields logrus.Fields, err error, message string) {
	if s.logger == nil {
		return
	}

	s.logger.WithFields(fields).WithField("error", err.Error()).Error(message)
}

// Mask hides all but the last four characters of a key for display.
func Mask(apiKey string) string {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 4 {
		return strings.Repeat("*", len(apiKey))
	}
	return strings.Repeat("*", len(apiKey)-4) + apiKey[len(apiKey)-4:]
}
