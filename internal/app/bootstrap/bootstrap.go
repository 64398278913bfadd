// Package bootstrap composes the tagger's storage, generation and transport layers.
package bootstrap

import (
	"context"
	"os"
	"path/filepath"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"seotagger/app/internal/config"
	"seotagger/app/internal/credentials"
	"seotagger/app/internal/db"
	"seotagger/app/internal/document"
	apphttp "seotagger/app/internal/http"
	"seotagger/app/internal/llm"
	"seotagger/app/internal/secrets"
	"seotagger/app/internal/tagger"
)

// Dependencies are the process-wide inputs to Build.
type Dependencies struct {
	Config    config.Config
	Logger    *logrus.Logger
	SentryHub *sentry.Hub
	// Lookup replaces os.Getenv for credential fallbacks when set.
	Lookup credentials.LookupFunc
}

// Result holds the composed application.
type Result struct {
	HTTPServer *apphttp.Server
	Sessions   *tagger.Manager
	Database   *gorm.DB
	Cleanup    func() error
}

// Build opens the database, runs migrations and wires every component.
func Build(ctx context.Context, deps Dependencies) (Result, error) {
	if dir := filepath.Dir(deps.Config.DBPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{}, eris.Wrapf(err, "creating database directory %s", dir)
		}
	}

	conn, err := db.Open(db.Options{Path: deps.Config.DBPath})
	if err != nil {
		return Result{}, eris.Wrap(err, "opening database")
	}

	closeOnError := func(wrapper error) (Result, error) {
		if closeErr := db.Close(conn); closeErr != nil && deps.Logger != nil {
			deps.Logger.WithError(closeErr).Error("closing database after bootstrap failure")
		}
		return Result{}, wrapper
	}

	if err := document.Migrate(ctx, conn, deps.Logger); err != nil {
		return closeOnError(eris.Wrap(err, "running document migrations"))
	}
	if err := secrets.Migrate(ctx, conn, deps.Logger); err != nil {
		return closeOnError(eris.Wrap(err, "running secrets migrations"))
	}

	documents, err := document.NewRepository(conn, deps.Logger)
	if err != nil {
		return closeOnError(eris.Wrap(err, "creating document repository"))
	}

	store, err := secrets.NewStore(conn, deps.Logger)
	if err != nil {
		return closeOnError(eris.Wrap(err, "creating secret store"))
	}

	client := llm.NewClient(llm.ClientOptions{
		BaseURL: deps.Config.OpenRouterBaseURL,
		Timeout: deps.Config.LLMTimeout,
		Logger:  deps.Logger,
	})

	generator, err := llm.NewKeywordGenerator(llm.KeywordGeneratorOptions{
		Client:   client,
		Resolver: credentials.NewResolver(deps.Lookup),
	})
	if err != nil {
		return closeOnError(eris.Wrap(err, "initialising keyword generator"))
	}

	hosts, err := document.NewHosts(documents, deps.Logger)
	if err != nil {
		return closeOnError(eris.Wrap(err, "creating document hosts"))
	}

	sessions, err := tagger.NewManager(tagger.ManagerOptions{
		Hosts:     hosts,
		Generator: generator,
		Secrets:   store,
		IdleTTL:   deps.Config.SessionIdleTTL,
		Logger:    deps.Logger,
		SentryHub: deps.SentryHub,
	})
	if err != nil {
		return closeOnError(eris.Wrap(err, "creating session manager"))
	}

	httpServer, err := apphttp.NewServer(apphttp.Options{
		Documents: documents,
		Sessions:  sessions,
		Generator: generator,
		Secrets:   store,
		Database:  conn,
		Logger:    deps.Logger,
		SentryHub: deps.SentryHub,
		RateLimiter: apphttp.RateLimiterSettings{
			Burst:             deps.Config.RateLimit.Burst,
			RequestsPerSecond: deps.Config.RateLimit.RequestsPerSecond,
			ClientTTL:         deps.Config.RateLimit.ClientTTL,
		},
	})
	if err != nil {
		return closeOnError(eris.Wrap(err, "initialising http server"))
	}

	return Result{
		HTTPServer: httpServer,
		Sessions:   sessions,
		Database:   conn,
		Cleanup: func() error {
			return db.Close(conn)
		},
	}, nil
}
