package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"seotagger/app/internal/document"
	"seotagger/app/internal/llm"
	"seotagger/app/internal/secrets"
	"seotagger/app/internal/tagger"
)

// Options configures the HTTP server wiring.
type Options struct {
	Documents   document.Repository
	Sessions    *tagger.Manager
	Generator   llm.KeywordGenerator
	Secrets     secrets.Store
	Database    *gorm.DB
	Logger      *logrus.Logger
	SentryHub   *sentry.Hub
	RateLimiter RateLimiterSettings
}

// RateLimiterSettings configures the limiter in front of the generation routes.
type RateLimiterSettings struct {
	RequestsPerSecond float64
	Burst             int
	ClientTTL         time.Duration
}

// Server exposes documents, editing sessions and credential settings as a JSON API.
type Server struct {
	api         huma.API
	mux         *stdhttp.ServeMux
	documents   document.Repository
	sessions    *tagger.Manager
	generator   llm.KeywordGenerator
	secrets     secrets.Store
	logger      *logrus.Logger
	sentry      *sentry.Hub
	db          *gorm.DB
	rateLimiter *RateLimiter
}

// NewServer constructs the HTTP server.
func NewServer(opts Options) (*Server, error) {
	if opts.Documents == nil {
		return nil, eris.New("document repository is required")
	}
	if opts.Sessions == nil {
		return nil, eris.New("session manager is required")
	}
	if opts.Generator == nil {
		return nil, eris.New("keyword generator is required")
	}
	if opts.Secrets == nil {
		return nil, eris.New("secret store is required")
	}
	if opts.Database == nil {
		return nil, eris.New("database is required")
	}

	settings := opts.RateLimiter
	if settings.Burst <= 0 {
		return nil, eris.New("rate limiter burst must be greater than zero")
	}
	if settings.RequestsPerSecond <= 0 {
		return nil, eris.New("rate limiter requests per second must be greater than zero")
	}
	if settings.ClientTTL <= 0 {
		return nil, eris.New("rate limiter client TTL must be greater than zero")
	}

	mux := stdhttp.NewServeMux()
	config := huma.DefaultConfig("SEO Tagger", "1.0.0")

	srv := &Server{
		api:         humago.New(mux, config),
		mux:         mux,
		documents:   opts.Documents,
		sessions:    opts.Sessions,
		generator:   opts.Generator,
		secrets:     opts.Secrets,
		logger:      opts.Logger,
		sentry:      opts.SentryHub,
		db:          opts.Database,
		rateLimiter: NewRateLimiter(settings.Burst, settings.RequestsPerSecond, settings.ClientTTL),
	}

	srv.registerMiddlewares()
	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the underlying HTTP handler for wiring into the application.
func (s *Server) Handler() stdhttp.Handler {
	return s.mux
}

// API exposes the underlying Huma API instance.
func (s *Server) API() huma.API {
	return s.api
}

// Run evicts idle rate limiter clients until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.rateLimiter.Run(ctx)
}

func (s *Server) registerMiddlewares() {
	s.api.UseMiddleware(
		s.sentryMiddleware(),
		s.recoveryMiddleware(),
		s.requestIDMiddleware(),
		s.rateLimitMiddleware(),
		s.loggingMiddleware(),
	)
}

func (s *Server) registerRoutes() {
	s.registerDocumentRoutes()
	s.registerSessionRoutes()
	s.registerSettingsRoutes()
	s.registerKeywordRoute()
	s.registerUIRoutes()
	s.registerHealthRoute()
}

func (s *Server) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	s.mux.ServeHTTP(w, r)
}
