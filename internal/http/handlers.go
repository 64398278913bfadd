package http

import (
	"context"
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"seotagger/app/internal/db"
	"seotagger/app/internal/document"
	"seotagger/app/internal/secrets"
	"seotagger/app/internal/tagger"
)

const errorFallbackMessage = "We couldn't process your request right now."

type healthResponse struct {
	Status int
	Body   struct {
		Status   string `json:"status"`
		Database string `json:"database"`
		Sessions int    `json:"sessions"`
	}
}

func (s *Server) registerHealthRoute() {
	huma.Get(s.api, "/healthz", s.healthHandler, func(op *huma.Operation) {
		op.Summary = "Health check"
	})
}

func (s *Server) healthHandler(ctx context.Context, _ *struct{}) (*healthResponse, error) {
	resp := &healthResponse{Status: stdhttp.StatusOK}
	resp.Body.Status = "ok"
	resp.Body.Database = "ok"
	resp.Body.Sessions = s.sessions.Len()

	sqlDB, err := db.SQLDB(s.db)
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		s.recordError(ctx, err, "checking database health", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	}

	return resp, nil
}

// operation sets the summary and the error statuses an operation documents.
func operation(id, summary string, statuses ...int) func(op *huma.Operation) {
	return func(op *huma.Operation) {
		op.OperationID = id
		op.Summary = summary
		op.Errors = append(op.Errors, statuses...)
	}
}

// rateLimited flags an operation for the per-client limiter.
func rateLimited(op *huma.Operation) {
	if op.Metadata == nil {
		op.Metadata = map[string]any{}
	}
	op.Metadata[rateLimitedKey] = true
}

// toHTTPError maps domain errors onto API errors. Unknown errors are recorded
// and reported as 500.
func (s *Server) toHTTPError(ctx context.Context, err error, message string, fields logrus.Fields) error {
	switch {
	case eris.Is(err, document.ErrNotFound):
		return huma.Error404NotFound("Document not found.")
	case eris.Is(err, tagger.ErrSessionNotFound):
		return huma.Error404NotFound("Editing session not found.")
	case eris.Is(err, tagger.ErrInvalidMaxKeywords):
		return huma.Error422UnprocessableEntity(tagger.ErrInvalidMaxKeywords.Error())
	case eris.Is(err, document.ErrUnknownFormat):
		return huma.Error422UnprocessableEntity(document.ErrUnknownFormat.Error())
	case eris.Is(err, secrets.ErrAPIKeyRequired):
		return huma.Error422UnprocessableEntity("An OpenRouter API key is required.")
	}

	s.recordError(ctx, err, message, fields)
	return huma.Error500InternalServerError(errorFallbackMessage)
}

func (s *Server) recordError(ctx context.Context, err error, message string, fields logrus.Fields) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if fields != nil {
			entry = entry.WithFields(fields)
		}
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			entry = entry.WithField("request_id", requestID)
		}
		entry.Error(message)
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	if s.sentry != nil {
		s.sentry.CaptureException(err)
	}
}
