package http

import (
	"context"
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"seotagger/app/internal/document"
	"seotagger/app/internal/http/templates"
	"seotagger/app/internal/secrets"
	"seotagger/app/internal/tagger"
)

func (s *Server) registerUIRoutes() {
	huma.Get(s.api, "/ui/settings", s.settingsPageHandler, htmlOperation(
		"settings-page", "Settings screen for stored credentials",
		stdhttp.StatusInternalServerError,
	))
	huma.Get(s.api, "/ui/sessions/{id}", s.sessionPanelHandler, htmlOperation(
		"session-panel", "Keyword panel for an editing session",
		stdhttp.StatusNotFound, stdhttp.StatusInternalServerError,
	))
}

func (s *Server) settingsPageHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	stored, err := s.secrets.Lookup(ctx, secrets.Namespace)
	if err != nil {
		s.recordError(ctx, err, "loading stored credentials", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't load the stored credentials.")
	}

	view := newSecretsView(stored)
	return s.renderPage(ctx, templates.SettingsPage(templates.SettingsPageData{
		Namespace:  view.Namespace,
		Configured: view.Configured,
		MaskedKey:  view.APIKey,
		Model:      view.Model,
	}), "settings")
}

func (s *Server) sessionPanelHandler(ctx context.Context, input *sessionIDInput) (*htmlResponse, error) {
	session, err := s.sessions.Get(input.ID)
	if err != nil {
		if eris.Is(err, tagger.ErrSessionNotFound) {
			return s.renderErrorResponse(ctx, stdhttp.StatusNotFound, "Editing session not found.")
		}
		s.recordError(ctx, err, "loading editing session", logrus.Fields{"session_id": input.ID})
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}

	doc, err := s.documents.Get(ctx, session.DocumentID())
	if err != nil {
		if eris.Is(err, document.ErrNotFound) {
			return s.renderErrorResponse(ctx, stdhttp.StatusNotFound, "Document not found.")
		}
		s.recordError(ctx, err, "loading session document", logrus.Fields{"session_id": input.ID})
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}

	state := session.State()
	return s.renderPage(ctx, templates.SessionPanel(templates.SessionPanelData{
		SessionID:         session.ID(),
		DocumentID:        session.DocumentID(),
		IsLoading:         state.IsLoading,
		LastError:         state.LastError,
		MaxKeywords:       state.MaxKeywords,
		MaxKeywordOptions: tagger.MaxKeywordOptions[:],
		Keywords:          doc.Keywords,
		KeywordsSet:       doc.Keywords != nil,
	}), "session")
}
