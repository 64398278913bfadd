package http

import (
	"context"
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"

	"seotagger/app/internal/credentials"
	"seotagger/app/internal/tagger"
)

const (
	messageGenerating = "Keywords are already being generated for this session."
	messageDiscarded  = "The session was closed before keywords arrived."
)

type sessionView struct {
	ID                string `json:"id"`
	DocumentID        string `json:"documentId"`
	IsLoading         bool   `json:"isLoading"`
	LastError         string `json:"lastError,omitempty"`
	LastReason        string `json:"lastReason,omitempty"`
	MaxKeywords       int    `json:"maxKeywords"`
	MaxKeywordOptions []int  `json:"maxKeywordOptions"`
}

type sessionOutput struct {
	Body sessionView
}

type sessionIDInput struct {
	ID string `path:"id" doc:"Session id"`
}

type openSessionInput struct {
	DocumentID string `path:"id" doc:"Document id"`
	Body       *struct {
		APIKey string `json:"apiKey,omitempty" doc:"Overrides stored and environment credentials for this session"`
		Model  string `json:"model,omitempty"`
	} `required:"false"`
}

type generateOutput struct {
	Body struct {
		Outcome  string      `json:"outcome" enum:"applied,failed"`
		Session  sessionView `json:"session"`
		Keywords []string    `json:"keywords"`
	}
}

type maxKeywordsInput struct {
	ID   string `path:"id"`
	Body struct {
		MaxKeywords int `json:"maxKeywords" enum:"3,5,8,10,15"`
	}
}

func (s *Server) registerSessionRoutes() {
	huma.Post(s.api, "/documents/{id}/sessions", s.openSessionHandler, operation(
		"open-session", "Open a keyword editing session on a document",
		stdhttp.StatusNotFound,
	), func(op *huma.Operation) {
		op.DefaultStatus = stdhttp.StatusCreated
	})
	huma.Get(s.api, "/sessions/{id}", s.getSessionHandler, operation(
		"get-session", "Fetch session state",
		stdhttp.StatusNotFound,
	))
	huma.Post(s.api, "/sessions/{id}/generate", s.generateHandler, operation(
		"generate-keywords", "Generate keywords for the session document",
		stdhttp.StatusNotFound, stdhttp.StatusConflict, stdhttp.StatusGone, stdhttp.StatusTooManyRequests,
	), rateLimited)
	huma.Post(s.api, "/sessions/{id}/clear", s.clearHandler, operation(
		"clear-keywords", "Remove every keyword from the session document",
		stdhttp.StatusNotFound,
	))
	huma.Put(s.api, "/sessions/{id}/max-keywords", s.maxKeywordsHandler, operation(
		"set-max-keywords", "Choose how many keywords the next generation keeps",
		stdhttp.StatusNotFound, stdhttp.StatusUnprocessableEntity,
	))
	huma.Delete(s.api, "/sessions/{id}", s.closeSessionHandler, operation(
		"close-session", "Close the session; a pending result is discarded",
		stdhttp.StatusNotFound,
	), func(op *huma.Operation) {
		op.DefaultStatus = stdhttp.StatusNoContent
	})
}

func (s *Server) openSessionHandler(ctx context.Context, input *openSessionInput) (*sessionOutput, error) {
	var explicit credentials.Credentials
	if input.Body != nil {
		explicit = credentials.Credentials{APIKey: input.Body.APIKey, Model: input.Body.Model}
	}

	session, err := s.sessions.Open(ctx, input.DocumentID, explicit)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "opening editing session", logrus.Fields{"document_id": input.DocumentID})
	}

	return &sessionOutput{Body: newSessionView(session)}, nil
}

func (s *Server) getSessionHandler(ctx context.Context, input *sessionIDInput) (*sessionOutput, error) {
	session, err := s.sessions.Get(input.ID)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "loading editing session", logrus.Fields{"session_id": input.ID})
	}

	return &sessionOutput{Body: newSessionView(session)}, nil
}

func (s *Server) generateHandler(ctx context.Context, input *sessionIDInput) (*generateOutput, error) {
	session, err := s.sessions.Get(input.ID)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "loading editing session", logrus.Fields{"session_id": input.ID})
	}

	outcome := session.Generate(ctx)
	switch outcome {
	case tagger.OutcomeSkipped:
		return nil, huma.Error409Conflict(messageGenerating)
	case tagger.OutcomeDiscarded:
		return nil, huma.NewError(stdhttp.StatusGone, messageDiscarded)
	}

	resp := &generateOutput{}
	resp.Body.Outcome = string(outcome)
	resp.Body.Session = newSessionView(session)

	doc, err := s.documents.Get(ctx, session.DocumentID())
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "loading document after generation", logrus.Fields{"session_id": input.ID})
	}
	resp.Body.Keywords = doc.Keywords

	return resp, nil
}

func (s *Server) clearHandler(ctx context.Context, input *sessionIDInput) (*sessionOutput, error) {
	session, err := s.sessions.Get(input.ID)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "loading editing session", logrus.Fields{"session_id": input.ID})
	}

	if err := session.Clear(ctx); err != nil {
		return nil, s.toHTTPError(ctx, err, "clearing keywords", logrus.Fields{"session_id": input.ID})
	}

	return &sessionOutput{Body: newSessionView(session)}, nil
}

func (s *Server) maxKeywordsHandler(ctx context.Context, input *maxKeywordsInput) (*sessionOutput, error) {
	session, err := s.sessions.Get(input.ID)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "loading editing session", logrus.Fields{"session_id": input.ID})
	}

	if err := session.SetMaxKeywords(input.Body.MaxKeywords); err != nil {
		return nil, s.toHTTPError(ctx, err, "setting max keywords", logrus.Fields{"session_id": input.ID})
	}

	return &sessionOutput{Body: newSessionView(session)}, nil
}

func (s *Server) closeSessionHandler(ctx context.Context, input *sessionIDInput) (*struct{}, error) {
	if err := s.sessions.Close(input.ID); err != nil {
		return nil, s.toHTTPError(ctx, err, "closing editing session", logrus.Fields{"session_id": input.ID})
	}

	return nil, nil
}

func newSessionView(session *tagger.Session) sessionView {
	state := session.State()
	return sessionView{
		ID:                session.ID(),
		DocumentID:        session.DocumentID(),
		IsLoading:         state.IsLoading,
		LastError:         state.LastError,
		LastReason:        string(state.LastReason),
		MaxKeywords:       state.MaxKeywords,
		MaxKeywordOptions: tagger.MaxKeywordOptions[:],
	}
}
