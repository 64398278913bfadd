package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"

	"seotagger/app/internal/document"
)

type documentView struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Format      string    `json:"format"`
	Keywords    []string  `json:"keywords" doc:"Null when the keyword list is unset"`
	KeywordsSet bool      `json:"keywordsSet"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type documentOutput struct {
	Body documentView
}

type documentIDInput struct {
	ID string `path:"id" doc:"Document id"`
}

type contentBody struct {
	Content string `json:"content" doc:"Article body"`
	Format  string `json:"format,omitempty" enum:"text,html,markdown" doc:"Encoding of content; html and markdown are reduced to plain text"`
}

type createDocumentInput struct {
	Body contentBody
}

type updateContentInput struct {
	ID   string `path:"id"`
	Body contentBody
}

type setKeywordsInput struct {
	ID   string `path:"id"`
	Body struct {
		Keywords []string `json:"keywords" doc:"Replacement keyword list"`
	}
}

func (s *Server) registerDocumentRoutes() {
	huma.Post(s.api, "/documents", s.createDocumentHandler, operation(
		"create-document", "Create a document",
		stdhttp.StatusUnprocessableEntity,
	), func(op *huma.Operation) {
		op.DefaultStatus = stdhttp.StatusCreated
	})
	huma.Get(s.api, "/documents/{id}", s.getDocumentHandler, operation(
		"get-document", "Fetch a document",
		stdhttp.StatusNotFound,
	))
	huma.Put(s.api, "/documents/{id}/content", s.updateContentHandler, operation(
		"update-document-content", "Replace the document body",
		stdhttp.StatusNotFound, stdhttp.StatusUnprocessableEntity,
	))
	huma.Put(s.api, "/documents/{id}/keywords", s.setKeywordsHandler, operation(
		"set-document-keywords", "Edit the keyword list by hand",
		stdhttp.StatusNotFound,
	))
}

func (s *Server) createDocumentHandler(ctx context.Context, input *createDocumentInput) (*documentOutput, error) {
	format, err := document.ParseFormat(input.Body.Format)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "parsing content format", nil)
	}

	doc, err := s.documents.Create(ctx, input.Body.Content, format)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "creating document", nil)
	}

	return &documentOutput{Body: newDocumentView(doc)}, nil
}

func (s *Server) getDocumentHandler(ctx context.Context, input *documentIDInput) (*documentOutput, error) {
	doc, err := s.documents.Get(ctx, input.ID)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "loading document", logrus.Fields{"document_id": input.ID})
	}

	return &documentOutput{Body: newDocumentView(doc)}, nil
}

func (s *Server) updateContentHandler(ctx context.Context, input *updateContentInput) (*documentOutput, error) {
	format, err := document.ParseFormat(input.Body.Format)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "parsing content format", nil)
	}

	doc, err := s.documents.UpdateContent(ctx, input.ID, input.Body.Content, format)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "updating document content", logrus.Fields{"document_id": input.ID})
	}

	return &documentOutput{Body: newDocumentView(doc)}, nil
}

func (s *Server) setKeywordsHandler(ctx context.Context, input *setKeywordsInput) (*documentOutput, error) {
	doc, err := s.documents.SetKeywords(ctx, input.ID, input.Body.Keywords)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "setting document keywords", logrus.Fields{"document_id": input.ID})
	}

	return &documentOutput{Body: newDocumentView(doc)}, nil
}

func newDocumentView(doc *document.Document) documentView {
	return documentView{
		ID:          doc.ID,
		Content:     doc.Content,
		Format:      string(doc.SourceFormat),
		Keywords:    doc.Keywords,
		KeywordsSet: doc.Keywords != nil,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}
