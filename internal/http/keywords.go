package http

import (
	"context"
	stdhttp "net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"seotagger/app/internal/credentials"
	"seotagger/app/internal/llm"
	"seotagger/app/internal/secrets"
	"seotagger/app/internal/tagger"
)

type keywordsInput struct {
	Body struct {
		Content     string `json:"content"`
		APIKey      string `json:"apiKey,omitempty"`
		Model       string `json:"model,omitempty"`
		MaxKeywords int    `json:"maxKeywords,omitempty" enum:"3,5,8,10,15" doc:"Defaults to 5"`
	}
}

// keywordsOutput mirrors the generation result: keywords on success, the
// failure message and reason otherwise.
type keywordsOutput struct {
	Status int
	Body   struct {
		Success    bool     `json:"success"`
		Keywords   []string `json:"keywords,omitempty"`
		Error      string   `json:"error,omitempty"`
		Reason     string   `json:"reason,omitempty"`
		StatusCode int      `json:"upstreamStatus,omitempty"`
	}
}

func (s *Server) registerKeywordRoute() {
	huma.Post(s.api, "/keywords", s.keywordsHandler, operation(
		"generate-keywords-stateless", "Generate keywords for ad hoc content",
		stdhttp.StatusBadRequest, stdhttp.StatusTooManyRequests, stdhttp.StatusBadGateway,
	), rateLimited)
}

func (s *Server) keywordsHandler(ctx context.Context, input *keywordsInput) (*keywordsOutput, error) {
	maxKeywords := input.Body.MaxKeywords
	if maxKeywords == 0 {
		maxKeywords = tagger.DefaultMaxKeywords
	}

	resp := &keywordsOutput{}

	// Whitespace-only content counts as no content.
	if strings.TrimSpace(input.Body.Content) == "" {
		fillFailure(resp, llm.NoContentFailure())
		return resp, nil
	}

	stored, err := s.secrets.Lookup(ctx, secrets.Namespace)
	if err != nil {
		s.recordError(ctx, err, "loading stored credentials", nil)
		stored = credentials.Credentials{}
	}

	explicit := credentials.Credentials{APIKey: input.Body.APIKey, Model: input.Body.Model}
	keywords, err := s.generator.Generate(context.WithoutCancel(ctx), llm.Request{
		Content:     input.Body.Content,
		Credentials: explicit.Or(stored),
		MaxKeywords: maxKeywords,
	})
	if err != nil {
		failure, ok := llm.AsFailure(err)
		if !ok {
			return nil, s.toHTTPError(ctx, err, "generating keywords", nil)
		}
		fillFailure(resp, failure)
		return resp, nil
	}

	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}

	resp.Status = stdhttp.StatusOK
	resp.Body.Success = true
	resp.Body.Keywords = keywords
	return resp, nil
}

func fillFailure(resp *keywordsOutput, failure *llm.Failure) {
	resp.Body.Error = failure.Message
	if strings.TrimSpace(resp.Body.Error) == "" {
		resp.Body.Error = "An unexpected error occurred."
	}
	resp.Body.Reason = string(failure.Reason)
	resp.Body.StatusCode = failure.StatusCode

	switch failure.Reason {
	case llm.ReasonMissingCredentials, llm.ReasonNoContent:
		resp.Status = stdhttp.StatusBadRequest
	case llm.ReasonUpstreamHTTPError, llm.ReasonTransportOrParseError, llm.ReasonEmptyCompletion:
		resp.Status = stdhttp.StatusBadGateway
	default:
		resp.Status = stdhttp.StatusInternalServerError
	}
}
