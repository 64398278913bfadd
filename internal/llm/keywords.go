package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"seotagger/app/internal/credentials"
)

// DefaultMaxKeywords is used when a request does not specify a positive count.
const DefaultMaxKeywords = 5

const keywordSystemPrompt = "You are an SEO expert. Generate exactly %d relevant SEO keywords for the given article content. Return only the keywords separated by commas, no other text. Focus on the most important and relevant keywords."

// Request carries one keyword generation call. Credentials are the explicit
// values from the caller; environment fallbacks are applied by the generator.
type Request struct {
	Content     string
	Credentials credentials.Credentials
	MaxKeywords int
}

// KeywordGenerator produces SEO keywords for a piece of content. Every error it
// returns is a *Failure.
type KeywordGenerator interface {
	Generate(ctx context.Context, req Request) ([]string, error)
}

// KeywordGeneratorOptions configures the OpenRouter-backed keyword generator.
type KeywordGeneratorOptions struct {
	Client   *Client
	Resolver credentials.Resolver
}

type keywordGenerator struct {
	client   *Client
	logger   *logrus.Logger
	resolver credentials.Resolver
}

var _ KeywordGenerator = (*keywordGenerator)(nil)

// NewKeywordGenerator constructs a KeywordGenerator backed by OpenRouter.
func NewKeywordGenerator(opts KeywordGeneratorOptions) (KeywordGenerator, error) {
	if opts.Client == nil {
		return nil, eris.New("llm client is required")
	}

	return &keywordGenerator{
		client:   opts.Client,
		logger:   opts.Client.logger,
		resolver: opts.Resolver,
	}, nil
}

func (g *keywordGenerator) Generate(ctx context.Context, req Request) ([]string, error) {
	resolved := g.resolver.Resolve(req.Credentials)
	if !resolved.HasAPIKey() {
		return nil, newFailure(ReasonMissingCredentials, MessageMissingCredentials, nil)
	}

	maxKeywords := req.MaxKeywords
	if maxKeywords <= 0 {
		maxKeywords = DefaultMaxKeywords
	}

	fields := logrus.Fields{
		"model":        resolved.Model,
		"max_keywords": maxKeywords,
		"content_len":  len(req.Content),
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(resolved.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(fmt.Sprintf(keywordSystemPrompt, maxKeywords)),
			openai.UserMessage(req.Content),
		},
	}

	completion, err := g.client.chat.New(ctx, params, option.WithAPIKey(resolved.APIKey))
	if err != nil {
		failure := classifyRequestError(err)
		g.logError(fields, failure, "requesting keyword completion")
		return nil, failure
	}

	if completion == nil || len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		failure := newFailure(ReasonEmptyCompletion, MessageEmptyCompletion, nil)
		g.logError(fields, failure, "processing keyword completion")
		return nil, failure
	}

	keywords := ParseKeywords(completion.Choices[0].Message.Content)

	if g.logger != nil {
		g.logger.WithFields(fields).WithField("keywords", len(keywords)).Debug("keyword completion parsed")
	}

	return keywords, nil
}

// ParseKeywords splits a comma separated completion into trimmed, non-empty
// keywords, preserving order. The count is not enforced here.
func ParseKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords
}

func classifyRequestError(err error) *Failure {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		failure := newFailure(
			ReasonUpstreamHTTPError,
			fmt.Sprintf("API request failed with status %d: %s", apiErr.StatusCode, statusText(apiErr)),
			err,
		)
		failure.StatusCode = apiErr.StatusCode
		return failure
	}

	detail := unknownErrorText
	if text := strings.TrimSpace(err.Error()); text != "" {
		detail = text
	}

	return newFailure(
		ReasonTransportOrParseError,
		"An error occurred while calling the OpenRouter API: "+detail,
		err,
	)
}

// statusText prefers the reason phrase the upstream sent over the canonical one.
func statusText(apiErr *openai.Error) string {
	if apiErr.Response != nil {
		phrase := strings.TrimPrefix(apiErr.Response.Status, strconv.Itoa(apiErr.StatusCode))
		if phrase = strings.TrimSpace(phrase); phrase != "" {
			return phrase
		}
	}
	return http.StatusText(apiErr.StatusCode)
}

func (g *keywordGenerator) logError(fields logrus.Fields, failure *Failure, message string) {
	if g.logger == nil || failure == nil {
		return
	}

	entry := g.logger.WithFields(fields).WithFields(logrus.Fields{
		"error":  failure.Error(),
		"reason": string(failure.Reason),
	})
	if failure.StatusCode != 0 {
		entry = entry.WithField("status", failure.StatusCode)
	}
	entry.Warn(message)
}
