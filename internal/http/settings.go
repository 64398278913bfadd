package http

import (
	"context"
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"

	"seotagger/app/internal/credentials"
	"seotagger/app/internal/secrets"
)

type secretsView struct {
	Namespace  string `json:"namespace"`
	Configured bool   `json:"configured"`
	APIKey     string `json:"apiKey" doc:"Masked; only the last four characters are shown"`
	Model      string `json:"model"`
}

type secretsOutput struct {
	Body secretsView
}

type saveSecretsInput struct {
	Body struct {
		APIKey string `json:"apiKey" minLength:"1"`
		Model  string `json:"model,omitempty" doc:"Defaults to openai/gpt-4-mini"`
	}
}

func (s *Server) registerSettingsRoutes() {
	huma.Get(s.api, "/settings/secrets", s.getSecretsHandler, operation(
		"get-secrets", "Show the stored OpenRouter credentials",
	))
	huma.Put(s.api, "/settings/secrets", s.saveSecretsHandler, operation(
		"save-secrets", "Store OpenRouter credentials",
		stdhttp.StatusUnprocessableEntity,
	))
}

func (s *Server) getSecretsHandler(ctx context.Context, _ *struct{}) (*secretsOutput, error) {
	stored, err := s.secrets.Lookup(ctx, secrets.Namespace)
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "loading stored credentials", nil)
	}

	return &secretsOutput{Body: newSecretsView(stored)}, nil
}

func (s *Server) saveSecretsHandler(ctx context.Context, input *saveSecretsInput) (*secretsOutput, error) {
	saved, err := s.secrets.Save(ctx, secrets.Namespace, credentials.Credentials{
		APIKey: input.Body.APIKey,
		Model:  input.Body.Model,
	})
	if err != nil {
		return nil, s.toHTTPError(ctx, err, "saving credentials", nil)
	}

	if s.logger != nil {
		s.logger.WithField("model", saved.Model).Info("stored credentials updated")
	}

	return &secretsOutput{Body: newSecretsView(saved)}, nil
}

func newSecretsView(creds credentials.Credentials) secretsView {
	return secretsView{
		Namespace:  secrets.Namespace,
		Configured: creds.HasAPIKey(),
		APIKey:     secrets.Mask(creds.APIKey),
		Model:      creds.Model,
	}
}
