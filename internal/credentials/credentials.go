// Package credentials decides which OpenRouter API key and model a request uses.
package credentials

import (
	"os"
	"strings"
)

// DefaultModel is used when no source supplies a model identifier.
const DefaultModel = "openai/gpt-4-mini"

// Environment variable names consulted by the resolver, studio-scoped first.
const (
	EnvStudioAPIKey = "SANITY_STUDIO_OPENROUTER_API_KEY"
	EnvStudioModel  = "SANITY_STUDIO_OPENROUTER_MODEL"
	EnvAPIKey       = "OPENROUTER_API_KEY"
	EnvModel        = "OPENROUTER_MODEL"
)

// Credentials is an API key and model pair. Empty fields are absent.
type Credentials struct {
	APIKey string
	Model  string
}

// Or fills each empty field from fallback.
func (c Credentials) Or(fallback Credentials) Credentials {
	return Credentials{
		APIKey: firstNonEmpty(c.APIKey, fallback.APIKey),
		Model:  firstNonEmpty(c.Model, fallback.Model),
	}
}

// HasAPIKey reports whether an API key is present.
func (c Credentials) HasAPIKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// LookupFunc reads a single environment variable.
type LookupFunc func(key string) string

// Resolver merges explicit and stored credentials with the process environment.
type Resolver struct {
	lookup LookupFunc
}

// NewResolver returns a Resolver reading variables through lookup, or the process environment when nil.
func NewResolver(lookup LookupFunc) Resolver {
	if lookup == nil {
		lookup = os.Getenv
	}
	return Resolver{lookup: lookup}
}

// Resolve returns the effective credentials. Candidates are consulted in order,
// per field, before the studio-scoped and generic environment variables. The
// model falls back to DefaultModel; the API key has no default.
func (r Resolver) Resolve(candidates ...Credentials) Credentials {
	lookup := r.lookup
	if lookup == nil {
		lookup = os.Getenv
	}

	var resolved Credentials
	for _, candidate := range candidates {
		resolved = resolved.Or(candidate)
	}

	resolved = resolved.Or(Credentials{
		APIKey: firstNonEmpty(lookup(EnvStudioAPIKey), lookup(EnvAPIKey)),
		Model:  firstNonEmpty(lookup(EnvStudioModel), lookup(EnvModel)),
	})

	return resolved.Or(Credentials{Model: DefaultModel})
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
