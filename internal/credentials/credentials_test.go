package credentials

import "testing"

func envOf(values map[string]string) LookupFunc {
	return func(key string) string {
		return values[key]
	}
}

func TestResolvePrecedence(t *testing.T) {
	t.Parallel()

	fullEnv := map[string]string{
		EnvStudioAPIKey: "studio-key",
		EnvStudioModel:  "studio/model",
		EnvAPIKey:       "generic-key",
		EnvModel:        "generic/model",
	}

	tests := []struct {
		name     string
		env      map[string]string
		explicit Credentials
		stored   Credentials
		want     Credentials
	}{
		{
			name:     "explicit wins",
			env:      fullEnv,
			explicit: Credentials{APIKey: "explicit-key", Model: "explicit/model"},
			stored:   Credentials{APIKey: "stored-key", Model: "stored/model"},
			want:     Credentials{APIKey: "explicit-key", Model: "explicit/model"},
		},
		{
			name:   "stored bundle beats environment",
			env:    fullEnv,
			stored: Credentials{APIKey: "stored-key", Model: "stored/model"},
			want:   Credentials{APIKey: "stored-key", Model: "stored/model"},
		},
		{
			name: "studio environment beats generic",
			env:  fullEnv,
			want: Credentials{APIKey: "studio-key", Model: "studio/model"},
		},
		{
			name: "generic environment",
			env:  map[string]string{EnvAPIKey: "generic-key", EnvModel: "generic/model"},
			want: Credentials{APIKey: "generic-key", Model: "generic/model"},
		},
		{
			name: "model defaults, key stays empty",
			env:  map[string]string{},
			want: Credentials{Model: DefaultModel},
		},
		{
			name:     "fields resolve independently",
			env:      map[string]string{EnvModel: "generic/model"},
			explicit: Credentials{APIKey: "explicit-key"},
			want:     Credentials{APIKey: "explicit-key", Model: "generic/model"},
		},
		{
			name:     "whitespace counts as absent",
			env:      map[string]string{EnvStudioAPIKey: "studio-key"},
			explicit: Credentials{APIKey: "   ", Model: " "},
			want:     Credentials{APIKey: "studio-key", Model: DefaultModel},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := NewResolver(envOf(tc.env)).Resolve(tc.explicit, tc.stored)
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestResolveFallsBackToProcessEnvironment(t *testing.T) {
	t.Setenv(EnvStudioAPIKey, "")
	t.Setenv(EnvStudioModel, "")
	t.Setenv(EnvAPIKey, "process-key")
	t.Setenv(EnvModel, "")

	got := NewResolver(nil).Resolve()
	if got.APIKey != "process-key" {
		t.Fatalf("expected process environment key, got %q", got.APIKey)
	}
	if got.Model != DefaultModel {
		t.Fatalf("expected default model %q, got %q", DefaultModel, got.Model)
	}
}

func TestHasAPIKey(t *testing.T) {
	t.Parallel()

	if (Credentials{APIKey: " "}).HasAPIKey() {
		t.Fatalf("expected whitespace key to count as missing")
	}
	if !(Credentials{APIKey: "sk-or"}).HasAPIKey() {
		t.Fatalf("expected key to be present")
	}
}
