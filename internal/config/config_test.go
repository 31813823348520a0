package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jackzampolin/concierge/internal/providers"
)

// clearCredentials unsets every credential variable for the test.
func clearCredentials(t *testing.T) {
	t.Helper()
	for _, name := range []string{"GOOGLE_API_KEY", "GOOGLE_API", "OPENAI_API_KEY"} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Provider.Type != "gemini" {
		t.Errorf("Provider.Type = %q, want gemini", cfg.Provider.Type)
	}
	if cfg.Provider.APIKey != "${GOOGLE_API_KEY}" {
		t.Errorf("expected GOOGLE_API_KEY placeholder, got %q", cfg.Provider.APIKey)
	}
	if cfg.Extraction.Backend != "vision" {
		t.Errorf("Extraction.Backend = %q, want vision", cfg.Extraction.Backend)
	}
	if cfg.Extraction.DefaultMediaType != "application/pdf" {
		t.Errorf("DefaultMediaType = %q", cfg.Extraction.DefaultMediaType)
	}
	if cfg.MaxUploadBytes() != 20<<20 {
		t.Errorf("MaxUploadBytes() = %d", cfg.MaxUploadBytes())
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		t.Setenv("TEST_API_KEY", "secret123")

		result := ResolveEnvVars("${TEST_API_KEY}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func TestConfig_ResolveAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		apiKey   string
		env      map[string]string
		want     string
	}{
		{"literal", "gemini", "direct-key", nil, "direct-key"},
		{"env reference", "gemini", "${TEST_GEMINI_KEY}", map[string]string{"TEST_GEMINI_KEY": "g-123"}, "g-123"},
		{"primary fallback", "gemini", "", map[string]string{"GOOGLE_API_KEY": "primary", "GOOGLE_API": "secondary"}, "primary"},
		{"secondary fallback", "gemini", "${UNSET_KEY_XYZ}", map[string]string{"GOOGLE_API": "secondary"}, "secondary"},
		{"openai fallback", "openai", "", map[string]string{"OPENAI_API_KEY": "sk-1", "GOOGLE_API_KEY": "g"}, "sk-1"},
		{"nothing set", "gemini", "", nil, ""},
		{"whitespace only", "gemini", "   ", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearCredentials(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg := DefaultConfig()
			cfg.Provider.Type = tt.provider
			cfg.Provider.APIKey = tt.apiKey

			if got := cfg.ResolveAPIKey(); got != tt.want {
				t.Errorf("ResolveAPIKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("missing credential", func(t *testing.T) {
		clearCredentials(t)
		cfg := DefaultConfig()
		err := cfg.Validate()
		if !errors.Is(err, ErrMissingCredential) {
			t.Fatalf("Validate() error = %v, want ErrMissingCredential", err)
		}
		if !strings.Contains(err.Error(), "GOOGLE_API_KEY") {
			t.Errorf("error should name the variable: %v", err)
		}
	})

	t.Run("credential present", func(t *testing.T) {
		clearCredentials(t)
		t.Setenv("GOOGLE_API", "k")
		if err := DefaultConfig().Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("mock needs no credential", func(t *testing.T) {
		clearCredentials(t)
		cfg := DefaultConfig()
		cfg.Provider.Type = "mock"
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Provider.Type = "llama"
		if err := cfg.Validate(); !errors.Is(err, providers.ErrUnknownProvider) {
			t.Errorf("Validate() error = %v, want ErrUnknownProvider", err)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Provider.APIKey = "k"
		cfg.Extraction.Backend = "ocr"
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for unknown backend")
		}
	})
}

func TestConfig_ToProviderConfig(t *testing.T) {
	clearCredentials(t)
	t.Setenv("GOOGLE_API_KEY", "resolved")

	cfg := DefaultConfig()
	cfg.Provider.Model = "gemini-1.5-pro"
	pc := cfg.ToProviderConfig(nil)

	if pc.APIKey != "resolved" {
		t.Errorf("APIKey = %q, want resolved", pc.APIKey)
	}
	if pc.Type != "gemini" || pc.Model != "gemini-1.5-pro" {
		t.Errorf("provider config = %+v", pc)
	}
	if pc.Timeout != 120*time.Second {
		t.Errorf("Timeout = %v, want 2m", pc.Timeout)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		path := writeConfig(t, `
provider:
  type: openai
  model: gpt-4o
  api_key: "${OPENAI_API_KEY}"
extraction:
  backend: text
  hint_max_chars: 500
server:
  port: "9999"
`)
		mgr, err := NewManager(path)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		if cfg.Provider.Type != "openai" || cfg.Provider.Model != "gpt-4o" {
			t.Errorf("provider = %+v", cfg.Provider)
		}
		if cfg.Extraction.Backend != "text" || cfg.Extraction.HintMaxChars != 500 {
			t.Errorf("extraction = %+v", cfg.Extraction)
		}
		if cfg.Extraction.DefaultMediaType != "application/pdf" {
			t.Errorf("unset keys should keep defaults, got %q", cfg.Extraction.DefaultMediaType)
		}
		if cfg.Server.Port != "9999" || cfg.Server.Host != "127.0.0.1" {
			t.Errorf("server = %+v", cfg.Server)
		}
		if mgr.ConfigFile() != path {
			t.Errorf("ConfigFile() = %q, want %q", mgr.ConfigFile(), path)
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := writeConfig(t, "provider:\n  type: gemini\n")
		t.Setenv("CONCIERGE_PROVIDER_TYPE", "mock")
		t.Setenv("CONCIERGE_EXTRACTION_MAX_UPLOAD_MB", "5")

		mgr, err := NewManager(path)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		cfg := mgr.Get()
		if cfg.Provider.Type != "mock" {
			t.Errorf("Provider.Type = %q, want mock", cfg.Provider.Type)
		}
		if cfg.MaxUploadBytes() != 5<<20 {
			t.Errorf("MaxUploadBytes() = %d, want 5MB", cfg.MaxUploadBytes())
		}
	})

	t.Run("invalid file", func(t *testing.T) {
		path := writeConfig(t, "provider: [unclosed")
		if _, err := NewManager(path); err == nil {
			t.Error("expected error for malformed config file")
		}
	})

	t.Run("managers are independent", func(t *testing.T) {
		a, err := NewManager(writeConfig(t, "provider:\n  model: a\n"))
		if err != nil {
			t.Fatal(err)
		}
		b, err := NewManager(writeConfig(t, "provider:\n  model: b\n"))
		if err != nil {
			t.Fatal(err)
		}
		if a.Get().Provider.Model != "a" || b.Get().Provider.Model != "b" {
			t.Errorf("models = %q, %q", a.Get().Provider.Model, b.Get().Provider.Model)
		}
	})
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Concierge configuration") {
		t.Error("expected header comment")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config is not valid YAML: %v", err)
	}
	if cfg != *DefaultConfig() {
		t.Errorf("round trip = %+v, want defaults", cfg)
	}

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() on default file error = %v", err)
	}
	if mgr.Get().Provider.APIKey != "${GOOGLE_API_KEY}" {
		t.Errorf("APIKey = %q", mgr.Get().Provider.APIKey)
	}
}
