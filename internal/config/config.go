package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jackzampolin/concierge/internal/providers"
)

// ErrMissingCredential is returned when the selected provider has no API key.
var ErrMissingCredential = errors.New("missing API credential")

// credentialEnv lists the environment variables consulted, in order, when a
// provider's configured key resolves to empty.
var credentialEnv = map[string][]string{
	providers.GeminiName: {"GOOGLE_API_KEY", "GOOGLE_API"},
	"":                   {"GOOGLE_API_KEY", "GOOGLE_API"},
	providers.OpenAIName: {"OPENAI_API_KEY"},
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// Manager loads configuration once. Every consumer receives the same
// immutable Config.
type Manager struct {
	v      *viper.Viper
	config *Config
}

// NewManager creates a new config manager and loads the config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{v: viper.New()}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	v := cm.v
	d := DefaultConfig()
	v.SetDefault("provider.type", d.Provider.Type)
	v.SetDefault("provider.model", d.Provider.Model)
	// Empty falls back to the provider's credential variables.
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.base_url", d.Provider.BaseURL)
	v.SetDefault("provider.timeout_seconds", d.Provider.TimeoutSeconds)
	v.SetDefault("provider.requests_per_minute", d.Provider.RequestsPerMinute)
	v.SetDefault("extraction.backend", d.Extraction.Backend)
	v.SetDefault("extraction.default_media_type", d.Extraction.DefaultMediaType)
	v.SetDefault("extraction.max_upload_mb", d.Extraction.MaxUploadMB)
	v.SetDefault("extraction.hint_max_chars", d.Extraction.HintMaxChars)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)

	// Environment variables with CONCIERGE_ prefix, e.g. CONCIERGE_PROVIDER_TYPE
	v.SetEnvPrefix("CONCIERGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.concierge")
	}

	// Try to read config file (not required)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the loaded configuration.
func (cm *Manager) Get() *Config {
	return cm.config
}

// ConfigFile returns the path of the config file in use, or "" when only
// defaults and environment apply.
func (cm *Manager) ConfigFile() string {
	return cm.v.ConfigFileUsed()
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envRef.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// ResolveAPIKey returns the provider API key: the configured value with
// ${ENV_VAR} references expanded, else the provider's fallback variables.
func (c *Config) ResolveAPIKey() string {
	if key := strings.TrimSpace(ResolveEnvVars(c.Provider.APIKey)); key != "" {
		return key
	}
	for _, name := range credentialEnv[c.Provider.Type] {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			return key
		}
	}
	return ""
}

// Validate checks the configuration before anything is served. A missing
// credential is reported as ErrMissingCredential.
func (c *Config) Validate() error {
	switch c.Provider.Type {
	case providers.MockClientName:
		return nil
	case providers.GeminiName, providers.OpenAIName, "":
	default:
		return fmt.Errorf("%w: %q", providers.ErrUnknownProvider, c.Provider.Type)
	}

	switch c.Extraction.Backend {
	case "", "vision", "text":
	default:
		return fmt.Errorf("unknown extraction backend %q (want vision or text)", c.Extraction.Backend)
	}

	if c.ResolveAPIKey() == "" {
		env := credentialEnv[c.Provider.Type]
		return fmt.Errorf("%w: set provider.api_key or %s", ErrMissingCredential, strings.Join(env, " / "))
	}
	return nil
}

// ToProviderConfig converts the config for providers.New with the API key
// resolved.
func (c *Config) ToProviderConfig(logger *slog.Logger) providers.Config {
	return providers.Config{
		Type:    c.Provider.Type,
		Model:   c.Provider.Model,
		APIKey:  c.ResolveAPIKey(),
		BaseURL: c.Provider.BaseURL,
		Timeout: time.Duration(c.Provider.TimeoutSeconds) * time.Second,
		RPM:     c.Provider.RequestsPerMinute,
		Logger:  logger,
	}
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Concierge configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set the key in your shell: export GOOGLE_API_KEY=xxx
# Any key can be overridden with CONCIERGE_<SECTION>_<KEY>, e.g. CONCIERGE_PROVIDER_TYPE=openai

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
