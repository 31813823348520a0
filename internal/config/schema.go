package config

// Config holds concierge configuration.
// Stored at: ./config.yaml or $HOME/.concierge/config.yaml
type Config struct {
	Provider   ProviderCfg   `mapstructure:"provider" yaml:"provider" json:"provider"`
	Extraction ExtractionCfg `mapstructure:"extraction" yaml:"extraction" json:"extraction"`
	Server     ServerCfg     `mapstructure:"server" yaml:"server" json:"server"`
}

// ProviderCfg configures the model client.
type ProviderCfg struct {
	Type              string `mapstructure:"type" yaml:"type" json:"type"`                                              // "gemini", "openai", "mock"
	Model             string `mapstructure:"model" yaml:"model" json:"model"`                                           // Empty selects the provider default
	APIKey            string `mapstructure:"api_key" yaml:"api_key" json:"api_key"`                                     // API key (supports ${ENV_VAR} syntax)
	BaseURL           string `mapstructure:"base_url" yaml:"base_url" json:"base_url"`                                  // Optional endpoint override
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`             // Per request, 0 = none
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"` // Model call throttle, 0 = none
}

// ExtractionCfg configures the pipeline.
type ExtractionCfg struct {
	// Backend is "vision" (send the document) or "text" (send its parsed text).
	Backend          string `mapstructure:"backend" yaml:"backend" json:"backend"`
	DefaultMediaType string `mapstructure:"default_media_type" yaml:"default_media_type" json:"default_media_type"`
	MaxUploadMB      int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	HintMaxChars     int    `mapstructure:"hint_max_chars" yaml:"hint_max_chars" json:"hint_max_chars"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host" json:"host"`
	Port string `mapstructure:"port" yaml:"port" json:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderCfg{
			Type:           "gemini",
			APIKey:         "${GOOGLE_API_KEY}",
			TimeoutSeconds: 120,
		},
		Extraction: ExtractionCfg{
			Backend:          "vision",
			DefaultMediaType: "application/pdf",
			MaxUploadMB:      20,
			HintMaxChars:     20000,
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
	}
}

// MaxUploadBytes returns the upload size limit in bytes. 0 means unlimited.
func (c *Config) MaxUploadBytes() int64 {
	if c.Extraction.MaxUploadMB <= 0 {
		return 0
	}
	return int64(c.Extraction.MaxUploadMB) << 20
}
