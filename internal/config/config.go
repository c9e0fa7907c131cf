package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	TransportSDK  = "sdk"
	TransportREST = "rest"

	DefaultModel   = "gemini-3-flash-preview"
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultTimeout = 60 * time.Second
)

type Config struct {
	Env            string
	ServiceName    string
	ServiceVersion string

	OtelExporterOTLPEndpoint string
	OtelExporterOTLPHeaders  string
	SentryDSN                string

	Port string

	Generation GenerationConfig
}

type GenerationConfig struct {
	Transport string        `yaml:"transport"`
	Model     string        `yaml:"model"`
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                      os.Getenv("ENV"),
		ServiceName:              os.Getenv("SERVICE_NAME"),
		ServiceVersion:           os.Getenv("SERVICE_VERSION"),
		OtelExporterOTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelExporterOTLPHeaders:  os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"),
		SentryDSN:                os.Getenv("SENTRY_DSN"),
		Port:                     os.Getenv("PORT"),
		Generation: GenerationConfig{
			Transport: os.Getenv("GEMINI_TRANSPORT"),
			Model:     os.Getenv("GEMINI_MODEL"),
			BaseURL:   os.Getenv("GEMINI_BASE_URL"),
		},
	}

	// Load from YAML file if available
	if err := cfg.LoadFromYAML("config.yaml"); err != nil {
		return nil, fmt.Errorf("failed to load YAML config: %w", err)
	}

	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "socialchef-mise"
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "1.0.0"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	cfg.SetGenerationDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// LoadFromYAML overlays the generation section of a YAML file.
// Values already set from the environment win over the file.
func (c *Config) LoadFromYAML(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File not found is not an error
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlConfig struct {
		Generation GenerationConfig `yaml:"generation"`
	}

	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if c.Generation.Transport == "" {
		c.Generation.Transport = yamlConfig.Generation.Transport
	}
	if c.Generation.Model == "" {
		c.Generation.Model = yamlConfig.Generation.Model
	}
	if c.Generation.BaseURL == "" {
		c.Generation.BaseURL = yamlConfig.Generation.BaseURL
	}
	if c.Generation.Timeout == 0 {
		c.Generation.Timeout = yamlConfig.Generation.Timeout
	}

	return nil
}

func (c *Config) SetGenerationDefaults() {
	if c.Generation.Transport == "" {
		c.Generation.Transport = TransportSDK
	}
	if c.Generation.Model == "" {
		c.Generation.Model = DefaultModel
	}
	if c.Generation.BaseURL == "" {
		c.Generation.BaseURL = DefaultBaseURL
	}
	if c.Generation.Timeout == 0 {
		c.Generation.Timeout = DefaultTimeout
	}
}

// OTLPHeaders parses OTEL_EXPORTER_OTLP_HEADERS ("k1=v1,k2=v2").
func (c *Config) OTLPHeaders() map[string]string {
	if c.OtelExporterOTLPHeaders == "" {
		return nil
	}
	headers := make(map[string]string)
	for _, pair := range strings.Split(c.OtelExporterOTLPHeaders, ",") {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers
}

func (c *Config) validate() error {
	switch c.Generation.Transport {
	case TransportSDK, TransportREST:
	default:
		return fmt.Errorf("GEMINI_TRANSPORT must be %q or %q, got %q", TransportSDK, TransportREST, c.Generation.Transport)
	}
	if c.Generation.Timeout < 0 {
		return fmt.Errorf("generation timeout must not be negative")
	}
	return nil
}
