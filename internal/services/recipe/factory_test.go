package recipe

import (
	"testing"

	"github.com/socialchef/mise/internal/config"
)

func TestFactory_SDK(t *testing.T) {
	cfg := config.GenerationConfig{Transport: config.TransportSDK}

	generator := NewGenerator(cfg)

	sdk, ok := generator.(*SDKGenerator)
	if !ok {
		t.Fatalf("Expected SDKGenerator, got %T", generator)
	}
	if sdk.endpoint != "" {
		t.Errorf("Expected SDK default endpoint, got %q", sdk.endpoint)
	}
}

func TestFactory_Default(t *testing.T) {
	generator := NewGenerator(config.GenerationConfig{})

	if _, ok := generator.(*SDKGenerator); !ok {
		t.Errorf("Expected default SDKGenerator, got %T", generator)
	}
}

func TestFactory_SDKCustomEndpoint(t *testing.T) {
	cfg := config.GenerationConfig{
		Transport: config.TransportSDK,
		BaseURL:   "http://localhost:9999",
	}

	sdk, ok := NewGenerator(cfg).(*SDKGenerator)
	if !ok {
		t.Fatal("Expected SDKGenerator")
	}
	if sdk.endpoint != "http://localhost:9999" {
		t.Errorf("Expected custom endpoint, got %q", sdk.endpoint)
	}
}

func TestFactory_REST(t *testing.T) {
	cfg := config.GenerationConfig{
		Transport: config.TransportREST,
		BaseURL:   "http://localhost:9999/",
		Timeout:   config.DefaultTimeout,
	}

	generator := NewGenerator(cfg)

	rest, ok := generator.(*RESTGenerator)
	if !ok {
		t.Fatalf("Expected RESTGenerator, got %T", generator)
	}
	if rest.baseURL != "http://localhost:9999" {
		t.Errorf("Expected trailing slash trimmed, got %q", rest.baseURL)
	}
	if rest.httpClient == nil {
		t.Error("Expected an HTTP client")
	}
}

func TestFactory_RESTDefaultBaseURL(t *testing.T) {
	rest, ok := NewGenerator(config.GenerationConfig{Transport: config.TransportREST}).(*RESTGenerator)
	if !ok {
		t.Fatal("Expected RESTGenerator")
	}
	if rest.baseURL != config.DefaultBaseURL {
		t.Errorf("Expected %q, got %q", config.DefaultBaseURL, rest.baseURL)
	}
}
