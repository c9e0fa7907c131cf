package recipe

import (
	"github.com/socialchef/mise/internal/config"
	"github.com/socialchef/mise/internal/httpclient"
)

// NewGenerator creates the generator selected by cfg.Transport. Anything
// other than "rest" gets the SDK transport.
func NewGenerator(cfg config.GenerationConfig) Generator {
	switch cfg.Transport {
	case config.TransportREST:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = config.DefaultBaseURL
		}
		return NewRESTGenerator(baseURL, httpclient.NewInstrumentedClient(cfg.Timeout))
	default:
		endpoint := ""
		if cfg.BaseURL != "" && cfg.BaseURL != config.DefaultBaseURL {
			endpoint = cfg.BaseURL
		}
		return NewSDKGenerator(endpoint)
	}
}
