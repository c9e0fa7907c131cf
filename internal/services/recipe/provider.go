package recipe

import (
	"context"

	"github.com/socialchef/mise/internal/services/ai"
)

// GenerateRequest is everything the generation service needs for one call.
type GenerateRequest struct {
	Model            string
	Prompt           string
	ResponseMIMEType string
	ResponseSchema   *ai.Schema
}

// Generator performs exactly one call to the generation service and returns
// the text of the first candidate. An answer without text is ("", nil).
type Generator interface {
	Generate(ctx context.Context, apiKey string, req GenerateRequest) (string, error)
}

// CredentialSource resolves the service API key at call time.
type CredentialSource interface {
	APIKey() (string, bool)
}
