package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/socialchef/mise/internal/errors"
	"github.com/socialchef/mise/internal/logger"
	"github.com/socialchef/mise/internal/metrics"
	"github.com/socialchef/mise/internal/services/ai"
	"github.com/socialchef/mise/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

const (
	MessageAPIKeyMissing     = "API Key is missing"
	MessageNoResponse        = "No response received"
	MessageMalformedResponse = "Failed to parse the recipe data. Please try again."
)

var errNotAnObject = errors.New("recipe payload is not a JSON object")

// Client fetches structured recipes from the generation service.
type Client struct {
	credentials CredentialSource
	generator   Generator
	model       string
	logger      *slog.Logger
}

// NewClient creates a recipe client. The credential source is consulted on
// every FetchRecipe call.
func NewClient(credentials CredentialSource, generator Generator, model string) *Client {
	return &Client{
		credentials: credentials,
		generator:   generator,
		model:       model,
		logger:      slog.Default(),
	}
}

// WithLogger replaces the client's logger.
func (c *Client) WithLogger(l *slog.Logger) *Client {
	c.logger = l
	return c
}

// FetchRecipe asks the generation service for the recipe of query. The query is
// used verbatim. Errors are *errors.AppError of type CONFIGURATION_ERROR,
// EMPTY_RESPONSE_ERROR, MALFORMED_RESPONSE_ERROR or TRANSPORT_ERROR.
func (c *Client) FetchRecipe(ctx context.Context, query string) (*RecipeResult, error) {
	ctx, span := telemetry.Tracer("recipe").Start(ctx, "recipe.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("recipe.model", c.model))

	startTime := time.Now()
	result, err := c.fetch(ctx, query)
	duration := time.Since(startTime).Seconds()

	outcome := "success"
	if err != nil {
		// fetch only returns AppErrors
		appErr, _ := apperrors.As(err)
		outcome = string(appErr.Type)
		span.RecordError(err)
		span.SetStatus(codes.Error, appErr.Message)
		c.logger.WarnContext(ctx, "Recipe fetch failed",
			"query", query,
			"error_type", appErr.Type,
			"retryable", appErr.IsRetryable(),
			"error", err.Error(),
			logger.WithTraceContext(ctx))
	} else {
		c.logger.InfoContext(ctx, "Recipe fetched",
			"query", query,
			"recipe", result.RecipeName,
			"ingredients", len(result.Ingredients),
			"duration_s", duration,
			logger.WithTraceContext(ctx))
	}

	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	metrics.RecipeFetchTotal.Add(ctx, 1, attrs)
	metrics.RecipeFetchDuration.Record(ctx, duration, attrs)

	return result, err
}

func (c *Client) fetch(ctx context.Context, query string) (*RecipeResult, error) {
	apiKey, ok := c.credentials.APIKey()
	if !ok {
		return nil, apperrors.NewConfigurationError(MessageAPIKeyMissing, "API_KEY_MISSING",
			"Set API_KEY (or GEMINI_API_KEY) in the environment and try again.")
	}

	text, err := c.generator.Generate(ctx, apiKey, GenerateRequest{
		Model:            c.model,
		Prompt:           ai.BuildRecipePrompt(query),
		ResponseMIMEType: ai.ResponseMIMEType,
		ResponseSchema:   ai.RecipeSchema(),
	})
	if err != nil {
		status := UpstreamStatus(err)
		return nil, apperrors.NewTransportError(transportMessage(status, err), "TRANSPORT_FAILED", status, err)
	}

	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewEmptyResponseError(MessageNoResponse, "EMPTY_RESPONSE")
	}

	result, err := ParseRecipe(text)
	if err != nil {
		return nil, apperrors.NewMalformedResponseError(MessageMalformedResponse, "MALFORMED_RESPONSE", err)
	}
	return result, nil
}

// ParseRecipe decodes a JSON document into a RecipeResult. Anything other than
// a JSON object, including null, is rejected.
func ParseRecipe(text string) (*RecipeResult, error) {
	var result *RecipeResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, err
	}
	if result == nil {
		return nil, errNotAnObject
	}
	return result, nil
}

func transportMessage(status int, err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "The recipe service did not answer in time"
	case errors.Is(err, context.Canceled):
		return "The recipe request was cancelled"
	case status > 0:
		return fmt.Sprintf("The recipe service returned status %d", status)
	default:
		return "Could not reach the recipe service"
	}
}
