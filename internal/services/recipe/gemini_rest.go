package recipe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/socialchef/mise/internal/httpclient"
	"github.com/socialchef/mise/internal/metrics"
	"github.com/socialchef/mise/internal/services/ai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// maxErrorBody bounds how much of an error response ends up in StatusError.
const maxErrorBody = 2048

// RESTGenerator calls the Gemini generateContent REST endpoint directly.
type RESTGenerator struct {
	baseURL    string
	httpClient *http.Client
}

// NewRESTGenerator creates a generator for the API rooted at baseURL
// (e.g. https://generativelanguage.googleapis.com).
func NewRESTGenerator(baseURL string, httpClient *http.Client) *RESTGenerator {
	return &RESTGenerator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type restPart struct {
	Text string `json:"text"`
}

type restContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []restPart `json:"parts"`
}

type restGenerationConfig struct {
	ResponseMIMEType string     `json:"responseMimeType,omitempty"`
	ResponseSchema   *ai.Schema `json:"responseSchema,omitempty"`
}

type restRequest struct {
	Contents         []restContent        `json:"contents"`
	GenerationConfig restGenerationConfig `json:"generationConfig"`
}

type restResponse struct {
	Candidates []struct {
		Content restContent `json:"content"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// Generate sends one generateContent request. The API key travels in the
// x-goog-api-key header, never in the URL.
func (g *RESTGenerator) Generate(ctx context.Context, apiKey string, req GenerateRequest) (string, error) {
	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime).Seconds()
		attrs := []attribute.KeyValue{attribute.String("provider", "gemini-rest")}
		metrics.AIGenerationDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
		metrics.ExternalAPIDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
		metrics.ExternalAPICallsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	}()

	body, err := json.Marshal(restRequest{
		Contents: []restContent{{
			Role:  "user",
			Parts: []restPart{{Text: req.Prompt}},
		}},
		GenerationConfig: restGenerationConfig{
			ResponseMIMEType: req.ResponseMIMEType,
			ResponseSchema:   req.ResponseSchema,
		},
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, url.PathEscape(req.Model))
	httpReq, err := http.NewRequestWithContext(httpclient.WithProvider(ctx, "Gemini"), "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("x-goog-api-key", apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode >= 400 {
		if len(respBody) > maxErrorBody {
			respBody = respBody[:maxErrorBody]
		}
		return "", &StatusError{Provider: "Gemini", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var out restResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("decode Gemini envelope: %w", err)
	}

	// blocked prompts come back as 200 with feedback and no candidates
	if len(out.Candidates) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}
