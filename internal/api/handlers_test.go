package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	apperrors "github.com/socialchef/mise/internal/errors"
	"github.com/socialchef/mise/internal/services/recipe"
	"github.com/socialchef/mise/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchRecipe(ctx context.Context, query string) (*recipe.RecipeResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recipe.RecipeResult), args.Error(1)
}

var stew = &recipe.RecipeResult{
	RecipeName:        "Irish Stew",
	Servings:          "4 servings",
	Ingredients:       []recipe.Ingredient{{Item: "Lamb neck", Amount: "1 kg", Notes: "trimmed"}, {Item: "Potatoes", Amount: "800 g"}},
	BriefInstructions: "Layer and simmer for two hours.",
	ChefTip:           "Use floury potatoes to thicken the broth.",
}

func newTestServer(fetcher *MockFetcher) (*Server, *view.Controller) {
	controller := view.New(fetcher)
	return NewServer(controller, nil), controller
}

func decodeState(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestHandleState_Idle(t *testing.T) {
	srv, _ := newTestServer(new(MockFetcher))

	req := httptest.NewRequest("GET", "/api/state", nil)
	rr := httptest.NewRecorder()
	srv.HandleState(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	body := decodeState(t, rr)
	assert.Equal(t, "idle", body["phase"])
	assert.Equal(t, "", body["query"])
	assert.Equal(t, false, body["canSubmit"])
	assert.NotContains(t, body, "recipe")
}

func TestHandleSetQuery(t *testing.T) {
	srv, controller := newTestServer(new(MockFetcher))

	req := httptest.NewRequest("PUT", "/api/query", strings.NewReader(`{"query":"Irish Stew"}`))
	rr := httptest.NewRecorder()
	srv.HandleSetQuery(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeState(t, rr)
	assert.Equal(t, "Irish Stew", body["query"])
	assert.Equal(t, true, body["canSubmit"])
	assert.Equal(t, "Irish Stew", controller.State().Query)
}

func TestHandleSetQuery_InvalidBody(t *testing.T) {
	srv, _ := newTestServer(new(MockFetcher))

	req := httptest.NewRequest("PUT", "/api/query", strings.NewReader(`{"query":`))
	rr := httptest.NewRecorder()
	srv.HandleSetQuery(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, apperrors.ErrorTypeValidation, body.Error.Type)
}

func TestHandleSubmit_BlankQuery(t *testing.T) {
	fetcher := new(MockFetcher)
	srv, _ := newTestServer(fetcher)

	req := httptest.NewRequest("POST", "/api/submit", nil)
	rr := httptest.NewRecorder()
	srv.HandleSubmit(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, apperrors.ErrorTypeValidation, body.Error.Type)
	assert.Equal(t, "BLANK_QUERY", body.Error.ErrorCode)
	fetcher.AssertNotCalled(t, "FetchRecipe", mock.Anything, mock.Anything)
}

func TestHandleSubmit_Wait(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("FetchRecipe", mock.Anything, "Irish Stew").Return(stew, nil).Once()
	srv, controller := newTestServer(fetcher)
	controller.SetQuery(" Irish Stew ")

	req := httptest.NewRequest("POST", "/api/submit?wait=true", nil)
	rr := httptest.NewRecorder()
	srv.HandleSubmit(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeState(t, rr)
	assert.Equal(t, "success", body["phase"])
	assert.Equal(t, "", body["query"])
	recipeBody := body["recipe"].(map[string]any)
	assert.Equal(t, "Irish Stew", recipeBody["recipeName"])
	assert.Len(t, recipeBody["ingredients"], 2)
}

func TestHandleSubmit_AcceptedThenConflict(t *testing.T) {
	release := make(chan struct{})
	fetcher := new(MockFetcher)
	fetcher.On("FetchRecipe", mock.Anything, "Irish Stew").
		Run(func(mock.Arguments) { <-release }).
		Return(stew, nil).Once()
	srv, controller := newTestServer(fetcher)
	controller.SetQuery("Irish Stew")

	rr := httptest.NewRecorder()
	srv.HandleSubmit(rr, httptest.NewRequest("POST", "/api/submit", nil))

	assert.Equal(t, http.StatusAccepted, rr.Code)
	body := decodeState(t, rr)
	assert.Equal(t, "loading", body["phase"])
	assert.Equal(t, false, body["canSubmit"])

	rr = httptest.NewRecorder()
	srv.HandleSubmit(rr, httptest.NewRequest("POST", "/api/submit", nil))

	assert.Equal(t, http.StatusConflict, rr.Code)
	var errBody ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errBody))
	assert.Equal(t, apperrors.ErrorTypeConflict, errBody.Error.Type)

	close(release)
	require.Eventually(t, func() bool {
		return controller.State().Phase == view.PhaseSuccess
	}, 2*time.Second, 10*time.Millisecond)
	fetcher.AssertNumberOfCalls(t, "FetchRecipe", 1)
}

func TestHandleSubmit_FailureState(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("FetchRecipe", mock.Anything, "Stew").
		Return(nil, apperrors.NewEmptyResponseError(recipe.MessageNoResponse, "EMPTY_RESPONSE")).Once()
	srv, controller := newTestServer(fetcher)
	controller.SetQuery("Stew")

	rr := httptest.NewRecorder()
	srv.HandleSubmit(rr, httptest.NewRequest("POST", "/api/submit?wait=true", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeState(t, rr)
	assert.Equal(t, "failure", body["phase"])
	assert.Equal(t, recipe.MessageNoResponse, body["errorMessage"])
	assert.Equal(t, "Stew", body["query"])
	assert.Equal(t, true, body["canSubmit"])
}

func TestHandleIndex_Empty(t *testing.T) {
	srv, _ := newTestServer(new(MockFetcher))

	rr := httptest.NewRecorder()
	srv.HandleIndex(rr, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	html := rr.Body.String()
	assert.Contains(t, html, "The kitchen is ready. Enter a recipe above to begin.")
	assert.Contains(t, html, "What are you cooking today?")
	assert.Contains(t, html, `<button type="submit" disabled>`)
	assert.NotContains(t, html, "Pro Tip")
}

func TestHandleFormSubmit_Success(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("FetchRecipe", mock.Anything, "Irish Stew").Return(stew, nil).Once()
	srv, _ := newTestServer(fetcher)

	form := url.Values{"query": {"Irish Stew"}}
	req := httptest.NewRequest("POST", "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.HandleFormSubmit(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	rr = httptest.NewRecorder()
	srv.HandleIndex(rr, httptest.NewRequest("GET", "/", nil))
	html := rr.Body.String()
	assert.Contains(t, html, "Irish Stew")
	assert.Contains(t, html, "2 items")
	assert.Contains(t, html, "trimmed")
	assert.Contains(t, html, "Use floury potatoes")
	assert.NotContains(t, html, "The kitchen is ready")
}

func TestHandleFormSubmit_FailureShowsBannerAndStaleRecipe(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("FetchRecipe", mock.Anything, "Irish Stew").Return(stew, nil).Once()
	fetcher.On("FetchRecipe", mock.Anything, "<b>Soup</b>").
		Return(nil, apperrors.NewMalformedResponseError(recipe.MessageMalformedResponse, "MALFORMED_RESPONSE", nil)).Once()
	srv, _ := newTestServer(fetcher)

	for _, q := range []string{"Irish Stew", "<b>Soup</b>"} {
		form := url.Values{"query": {q}}
		req := httptest.NewRequest("POST", "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		srv.HandleFormSubmit(httptest.NewRecorder(), req)
	}

	rr := httptest.NewRecorder()
	srv.HandleIndex(rr, httptest.NewRequest("GET", "/", nil))
	html := rr.Body.String()
	assert.Contains(t, html, "Oops! Something went wrong.")
	assert.Contains(t, html, "Failed to parse the recipe data. Please try again.")
	assert.Contains(t, html, "Irish Stew")
	assert.Contains(t, html, "&lt;b&gt;Soup&lt;/b&gt;")
	assert.NotContains(t, html, "<b>Soup</b>")
}

func TestHandleFormSubmit_BlankRedirects(t *testing.T) {
	fetcher := new(MockFetcher)
	srv, _ := newTestServer(fetcher)

	req := httptest.NewRequest("POST", "/", bytes.NewBufferString("query=+++"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.HandleFormSubmit(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	fetcher.AssertNotCalled(t, "FetchRecipe", mock.Anything, mock.Anything)
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(new(MockFetcher))

	rr := httptest.NewRecorder()
	srv.HandleHealth(rr, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
}
