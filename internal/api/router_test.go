package api

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/socialchef/mise/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRouter(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("FetchRecipe", mock.Anything, "Irish Stew").Return(stew, nil).Once()
	srv, _ := newTestServer(fetcher)
	handler := NewRouter(srv, "mise-test", slog.Default())

	testCases := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{"GET", "/health", "", http.StatusOK},
		{"GET", "/", "", http.StatusOK},
		{"GET", "/api/state", "", http.StatusOK},
		{"POST", "/api/submit", "", http.StatusBadRequest},
		{"PUT", "/api/query", `{"query":"Irish Stew"}`, http.StatusOK},
		{"POST", "/api/submit?wait=true", "", http.StatusOK},
		{"DELETE", "/api/state", "", http.StatusMethodNotAllowed},
		{"GET", "/missing", "", http.StatusNotFound},
	}

	for _, tc := range testCases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, tc.status, rr.Code, "%s %s", tc.method, tc.path)
		assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader), "%s %s", tc.method, tc.path)
	}
	fetcher.AssertNumberOfCalls(t, "FetchRecipe", 1)
}
