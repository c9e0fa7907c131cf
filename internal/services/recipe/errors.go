package recipe

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// StatusError is a non-2xx answer from the generation service.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// UpstreamStatus extracts the HTTP status of a failed generation call, or 0
// when the call never got an HTTP answer.
func UpstreamStatus(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
