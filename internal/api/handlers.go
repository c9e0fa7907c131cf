package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/socialchef/mise/internal/errors"
	"github.com/socialchef/mise/internal/logger"
	"github.com/socialchef/mise/internal/view"
)

// Controller is the view state the handlers read and drive.
type Controller interface {
	SetQuery(text string) view.State
	State() view.State
	CanSubmit() bool
	Submit(ctx context.Context) (<-chan view.State, error)
}

type Server struct {
	controller Controller
	logger     *slog.Logger
}

func NewServer(controller Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		controller: controller,
		logger:     logger,
	}
}

// StateResponse is a view state plus whether submitting is currently allowed.
type StateResponse struct {
	view.State
	CanSubmit bool `json:"canSubmit"`
}

type SetQueryRequest struct {
	Query string `json:"query"`
}

type ErrorResponse struct {
	Error *apperrors.AppError `json:"error"`
}

func (s *Server) HandleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stateResponse(s.controller.State()))
}

func (s *Server) HandleSetQuery(w http.ResponseWriter, r *http.Request) {
	var req SetQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.NewValidationError("Invalid request body", "INVALID_BODY",
			`Send a JSON object like {"query": "Beef Bourguignon"}.`))
		return
	}

	writeJSON(w, http.StatusOK, s.stateResponse(s.controller.SetQuery(req.Query)))
}

// HandleSubmit starts a fetch. With ?wait=true it answers once the fetch has
// settled, otherwise immediately with 202 and the loading state.
func (s *Server) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	done, err := s.controller.Submit(r.Context())
	if err != nil {
		writeError(w, submitError(err))
		return
	}

	if r.URL.Query().Get("wait") != "true" {
		writeJSON(w, http.StatusAccepted, s.stateResponse(s.controller.State()))
		return
	}

	select {
	case settled := <-done:
		writeJSON(w, http.StatusOK, s.stateResponse(settled))
	case <-r.Context().Done():
		s.logger.InfoContext(r.Context(), "Client left before fetch settled", logger.WithTraceContext(r.Context()))
	}
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) stateResponse(state view.State) StateResponse {
	return StateResponse{State: state, CanSubmit: s.controller.CanSubmit()}
}

func submitError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, view.ErrBusy):
		return apperrors.NewConflictError("A recipe is already being fetched", "FETCH_IN_PROGRESS",
			"Wait for the current search to finish.")
	case errors.Is(err, view.ErrBlankQuery):
		return apperrors.NewValidationError("Enter a dish name first", "BLANK_QUERY",
			"Type a recipe name, then submit.")
	default:
		return &apperrors.AppError{
			Type:       apperrors.ErrorTypeTransport,
			Message:    view.MessageUnexpected,
			StatusCode: http.StatusInternalServerError,
			ErrorCode:  "SUBMIT_FAILED",
			Err:        err,
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, appErr *apperrors.AppError) {
	status := appErr.StatusCode
	if status < 400 {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, ErrorResponse{Error: appErr})
}
