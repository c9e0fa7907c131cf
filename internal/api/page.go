package api

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/socialchef/mise/internal/logger"
	"github.com/socialchef/mise/internal/view"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	view.State
	CanSubmit bool
	Loading   bool
	Failed    bool
	ShowEmpty bool
}

func newPageData(state view.State, canSubmit bool) pageData {
	return pageData{
		State:     state,
		CanSubmit: canSubmit,
		Loading:   state.Phase == view.PhaseLoading,
		Failed:    state.Phase == view.PhaseFailure,
		ShowEmpty: state.Phase == view.PhaseIdle && state.Recipe == nil,
	}
}

// HandleIndex renders the single page.
func (s *Server) HandleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, newPageData(s.controller.State(), s.controller.CanSubmit())); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to render page", "error", err, logger.WithTraceContext(r.Context()))
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// HandleFormSubmit is the no-script form post: it sets the query, runs the
// fetch to completion and redirects back to the page.
func (s *Server) HandleFormSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	s.controller.SetQuery(r.PostForm.Get("query"))
	done, err := s.controller.Submit(r.Context())
	switch {
	case err == nil:
		select {
		case <-done:
		case <-r.Context().Done():
			return
		}
	case errors.Is(err, view.ErrBusy), errors.Is(err, view.ErrBlankQuery):
		// the page reflects the unchanged state
	default:
		http.Error(w, view.MessageUnexpected, http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
