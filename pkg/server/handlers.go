package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"alice-hq/hassil-parser/pkg/source"
	"alice-hq/hassil-parser/pkg/storage"
)

// errorResponse is the body of every error reply.
type errorResponse struct {
	Detail string `json:"detail"`
}

// handleSync runs one sync and replies with its report. A fetch failure
// is 503, a storage failure 500.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	report, err := s.deps.Syncer.Run(r.Context())
	if err != nil {
		var (
			ferr *source.FetchError
			serr *storage.StorageError
		)
		switch {
		case errors.As(err, &ferr):
			writeError(w, http.StatusServiceUnavailable, fmt.Sprintf("Failed to download intents: %v", err))
		case errors.As(err, &serr):
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Database upsert failed: %v", err))
		default:
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Sync failed: %v", err))
		}
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleTrigger publishes templates_updated without running a sync.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Syncer.Notify(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Event publish failed: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"published": true})
}

// handleTemplates lists stored templates, optionally for one domain.
func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.deps.Templates.List(r.Context(), r.URL.Query().Get("domain"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Listing templates failed: %v", err))
		return
	}
	if templates == nil {
		templates = []*storage.Template{}
	}
	writeJSON(w, http.StatusOK, templates)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
