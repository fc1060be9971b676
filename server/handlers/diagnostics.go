package handlers

import (
	"net/http"

	"github.com/nomis52/clubsignup/logging"
)

// DiagnosticsResponse is the JSON body of GET /diagnostics.
type DiagnosticsResponse struct {
	Components map[string][]logging.LogEntry `json:"components"`
}

// DiagnosticsHandler returns the captured client log entries, optionally
// limited to one component with ?component=.
type DiagnosticsHandler struct {
	provider DiagnosticsProvider
}

// NewDiagnosticsHandler creates a new DiagnosticsHandler.
func NewDiagnosticsHandler(provider DiagnosticsProvider) *DiagnosticsHandler {
	return &DiagnosticsHandler{provider: provider}
}

// ServeHTTP implements http.Handler.
func (h *DiagnosticsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	all := h.provider.Diagnostics()
	if all == nil {
		all = map[string][]logging.LogEntry{}
	}

	if component := r.URL.Query().Get("component"); component != "" {
		entries, ok := all[component]
		if !ok {
			entries = []logging.LogEntry{}
		}
		all = map[string][]logging.LogEntry{component: entries}
	}

	writeJSON(w, http.StatusOK, DiagnosticsResponse{Components: all})
}
