package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nomis52/clubsignup/server/session"
)

// ErrorResponse is returned when an error occurs.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// requireSession returns the request's session or writes a 500.
func requireSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "no session"})
		return nil, false
	}
	return sess, true
}

// redirectHome sends the browser back to the page after a form post.
func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
