package handlers

import (
	"net/http"

	"github.com/gorilla/csrf"
)

// HandleCSRFFailure rejects a form post whose CSRF token is missing or invalid.
func HandleCSRFFailure(w http.ResponseWriter, r *http.Request) {
	reason := "invalid token"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "CSRF check failed: " + reason})
}
