package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nomis52/clubsignup/page"
)

// SignupHandler submits the signup form of the caller's page and sends the
// browser back to the page, where the message area shows the outcome.
type SignupHandler struct {
	logger *slog.Logger
}

// NewSignupHandler creates a new SignupHandler.
func NewSignupHandler(logger *slog.Logger) *SignupHandler {
	return &SignupHandler{logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid form: " + err.Error()})
		return
	}
	email := r.PostForm.Get("email")
	activity := r.PostForm.Get("activity")

	sess.Page.SetEmail(email)
	if err := sess.Page.SelectActivity(activity); errors.Is(err, page.ErrUnknownOption) {
		// The session may be new or stale; load the options and try again.
		_ = sess.Page.FetchActivities(r.Context())
		if err := sess.Page.SelectActivity(activity); err != nil {
			sess.Dialog.Alert(fmt.Sprintf("Unknown activity: %s", activity))
			sess.MarkCurrent()
			redirectHome(w, r)
			return
		}
	}

	if err := sess.Page.Submit(r.Context()); errors.Is(err, page.ErrIncompleteForm) {
		sess.Dialog.Alert("Please enter an email and select an activity.")
	} else if err != nil {
		h.logger.Debug("signup did not succeed", "activity", activity, "error", err)
	}
	sess.MarkCurrent()
	redirectHome(w, r)
}
