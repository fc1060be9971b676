package handlers

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/nomis52/clubsignup/clients/activityclient"
	"github.com/nomis52/clubsignup/page"
	"github.com/nomis52/clubsignup/server/session"
)

// confirmData feeds the confirm template.
type confirmData struct {
	Prompt    string
	Action    string
	CSRFField template.HTML
}

// UnregisterHandler handles a click on a participant's delete button.
// Without confirm=yes it renders the page's confirmation prompt; with it the
// click is confirmed and the participant is unregistered. Failures are
// alerted on the next page render.
type UnregisterHandler struct {
	logger *slog.Logger
}

// NewUnregisterHandler creates a new UnregisterHandler.
func NewUnregisterHandler(logger *slog.Logger) *UnregisterHandler {
	return &UnregisterHandler{logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *UnregisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	activity, email := query.Get("activity"), query.Get("email")
	if activity == "" || email == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "activity and email are required"})
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid form: " + err.Error()})
		return
	}
	confirmed := r.PostForm.Get("confirm") == "yes"

	if confirmed {
		sess.Dialog.Approve()
	} else {
		sess.Dialog.Reset()
	}
	err := h.click(r.Context(), sess, activity, email)
	prompt := sess.Dialog.LastPrompt()
	sess.Dialog.Reset()

	switch {
	case errors.Is(err, page.ErrNotRendered):
		sess.Dialog.Alert(fmt.Sprintf("%s is not listed under %s", email, activity))
	case err != nil:
		h.logger.Debug("unregister did not succeed", "activity", activity, "error", err)
	case !confirmed && prompt != "":
		h.renderConfirm(w, r, prompt, activity, email)
		sess.MarkCurrent()
		return
	}
	sess.MarkCurrent()
	redirectHome(w, r)
}

// click delivers the delete click, loading the list first when the session
// has not rendered the card yet.
func (h *UnregisterHandler) click(ctx context.Context, sess *session.Session, activity, email string) error {
	err := sess.Page.ClickDelete(ctx, activity, email)
	if !errors.Is(err, page.ErrNotRendered) {
		return err
	}
	if ferr := sess.Page.FetchActivities(ctx); ferr != nil {
		return err
	}
	return sess.Page.ClickDelete(ctx, activity, email)
}

func (h *UnregisterHandler) renderConfirm(w http.ResponseWriter, r *http.Request, prompt, activity, email string) {
	data := confirmData{
		Prompt: prompt,
		Action: "/unregister?activity=" + activityclient.EncodeComponent(activity) +
			"&email=" + activityclient.EncodeComponent(email),
		CSRFField: csrf.TemplateField(r),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "confirm", data); err != nil {
		h.logger.Error("failed to render confirmation", "error", err)
	}
}
