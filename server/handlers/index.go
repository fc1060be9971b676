package handlers

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/nomis52/clubsignup/page"
	"github.com/nomis52/clubsignup/render"
)

// indexData feeds the index template.
type indexData struct {
	ListHTML  template.HTML
	Options   []render.Option
	Form      page.Form
	Message   page.Message
	Alerts    []string
	CSRFField template.HTML
}

// IndexHandler loads the activities into the caller's page and renders it,
// like a browser loading the page. A render that follows a form post shows
// the page as the post left it.
type IndexHandler struct {
	logger *slog.Logger
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(logger *slog.Logger) *IndexHandler {
	return &IndexHandler{logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	// After a signup or unregister the page already shows what the browser
	// would: a success re-fetched the list and a failure left it alone.
	snap := sess.Page.Snapshot()
	if !sess.TakeCurrent() || snap.ListHTML == page.LoadingHTML {
		// A failed fetch is rendered as part of the list.
		_ = sess.Page.FetchActivities(r.Context())
		snap = sess.Page.Snapshot()
	}

	data := indexData{
		// The list is built by render, which escapes every interpolated value.
		ListHTML:  template.HTML(snap.ListHTML),
		Options:   snap.Options,
		Form:      snap.Form,
		Message:   snap.Message,
		Alerts:    sess.Dialog.DrainAlerts(),
		CSRFField: csrf.TemplateField(r),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "index", data); err != nil {
		h.logger.Error("failed to render index", "error", err)
	}
}
