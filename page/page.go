// Package page is the activity signup client: it fetches the activity
// collection, keeps the rendered list, select and signup form, and submits
// signup and unregister requests, re-fetching after each success.
//
// A Page holds the state a browser page would hold (list markup, select
// options, form fields and the message area). It is safe for concurrent use.
package page

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nomis52/clubsignup/clients/activityclient"
	"github.com/nomis52/clubsignup/logging"
	"github.com/nomis52/clubsignup/render"
)

// LoadingHTML is the list markup before the first fetch completes.
const LoadingHTML = "<p>Loading activities...</p>"

// Component names used for per-component diagnostic loggers.
const (
	ComponentFetch      = "fetch"
	ComponentSignup     = "signup"
	ComponentUnregister = "unregister"
)

var (
	// ErrNotRendered is returned when a click targets a card that is not in
	// the current list.
	ErrNotRendered = errors.New("card not rendered")
	// ErrUnknownOption is returned when selecting a value the select does not offer.
	ErrUnknownOption = errors.New("no such option")
	// ErrIncompleteForm is returned by Submit when email or activity is empty.
	ErrIncompleteForm = errors.New("email and activity are required")
)

// Backend is the activity backend the page talks to.
type Backend interface {
	ListActivities(ctx context.Context) (activityclient.Activities, error)
	Signup(ctx context.Context, activity, email string) (*activityclient.SignupResult, error)
	Unregister(ctx context.Context, activity, email string) (*activityclient.UnregisterResult, error)
}

// Form holds the signup form fields.
type Form struct {
	Email    string
	Activity string
}

// Snapshot is a point-in-time copy of what the page shows.
type Snapshot struct {
	ListHTML string
	Cards    []render.Card
	Options  []render.Option
	Form     Form
	Message  Message
}

// Page is one instance of the signup client.
type Page struct {
	backend    Backend
	dialog     Dialog
	scheduler  Scheduler
	metrics    *Metrics
	renderOpts []render.RenderOption

	fetchLog      *slog.Logger
	signupLog     *slog.Logger
	unregisterLog *slog.Logger

	mu       sync.Mutex
	listHTML string
	cards    []render.Card
	// listeners holds one click listener per rendered card, keyed by name.
	listeners map[string]clickListener
	options   []render.Option
	form      Form
	message   Message
	hideTimer Timer
	// generation increments each time a message is shown; a hide scheduled
	// for an older generation does nothing.
	generation uint64
}

// Option configures a Page.
type Option func(*pageOptions)

type pageOptions struct {
	dialog     Dialog
	scheduler  Scheduler
	logger     *slog.Logger
	hook       logging.LoggerHook
	metrics    *Metrics
	renderOpts []render.RenderOption
}

// WithDialog sets the confirm/alert channel. Defaults to a dialog that
// declines every confirmation and drops alerts.
func WithDialog(d Dialog) Option {
	return func(o *pageOptions) { o.dialog = d }
}

// WithScheduler sets the scheduler for the message hide. Defaults to real time.
func WithScheduler(s Scheduler) Option {
	return func(o *pageOptions) { o.scheduler = s }
}

// WithLogger sets the diagnostic logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *pageOptions) { o.logger = l }
}

// WithLoggerHook derives one logger per component (fetch, signup, unregister)
// from the diagnostic logger.
func WithLoggerHook(h logging.LoggerHook) Option {
	return func(o *pageOptions) { o.hook = h }
}

// WithMetrics records request outcomes and activity gauges on m.
func WithMetrics(m *Metrics) Option {
	return func(o *pageOptions) { o.metrics = m }
}

// WithRenderOptions passes options to every render.
func WithRenderOptions(opts ...render.RenderOption) Option {
	return func(o *pageOptions) { o.renderOpts = append(o.renderOpts, opts...) }
}

// New creates a Page in its initial state: the list shows LoadingHTML, the
// select holds only the placeholder and the message area is hidden.
// Call FetchActivities to load the list.
func New(backend Backend, opts ...Option) (*Page, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}

	o := pageOptions{
		dialog:    declineDialog{},
		scheduler: realScheduler{},
		hook:      logging.TaggingLoggerHook{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	return &Page{
		backend:       backend,
		dialog:        o.dialog,
		scheduler:     o.scheduler,
		metrics:       o.metrics,
		renderOpts:    o.renderOpts,
		fetchLog:      o.hook.LoggerForComponent(o.logger, ComponentFetch),
		signupLog:     o.hook.LoggerForComponent(o.logger, ComponentSignup),
		unregisterLog: o.hook.LoggerForComponent(o.logger, ComponentUnregister),
		listHTML:      LoadingHTML,
		listeners:     map[string]clickListener{},
		options:       []render.Option{render.Placeholder},
		message:       Message{Hidden: true},
	}, nil
}

// Snapshot returns a copy of the current page state.
func (p *Page) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		ListHTML: p.listHTML,
		Cards:    append([]render.Card(nil), p.cards...),
		Options:  append([]render.Option(nil), p.options...),
		Form:     p.form,
		Message:  p.message,
	}
}

// SetEmail sets the form's email field.
func (p *Page) SetEmail(email string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form.Email = email
}

// SelectActivity sets the form's activity to one of the select's values.
func (p *Page) SelectActivity(value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, o := range p.options {
		if o.Value == value {
			p.form.Activity = value
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownOption, value)
}

// resetForm clears the form; the select goes back to the placeholder.
func (p *Page) resetForm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form = Form{}
}
