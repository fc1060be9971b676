// Package session keeps one signup page per browser, keyed by a cookie.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nomis52/clubsignup/page"
)

const (
	// CookieName is the session cookie's name.
	CookieName = "clubsignup_session"

	defaultIdleTimeout = 30 * time.Minute
)

// Session is one browser's page state.
type Session struct {
	ID     string
	Page   *page.Page
	Dialog *WebDialog

	lastSeen time.Time
	current  atomic.Bool
}

// MarkCurrent records that the page already reflects the caller's last
// action, so the next render can show it without loading the list again.
func (s *Session) MarkCurrent() {
	s.current.Store(true)
}

// TakeCurrent reports whether MarkCurrent was called since the last
// TakeCurrent, and clears the mark.
func (s *Session) TakeCurrent() bool {
	return s.current.CompareAndSwap(true, false)
}

// Factory builds the page for a new session around its dialog.
type Factory func(dialog page.Dialog) (*page.Page, error)

type contextKey struct{}

// NewContext returns a copy of ctx carrying sess.
func NewContext(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session stored by the Store middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(*Session)
	return sess, ok
}

// Store keeps sessions in memory (no persistence). Sessions unused for longer
// than the idle timeout are dropped.
type Store struct {
	factory Factory
	logger  *slog.Logger
	idle    time.Duration
	secure  bool
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// Option configures a Store.
type Option func(*Store)

// WithIdleTimeout sets how long an unused session is kept.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.idle = d
		}
	}
}

// WithSecureCookie sets the Secure flag on the session cookie.
func WithSecureCookie(secure bool) Option {
	return func(s *Store) { s.secure = secure }
}

// WithLogger sets the store's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store that builds pages with factory.
func NewStore(factory Factory, opts ...Option) *Store {
	s := &Store{
		factory:  factory,
		logger:   slog.Default(),
		idle:     defaultIdleTimeout,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Middleware attaches the caller's session to the request context, starting
// a new one (and setting the cookie) when the cookie is missing, malformed or
// refers to an expired session.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(CookieName); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}

		sess, created, err := s.get(id)
		if err != nil {
			s.logger.Error("failed to create session", "error", err)
			http.Error(w, "failed to create session", http.StatusInternalServerError)
			return
		}
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    sess.ID,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), sess)))
	})
}

// get returns the live session for id or creates a new one.
func (s *Store) get(id string) (*Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if sess, ok := s.sessions[id]; ok && now.Sub(sess.lastSeen) <= s.idle {
		sess.lastSeen = now
		return sess, false, nil
	}
	s.sweepLocked(now)

	dialog := &WebDialog{}
	p, err := s.factory(dialog)
	if err != nil {
		return nil, false, fmt.Errorf("creating page: %w", err)
	}
	sess := &Session{
		ID:       uuid.NewString(),
		Page:     p,
		Dialog:   dialog,
		lastSeen: now,
	}
	s.sessions[sess.ID] = sess
	s.logger.Debug("session started", "session", sess.ID, "sessions", len(s.sessions))
	return sess, true, nil
}

// Sweep drops idle sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

func (s *Store) sweepLocked(now time.Time) int {
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.idle {
			sess.Page.Close()
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Debug("sessions expired", "removed", removed, "sessions", len(s.sessions))
	}
	return removed
}

// Len returns the number of sessions held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close stops every session's pending work and empties the store.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.Page.Close()
		delete(s.sessions, id)
	}
}
