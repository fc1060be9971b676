package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomis52/clubsignup/clients/activityclient"
	"github.com/nomis52/clubsignup/page"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func testFactory(t *testing.T) Factory {
	t.Helper()
	return func(d page.Dialog) (*page.Page, error) {
		return page.New(activityclient.New("http://backend.invalid"), page.WithDialog(d))
	}
}

// serve runs one request through the middleware and returns the session it saw.
func serve(t *testing.T, store *Store, cookie *http.Cookie) (*Session, *httptest.ResponseRecorder) {
	t.Helper()
	var seen *Session
	h := store.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := FromContext(r.Context())
		require.True(t, ok)
		seen = sess
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	return nil
}

func TestStore_NewSessionSetsCookie(t *testing.T) {
	store := NewStore(testFactory(t), WithSecureCookie(true))

	sess, rec := serve(t, store, nil)
	require.NotNil(t, sess)
	assert.NotNil(t, sess.Page)
	assert.NotNil(t, sess.Dialog)

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Equal(t, sess.ID, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	_, err := uuid.Parse(cookie.Value)
	assert.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestStore_ReusesSession(t *testing.T) {
	store := NewStore(testFactory(t))

	first, rec := serve(t, store, nil)
	second, rec2 := serve(t, store, sessionCookie(rec))

	assert.Same(t, first, second)
	assert.Nil(t, sessionCookie(rec2), "cookie is only set once")
	assert.Equal(t, 1, store.Len())
}

func TestStore_UnknownOrMalformedCookieStartsNewSession(t *testing.T) {
	store := NewStore(testFactory(t))

	for _, value := range []string{"not-a-uuid", uuid.NewString()} {
		sess, rec := serve(t, store, &http.Cookie{Name: CookieName, Value: value})
		require.NotNil(t, sess)
		assert.NotEqual(t, value, sess.ID)
		assert.NotNil(t, sessionCookie(rec))
	}
	assert.Equal(t, 2, store.Len())
}

func TestStore_IdleSessionsExpire(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	store := NewStore(testFactory(t), WithIdleTimeout(time.Minute), WithClock(clock.Now))

	first, rec := serve(t, store, nil)
	cookie := sessionCookie(rec)

	clock.now = clock.now.Add(30 * time.Second)
	again, _ := serve(t, store, cookie)
	assert.Same(t, first, again)

	clock.now = clock.now.Add(2 * time.Minute)
	renewed, rec := serve(t, store, cookie)
	assert.NotSame(t, first, renewed)
	assert.NotNil(t, sessionCookie(rec))
	assert.Equal(t, 1, store.Len(), "expired session is swept")

	clock.now = clock.now.Add(2 * time.Minute)
	assert.Equal(t, 1, store.Sweep())
	assert.Zero(t, store.Len())
}

func TestStore_FactoryError(t *testing.T) {
	store := NewStore(func(page.Dialog) (*page.Page, error) {
		return nil, errors.New("boom")
	})

	h := store.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Zero(t, store.Len())
}

func TestStore_Close(t *testing.T) {
	store := NewStore(testFactory(t))
	serve(t, store, nil)
	serve(t, store, nil)
	require.Equal(t, 2, store.Len())

	store.Close()
	assert.Zero(t, store.Len())
}

func TestFromContext_Missing(t *testing.T) {
	_, ok := FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}

func TestWebDialog(t *testing.T) {
	d := &WebDialog{}

	assert.False(t, d.Confirm("Unregister a from b?"))
	assert.Equal(t, "Unregister a from b?", d.LastPrompt())

	d.Approve()
	assert.True(t, d.Confirm("Unregister a from b?"))
	assert.False(t, d.Confirm("Unregister a from b?"), "approval is one-shot")

	d.Approve()
	d.Reset()
	assert.False(t, d.Confirm("again"))

	d.Alert("Not found")
	d.Alert("Error unregistering participant")
	assert.Equal(t, []string{"Not found", "Error unregistering participant"}, d.DrainAlerts())
	assert.Empty(t, d.DrainAlerts())
}

func TestSession_TakeCurrentClearsMark(t *testing.T) {
	sess := &Session{ID: "s"}
	assert.False(t, sess.TakeCurrent())

	sess.MarkCurrent()
	assert.True(t, sess.TakeCurrent())
	assert.False(t, sess.TakeCurrent())
}
