// Package activitytest provides an in-memory activity signup backend for tests.
//
// The server follows the backend contract the client consumes: activities are
// listed as a JSON object keyed by name, sign-up answers {"message"} or
// {"detail"}, and unregister answers {"message"} or {"detail"}.
//
//	srv := activitytest.NewServer(activitytest.DefaultActivities())
//	defer srv.Close()
//	client := activityclient.New(srv.URL)
package activitytest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/nomis52/clubsignup/clients/activityclient"
)

// Request records a request the server received.
type Request struct {
	Method string
	// Path is the escaped request path as sent by the client.
	Path string
	// Activity is the decoded {activity} path parameter, if any.
	Activity string
	// Email is the decoded email query parameter, if any.
	Email string
}

// cannedResponse replaces the normal handling of one request.
type cannedResponse struct {
	status int
	body   string
}

// Server is an httptest.Server backed by an in-memory activity collection.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	activities activityclient.Activities
	requests   []Request
	canned     []cannedResponse
}

// NewServer starts a server seeded with a copy of activities.
func NewServer(activities activityclient.Activities) *Server {
	s := &Server{
		activities: activities.Clone(),
	}
	if s.activities == nil {
		s.activities = activityclient.Activities{}
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Get("/activities", s.handleList)
	r.Post("/activities/{activity}/signup", s.handleSignup)
	r.Delete("/activities/{activity}/participants", s.handleUnregister)

	s.Server = httptest.NewServer(r)
	return s
}

// DefaultActivities returns a small seeded collection.
func DefaultActivities() activityclient.Activities {
	return activityclient.Activities{
		{
			Name:            "Chess Club",
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		{
			Name:            "Programming Class",
			Description:     "Learn programming fundamentals and build software projects",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
		},
		{
			Name:            "Soccer Team",
			Description:     "Join the school soccer team and compete in matches",
			Schedule:        "Tuesdays and Thursdays, 4:00 PM - 5:30 PM",
			MaxParticipants: 22,
			Participants:    []string{"liam@mergington.edu", "noah@mergington.edu"},
		},
		{
			Name:            "Art Club",
			Description:     "Explore your creativity through painting and drawing",
			Schedule:        "Thursdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 15,
			Participants:    []string{},
		},
	}
}

// Activities returns a copy of the current collection.
func (s *Server) Activities() activityclient.Activities {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activities.Clone()
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// CountRequests returns how many requests used method.
func (s *Server) CountRequests(method string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

// RespondNext makes the next request get status and body verbatim instead of
// the normal handling. Calls queue up in order.
func (s *Server) RespondNext(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canned = append(s.canned, cannedResponse{status: status, body: body})
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		var canned *cannedResponse
		if len(s.canned) > 0 {
			c := s.canned[0]
			s.canned = s.canned[1:]
			canned = &c
		}
		s.mu.Unlock()

		if canned != nil {
			s.append(Request{Method: r.Method, Path: r.URL.EscapedPath(), Email: r.URL.Query().Get("email")})
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(canned.status)
			_, _ = w.Write([]byte(canned.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) append(req Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.append(Request{Method: r.Method, Path: r.URL.EscapedPath()})

	writeJSON(w, http.StatusOK, s.Activities())
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	name := activityParam(r)
	email := r.URL.Query().Get("email")
	s.append(Request{Method: r.Method, Path: r.URL.EscapedPath(), Activity: name, Email: email})

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(name)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, detail("Activity not found"))
		return
	}
	a := &s.activities[i]
	if a.HasParticipant(email) {
		writeJSON(w, http.StatusBadRequest, detail("Student is already signed up"))
		return
	}
	if a.SpotsLeft() <= 0 {
		writeJSON(w, http.StatusBadRequest, detail("Activity is full"))
		return
	}
	a.Participants = append(a.Participants, email)
	writeJSON(w, http.StatusOK, message(fmt.Sprintf("Signed up %s for %s", email, name)))
}

func (s *Server) handleUnregister(w http.ResponseWriter, r *http.Request) {
	name := activityParam(r)
	email := r.URL.Query().Get("email")
	s.append(Request{Method: r.Method, Path: r.URL.EscapedPath(), Activity: name, Email: email})

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(name)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, detail("Activity not found"))
		return
	}
	a := &s.activities[i]
	for j, p := range a.Participants {
		if p == email {
			a.Participants = append(a.Participants[:j], a.Participants[j+1:]...)
			writeJSON(w, http.StatusOK, message(fmt.Sprintf("Unregistered %s from %s", email, name)))
			return
		}
	}
	writeJSON(w, http.StatusNotFound, detail("Participant not found"))
}

// indexOf must be called with s.mu held.
func (s *Server) indexOf(name string) int {
	for i, a := range s.activities {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// activityParam decodes the {activity} parameter. chi matches on the raw path
// when the request carries escaped characters, so the value may still be encoded.
func activityParam(r *http.Request) string {
	raw := chi.URLParam(r, "activity")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

func detail(text string) map[string]string {
	return map[string]string{"detail": text}
}

func message(text string) map[string]string {
	return map[string]string{"message": text}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
