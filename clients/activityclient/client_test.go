package activityclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomis52/clubsignup/clients/activityclient"
	"github.com/nomis52/clubsignup/clients/activityclient/activitytest"
)

func TestClient_ListActivities_PreservesServerOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/activities", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"Zumba": {"description": "z", "schedule": "Mon", "max_participants": 5, "participants": []},
			"Archery": {"description": "a", "schedule": "Tue", "max_participants": 3, "participants": ["x@y.com", "x@y.com"]},
			"Math Club": {"description": "m", "schedule": "Wed", "max_participants": 10, "participants": null}
		}`))
	}))
	defer server.Close()

	client := activityclient.New(server.URL + "/")
	activities, err := client.ListActivities(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Zumba", "Archery", "Math Club"}, activities.Names())
	archery, ok := activities.Get("Archery")
	require.True(t, ok)
	assert.Equal(t, []string{"x@y.com", "x@y.com"}, archery.Participants)
	assert.Equal(t, 1, archery.SpotsLeft())

	math, ok := activities.Get("Math Club")
	require.True(t, ok)
	assert.Empty(t, math.Participants)
	assert.Equal(t, 10, math.SpotsLeft())
}

func TestClient_ListActivities_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantAPIErr bool
		wantDecode bool
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"detail":"boom"}`, wantAPIErr: true},
		{name: "not json", status: http.StatusOK, body: `<html>`, wantDecode: true},
		{name: "json array", status: http.StatusOK, body: `[]`, wantDecode: true},
		{name: "null", status: http.StatusOK, body: `null`, wantDecode: true},
		{name: "null activity", status: http.StatusOK, body: `{"Chess Club": null}`, wantDecode: true},
		{name: "string activity", status: http.StatusOK, body: `{"Chess Club": "full"}`, wantDecode: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := activityclient.New(server.URL).ListActivities(context.Background())
			require.Error(t, err)

			var apiErr *activityclient.APIError
			assert.Equal(t, tt.wantAPIErr, errors.As(err, &apiErr))
			assert.Equal(t, tt.wantDecode, errors.Is(err, activityclient.ErrDecode))
		})
	}
}

func TestClient_ListActivities_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := activityclient.New(url).ListActivities(context.Background())
	require.Error(t, err)

	var apiErr *activityclient.APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.False(t, errors.Is(err, activityclient.ErrDecode))
}

func TestClient_Signup_EncodesTarget(t *testing.T) {
	backend := activitytest.NewServer(activityclient.Activities{
		{Name: "Rock & Roll / Jazz", MaxParticipants: 5},
	})
	defer backend.Close()

	client := activityclient.New(backend.URL)
	result, err := client.Signup(context.Background(), "Rock & Roll / Jazz", "a+b c@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Signed up a+b c@x.com for Rock & Roll / Jazz", result.Message)

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/activities/Rock%20%26%20Roll%20%2F%20Jazz/signup", reqs[0].Path)
	assert.Equal(t, "Rock & Roll / Jazz", reqs[0].Activity)
	assert.Equal(t, "a+b c@x.com", reqs[0].Email)

	a, ok := backend.Activities().Get("Rock & Roll / Jazz")
	require.True(t, ok)
	assert.Equal(t, []string{"a+b c@x.com"}, a.Participants)
}

func TestClient_Signup_Rejected(t *testing.T) {
	backend := activitytest.NewServer(activitytest.DefaultActivities())
	defer backend.Close()

	client := activityclient.New(backend.URL)
	_, err := client.Signup(context.Background(), "Chess Club", "michael@mergington.edu")

	var apiErr *activityclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Student is already signed up", apiErr.Detail)

	_, err = client.Signup(context.Background(), "Nonexistent Club", "a@b.com")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestClient_Signup_UndecodableBody(t *testing.T) {
	backend := activitytest.NewServer(activitytest.DefaultActivities())
	defer backend.Close()
	client := activityclient.New(backend.URL)

	backend.RespondNext(http.StatusOK, "not json")
	_, err := client.Signup(context.Background(), "Chess Club", "a@b.com")
	assert.ErrorIs(t, err, activityclient.ErrDecode)

	backend.RespondNext(http.StatusBadRequest, "not json")
	_, err = client.Signup(context.Background(), "Chess Club", "a@b.com")
	assert.ErrorIs(t, err, activityclient.ErrDecode)
}

func TestClient_Signup_NonStringDetail(t *testing.T) {
	backend := activitytest.NewServer(nil)
	defer backend.Close()

	backend.RespondNext(http.StatusUnprocessableEntity, `{"detail": [{"loc": ["query", "email"], "msg": "field required"}]}`)
	_, err := activityclient.New(backend.URL).Signup(context.Background(), "Chess Club", "")

	var apiErr *activityclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, `[{"loc":["query","email"],"msg":"field required"}]`, apiErr.Detail)
}

func TestClient_Unregister(t *testing.T) {
	backend := activitytest.NewServer(activitytest.DefaultActivities())
	defer backend.Close()
	client := activityclient.New(backend.URL)

	result, err := client.Unregister(context.Background(), "Soccer Team", "liam@mergington.edu")
	require.NoError(t, err)
	assert.Equal(t, "Unregistered liam@mergington.edu from Soccer Team", result.Message)

	soccer, _ := backend.Activities().Get("Soccer Team")
	assert.Equal(t, []string{"noah@mergington.edu"}, soccer.Participants)

	_, err = client.Unregister(context.Background(), "Soccer Team", "missing@x.com")
	var apiErr *activityclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Participant not found", apiErr.Detail)
}

func TestClient_Unregister_BestEffortBodies(t *testing.T) {
	backend := activitytest.NewServer(nil)
	defer backend.Close()
	client := activityclient.New(backend.URL)

	backend.RespondNext(http.StatusOK, "")
	result, err := client.Unregister(context.Background(), "X", "a@b.com")
	require.NoError(t, err)
	assert.Empty(t, result.Message)

	backend.RespondNext(http.StatusInternalServerError, "<html>oops</html>")
	_, err = client.Unregister(context.Background(), "X", "a@b.com")
	var apiErr *activityclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Empty(t, apiErr.Detail)
	assert.Empty(t, apiErr.Message)

	backend.RespondNext(http.StatusConflict, `{"message": "locked"}`)
	_, err = client.Unregister(context.Background(), "X", "a@b.com")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "locked", apiErr.Message)
}

func TestEncodeComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Chess Club", "Chess%20Club"},
		{"a+b@x.com", "a%2Bb%40x.com"},
		{"a/b?c=d&e", "a%2Fb%3Fc%3Dd%26e"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, activityclient.EncodeComponent(tt.in), tt.in)
	}
}

func TestActivities_MarshalRoundTripKeepsOrder(t *testing.T) {
	in := activityclient.Activities{
		{Name: "B", Description: "<b>", MaxParticipants: 1},
		{Name: "A", Participants: []string{"x@y.com"}, MaxParticipants: 2},
	}
	data, err := in.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"B":{"description":"<b>","schedule":"","max_participants":1,"participants":[]},"A":{"description":"","schedule":"","max_participants":2,"participants":["x@y.com"]}}`, string(data))

	var out activityclient.Activities
	require.NoError(t, out.UnmarshalJSON(data))
	assert.Equal(t, []string{"B", "A"}, out.Names())
}
