// Package activityclient provides a client for the activity signup backend.
//
// The backend exposes three endpoints:
//
//	GET    /activities
//	POST   /activities/{activity}/signup?email={email}
//	DELETE /activities/{activity}/participants?email={email}
//
// Example usage:
//
//	client := activityclient.New("http://localhost:8000")
//	activities, err := client.ListActivities(ctx)
package activityclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client talks to the activity signup backend over HTTP.
// Every call is a single attempt with no retry. The default HTTP client has
// no timeout; cancel ctx to abandon a request.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// New creates a Client for the backend at baseURL (scheme included).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListActivities fetches the full activity collection.
// A non-2xx status returns *APIError; an unreadable body wraps ErrDecode.
func (c *Client) ListActivities(ctx context.Context) (Activities, error) {
	resp, body, err := c.do(ctx, http.MethodGet, "/activities")
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(body, apiErr)
		return nil, apiErr
	}

	var activities Activities
	if err := json.Unmarshal(body, &activities); err != nil {
		return nil, fmt.Errorf("decoding activities: %w", errors.Join(ErrDecode, err))
	}
	return activities, nil
}

// Signup registers email for the named activity.
// A non-2xx status returns *APIError carrying the server's detail. Any body
// that cannot be decoded, on success or failure, wraps ErrDecode.
func (c *Client) Signup(ctx context.Context, activity, email string) (*SignupResult, error) {
	path := "/activities/" + EncodeComponent(activity) + "/signup?email=" + EncodeComponent(email)
	resp, body, err := c.do(ctx, http.MethodPost, path)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil {
			return nil, fmt.Errorf("decoding signup error (status %d): %w", resp.StatusCode, errors.Join(ErrDecode, err))
		}
		return nil, apiErr
	}

	var result SignupResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding signup result: %w", errors.Join(ErrDecode, err))
	}
	return &result, nil
}

// Unregister removes email from the named activity.
// Body decoding is best-effort: an unreadable body is treated as an empty
// object, so a non-2xx status always returns *APIError.
func (c *Client) Unregister(ctx context.Context, activity, email string) (*UnregisterResult, error) {
	path := "/activities/" + EncodeComponent(activity) + "/participants?email=" + EncodeComponent(email)
	resp, body, err := c.do(ctx, http.MethodDelete, path)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil {
			*apiErr = APIError{StatusCode: resp.StatusCode}
		}
		return nil, apiErr
	}

	var result UnregisterResult
	if err := json.Unmarshal(body, &result); err != nil {
		result = UnregisterResult{}
	}
	return &result, nil
}

// do sends a request and reads the whole response body.
func (c *Client) do(ctx context.Context, method, path string) (*http.Response, []byte, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, nil, fmt.Errorf("building URL for %s %s: %w", method, path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, u.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s %s response: %w", method, u.Path, err)
	}
	return resp, body, nil
}

// EncodeComponent percent-encodes s for use as a single path segment or
// query value. Spaces become %20 rather than '+'.
func EncodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
