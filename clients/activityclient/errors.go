package activityclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDecode is returned when a response body cannot be decoded.
var ErrDecode = errors.New("undecodable response body")

// APIError is returned when the backend answers with a non-2xx status.
// Detail and Message carry the server's error payload when it sent one;
// both are empty when the payload was missing or unreadable.
type APIError struct {
	StatusCode int    `json:"-"`
	Detail     string `json:"-"`
	Message    string `json:"-"`
}

func (e *APIError) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Detail)
	case e.Message != "":
		return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
}

// UnmarshalJSON reads the detail and message fields. A field that is not a
// JSON string (validation errors arrive as arrays) is kept as compact JSON text.
func (e *APIError) UnmarshalJSON(data []byte) error {
	var raw struct {
		Detail  json.RawMessage `json:"detail"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Detail = textField(raw.Detail)
	e.Message = textField(raw.Message)
	return nil
}

func textField(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
