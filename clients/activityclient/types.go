package activityclient

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Activity is a single signup activity as reported by the backend.
// Name is the key the activity is listed under and is not part of the
// JSON value itself.
type Activity struct {
	Name            string   `json:"-"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// SpotsLeft returns max_participants minus the participant count.
// The result is not clamped and is negative for an over-subscribed activity.
func (a Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// HasParticipant reports whether email is on the roster (exact match).
func (a Activity) HasParticipant(email string) bool {
	for _, p := range a.Participants {
		if p == email {
			return true
		}
	}
	return false
}

// Activities is the activity collection in the order the backend listed it.
// It decodes from and encodes to a JSON object keyed by activity name.
type Activities []Activity

// Get returns the activity with the given name.
func (as Activities) Get(name string) (Activity, bool) {
	for _, a := range as {
		if a.Name == name {
			return a, true
		}
	}
	return Activity{}, false
}

// Names returns the activity names in order.
func (as Activities) Names() []string {
	names := make([]string, len(as))
	for i, a := range as {
		names[i] = a.Name
	}
	return names
}

// Clone returns a deep copy.
func (as Activities) Clone() Activities {
	if as == nil {
		return nil
	}
	out := make(Activities, len(as))
	for i, a := range as {
		a.Participants = append([]string(nil), a.Participants...)
		out[i] = a
	}
	return out
}

// UnmarshalJSON decodes a JSON object keeping its key order. A repeated key
// keeps the position of its first occurrence and the value of its last.
func (as *Activities) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("activities: expected JSON object, got %v", tok)
	}

	result := Activities{}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("activities: unexpected key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("activity %q: %w", name, err)
		}
		if len(raw) == 0 || raw[0] != '{' {
			return fmt.Errorf("activity %q: expected JSON object, got %s", name, raw)
		}
		var a Activity
		if err := json.Unmarshal(raw, &a); err != nil {
			return fmt.Errorf("activity %q: %w", name, err)
		}
		a.Name = name

		if i, seen := index[name]; seen {
			result[i] = a
			continue
		}
		index[name] = len(result)
		result = append(result, a)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*as = result
	return nil
}

// MarshalJSON encodes the collection as a JSON object in slice order.
func (as Activities) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range as {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.Name)
		if err != nil {
			return nil, err
		}
		participants := a.Participants
		if participants == nil {
			participants = []string{}
		}
		a.Participants = participants
		value, err := json.Marshal(a)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SignupResult is the success body of a sign-up request.
type SignupResult struct {
	Message string `json:"message"`
}

// UnregisterResult is the success body of an unregister request.
// The backend may return an empty object.
type UnregisterResult struct {
	Message string `json:"message"`
}
