// Package models defines the client-side records exchanged with the leads backend.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// LeadID is a backend identifier. The backend may encode ids as JSON strings
// or numbers; both decode into the same textual form.
type LeadID string

func (id *LeadID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = LeadID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = LeadID(n.String())
	return nil
}

// MarshalJSON emits numeric ids as numbers and everything else as strings.
func (id LeadID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id LeadID) String() string { return string(id) }

// User is the identity returned by the auth endpoints.
type User struct {
	ID    LeadID `json:"id"`
	Email string `json:"email"`
}

// Account is the payload returned by registration.
type Account struct {
	ID      LeadID `json:"id,omitempty"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message,omitempty"`
}

// Credentials is the body of login and registration requests.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
