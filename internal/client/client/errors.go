package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable           = errors.New("server unavailable")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrNotFound              = errors.New("not found")
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)

// APIError is a non-2xx response. Message is the backend's
// {"message": ...} text, if any. Err is the sentinel the status maps to,
// so errors.Is(err, ErrUnauthorized) works on an *APIError.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%v: %d %s", e.Err, e.Status, msg)
	}
	return fmt.Sprintf("api error: %d %s", e.Status, msg)
}

func (e *APIError) Unwrap() error { return e.Err }

func mapStatus(status int, message string) error {
	e := &APIError{Status: status, Message: message}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Err = ErrUnauthorized
	case http.StatusNotFound:
		e.Err = ErrNotFound
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		e.Err = ErrUnavailable
	}
	return e
}

// Message returns the backend message carried by err, if any.
func Message(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}
