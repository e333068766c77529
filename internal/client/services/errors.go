package services

import (
	"errors"

	"github.com/dmitrijs2005/leadgrid/internal/client/client"
)

var (
	ErrAuthentication = errors.New("login failed")
	ErrRegistration   = errors.New("registration failed")
)

// fallbackMessage is shown when the backend gave no reason for a failure.
const fallbackMessage = "An error occurred."

// opError reports only its kind to the user while keeping the transport
// cause reachable through errors.Is and errors.As.
type opError struct {
	kind  error
	cause error
}

func (e *opError) Error() string { return e.kind.Error() }

func (e *opError) Unwrap() []error { return []error{e.kind, e.cause} }

// DisplayMessage returns the backend's message carried by err, or a
// generic text when there is none.
func DisplayMessage(err error) string {
	if msg, ok := client.Message(err); ok {
		return msg
	}
	return fallbackMessage
}
