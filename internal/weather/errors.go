package weather

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAPIKey = errors.New("missing API key")
	ErrEmptyCity     = errors.New("empty city name")
)

// TransportError is returned for any failed provider call: network errors,
// non-2xx statuses and bodies that cannot be decoded.
type TransportError struct {
	Op         string // "weather", "onecall", "reverse"
	StatusCode int    // zero when no response was received
	Message    string // provider message, if any
	Err        error
}

func (e *TransportError) Error() string {
	msg := e.Op
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err came from a failed provider call.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
