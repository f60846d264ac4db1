package notifier

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBaseURL is returned when the item URL cannot be built from the configured base URL.
	ErrInvalidBaseURL = errors.New("invalid openHAB base URL")
	// ErrRequestFailed is returned when the trigger call fails before a response is received.
	ErrRequestFailed = errors.New("openHAB request failed")
	// ErrUnexpectedStatus is returned when openHAB answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected openHAB response status")
)

// StatusError carries the response of a trigger call that openHAB rejected.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %d", ErrUnexpectedStatus, e.StatusCode)
	}

	return fmt.Sprintf("%s: %d: %s", ErrUnexpectedStatus, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}
