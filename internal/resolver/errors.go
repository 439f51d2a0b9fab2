package resolver

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCandidateList means the generator produced nothing to try.
	// The generator always appends the no-fee forms, so this is fatal.
	ErrEmptyCandidateList = errors.New("resolver: empty candidate list")

	// ErrBusy is returned when an action is started while another one is in flight.
	ErrBusy = errors.New("resolver: another action is already in progress")

	// ErrInvalidTransition is returned by Tracker for an illegal state change.
	ErrInvalidTransition = errors.New("resolver: invalid state transition")

	// ErrUserRejected marks a submission the user declined to sign.
	ErrUserRejected = errors.New("user rejected the request")

	// ErrNilResolution is returned when Execute is called without a resolution.
	ErrNilResolution = errors.New("resolver: nil resolution")
)

// ValidationError reports malformed caller input. It is raised before any
// network call is attempted.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// RevertError is returned by a SimulationBackend when the dry-run executed
// and reverted. Reason is already normalized to a short string.
type RevertError struct {
	Reason string
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return "execution reverted"
	}
	return "execution reverted: " + e.Reason
}
