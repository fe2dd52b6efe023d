package insights

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is matched by every validation failure raised before a
	// batch is sent.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrResponseMismatch is matched when a batch response cannot be mapped
	// back onto the submitted queries.
	ErrResponseMismatch = errors.New("batch response mismatch")
)

// ArgumentError names the offending argument.
type ArgumentError struct {
	Arg    string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidArgument, e.Arg, e.Reason)
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// MismatchError reports a response that does not line up with its batch.
type MismatchError struct {
	Requested int
	Received  int
	Err       error
}

func (e *MismatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %d queries submitted: %v", ErrResponseMismatch, e.Requested, e.Err)
	}
	return fmt.Sprintf("%s: %d queries submitted, %d results received", ErrResponseMismatch, e.Requested, e.Received)
}

func (e *MismatchError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrResponseMismatch, e.Err}
	}
	return []error{ErrResponseMismatch}
}
