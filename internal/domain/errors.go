package domain

import "fmt"

// NotFoundError represents a missing record or identity.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing records.
var ErrNotFound = NotFoundError{}

// AlreadyVotedError is returned when an identity attempts a second vote
// on the same record. It is a terminal outcome, not a transient failure,
// and must not be retried.
type AlreadyVotedError struct {
	Key string
	UID string
}

func (e AlreadyVotedError) Error() string {
	if e.Key == "" {
		return "already voted"
	}
	return fmt.Sprintf("%s already voted on %s", e.UID, e.Key)
}

func (e AlreadyVotedError) Is(target error) bool {
	_, ok := target.(AlreadyVotedError)
	if ok {
		return true
	}
	_, ok = target.(*AlreadyVotedError)
	return ok
}

// ErrAlreadyVoted is the sentinel error for duplicate vote attempts.
var ErrAlreadyVoted = AlreadyVotedError{}

// TransportError wraps a network or store failure. Read paths with
// fallback tiers swallow it; write paths surface it to the caller.
type TransportError struct {
	Op  string
	Err error
}

func (e TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("store unavailable during %s", e.Op)
	}
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e TransportError) Unwrap() error { return e.Err }

func (e TransportError) Is(target error) bool {
	_, ok := target.(TransportError)
	if ok {
		return true
	}
	_, ok = target.(*TransportError)
	return ok
}

// ErrTransport is the sentinel error for store/network failures.
var ErrTransport = TransportError{}

// ValidationError reports a malformed or incomplete request before any
// write is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "invalid request"
	}
	if e.Reason == "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// ErrValidation is the sentinel error for rejected input.
var ErrValidation = ValidationError{}

// PermissionError is returned when an identity attempts an owner-only
// mutation on a record it does not own.
type PermissionError struct {
	UID string
}

func (e PermissionError) Error() string {
	if e.UID == "" {
		return "permission denied"
	}
	return fmt.Sprintf("permission denied for %s", e.UID)
}

func (e PermissionError) Is(target error) bool {
	_, ok := target.(PermissionError)
	if ok {
		return true
	}
	_, ok = target.(*PermissionError)
	return ok
}

// ErrPermission is the sentinel error for ownership violations.
var ErrPermission = PermissionError{}
