package repository

import (
	"errors"
)

// Domain-level errors every guarded handle surfaces. Callers branch on these two only.
var (
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrPersistenceFailure = errors.New("persistence failure")
)

// Kind is the normalized classification of a persistence failure.
type Kind uint8

const (
	KindPersistenceFailure Kind = iota
	KindDuplicateEntry
)

func (k Kind) String() string {
	switch k {
	case KindDuplicateEntry:
		return "duplicate_entry"
	default:
		return "persistence_failure"
	}
}

func (k Kind) sentinel() error {
	if k == KindDuplicateEntry {
		return ErrDuplicateEntry
	}
	return ErrPersistenceFailure
}

// Error is the single normalized error that crosses the adapter boundary.
// Cause keeps the original backend failure so errors.As can still reach driver types.
type Error struct {
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	msg := message(e.Cause)
	if msg == "" {
		return e.Kind.sentinel().Error()
	}
	return e.Kind.sentinel().Error() + ": " + msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is makes errors.Is(err, ErrDuplicateEntry) and friends work without exposing Kind.
func (e *Error) Is(target error) bool { return target == e.Kind.sentinel() }

// IsDuplicate reports whether err was normalized as a duplicate entry.
func IsDuplicate(err error) bool { return errors.Is(err, ErrDuplicateEntry) }

// KindOf returns the normalized kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var ne *Error
	if errors.As(err, &ne) {
		return ne.Kind, true
	}
	return KindPersistenceFailure, false
}

func newError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}
