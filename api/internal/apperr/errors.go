package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	Internal Kind = iota
	Validation
	Fetch
	Decode
	Unsupported
	Model
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Fetch:
		return "fetch"
	case Decode:
		return "decode"
	case Unsupported:
		return "unsupported"
	case Model:
		return "model"
	default:
		return "internal"
	}
}

// Error carries the failure class alongside the message shown to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns Internal for errors that were never classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// IsInput reports whether err was caused by the caller's input or the content it points at.
func IsInput(err error) bool {
	switch KindOf(err) {
	case Validation, Fetch, Decode, Unsupported:
		return true
	}
	return false
}

func Status(err error) int {
	if IsInput(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
