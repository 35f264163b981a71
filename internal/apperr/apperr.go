package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrUpload          = errors.New("upload failed")
	ErrSignature       = errors.New("signature verification failed")
	ErrUnavailable     = errors.New("backing store unavailable")
	ErrMalformedRecord = errors.New("malformed record")
)

// Error carries the operation context needed to remediate a failure by hand.
type Error struct {
	Kind   error
	Op     string
	UserID string
	Day    int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Msg != "" {
		b.WriteString(e.Msg)
	} else if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(op string, format string, args ...any) *Error {
	return &Error{Kind: ErrNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Unavailable(op string, err error) *Error {
	return &Error{Kind: ErrUnavailable, Op: op, Err: err}
}

func Upload(op string, err error) *Error {
	return &Error{Kind: ErrUpload, Op: op, Err: err}
}

func Signature(err error) *Error {
	return &Error{Kind: ErrSignature, Op: "stripe webhook", Err: err}
}

func Malformed(op string, format string, args ...any) *Error {
	return &Error{Kind: ErrMalformedRecord, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// WithUser annotates err with the user and day it concerns. Non-*Error values are wrapped.
func WithUser(err error, userID string, day int) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		cp := *e
		cp.UserID = userID
		cp.Day = day
		return &cp
	}
	return &Error{UserID: userID, Day: day, Err: err}
}

// Code is a short machine-readable error kind for API responses.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrSignature):
		return "signature"
	case errors.Is(err, ErrUpload):
		return "upload_failed"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "internal"
	}
}

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrSignature):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUpload):
		return http.StatusBadGateway
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing text for err. Internal failures are not exposed.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		switch {
		case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound):
			if e.Msg != "" {
				return e.Msg
			}
			return e.Kind.Error()
		case e.Kind != nil:
			return e.Kind.Error()
		}
	}
	return "internal server error"
}
