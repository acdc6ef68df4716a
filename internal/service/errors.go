package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure. Handlers map kinds to HTTP statuses.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthenticated
	KindForbidden
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	}
	return "internal"
}

// Error is returned by every service operation that fails. Message is safe
// to show to clients; Err carries the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func badRequest(msg string) error { return &Error{Kind: KindBadRequest, Message: msg} }
func forbidden(msg string) error  { return &Error{Kind: KindForbidden, Message: msg} }
func notFound(msg string) error   { return &Error{Kind: KindNotFound, Message: msg} }

// Forbidden is the error guards return for a principal that may not act.
func Forbidden() error { return forbidden("Forbidden access") }

// Unauthenticated is the error guards return when no principal is present.
func Unauthenticated() error {
	return &Error{Kind: KindUnauthenticated, Message: "Unauthorized access"}
}

// ownEmail enforces that a principal only reads data filed under its own
// email. A missing query email is a bad request.
func ownEmail(principalEmail, queryEmail string) error {
	if queryEmail == "" {
		return badRequest("Email query parameter is required")
	}
	if !sameEmail(principalEmail, queryEmail) {
		return Forbidden()
	}
	return nil
}
