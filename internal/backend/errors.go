// Package backend classifies failures coming back from the managed backend
// (Postgres directly, or Supabase's PostgREST/Realtime endpoints) into a closed
// set of kinds, so call sites branch on Kind instead of sniffing driver errors.
package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
)

// Kind is the closed set of backend failure categories
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindUniqueViolation
	KindUnauthorized
	KindUnavailable
	KindInvalid
)

// Postgres / PostgREST codes we care about
const (
	CodeUniqueViolation = "23505"
	CodeForeignKey      = "23503"
	CodeCheckViolation  = "23514"
	CodeNoRowsPostgREST = "PGRST116"
	CodeJWTExpired      = "PGRST301"
	CodeInvalidTextRepr = "22P02"
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUniqueViolation:
		return "unique_violation"
	case KindUnauthorized:
		return "unauthorized"
	case KindUnavailable:
		return "unavailable"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Error is a classified backend failure
type Error struct {
	Err  error
	Op   string
	Code string
	Kind Kind
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (%s): %v", e.Op, e.Kind, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a classified error directly, for adapters that already know the kind
// (e.g. from an HTTP status code).
func New(op string, kind Kind, code string, err error) *Error {
	return &Error{Op: op, Kind: kind, Code: code, Err: err}
}

// Wrap classifies err and attaches the operation name. nil stays nil, and an
// already-classified error keeps its kind.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}

	var be *Error
	if errors.As(err, &be) {
		return &Error{Op: op, Kind: be.Kind, Code: be.Code, Err: err}
	}

	kind, code := classify(err)
	return &Error{Op: op, Kind: kind, Code: code, Err: err}
}

func classify(err error) (Kind, string) {
	if errors.Is(err, sql.ErrNoRows) {
		return KindNotFound, ""
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindUnavailable, ""
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		return KindFromCode(code), code
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindUnavailable, ""
	}

	return KindUnknown, ""
}

// KindFromCode maps a SQLSTATE or PostgREST error code to a Kind
func KindFromCode(code string) Kind {
	switch code {
	case CodeUniqueViolation:
		return KindUniqueViolation
	case CodeNoRowsPostgREST:
		return KindNotFound
	case CodeJWTExpired, "42501":
		return KindUnauthorized
	case CodeForeignKey, CodeCheckViolation, CodeInvalidTextRepr:
		return KindInvalid
	}
	if len(code) == 5 && code[:2] == "08" {
		// connection exception class
		return KindUnavailable
	}
	return KindUnknown
}

// KindFromStatus maps an HTTP status code returned by a REST backend to a Kind
func KindFromStatus(status int) Kind {
	switch {
	case status == 401 || status == 403:
		return KindUnauthorized
	case status == 404 || status == 406:
		return KindNotFound
	case status == 409:
		return KindUniqueViolation
	case status == 400 || status == 422:
		return KindInvalid
	case status >= 500:
		return KindUnavailable
	default:
		return KindUnknown
	}
}

// KindOf returns the kind of a classified error, or KindUnknown
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnknown
}

// IsUniqueViolation reports whether err is a duplicate-key failure
func IsUniqueViolation(err error) bool {
	return KindOf(err) == KindUniqueViolation
}

// IsNotFound reports whether err means the row does not exist
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
