package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindInsufficientStock Kind = "insufficient_stock"
	KindConflict          Kind = "conflict"
	KindPersistence       Kind = "persistence"
)

// Error membawa kind (untuk mapping HTTP) + pesan yang aman ditampilkan ke client.
type Error struct {
	Kind Kind
	Op   string // e.g. "inventory.Reserve"
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.msg(), e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.msg())
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.msg(), e.Err)
	}
	return e.msg()
}

func (e *Error) msg() string {
	if e.Msg != "" {
		return e.Msg
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(op, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func InsufficientStock(op, format string, args ...any) *Error {
	return &Error{Kind: KindInsufficientStock, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(op, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Persistence wraps a storage failure. err is kept for logs only.
func Persistence(op string, err error) *Error {
	return &Error{Kind: KindPersistence, Op: op, Msg: "storage failure", Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindPersistence
// for anything unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}

func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// Message returns the client-facing message of err. Unclassified and persistence
// errors never leak their cause.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindPersistence {
		return e.msg()
	}
	return "An unexpected error occurred. Please try again later."
}

func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation, KindInsufficientStock, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
