// Package apperror defines the error taxonomy shared by all repositories and
// the boundary translation to HTTP status codes. Repository failures are never
// swallowed: each carries a Kind that maps to exactly one status, and every
// diagnostic message is truncated before it can leak unbounded store output.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies an error for boundary translation.
type Kind int

const (
	// KindBadRequest covers malformed or empty client input.
	KindBadRequest Kind = iota
	// KindNotFound means no row exists for the given key.
	KindNotFound
	// KindConflict covers uniqueness and referential-integrity violations,
	// whether caught by a pre-check or raised by the store's own constraint.
	KindConflict
	// KindValidation means a row read back from the store failed to map to
	// its domain shape. The data came from the trusted store, not the caller,
	// so this reports as an internal error, not a client error.
	KindValidation
	// KindInternal is an unexpected store failure, or a write that should
	// have returned data but didn't.
	KindInternal
)

// maxMessageLen bounds diagnostic messages so oversized payloads or driver
// error text never reach the caller verbatim.
const maxMessageLen = 200

// E is a classified error with a bounded diagnostic message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *E) Unwrap() error { return e.Err }

// Truncate bounds s to the diagnostic message limit.
func Truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxMessageLen {
		return s
	}
	return string(r[:maxMessageLen])
}

func newE(kind Kind, format string, args ...interface{}) *E {
	return &E{Kind: kind, Message: Truncate(fmt.Sprintf(format, args...))}
}

func BadRequest(format string, args ...interface{}) *E {
	return newE(KindBadRequest, format, args...)
}

func NotFound(format string, args ...interface{}) *E {
	return newE(KindNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *E {
	return newE(KindConflict, format, args...)
}

func Validation(format string, args ...interface{}) *E {
	return newE(KindValidation, format, args...)
}

func Internal(format string, args ...interface{}) *E {
	return newE(KindInternal, format, args...)
}

// Wrap attaches err to a classified error, keeping the bounded message.
func Wrap(kind Kind, err error, format string, args ...interface{}) *E {
	e := newE(kind, format, args...)
	e.Err = err
	return e
}

// KindOf extracts the Kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *E
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *E
	return errors.As(err, &e) && e.Kind == kind
}

// Postgres error codes for constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// FromPg translates a store-level error into the taxonomy: no-rows lookups
// become NotFound, unique and foreign-key violations become Conflict (the
// pre-check is advisory; the store's constraint is authoritative), and
// anything else is Internal with a bounded message. Already-classified
// errors pass through unchanged.
func FromPg(err error, context string) error {
	if err == nil {
		return nil
	}

	var e *E
	if errors.As(err, &e) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return Wrap(KindNotFound, err, "%s: no encontrado", context)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return Wrap(KindConflict, err, "%s: conflicto de datos, valor único ya registrado (%s)", context, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return Wrap(KindConflict, err, "%s: conflicto de datos, referencia inexistente (%s)", context, pgErr.ConstraintName)
		}
	}

	return Wrap(KindInternal, err, "%s: error de base de datos", context)
}

// FromPgInsert translates errors from an INSERT ... RETURNING scan. A
// no-rows result here is not a missing resource but a broken insert, so
// it maps to Internal instead of NotFound. Everything else follows FromPg.
func FromPgInsert(err error, context string) error {
	if err == nil {
		return nil
	}
	var e *E
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return Wrap(KindInternal, err, "%s: la inserción no devolvió datos", context)
	}
	return FromPg(err, context)
}

// Status maps an error kind to its HTTP status. Validation is reported as an
// internal error because the malformed data originated from the store.
func Status(err error) int {
	switch KindOf(err) {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
