// Package apperrors defines the error taxonomy shared by services and
// handlers: not-found, forbidden scope, and structured conflicts. Bulk
// operations that partially succeed return data, not errors (see
// assoc.UnlinkResult).
package apperrors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound marks a missing company/event/entity. Wrap with the entity
	// name via NotFound so callers can surface a precise message.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks a target outside the viewer's resolved company scope.
	ErrForbidden = errors.New("forbidden")
)

// Conflict reasons for guarded deletes and duplicate names.
const (
	ReasonName      = "name"
	ReasonEvents    = "events"
	ReasonIncidents = "incidents"
)

// ConflictError carries the blocking relationship so callers can present a
// precise message ("blocked by events" vs "blocked by incidents" vs
// "name already exists").
type ConflictError struct {
	Reason string
	Detail string
}

func (e *ConflictError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("conflict (%s): %s", e.Reason, e.Detail)
	}
	return "conflict: " + e.Reason
}

// NotFound wraps ErrNotFound with the entity name.
func NotFound(entity string) error {
	return fmt.Errorf("%s: %w", entity, ErrNotFound)
}

// Forbidden wraps ErrForbidden with context.
func Forbidden(detail string) error {
	return fmt.Errorf("%s: %w", detail, ErrForbidden)
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsForbidden reports whether err is a scope rejection.
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }

// AsConflict extracts a ConflictError if err is one.
func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

const uniqueViolationCode = "23505"

// TranslateUnique maps a PostgreSQL unique-violation to a name Conflict;
// other errors pass through unchanged.
func TranslateUnique(err error, detail string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return &ConflictError{Reason: ReasonName, Detail: detail}
	}
	return err
}
