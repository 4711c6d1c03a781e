package core

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ValidationError means the input itself is unacceptable; nothing was
// persisted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NotFoundError means a referenced record does not exist for the caller's
// business. A record belonging to another business is indistinguishable
// from one that does not exist.
type NotFoundError struct {
	Reason string
}

func (e *NotFoundError) Error() string { return e.Reason }

// AuthorizationError means the caller has no resolved business context.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string { return e.Reason }

// ConflictError means the operation collides with existing state, such as
// a duplicate name or a repeated reversal.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var v *NotFoundError
	return errors.As(err, &v)
}

func IsAuthorization(err error) bool {
	var v *AuthorizationError
	return errors.As(err, &v)
}

func IsConflict(err error) bool {
	var v *ConflictError
	return errors.As(err, &v)
}

// uniqueViolation returns the PgError when err is a unique-constraint
// violation (SQLSTATE 23505), nil otherwise. Services use it to surface
// races that slip past a pre-insert existence check as ConflictError
// instead of a generic store failure.
func uniqueViolation(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr
	}
	return nil
}
