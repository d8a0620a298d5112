// Package pgerrors translates Postgres error codes into the errs taxonomy.
package pgerrors

import (
	"errors"

	"ecolocker/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"

	MsgConcurrentUpdate = "The order was changed by another request, please retry"
)

// Translate maps constraint and concurrency failures to StateConflictError so they
// surface as conflicts. Other errors pass through unchanged.
func Translate(err error, conflictMessage string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation, codeCheckViolation:
		return errs.NewStateConflictErrorWithCause(conflictMessage, err)
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return errs.NewStateConflictErrorWithCause(MsgConcurrentUpdate, err)
	default:
		return err
	}
}
