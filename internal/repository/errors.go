package repository

import (
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

var (
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
	ErrNoSlotsLeft   = errors.New("no volunteer slots left")
	ErrInvalid       = errors.New("violates a constraint")
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
)

// mapPgError translates constraint violations into repository errors and returns
// anything else unchanged.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		return ErrAlreadyExists
	case foreignKeyViolationCode:
		return ErrNotFound
	case checkViolationCode:
		return errors.Wrap(ErrInvalid, pgErr.ConstraintName)
	}
	return err
}
