package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/telepesa/ledger/internal/domain"
)

// PostgreSQL error codes the repository translates.
const (
	pgErrUniqueViolation      = "23505"
	pgErrSerializationFailure = "40001"
	pgErrDeadlock             = "40P01"
)

const accountNumberConstraint = "accounts_account_number_key"

// mapError translates driver errors into domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrAccountNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrSerializationFailure, pgErrDeadlock:
			return fmt.Errorf("%w: %s", domain.ErrConcurrentModification, pgErr.Message)
		case pgErrUniqueViolation:
			if pgErr.ConstraintName == accountNumberConstraint {
				return domain.ErrDuplicateAccountNumber
			}
		}
	}

	return err
}
