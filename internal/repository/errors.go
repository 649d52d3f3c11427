package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
	pqNumericOutOfRange   = "22003"
)

// classify turns driver errors into domain error kinds; anything unknown is wrapped as-is.
func classify(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %w", what, domain.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%s %w", what, domain.ErrConflict)
		case pqForeignKeyViolation, pqCheckViolation, pqNumericOutOfRange:
			return fmt.Errorf("%w: %s: %s", domain.ErrInvalidInput, what, pqErr.Message)
		}
	}
	return fmt.Errorf("could not process %s: %w", what, err)
}

// rollback is deferred by transactional methods; it is a no-op after Commit.
func rollback(tx *sql.Tx) {
	_ = tx.Rollback()
}
