package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationErrCode = "23505"

const (
	originalURLConstraint = "urls_original_url_key"
	shortCodeConstraint   = "urls_short_code_key"
)

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.SQLState() == uniqueViolationErrCode &&
		pgErr.ConstraintName == constraint
}
