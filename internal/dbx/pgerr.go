package dbx

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgInvalidTextRepr     = "22P02"
	pgForeignKeyViolation = "23503"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports a duplicate key on a unique index.
func IsUniqueViolation(err error) bool { return pgCode(err) == pgUniqueViolation }

// IsInvalidInput reports a value the column type could not parse, e.g. a
// malformed UUID.
func IsInvalidInput(err error) bool { return pgCode(err) == pgInvalidTextRepr }

// IsForeignKeyViolation reports a reference to a missing parent row.
func IsForeignKeyViolation(err error) bool { return pgCode(err) == pgForeignKeyViolation }

// IsTransient reports failures worth a single retry: deadlines, dropped
// connections and errors pgconn marks as safe to retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		pgconn.Timeout(err) ||
		pgconn.SafeToRetry(err)
}
