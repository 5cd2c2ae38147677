package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn" // Import pgconn for PgError

	"github.com/yigit/schoolhub/internal/pkg/apperrors"
)

// PostgreSQL error codes used by the repositories
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
)

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == CodeUniqueViolation && pgErr.ConstraintName == constraintName
}

// IsDuplicateKeyError checks for any unique violation.
func IsDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == CodeUniqueViolation
}

// IsForeignKeyConstraintError checks for a foreign key violation on a specific constraint,
// e.g. inserting a row that points at a class that does not exist.
func IsForeignKeyConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == CodeForeignKeyViolation && pgErr.ConstraintName == constraintName
}

// AsReferentialIntegrityError converts a foreign key violation into an
// apperrors.ReferentialIntegrityError. The referencing table comes from the
// error's TableName when the server reports the child table, otherwise from
// the constraint name (Postgres names FKs "<table>_<column>_fkey").
func AsReferentialIntegrityError(err error) (*apperrors.ReferentialIntegrityError, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != CodeForeignKeyViolation {
		return nil, false
	}
	table := pgErr.TableName
	if table == "" || table == "students" {
		table = tableFromConstraint(pgErr.ConstraintName)
	}
	return &apperrors.ReferentialIntegrityError{
		Table:      table,
		Constraint: pgErr.ConstraintName,
		Detail:     pgErr.Detail,
	}, true
}

// tableFromConstraint strips the "_student_id_fkey" suffix of a default FK name.
func tableFromConstraint(constraint string) string {
	const suffix = "_student_id_fkey"
	if len(constraint) > len(suffix) && constraint[len(constraint)-len(suffix):] == suffix {
		return constraint[:len(constraint)-len(suffix)]
	}
	return constraint
}
