package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schoolhub/internal/pkg/apperrors"
)

func TestAsReferentialIntegrityError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantOK    bool
		wantTable string
	}{
		{
			name: "delete blocked by child table",
			err: &pgconn.PgError{
				Code:           CodeForeignKeyViolation,
				TableName:      "students",
				ConstraintName: "attendance_records_student_id_fkey",
				Detail:         `Key (id)=(7) is still referenced from table "attendance_records".`,
			},
			wantOK:    true,
			wantTable: "attendance_records",
		},
		{
			name: "wrapped error keeps working",
			err: fmt.Errorf("delete student: %w", &pgconn.PgError{
				Code:           CodeForeignKeyViolation,
				TableName:      "fee_payments",
				ConstraintName: "fee_payments_student_fk",
			}),
			wantOK:    true,
			wantTable: "fee_payments",
		},
		{
			name:   "unique violation is not referential",
			err:    &pgconn.PgError{Code: CodeUniqueViolation},
			wantOK: false,
		},
		{
			name:   "plain error",
			err:    errors.New("boom"),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refErr, ok := AsReferentialIntegrityError(tt.err)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Nil(t, refErr)
				return
			}
			require.NotNil(t, refErr)
			assert.Equal(t, tt.wantTable, refErr.Table)
			assert.True(t, errors.Is(refErr, apperrors.ErrReferentialIntegrity))
		})
	}
}

func TestIsDuplicateConstraintError(t *testing.T) {
	err := &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "students_admission_number_key"}

	assert.True(t, IsDuplicateConstraintError(err, "students_admission_number_key"))
	assert.False(t, IsDuplicateConstraintError(err, "students_roll_number_scope_key"))
	assert.True(t, IsDuplicateKeyError(err))
	assert.False(t, IsDuplicateKeyError(errors.New("x")))
}

func TestIsForeignKeyConstraintError(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: CodeForeignKeyViolation, ConstraintName: "students_class_id_fkey"})

	assert.True(t, IsForeignKeyConstraintError(err, "students_class_id_fkey"))
	assert.False(t, IsForeignKeyConstraintError(err, "students_section_id_fkey"))
	assert.False(t, IsForeignKeyConstraintError(&pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "students_class_id_fkey"}, "students_class_id_fkey"))
}
