package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yigit/schoolhub/internal/app/models"
	"github.com/yigit/schoolhub/internal/db"
	"github.com/yigit/schoolhub/internal/pkg/apperrors"
	"github.com/yigit/schoolhub/internal/pkg/dberrors"
	"github.com/yigit/schoolhub/internal/pkg/helpers"
	"github.com/yigit/schoolhub/internal/pkg/logger"
)

// Constraint names from migrations/001_init.sql
const (
	constraintAdmissionNumber = "students_admission_number_key"
	constraintRollNumberScope = "students_roll_number_scope_key"
	constraintStudentClass    = "students_class_id_fkey"
	constraintStudentSection  = "students_section_id_fkey"
)

var studentColumns = []string{
	"id", "admission_number", "attendance_id",
	"class_id", "section_id", "roll_number", "academic_year",
	"first_name", "middle_name", "last_name", "gender", "date_of_birth", "age",
	"father_name", "mother_name", "contact_number", "email", "address",
	"status", "admission_date", "deleted_at", "created_at", "updated_at",
}

var promotionRecordColumns = []string{
	"id", "batch_id", "student_id",
	"from_class_id", "from_section_id", "to_class_id", "to_section_id",
	"from_academic_year", "to_academic_year", "notes", "actor", "promoted_at",
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StudentRepository handles database operations for students and promotion records
type StudentRepository struct {
	db   *db.PostgresDB
	q    querier
	sb   squirrel.StatementBuilderType
	inTx bool
}

var _ StudentStore = (*StudentRepository)(nil)

// NewStudentRepository creates a new student repository
func NewStudentRepository(database *db.PostgresDB) *StudentRepository {
	return &StudentRepository{
		db: database,
		q:  database.Pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// placementScope restricts a query to a class, or to one of its sections.
func placementScope(classID int64, sectionID *int64) squirrel.Eq {
	if sectionID == nil {
		return squirrel.Eq{"class_id": classID}
	}
	return squirrel.Eq{"class_id": classID, "section_id": *sectionID}
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	var gender, status string
	err := row.Scan(
		&s.ID, &s.AdmissionNumber, &s.AttendanceID,
		&s.ClassID, &s.SectionID, &s.RollNumber, &s.AcademicYear,
		&s.FirstName, &s.MiddleName, &s.LastName, &gender, &s.DateOfBirth, &s.Age,
		&s.FatherName, &s.MotherName, &s.ContactNumber, &s.Email, &s.Address,
		&status, &s.AdmissionDate, &s.DeletedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Gender = models.Gender(gender)
	s.Status = models.StudentStatus(status)
	s.Name = helpers.JoinName(s.FirstName, s.MiddleName, s.LastName)
	return &s, nil
}

func (r *StudentRepository) queryStudents(ctx context.Context, op string, query squirrel.SelectBuilder) ([]*models.Student, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, apperrors.NewStorageError(op, fmt.Errorf("error building SQL: %w", err))
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error querying students")
		return nil, apperrors.NewStorageError(op, err)
	}
	defer rows.Close()

	students := make([]*models.Student, 0)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, apperrors.NewStorageError(op, fmt.Errorf("error scanning student row: %w", err))
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError(op, err)
	}
	return students, nil
}

// Create inserts a new student and fills its ID and timestamps
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}

	query := r.sb.Insert("students").
		Columns(
			"admission_number", "attendance_id",
			"class_id", "section_id", "roll_number", "academic_year",
			"first_name", "middle_name", "last_name", "gender", "date_of_birth", "age",
			"father_name", "mother_name", "contact_number", "email", "address",
			"status", "admission_date",
		).
		Values(
			student.AdmissionNumber, student.AttendanceID,
			student.ClassID, student.SectionID, student.RollNumber, student.AcademicYear,
			student.FirstName, student.MiddleName, student.LastName, string(student.Gender), student.DateOfBirth, student.Age,
			student.FatherName, student.MotherName, student.ContactNumber, student.Email, student.Address,
			string(student.Status), student.AdmissionDate,
		).
		Suffix("RETURNING id, created_at, updated_at")

	sql, args, err := query.ToSql()
	if err != nil {
		return apperrors.NewStorageError("student.create", fmt.Errorf("error building SQL: %w", err))
	}

	err = r.q.QueryRow(ctx, sql, args...).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt)
	switch {
	case err == nil:
		student.Name = helpers.JoinName(student.FirstName, student.MiddleName, student.LastName)
		return nil
	case dberrors.IsDuplicateConstraintError(err, constraintAdmissionNumber):
		return apperrors.ErrAdmissionNumberTaken
	case dberrors.IsDuplicateConstraintError(err, constraintRollNumberScope):
		return apperrors.ErrRollNumberTaken
	case dberrors.IsForeignKeyConstraintError(err, constraintStudentClass):
		return apperrors.ErrClassNotFound
	case dberrors.IsForeignKeyConstraintError(err, constraintStudentSection):
		return apperrors.ErrSectionNotFound
	}

	logger.Error().Err(err).Str("admissionNumber", student.AdmissionNumber).Msg("Error creating student")
	return apperrors.NewStorageError("student.create", err)
}

// GetByID retrieves a student by ID regardless of status
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	query := r.sb.Select(studentColumns...).
		From("students").
		Where(squirrel.Eq{"id": id})

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, apperrors.NewStorageError("student.get", fmt.Errorf("error building SQL: %w", err))
	}

	student, err := scanStudent(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error retrieving student")
		return nil, apperrors.NewStorageError("student.get", err)
	}
	return student, nil
}

// ListActiveByPlacement returns the Active roster of a class or section in roll order
func (r *StudentRepository) ListActiveByPlacement(ctx context.Context, classID int64, sectionID *int64) ([]*models.Student, error) {
	query := r.sb.Select(studentColumns...).
		From("students").
		Where(placementScope(classID, sectionID)).
		Where(squirrel.Eq{"status": string(models.StudentStatusActive)}).
		OrderBy("roll_number ASC NULLS LAST", "id ASC")

	return r.queryStudents(ctx, "student.list_by_placement", query)
}

// CountActiveByPlacement counts Active students of a class or section
func (r *StudentRepository) CountActiveByPlacement(ctx context.Context, classID int64, sectionID *int64) (int64, error) {
	query := r.sb.Select("COUNT(*)").
		From("students").
		Where(placementScope(classID, sectionID)).
		Where(squirrel.Eq{"status": string(models.StudentStatusActive)})

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, apperrors.NewStorageError("student.count_by_placement", fmt.Errorf("error building SQL: %w", err))
	}

	var count int64
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		logger.Error().Err(err).Int64("classID", classID).Msg("Error counting students")
		return 0, apperrors.NewStorageError("student.count_by_placement", err)
	}
	return count, nil
}

// List returns one page of students matching the filter and the total match count.
// An empty Status lists the Active roster.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, int64, error) {
	status := filter.Status
	if status == "" {
		status = models.StudentStatusActive
	}

	where := squirrel.And{squirrel.Eq{"status": string(status)}}
	if filter.ClassID != nil {
		where = append(where, squirrel.Eq{"class_id": *filter.ClassID})
	}
	if filter.SectionID != nil {
		where = append(where, squirrel.Eq{"section_id": *filter.SectionID})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		where = append(where, squirrel.Or{
			squirrel.Expr("concat_ws(' ', first_name, NULLIF(middle_name, ''), last_name) ILIKE ?", pattern),
			squirrel.ILike{"admission_number": pattern},
			squirrel.ILike{"attendance_id": pattern},
		})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("students").Where(where).ToSql()
	if err != nil {
		return nil, 0, apperrors.NewStorageError("student.list", fmt.Errorf("error building SQL: %w", err))
	}
	var total int64
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting students")
		return nil, 0, apperrors.NewStorageError("student.list", err)
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Limit)
	query := r.sb.Select(studentColumns...).
		From("students").
		Where(where).
		Limit(uint64(limit)).
		Offset(offset)
	if status == models.StudentStatusDeleted {
		query = query.OrderBy("deleted_at DESC", "id ASC")
	} else {
		query = query.OrderBy("class_id ASC", "section_id ASC NULLS FIRST", "roll_number ASC NULLS LAST", "id ASC")
	}

	students, err := r.queryStudents(ctx, "student.list", query)
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// UpdatePlacement moves an Active student to a new class/section/year and clears its roll number
func (r *StudentRepository) UpdatePlacement(ctx context.Context, id int64, placement models.Placement) error {
	query := r.sb.Update("students").
		Set("class_id", placement.ClassID).
		Set("section_id", placement.SectionID).
		Set("academic_year", placement.AcademicYear).
		Set("roll_number", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": string(models.StudentStatusActive)})

	sql, args, err := query.ToSql()
	if err != nil {
		return apperrors.NewStorageError("student.update_placement", fmt.Errorf("error building SQL: %w", err))
	}

	result, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error updating student placement")
		return apperrors.NewStorageError("student.update_placement", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// AppendPromotionRecord inserts an audit row. Records are never updated or deleted.
func (r *StudentRepository) AppendPromotionRecord(ctx context.Context, record *models.PromotionRecord) error {
	query := r.sb.Insert("promotion_records").
		Columns(promotionRecordColumns[1:]...).
		Values(
			record.BatchID, record.StudentID,
			record.FromClassID, record.FromSectionID, record.ToClassID, record.ToSectionID,
			record.FromAcademicYear, record.ToAcademicYear, record.Notes, record.Actor, record.PromotedAt,
		).
		Suffix("RETURNING id")

	sql, args, err := query.ToSql()
	if err != nil {
		return apperrors.NewStorageError("promotion_record.append", fmt.Errorf("error building SQL: %w", err))
	}

	if err := r.q.QueryRow(ctx, sql, args...).Scan(&record.ID); err != nil {
		logger.Error().Err(err).Int64("studentID", record.StudentID).Msg("Error appending promotion record")
		return apperrors.NewStorageError("promotion_record.append", err)
	}
	return nil
}

// ListPromotionRecords returns a student's promotion history in append order
func (r *StudentRepository) ListPromotionRecords(ctx context.Context, studentID int64) ([]*models.PromotionRecord, error) {
	query := r.sb.Select(promotionRecordColumns...).
		From("promotion_records").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("id ASC")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, apperrors.NewStorageError("promotion_record.list", fmt.Errorf("error building SQL: %w", err))
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error listing promotion records")
		return nil, apperrors.NewStorageError("promotion_record.list", err)
	}
	defer rows.Close()

	records := make([]*models.PromotionRecord, 0)
	for rows.Next() {
		var rec models.PromotionRecord
		if err := rows.Scan(
			&rec.ID, &rec.BatchID, &rec.StudentID,
			&rec.FromClassID, &rec.FromSectionID, &rec.ToClassID, &rec.ToSectionID,
			&rec.FromAcademicYear, &rec.ToAcademicYear, &rec.Notes, &rec.Actor, &rec.PromotedAt,
		); err != nil {
			return nil, apperrors.NewStorageError("promotion_record.list", fmt.Errorf("error scanning row: %w", err))
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("promotion_record.list", err)
	}
	return records, nil
}

// AssignRollNumbers clears the scope's roll numbers and writes the new ones in a single transaction.
// Clearing first keeps students_roll_number_scope_key from seeing transient duplicates.
func (r *StudentRepository) AssignRollNumbers(ctx context.Context, classID int64, sectionID *int64, assignments []models.RollAssignment) error {
	return r.withTx(ctx, func(ctx context.Context, tx *StudentRepository) error {
		active := squirrel.Eq{"status": string(models.StudentStatusActive)}

		clearSQL, clearArgs, err := tx.sb.Update("students").
			Set("roll_number", nil).
			Where(placementScope(classID, sectionID)).
			Where(active).
			ToSql()
		if err != nil {
			return apperrors.NewStorageError("student.assign_roll_numbers", fmt.Errorf("error building SQL: %w", err))
		}
		if _, err := tx.q.Exec(ctx, clearSQL, clearArgs...); err != nil {
			logger.Error().Err(err).Int64("classID", classID).Msg("Error clearing roll numbers")
			return apperrors.NewStorageError("student.assign_roll_numbers", err)
		}

		for _, a := range assignments {
			sql, args, err := tx.sb.Update("students").
				Set("roll_number", a.RollNumber).
				Set("updated_at", squirrel.Expr("NOW()")).
				Where(squirrel.Eq{"id": a.StudentID}).
				Where(placementScope(classID, sectionID)).
				Where(active).
				ToSql()
			if err != nil {
				return apperrors.NewStorageError("student.assign_roll_numbers", fmt.Errorf("error building SQL: %w", err))
			}
			result, err := tx.q.Exec(ctx, sql, args...)
			if err != nil {
				if dberrors.IsDuplicateConstraintError(err, constraintRollNumberScope) {
					return apperrors.ErrRollNumberTaken
				}
				logger.Error().Err(err).Int64("studentID", a.StudentID).Msg("Error assigning roll number")
				return apperrors.NewStorageError("student.assign_roll_numbers", err)
			}
			if result.RowsAffected() == 0 {
				return apperrors.NewConflictError(fmt.Sprintf("student %d is no longer on the roster", a.StudentID))
			}
		}
		return nil
	})
}

// SoftDelete moves an Active student to the bin
func (r *StudentRepository) SoftDelete(ctx context.Context, id int64) error {
	query := r.sb.Update("students").
		Set("status", string(models.StudentStatusDeleted)).
		Set("deleted_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": string(models.StudentStatusActive)})

	sql, args, err := query.ToSql()
	if err != nil {
		return apperrors.NewStorageError("student.soft_delete", fmt.Errorf("error building SQL: %w", err))
	}

	result, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error soft deleting student")
		return apperrors.NewStorageError("student.soft_delete", err)
	}
	if result.RowsAffected() == 0 {
		return r.lifecycleMiss(ctx, id, apperrors.ErrStudentAlreadyDeleted)
	}
	return nil
}

// Restore brings a student back from the bin
func (r *StudentRepository) Restore(ctx context.Context, id int64) error {
	query := r.sb.Update("students").
		Set("status", string(models.StudentStatusActive)).
		Set("deleted_at", nil).
		Where(squirrel.Eq{"id": id, "status": string(models.StudentStatusDeleted)})

	sql, args, err := query.ToSql()
	if err != nil {
		return apperrors.NewStorageError("student.restore", fmt.Errorf("error building SQL: %w", err))
	}

	result, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintRollNumberScope) {
			return apperrors.ErrRollNumberTaken
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error restoring student")
		return apperrors.NewStorageError("student.restore", err)
	}
	if result.RowsAffected() == 0 {
		return r.lifecycleMiss(ctx, id, apperrors.ErrStudentNotDeleted)
	}
	return nil
}

// PermanentlyDelete removes a binned student. Rows that still reference the
// student make this fail with a ReferentialIntegrityError.
func (r *StudentRepository) PermanentlyDelete(ctx context.Context, id int64) error {
	query := r.sb.Delete("students").
		Where(squirrel.Eq{"id": id, "status": string(models.StudentStatusDeleted)})

	sql, args, err := query.ToSql()
	if err != nil {
		return apperrors.NewStorageError("student.permanent_delete", fmt.Errorf("error building SQL: %w", err))
	}

	result, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		if refErr, ok := dberrors.AsReferentialIntegrityError(err); ok {
			logger.Warn().Int64("studentID", id).Str("table", refErr.Table).Str("constraint", refErr.Constraint).
				Msg("Permanent delete blocked by referencing rows")
			return refErr
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error permanently deleting student")
		return apperrors.NewStorageError("student.permanent_delete", err)
	}
	if result.RowsAffected() == 0 {
		return r.lifecycleMiss(ctx, id, apperrors.ErrStudentStillActive)
	}
	return nil
}

// lifecycleMiss explains why a status-guarded statement touched no row:
// either the student does not exist or it is in the wrong state.
func (r *StudentRepository) lifecycleMiss(ctx context.Context, id int64, wrongState error) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return wrongState
}

// WithinTx runs fn inside a database transaction. Nested calls reuse the open transaction.
func (r *StudentRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, store StudentStore) error) error {
	return r.withTx(ctx, func(ctx context.Context, tx *StudentRepository) error {
		return fn(ctx, tx)
	})
}

func (r *StudentRepository) withTx(ctx context.Context, fn func(ctx context.Context, tx *StudentRepository) error) error {
	if r.inTx {
		return fn(ctx, r)
	}
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &StudentRepository{db: r.db, q: tx, sb: r.sb, inTx: true})
	})
	return apperrors.NewStorageError("student.tx", err)
}
