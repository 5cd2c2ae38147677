package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/yigit/schoolhub/internal/app/models"
	"github.com/yigit/schoolhub/internal/db"
	"github.com/yigit/schoolhub/internal/pkg/apperrors"
	"github.com/yigit/schoolhub/internal/pkg/dberrors"
	"github.com/yigit/schoolhub/internal/pkg/logger"
)

const (
	constraintClassName   = "classes_name_key"
	constraintSectionName = "sections_class_id_name_key"
	constraintSectionFK   = "sections_class_id_fkey"
)

// ClassRepository handles database operations for classes and sections
type ClassRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

var _ ClassStore = (*ClassRepository)(nil)

// NewClassRepository creates a new class repository
func NewClassRepository(database *db.PostgresDB) *ClassRepository {
	return &ClassRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetClass retrieves a class with its sections
func (r *ClassRepository) GetClass(ctx context.Context, id int64) (*models.Class, error) {
	sql, args, err := r.sb.Select("id", "name", "created_at").
		From("classes").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, apperrors.NewStorageError("class.get", fmt.Errorf("error building SQL: %w", err))
	}

	var class models.Class
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&class.ID, &class.Name, &class.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrClassNotFound
		}
		logger.Error().Err(err).Int64("classID", id).Msg("Error retrieving class")
		return nil, apperrors.NewStorageError("class.get", err)
	}

	sections, err := r.listSections(ctx, squirrel.Eq{"class_id": id})
	if err != nil {
		return nil, err
	}
	class.Sections = sections
	return &class, nil
}

// ListClasses retrieves every class with its sections
func (r *ClassRepository) ListClasses(ctx context.Context) ([]*models.Class, error) {
	sql, args, err := r.sb.Select("id", "name", "created_at").
		From("classes").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, apperrors.NewStorageError("class.list", fmt.Errorf("error building SQL: %w", err))
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing classes")
		return nil, apperrors.NewStorageError("class.list", err)
	}
	defer rows.Close()

	classes := make([]*models.Class, 0)
	byID := make(map[int64]*models.Class)
	for rows.Next() {
		var class models.Class
		if err := rows.Scan(&class.ID, &class.Name, &class.CreatedAt); err != nil {
			return nil, apperrors.NewStorageError("class.list", fmt.Errorf("error scanning row: %w", err))
		}
		class.Sections = make([]models.Section, 0)
		classes = append(classes, &class)
		byID[class.ID] = &class
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("class.list", err)
	}

	sections, err := r.listSections(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, s := range sections {
		if class, ok := byID[s.ClassID]; ok {
			class.Sections = append(class.Sections, s)
		}
	}
	return classes, nil
}

func (r *ClassRepository) listSections(ctx context.Context, where squirrel.Sqlizer) ([]models.Section, error) {
	query := r.sb.Select("id", "class_id", "name").
		From("sections").
		OrderBy("name ASC", "id ASC")
	if where != nil {
		query = query.Where(where)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, apperrors.NewStorageError("section.list", fmt.Errorf("error building SQL: %w", err))
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing sections")
		return nil, apperrors.NewStorageError("section.list", err)
	}
	defer rows.Close()

	sections := make([]models.Section, 0)
	for rows.Next() {
		var s models.Section
		if err := rows.Scan(&s.ID, &s.ClassID, &s.Name); err != nil {
			return nil, apperrors.NewStorageError("section.list", fmt.Errorf("error scanning row: %w", err))
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("section.list", err)
	}
	return sections, nil
}

// CreateClass inserts a class
func (r *ClassRepository) CreateClass(ctx context.Context, class *models.Class) error {
	sql, args, err := r.sb.Insert("classes").
		Columns("name").
		Values(class.Name).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return apperrors.NewStorageError("class.create", fmt.Errorf("error building SQL: %w", err))
	}

	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&class.ID, &class.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintClassName) {
			return apperrors.ErrClassExists
		}
		logger.Error().Err(err).Str("name", class.Name).Msg("Error creating class")
		return apperrors.NewStorageError("class.create", err)
	}
	return nil
}

// CreateSection inserts a section into an existing class
func (r *ClassRepository) CreateSection(ctx context.Context, section *models.Section) error {
	sql, args, err := r.sb.Insert("sections").
		Columns("class_id", "name").
		Values(section.ClassID, section.Name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return apperrors.NewStorageError("section.create", fmt.Errorf("error building SQL: %w", err))
	}

	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&section.ID); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, constraintSectionName):
			return apperrors.ErrSectionExists
		case dberrors.IsForeignKeyConstraintError(err, constraintSectionFK):
			return apperrors.ErrClassNotFound
		}
		logger.Error().Err(err).Int64("classID", section.ClassID).Msg("Error creating section")
		return apperrors.NewStorageError("section.create", err)
	}
	return nil
}
