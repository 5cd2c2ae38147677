package repositories

import (
	"context"

	"github.com/yigit/schoolhub/internal/app/models"
)

// StudentStore is the persistence contract for student records and their
// promotion history. Implementations: StudentRepository (Postgres) and inmem.Store.
type StudentStore interface {
	Create(ctx context.Context, student *models.Student) error
	// GetByID returns Active and Deleted students alike.
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	// ListActiveByPlacement returns the Active students of a class, or of one
	// section when sectionID is set, ordered by roll number (nulls last) then id.
	ListActiveByPlacement(ctx context.Context, classID int64, sectionID *int64) ([]*models.Student, error)
	CountActiveByPlacement(ctx context.Context, classID int64, sectionID *int64) (int64, error)
	List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, int64, error)
	// UpdatePlacement moves a student and clears its roll number.
	UpdatePlacement(ctx context.Context, id int64, placement models.Placement) error
	AppendPromotionRecord(ctx context.Context, record *models.PromotionRecord) error
	ListPromotionRecords(ctx context.Context, studentID int64) ([]*models.PromotionRecord, error)
	// AssignRollNumbers replaces every roll number in the scope, all or nothing.
	AssignRollNumbers(ctx context.Context, classID int64, sectionID *int64, assignments []models.RollAssignment) error
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	PermanentlyDelete(ctx context.Context, id int64) error
	// WithinTx runs fn against a store bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, store StudentStore) error) error
}

// ClassStore reads and seeds classes and their sections
type ClassStore interface {
	GetClass(ctx context.Context, id int64) (*models.Class, error)
	ListClasses(ctx context.Context) ([]*models.Class, error)
	CreateClass(ctx context.Context, class *models.Class) error
	CreateSection(ctx context.Context, section *models.Section) error
}
