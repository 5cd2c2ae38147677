package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yigit/schoolhub/internal/app/models"
	"github.com/yigit/schoolhub/internal/app/models/dto"
	"github.com/yigit/schoolhub/internal/app/repositories"
	"github.com/yigit/schoolhub/internal/pkg/apperrors"
	"github.com/yigit/schoolhub/internal/pkg/helpers"
)

// DefaultBulkConcurrency bounds the fan-out of bulk lifecycle operations
const DefaultBulkConcurrency = 8

// StudentService defines the interface for student roster and recycle-bin operations
type StudentService interface {
	Create(ctx context.Context, student *models.Student) (*models.Student, error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	// List returns a page of the Active roster.
	List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, int64, error)
	// ListBin returns a page of soft-deleted students, most recently deleted first.
	ListBin(ctx context.Context, page, limit int) ([]*models.Student, int64, error)
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	PermanentlyDelete(ctx context.Context, id int64) error
	BulkSoftDelete(ctx context.Context, ids []int64) *dto.BulkResult
	BulkRestore(ctx context.Context, ids []int64) *dto.BulkResult
	BulkPermanentlyDelete(ctx context.Context, ids []int64) *dto.BulkResult
}

// studentServiceImpl implements StudentService
type studentServiceImpl struct {
	students    repositories.StudentStore
	classes     repositories.ClassStore
	vacancy     VacancyService
	concurrency int
	log         zerolog.Logger
	now         func() time.Time
}

// NewStudentService creates a new StudentService
func NewStudentService(
	students repositories.StudentStore,
	classes repositories.ClassStore,
	vacancy VacancyService,
	concurrency int,
	log zerolog.Logger,
) StudentService {
	if concurrency <= 0 {
		concurrency = DefaultBulkConcurrency
	}
	return &studentServiceImpl{
		students:    students,
		classes:     classes,
		vacancy:     vacancy,
		concurrency: concurrency,
		log:         log.With().Str("service", "student").Logger(),
		now:         time.Now,
	}
}

// Create admits a student. Name and age are derived here, never taken from the client.
func (s *studentServiceImpl) Create(ctx context.Context, student *models.Student) (*models.Student, error) {
	if strings.TrimSpace(student.AdmissionNumber) == "" {
		return nil, apperrors.NewValidationError("admission number required")
	}
	if strings.TrimSpace(student.FirstName) == "" {
		return nil, apperrors.NewValidationError("first name required")
	}
	if strings.TrimSpace(student.AcademicYear) == "" {
		return nil, apperrors.NewValidationError("academic year required")
	}

	class, err := s.classes.GetClass(ctx, student.ClassID)
	if err != nil {
		return nil, err
	}
	if msg, ok := checkPlacement(class, student.SectionID); !ok {
		return nil, apperrors.NewValidationError(msg)
	}

	student.Name = helpers.JoinName(student.FirstName, student.MiddleName, student.LastName)
	student.Age = 0
	if student.DateOfBirth != nil {
		student.Age = helpers.AgeOn(*student.DateOfBirth, s.now())
	}
	student.Status = models.StudentStatusActive
	student.DeletedAt = nil

	if err := s.students.Create(ctx, student); err != nil {
		return nil, err
	}
	s.vacancy.Invalidate(ctx, student.Placement())

	s.log.Info().Int64("studentID", student.ID).Str("admissionNumber", student.AdmissionNumber).Msg("Student created")
	return student, nil
}

func (s *studentServiceImpl) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	return s.students.GetByID(ctx, id)
}

func (s *studentServiceImpl) List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, int64, error) {
	filter.Status = models.StudentStatusActive
	return s.students.List(ctx, filter)
}

func (s *studentServiceImpl) ListBin(ctx context.Context, page, limit int) ([]*models.Student, int64, error) {
	return s.students.List(ctx, models.StudentFilter{
		Status: models.StudentStatusDeleted,
		Page:   page,
		Limit:  limit,
	})
}

func (s *studentServiceImpl) SoftDelete(ctx context.Context, id int64) error {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.students.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.vacancy.Invalidate(ctx, student.Placement())
	s.log.Info().Int64("studentID", id).Msg("Student moved to bin")
	return nil
}

func (s *studentServiceImpl) Restore(ctx context.Context, id int64) error {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.students.Restore(ctx, id); err != nil {
		return err
	}
	s.vacancy.Invalidate(ctx, student.Placement())
	s.log.Info().Int64("studentID", id).Msg("Student restored from bin")
	return nil
}

func (s *studentServiceImpl) PermanentlyDelete(ctx context.Context, id int64) error {
	if err := s.students.PermanentlyDelete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("studentID", id).Msg("Student permanently deleted")
	return nil
}

func (s *studentServiceImpl) BulkSoftDelete(ctx context.Context, ids []int64) *dto.BulkResult {
	return s.bulk(ctx, "soft_delete", ids, s.SoftDelete)
}

func (s *studentServiceImpl) BulkRestore(ctx context.Context, ids []int64) *dto.BulkResult {
	return s.bulk(ctx, "restore", ids, s.Restore)
}

func (s *studentServiceImpl) BulkPermanentlyDelete(ctx context.Context, ids []int64) *dto.BulkResult {
	return s.bulk(ctx, "permanent_delete", ids, s.PermanentlyDelete)
}

// bulk runs op for every id with bounded concurrency. A failure is recorded
// against its id and never cancels the other tasks. Results keep input order.
func (s *studentServiceImpl) bulk(ctx context.Context, name string, ids []int64, op func(context.Context, int64) error) *dto.BulkResult {
	errs := make([]error, len(ids))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			errs[i] = op(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	result := &dto.BulkResult{
		Succeeded: make([]int64, 0, len(ids)),
		Failed:    make([]dto.BulkFailure, 0),
	}
	for i, id := range ids {
		if errs[i] != nil {
			result.Failed = append(result.Failed, dto.BulkFailure{StudentID: id, Reason: errs[i].Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}

	s.log.Info().Str("op", name).Int("requested", len(ids)).Int("succeeded", len(result.Succeeded)).Int("failed", len(result.Failed)).Msg("Bulk operation finished")
	return result
}
