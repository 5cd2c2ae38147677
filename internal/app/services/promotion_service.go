package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yigit/schoolhub/internal/app/models"
	"github.com/yigit/schoolhub/internal/app/repositories"
	"github.com/yigit/schoolhub/internal/pkg/apperrors"
	"github.com/yigit/schoolhub/internal/pkg/tracing"
)

// DefaultMaxBatchSize caps the number of students in one promotion request
const DefaultMaxBatchSize = 500

const reasonStudentNotFound = "student not found"

// PromotionService moves students between placements and keeps the promotion history
type PromotionService interface {
	// Promote validates the request as a whole, then promotes each student in input
	// order. A failing student does not stop the batch.
	Promote(ctx context.Context, req models.PromotionRequest, actor string) (*models.PromotionResult, error)
	// History returns a student's promotion records in append order.
	History(ctx context.Context, studentID int64) ([]*models.PromotionRecord, error)
}

// promotionServiceImpl implements PromotionService
type promotionServiceImpl struct {
	students     repositories.StudentStore
	classes      repositories.ClassStore
	vacancy      VacancyService
	maxBatchSize int
	log          zerolog.Logger
	tracer       trace.Tracer
	now          func() time.Time
	newBatchID   func() uuid.UUID
}

// NewPromotionService creates a new PromotionService
func NewPromotionService(
	students repositories.StudentStore,
	classes repositories.ClassStore,
	vacancy VacancyService,
	maxBatchSize int,
	log zerolog.Logger,
) PromotionService {
	if maxBatchSize <= 0 {
		maxBatchSize = DefaultMaxBatchSize
	}
	return &promotionServiceImpl{
		students:     students,
		classes:      classes,
		vacancy:      vacancy,
		maxBatchSize: maxBatchSize,
		log:          log.With().Str("service", "promotion").Logger(),
		tracer:       tracing.Tracer("schoolhub/promotion"),
		now:          time.Now,
		newBatchID:   uuid.New,
	}
}

// validate rejects the whole request. Nothing is written when it fails.
func (s *promotionServiceImpl) validate(ctx context.Context, req *models.PromotionRequest) error {
	if len(req.StudentIDs) == 0 {
		return apperrors.NewValidationError("no students selected")
	}

	seen := make(map[int64]struct{}, len(req.StudentIDs))
	for _, id := range req.StudentIDs {
		if _, dup := seen[id]; dup {
			return apperrors.NewValidationError(fmt.Sprintf("duplicate student id %d", id))
		}
		seen[id] = struct{}{}
	}

	if len(req.StudentIDs) > s.maxBatchSize {
		return apperrors.NewValidationError("too many students selected")
	}

	if req.ToClassID <= 0 {
		return apperrors.NewValidationError("invalid target class")
	}
	class, err := s.classes.GetClass(ctx, req.ToClassID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.NewValidationError("invalid target class")
		}
		return err
	}

	if msg, ok := checkPlacement(class, req.ToSectionID); !ok {
		return apperrors.NewValidationError(msg)
	}

	if strings.TrimSpace(req.ToAcademicYear) == "" {
		return apperrors.NewValidationError("academic year required")
	}
	return nil
}

func (s *promotionServiceImpl) Promote(ctx context.Context, req models.PromotionRequest, actor string) (*models.PromotionResult, error) {
	ctx, span := s.tracer.Start(ctx, "promotion.Promote")
	defer span.End()

	if err := s.validate(ctx, &req); err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.log.Info().Err(err).Int("requested", len(req.StudentIDs)).Msg("Promotion request rejected")
		return nil, err
	}

	target := models.Placement{
		ClassID:      req.ToClassID,
		SectionID:    req.ToSectionID,
		AcademicYear: strings.TrimSpace(req.ToAcademicYear),
	}
	result := &models.PromotionResult{
		BatchID:   s.newBatchID(),
		Requested: len(req.StudentIDs),
		Failed:    make([]models.PromotionFailure, 0),
	}
	span.SetAttributes(
		attribute.String("promotion.batch_id", result.BatchID.String()),
		attribute.Int("promotion.requested", result.Requested),
		attribute.Int64("promotion.to_class_id", target.ClassID),
	)

	touched := []models.Placement{target}
	for _, id := range req.StudentIDs {
		from, err := s.promoteOne(ctx, id, target, result.BatchID, req.Notes, actor)
		if err != nil {
			result.Failed = append(result.Failed, models.PromotionFailure{StudentID: id, Reason: failureReason(err)})
			s.log.Warn().Err(err).Int64("studentID", id).Str("batchID", result.BatchID.String()).Msg("Student not promoted")
			continue
		}
		result.PromotedCount++
		touched = append(touched, from)
	}
	result.Summarize()

	s.vacancy.Invalidate(ctx, touched...)

	span.SetAttributes(attribute.Int("promotion.promoted", result.PromotedCount))
	s.log.Info().
		Str("batchID", result.BatchID.String()).
		Str("actor", actor).
		Int64("toClassID", target.ClassID).
		Str("toSectionID", sectionLabel(target.SectionID)).
		Str("toAcademicYear", target.AcademicYear).
		Int("requested", result.Requested).
		Int("promoted", result.PromotedCount).
		Msg(result.Message)
	return result, nil
}

// promoteOne moves a single student and appends its audit record in one transaction.
// It returns the placement the student left.
func (s *promotionServiceImpl) promoteOne(
	ctx context.Context,
	studentID int64,
	target models.Placement,
	batchID uuid.UUID,
	notes, actor string,
) (models.Placement, error) {
	ctx, span := s.tracer.Start(ctx, "promotion.student",
		trace.WithAttributes(attribute.Int64("student.id", studentID)))
	defer span.End()

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return models.Placement{}, err
	}
	if !student.IsActive() {
		span.SetStatus(codes.Error, reasonStudentNotFound)
		return models.Placement{}, apperrors.ErrStudentNotFound
	}

	from := student.Placement()
	record := &models.PromotionRecord{
		BatchID:          batchID,
		StudentID:        studentID,
		FromClassID:      from.ClassID,
		FromSectionID:    from.SectionID,
		ToClassID:        target.ClassID,
		ToSectionID:      target.SectionID,
		FromAcademicYear: from.AcademicYear,
		ToAcademicYear:   target.AcademicYear,
		Notes:            notes,
		Actor:            actor,
		PromotedAt:       s.now(),
	}

	err = s.students.WithinTx(ctx, func(ctx context.Context, tx repositories.StudentStore) error {
		if err := tx.UpdatePlacement(ctx, studentID, target); err != nil {
			return err
		}
		return tx.AppendPromotionRecord(ctx, record)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return models.Placement{}, err
	}
	return from, nil
}

// failureReason is the per-student message reported back to the caller.
func failureReason(err error) string {
	if errors.Is(err, apperrors.ErrStudentNotFound) {
		return reasonStudentNotFound
	}
	return err.Error()
}

func (s *promotionServiceImpl) History(ctx context.Context, studentID int64) ([]*models.PromotionRecord, error) {
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		return nil, err
	}
	records, err := s.students.ListPromotionRecords(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("error listing promotion history: %w", err)
	}
	return records, nil
}
