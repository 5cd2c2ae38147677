package services

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yigit/schoolhub/internal/app/models"
	"github.com/yigit/schoolhub/internal/app/repositories"
	"github.com/yigit/schoolhub/internal/pkg/apperrors"
	"github.com/yigit/schoolhub/internal/pkg/helpers"
	"github.com/yigit/schoolhub/internal/pkg/tracing"
)

// RollNumberService renumbers a roster alphabetically
type RollNumberService interface {
	// Reassign gives the Active students of a class (or one section) roll numbers
	// 1..n in case-insensitive name order. Students with equal names keep their
	// current relative order. The write is all or nothing.
	Reassign(ctx context.Context, classID int64, sectionID *int64) ([]models.RollAssignment, error)
}

// rollNumberServiceImpl implements RollNumberService
type rollNumberServiceImpl struct {
	students repositories.StudentStore
	classes  repositories.ClassStore
	log      zerolog.Logger
	tracer   trace.Tracer
}

// NewRollNumberService creates a new RollNumberService
func NewRollNumberService(students repositories.StudentStore, classes repositories.ClassStore, log zerolog.Logger) RollNumberService {
	return &rollNumberServiceImpl{
		students: students,
		classes:  classes,
		log:      log.With().Str("service", "roll_number").Logger(),
		tracer:   tracing.Tracer("schoolhub/roll_number"),
	}
}

func (s *rollNumberServiceImpl) Reassign(ctx context.Context, classID int64, sectionID *int64) ([]models.RollAssignment, error) {
	ctx, span := s.tracer.Start(ctx, "roll_number.Reassign",
		trace.WithAttributes(attribute.Int64("class.id", classID)))
	defer span.End()

	class, err := s.classes.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if sectionID != nil && !class.HasSection(*sectionID) {
		return nil, apperrors.NewValidationError("section does not belong to class")
	}

	// Store order is roll number (nulls last) then id, which is the tie order.
	roster, err := s.students.ListActiveByPlacement(ctx, classID, sectionID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	sort.SliceStable(roster, func(i, j int) bool {
		return helpers.CompareNamesFold(roster[i].Name, roster[j].Name) < 0
	})

	assignments := make([]models.RollAssignment, len(roster))
	for i, st := range roster {
		assignments[i] = models.RollAssignment{
			StudentID:  st.ID,
			RollNumber: i + 1,
			Name:       st.Name,
		}
	}
	if len(assignments) == 0 {
		return assignments, nil
	}

	if err := s.students.AssignRollNumbers(ctx, classID, sectionID, assignments); err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.log.Error().Err(err).Int64("classID", classID).Str("sectionID", sectionLabel(sectionID)).Msg("Roll number assignment failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("roll_number.assigned", len(assignments)))
	s.log.Info().Int64("classID", classID).Str("sectionID", sectionLabel(sectionID)).Int("students", len(assignments)).Msg("Roll numbers reassigned")
	return assignments, nil
}
