package dto

import (
	"github.com/google/uuid"
	"github.com/yigit/schoolhub/internal/app/models"
)

// PromoteRequest is the body of POST /students/promote. Semantic checks
// (empty selection, unknown class, missing section or year) are done by the
// promotion service so they come back with their specific messages.
type PromoteRequest struct {
	StudentIDs     []int64 `json:"student_ids" example:"10,11,999"`
	ToClassID      int64   `json:"to_class_id" example:"6"`
	ToSectionID    *int64  `json:"to_section_id" example:"2"`
	ToAcademicYear string  `json:"to_academic_year" example:"2025-2026"`
	Notes          string  `json:"notes,omitempty" binding:"max=1000" example:"End of year promotion"`
}

// ToModel converts the body into the service request
func (r *PromoteRequest) ToModel() models.PromotionRequest {
	return models.PromotionRequest{
		StudentIDs:     r.StudentIDs,
		ToClassID:      r.ToClassID,
		ToSectionID:    r.ToSectionID,
		ToAcademicYear: r.ToAcademicYear,
		Notes:          r.Notes,
	}
}

// PromoteResponse is the 200 body of POST /students/promote
type PromoteResponse struct {
	Message       string                    `json:"message" example:"Promoted 2 of 3 students."`
	PromotedCount int                       `json:"promoted_count" example:"2"`
	Errors        []models.PromotionFailure `json:"errors"`
	BatchID       uuid.UUID                 `json:"batch_id"`
}

// NewPromoteResponse maps a service result onto the wire shape
func NewPromoteResponse(result *models.PromotionResult) PromoteResponse {
	failures := result.Failed
	if failures == nil {
		failures = []models.PromotionFailure{}
	}
	return PromoteResponse{
		Message:       result.Message,
		PromotedCount: result.PromotedCount,
		Errors:        failures,
		BatchID:       result.BatchID,
	}
}

// RollNumberRequest is the body of POST /students/roll-numbers
type RollNumberRequest struct {
	ClassID   int64  `json:"class_id" binding:"required,gt=0"`
	SectionID *int64 `json:"section_id" binding:"omitempty,gt=0"`
}
