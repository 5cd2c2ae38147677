package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PromotionRequest asks for a batch of students to move to a new placement.
type PromotionRequest struct {
	StudentIDs     []int64
	ToClassID      int64
	ToSectionID    *int64
	ToAcademicYear string
	Notes          string
}

// PromotionRecord is the append-only audit row written for each promoted student.
// The To* fields are only guaranteed to match the student's final placement when
// no concurrent promotion touched the same student.
type PromotionRecord struct {
	ID               int64     `json:"id" db:"id"`
	BatchID          uuid.UUID `json:"batch_id" db:"batch_id"`
	StudentID        int64     `json:"student_id" db:"student_id"`
	FromClassID      int64     `json:"from_class_id" db:"from_class_id"`
	FromSectionID    *int64    `json:"from_section_id" db:"from_section_id"`
	ToClassID        int64     `json:"to_class_id" db:"to_class_id"`
	ToSectionID      *int64    `json:"to_section_id" db:"to_section_id"`
	FromAcademicYear string    `json:"from_academic_year" db:"from_academic_year"`
	ToAcademicYear   string    `json:"to_academic_year" db:"to_academic_year"`
	Notes            string    `json:"notes" db:"notes"`
	Actor            string    `json:"actor" db:"actor"`
	PromotedAt       time.Time `json:"promoted_at" db:"promoted_at"`
}

// PromotionFailure explains why one student of a batch was not promoted
type PromotionFailure struct {
	StudentID int64  `json:"student_id"`
	Reason    string `json:"reason"`
}

// PromotionResult aggregates the outcome of a batch
type PromotionResult struct {
	BatchID       uuid.UUID
	Requested     int
	PromotedCount int
	Failed        []PromotionFailure
	Message       string
}

// Summarize fills Message from the counts.
func (r *PromotionResult) Summarize() {
	r.Message = fmt.Sprintf("Promoted %d of %d students.", r.PromotedCount, r.Requested)
}

// Occupancy is the Vacancy Advisor's answer for one placement
type Occupancy struct {
	ClassID   int64  `json:"class_id"`
	SectionID *int64 `json:"section_id"`
	Count     int64  `json:"count"`
	Vacant    bool   `json:"vacant"`
}
