package dto

import (
	"strings"
	"time"

	"github.com/yigit/schoolhub/internal/app/models"
)

// dateLayout is the wire format for calendar dates
const dateLayout = "2006-01-02"

// CreateStudentRequest represents the data needed to admit a student
type CreateStudentRequest struct {
	AdmissionNumber string `json:"admission_number" binding:"required,max=50,admission_number"`
	AttendanceID    string `json:"attendance_id" binding:"required,max=50"`
	FirstName       string `json:"first_name" binding:"required,max=100"`
	MiddleName      string `json:"middle_name" binding:"max=100"`
	LastName        string `json:"last_name" binding:"max=100"`
	Gender          string `json:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
	DateOfBirth     string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	ClassID         int64  `json:"class_id" binding:"required,gt=0"`
	SectionID       *int64 `json:"section_id" binding:"omitempty,gt=0"`
	AcademicYear    string `json:"academic_year" binding:"required,academic_year"`
	AdmissionDate   string `json:"admission_date" binding:"omitempty,datetime=2006-01-02"`
	FatherName      string `json:"father_name" binding:"max=150"`
	MotherName      string `json:"mother_name" binding:"max=150"`
	ContactNumber   string `json:"contact_number" binding:"max=30"`
	Email           string `json:"email" binding:"omitempty,email"`
	Address         string `json:"address" binding:"max=500"`
}

// ToModel converts the request to a Student. Dates were validated by binding.
func (r *CreateStudentRequest) ToModel() *models.Student {
	s := &models.Student{
		AdmissionNumber: strings.TrimSpace(r.AdmissionNumber),
		AttendanceID:    strings.TrimSpace(r.AttendanceID),
		FirstName:       strings.TrimSpace(r.FirstName),
		MiddleName:      strings.TrimSpace(r.MiddleName),
		LastName:        strings.TrimSpace(r.LastName),
		Gender:          models.Gender(r.Gender),
		ClassID:         r.ClassID,
		SectionID:       r.SectionID,
		AcademicYear:    strings.TrimSpace(r.AcademicYear),
		FatherName:      r.FatherName,
		MotherName:      r.MotherName,
		ContactNumber:   r.ContactNumber,
		Email:           r.Email,
		Address:         r.Address,
	}
	if t, err := time.Parse(dateLayout, r.DateOfBirth); err == nil {
		s.DateOfBirth = &t
	}
	if t, err := time.Parse(dateLayout, r.AdmissionDate); err == nil {
		s.AdmissionDate = &t
	}
	return s
}

// StudentListResponse is returned by GET /students and GET /students/bin
type StudentListResponse struct {
	Success    bool              `json:"success" example:"true"`
	Data       []*models.Student `json:"data"`
	Pagination PaginationInfo    `json:"pagination"`
}

// StudentIDsRequest carries the ids for bulk lifecycle operations
type StudentIDsRequest struct {
	StudentIDs []int64 `json:"student_ids" binding:"required,min=1,unique,dive,gt=0"`
}

// BulkFailure is one entity of a bulk operation that did not go through
type BulkFailure struct {
	StudentID int64  `json:"student_id"`
	Reason    string `json:"reason"`
}

// BulkResult reports every outcome of a bulk operation
type BulkResult struct {
	Succeeded []int64       `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}
