package models

import "time"

// Student defines the student model based on the 'students' table
type Student struct {
	ID              int64  `json:"id" db:"id" example:"10"`
	AdmissionNumber string `json:"admission_number" db:"admission_number" example:"ADM-2021-0042"`
	AttendanceID    string `json:"attendance_id" db:"attendance_id" example:"ATT-42"`

	// Placement
	ClassID      int64  `json:"class_id" db:"class_id" example:"5"`
	SectionID    *int64 `json:"section_id" db:"section_id" example:"2"`
	RollNumber   *int   `json:"roll_number" db:"roll_number" example:"7"`
	AcademicYear string `json:"academic_year" db:"academic_year" example:"2024-2025"`

	// Demographics
	FirstName   string     `json:"first_name" db:"first_name" example:"Asha"`
	MiddleName  string     `json:"middle_name,omitempty" db:"middle_name"`
	LastName    string     `json:"last_name" db:"last_name" example:"Rao"`
	Name        string     `json:"name" db:"-" example:"Asha Rao"`
	Gender      Gender     `json:"gender,omitempty" db:"gender" example:"FEMALE"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Age         int        `json:"age" db:"age" example:"10"`

	// Guardian / contact
	FatherName    string `json:"father_name,omitempty" db:"father_name"`
	MotherName    string `json:"mother_name,omitempty" db:"mother_name"`
	ContactNumber string `json:"contact_number,omitempty" db:"contact_number"`
	Email         string `json:"email,omitempty" db:"email"`
	Address       string `json:"address,omitempty" db:"address"`

	Status        StudentStatus `json:"status" db:"status" example:"ACTIVE"`
	AdmissionDate *time.Time    `json:"admission_date,omitempty" db:"admission_date"`
	DeletedAt     *time.Time    `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the student is on the active roster.
func (s *Student) IsActive() bool {
	return s.Status == StudentStatusActive
}

// Placement returns the student's current class/section/year.
func (s *Student) Placement() Placement {
	return Placement{
		ClassID:      s.ClassID,
		SectionID:    s.SectionID,
		AcademicYear: s.AcademicYear,
	}
}

// Placement is where a student sits for a given academic year.
type Placement struct {
	ClassID      int64
	SectionID    *int64
	AcademicYear string
}

// StudentFilter narrows student listings
type StudentFilter struct {
	Status    StudentStatus
	ClassID   *int64
	SectionID *int64
	Search    string
	Page      int
	Limit     int
}

// RollAssignment is one student's new roll number
type RollAssignment struct {
	StudentID  int64  `json:"student_id"`
	RollNumber int    `json:"roll_number"`
	Name       string `json:"name"`
}
