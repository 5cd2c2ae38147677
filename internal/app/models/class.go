package models

import "time"

// Class is a grade level. Its name doubles as the sort key shown to operators.
type Class struct {
	ID        int64     `json:"id" db:"id" example:"5"`
	Name      string    `json:"name" db:"name" example:"Class 5"`
	Sections  []Section `json:"sections"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Section is a named subdivision of a class
type Section struct {
	ID      int64  `json:"id" db:"id" example:"2"`
	ClassID int64  `json:"class_id" db:"class_id" example:"5"`
	Name    string `json:"name" db:"name" example:"A"`
}

// HasSections reports whether promotions into this class must pick a section.
func (c *Class) HasSections() bool {
	return len(c.Sections) > 0
}

// HasSection reports whether sectionID belongs to the class.
func (c *Class) HasSection(sectionID int64) bool {
	for _, s := range c.Sections {
		if s.ID == sectionID {
			return true
		}
	}
	return false
}

// HasSectionNamed reports whether the class already has a section called name.
func (c *Class) HasSectionNamed(name string) bool {
	for _, s := range c.Sections {
		if s.Name == name {
			return true
		}
	}
	return false
}
