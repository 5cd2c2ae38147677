package services

// Services defined in this package:
// - PromotionService: moves batches of students to a new class/section/year and keeps the audit trail
// - VacancyService: counts Active students at a placement, backed by the occupancy cache
// - RollNumberService: renumbers a class or section alphabetically
// - StudentService: admission, roster listing and the recycle-bin lifecycle
// - ClassService: class and section lookups

import (
	"fmt"

	"github.com/yigit/schoolhub/internal/app/models"
)

// sectionLabel renders a nullable section id for logs and messages.
func sectionLabel(sectionID *int64) string {
	if sectionID == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *sectionID)
}

// checkPlacement verifies that sectionID fits the class: a class with sections
// needs one of its own, a class without sections takes none.
func checkPlacement(class *models.Class, sectionID *int64) (msg string, ok bool) {
	if class.HasSections() {
		if sectionID == nil || !class.HasSection(*sectionID) {
			return "section required", false
		}
		return "", true
	}
	if sectionID != nil {
		return "invalid target section", false
	}
	return "", true
}
