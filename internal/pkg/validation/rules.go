// Package validation holds the school-specific request rules registered on
// the validator engines.
package validation

import (
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Academic year such as "2024-2025"
	AcademicYearPattern = `^(\d{4})-(\d{4})$`

	// Admission number: letters, digits and the separators schools print on forms
	AdmissionNumberPattern = `^[A-Za-z0-9][A-Za-z0-9/_-]*$`
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	AcademicYear    *regexp.Regexp
	AdmissionNumber *regexp.Regexp
}{
	AcademicYear:    regexp.MustCompile(AcademicYearPattern),
	AdmissionNumber: regexp.MustCompile(AdmissionNumberPattern),
}

// Tags registered by Register
const (
	TagAcademicYear    = "academic_year"
	TagAdmissionNumber = "admission_number"
)

// IsAcademicYear reports whether s names two consecutive years, e.g. "2024-2025".
func IsAcademicYear(s string) bool {
	m := CompiledPatterns.AcademicYear.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	return end == start+1
}

// IsAdmissionNumber reports whether s is a well-formed admission number.
func IsAdmissionNumber(s string) bool {
	return CompiledPatterns.AdmissionNumber.MatchString(s)
}

// Register adds the school rules to v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation(TagAcademicYear, func(fl validator.FieldLevel) bool {
		return IsAcademicYear(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation(TagAdmissionNumber, func(fl validator.FieldLevel) bool {
		return IsAdmissionNumber(fl.Field().String())
	})
}
