package dto

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// HandleValidationError turns binding/validator errors into a single ErrorDetail
// listing every failing field. Field names are the json names once
// middleware.RegisterValidators has run.
func HandleValidationError(err error) *ErrorDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewErrorDetail(ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
	}

	list := NewValidationErrors()
	for _, fe := range verrs {
		list.AddError(fe.Field(), formatFieldError(fe))
	}

	if !list.HasErrors() {
		return NewErrorDetail(ErrorCodeValidationFailed, "Validation failed")
	}

	detail := NewErrorDetail(ErrorCodeValidationFailed, list.Errors[0].Message)
	if len(list.Errors) == 1 {
		detail.Field = list.Errors[0].Field
	}
	return detail.WithDetails(list.Errors)
}

func formatFieldError(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + e.Param()
	case "max":
		return field + " must be at most " + e.Param()
	case "gt":
		return field + " must be greater than " + e.Param()
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return field + " must be one of: " + e.Param()
	case "unique":
		return field + " must not contain duplicates"
	case "datetime":
		return field + " must be a date in YYYY-MM-DD format"
	case "academic_year":
		return field + " must look like 2024-2025"
	case "admission_number":
		return field + " may only contain letters, digits, '-', '_' and '/'"
	default:
		return field + " validation failed: " + e.Tag()
	}
}
