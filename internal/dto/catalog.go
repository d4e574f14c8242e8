package dto

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var crnPattern = regexp.MustCompile(`^\d{5}$`)

// LookupBatchRequest asks for a batch CRN resolution.
type LookupBatchRequest struct {
	CRNs []string `json:"crns" binding:"required,min=1,max=50,dive,crn"`
}

// TimetableExportRequest asks for a weekly timetable PDF of the given CRNs.
type TimetableExportRequest struct {
	CRNs []string `json:"crns" binding:"required,min=1,max=50,dive,crn"`
}

// RegisterValidators installs the custom crn rule on gin's validator engine.
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("crn", func(fl validator.FieldLevel) bool {
		return crnPattern.MatchString(fl.Field().String())
	})
}
