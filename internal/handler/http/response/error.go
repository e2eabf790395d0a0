package response

import (
	"errors"
	"net/http"

	"github.com/chronopoint/attendance-backend-go/internal/domain/employee"
	"github.com/chronopoint/attendance-backend-go/internal/domain/punch"
	"github.com/chronopoint/attendance-backend-go/internal/domain/supplementary"
	"github.com/chronopoint/attendance-backend-go/internal/domain/tenant"
	"github.com/chronopoint/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Punch domain errors
	case errors.Is(err, punch.ErrPunchNotFound):
		NotFound(w, "Punch not found")
	case errors.Is(err, punch.ErrAlreadyCorrected):
		Conflict(w, "Punch has already been corrected")
	case errors.Is(err, punch.ErrDeviceNotFound):
		Unauthorized(w, "Unknown or inactive device")
	case errors.Is(err, punch.ErrInvalidDeviceKey):
		Unauthorized(w, "Invalid device api key")
	case errors.Is(err, punch.ErrEmployeeUnknown):
		NotFound(w, "Employee not found for punch")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Supplementary day domain errors
	case errors.Is(err, supplementary.ErrDayNotFound):
		NotFound(w, "Supplementary day not found")
	case errors.Is(err, supplementary.ErrAlreadyReviewed):
		Conflict(w, "Supplementary day has already been reviewed")

	// Tenant domain errors
	case errors.Is(err, tenant.ErrTenantNotFound):
		NotFound(w, "Tenant not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
