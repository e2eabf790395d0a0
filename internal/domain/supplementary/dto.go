package supplementary

import (
	"time"

	"github.com/chronopoint/attendance-backend-go/internal/pkg/validator"
)

type ReviewRequest struct {
	ID         string `json:"-"`
	ReviewedBy string `json:"-"`
	Note       string `json:"note,omitempty"`

	// ApprovedHours overrides the granted hours on approval. Left unset,
	// the worked hours are granted as-is.
	ApprovedHours *float64 `json:"approved_hours,omitempty"`
}

type Response struct {
	ID            string   `json:"id"`
	EmployeeID    string   `json:"employee_id"`
	EmployeeName  *string  `json:"employee_name,omitempty"`
	Date          string   `json:"date"`
	Kind          string   `json:"kind"`
	HolidayName   *string  `json:"holiday_name,omitempty"`
	HoursWorked   float64  `json:"hours_worked"`
	ApprovedHours *float64 `json:"approved_hours,omitempty"`
	Status        string   `json:"status"`
	ReviewedBy    *string  `json:"reviewed_by,omitempty"`
	ReviewedAt    *string  `json:"reviewed_at,omitempty"`
	ReviewNote    *string  `json:"review_note,omitempty"`
	CreatedAt     string   `json:"created_at"`
}

func ToResponse(d Day) Response {
	var reviewedAt *string
	if d.ReviewedAt != nil {
		s := d.ReviewedAt.Format(time.RFC3339)
		reviewedAt = &s
	}

	return Response{
		ID:            d.ID,
		EmployeeID:    d.EmployeeID,
		EmployeeName:  d.EmployeeName,
		Date:          d.Date.Format("2006-01-02"),
		Kind:          string(d.Kind),
		HolidayName:   d.HolidayName,
		HoursWorked:   d.HoursWorked,
		ApprovedHours: d.ApprovedHours,
		Status:        string(d.Status),
		ReviewedBy:    d.ReviewedBy,
		ReviewedAt:    reviewedAt,
		ReviewNote:    d.ReviewNote,
		CreatedAt:     d.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

type ListFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *ListFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}

	if f.Status != nil && *f.Status != "" {
		switch Status(*f.Status) {
		case StatusPending, StatusApproved, StatusRejected:
		default:
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be PENDING, APPROVED or REJECTED",
			})
		}
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be YYYY-MM-DD",
			})
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be YYYY-MM-DD",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListResponse struct {
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
	Days       []Response `json:"days"`
}
