package punch

import (
	"time"

	"github.com/chronopoint/attendance-backend-go/internal/pkg/validator"
)

type RecordRequest struct {
	EmployeeID string `json:"employee_id"`
	Timestamp  string `json:"timestamp"` // RFC3339
	Direction  string `json:"direction"`
	Method     string `json:"method,omitempty"`
}

func (r *RecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if _, ok := validator.IsValidDateTime(r.Timestamp); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "timestamp",
			Message: "timestamp must be a valid RFC3339 datetime",
		})
	}

	if !Direction(r.Direction).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "direction",
			Message: "direction must be IN or OUT",
		})
	}

	if r.Method == "" {
		r.Method = string(MethodManual)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// WebhookRequest is the payload pushed by a biometric terminal. EmployeeID may
// be an internal id or a terminal badge number; resolution is the service's job.
type WebhookRequest struct {
	EmployeeID string `json:"employee_id"`
	Timestamp  string `json:"timestamp"`
	Direction  string `json:"direction"`
	RawPayload []byte `json:"raw_payload,omitempty"`
}

func (r *WebhookRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if _, ok := validator.IsValidDateTime(r.Timestamp); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "timestamp",
			Message: "timestamp must be a valid RFC3339 datetime",
		})
	}

	if !Direction(r.Direction).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "direction",
			Message: "direction must be IN or OUT",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CorrectRequest struct {
	ID            string  `json:"-"`
	NewTimestamp  *string `json:"timestamp,omitempty"`
	Note          string  `json:"note"`
	CorrectedBy   string  `json:"-"`
	ForceOverride bool    `json:"force_override,omitempty"`
}

func (r *CorrectRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Note) {
		errs = append(errs, validator.ValidationError{
			Field:   "note",
			Message: "a correction note is required",
		})
	}

	if r.NewTimestamp != nil {
		if _, ok := validator.IsValidDateTime(*r.NewTimestamp); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "timestamp",
				Message: "timestamp must be a valid RFC3339 datetime",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type Response struct {
	ID           string   `json:"id"`
	EmployeeID   string   `json:"employee_id"`
	EmployeeName *string  `json:"employee_name,omitempty"`
	Timestamp    string   `json:"timestamp"`
	Direction    string   `json:"direction"`
	Method       string   `json:"method"`
	HasAnomaly   bool     `json:"has_anomaly"`
	AnomalyType  *string  `json:"anomaly_type,omitempty"`
	AnomalyNote  *string  `json:"anomaly_note,omitempty"`
	HoursWorked  *float64 `json:"hours_worked,omitempty"`
	IsCorrected  bool     `json:"is_corrected"`
	CreatedAt    string   `json:"created_at"`
}

func ToResponse(p Punch) Response {
	var anomalyType *string
	if p.AnomalyType != nil {
		s := string(*p.AnomalyType)
		anomalyType = &s
	}

	return Response{
		ID:           p.ID,
		EmployeeID:   p.EmployeeID,
		EmployeeName: p.EmployeeName,
		Timestamp:    p.Timestamp.Format(time.RFC3339),
		Direction:    string(p.Direction),
		Method:       string(p.Method),
		HasAnomaly:   p.HasAnomaly,
		AnomalyType:  anomalyType,
		AnomalyNote:  p.AnomalyNote,
		HoursWorked:  p.HoursWorked,
		IsCorrected:  p.IsCorrected,
		CreatedAt:    p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

type ListFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	HasAnomaly *bool   `json:"has_anomaly,omitempty"`
	Direction  *string `json:"direction,omitempty"`

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

	if f.Direction != nil && *f.Direction != "" && !Direction(*f.Direction).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "direction",
			Message: "direction must be IN or OUT",
		})
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
	Punches    []Response `json:"punches"`
}
