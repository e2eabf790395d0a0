package overtime

import "time"

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

type Record struct {
	ID         string
	TenantID   string
	EmployeeID string
	Date       time.Time // date-only, midnight in tenant tz
	Hours      float64
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
