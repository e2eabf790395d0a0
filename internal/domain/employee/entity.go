package employee

import "time"

type Employee struct {
	ID           string
	TenantID     string
	Matricule    string // badge / terminal enrolment number
	FirstName    string
	LastName     string
	DepartmentID *string

	// CurrentShiftID is the standing shift assignment, used when no published
	// day schedule exists for a date.
	CurrentShiftID *string

	// IsEligibleForOvertime also gates supplementary-day compensation.
	IsEligibleForOvertime bool
	IsActive              bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins first and last name for display.
func (e Employee) FullName() string {
	if e.FirstName == "" {
		return e.LastName
	}
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}
