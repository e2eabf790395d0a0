package supplementary

import "time"

// DayKind classifies a calendar date for supplementary-day purposes.
type DayKind string

const (
	KindOrdinary        DayKind = "ORDINARY"
	KindWeekendSaturday DayKind = "WEEKEND_SATURDAY"
	KindWeekendSunday   DayKind = "WEEKEND_SUNDAY"
	KindHoliday         DayKind = "HOLIDAY"
)

// DayClassification is the outcome of classifying a date. HolidayName is set
// only when Kind is HOLIDAY.
type DayClassification struct {
	Kind        DayKind
	HolidayName string
}

// Compensable reports whether work on a day of this kind earns a
// supplementary day.
func (c DayClassification) Compensable() bool {
	return c.Kind != KindOrdinary
}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Day is a pending or granted compensation day earned by working on a
// weekend or holiday. At most one exists per employee per reference date.
type Day struct {
	ID          string
	TenantID    string
	EmployeeID  string
	Date        time.Time // reference date, date-only in tenant tz
	Kind        DayKind
	HolidayName *string
	HoursWorked float64
	Status      Status

	// ApprovedHours is set on approval; defaults to HoursWorked.
	ApprovedHours *float64

	InPunchID  *string
	OutPunchID *string

	ReviewedBy *string
	ReviewedAt *time.Time
	ReviewNote *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	EmployeeName *string
}
