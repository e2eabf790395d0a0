package schedule

import (
	"context"
	"time"
)

type ShiftRepository interface {
	GetByID(ctx context.Context, id, tenantID string) (ShiftWindow, error)
}

type ScheduleRepository interface {
	// FindPublishedForDay returns the employee's published schedule on the
	// given date with its shift preloaded, or nil when none exists.
	FindPublishedForDay(ctx context.Context, tenantID, employeeID string, date time.Time) (*DaySchedule, error)
}
