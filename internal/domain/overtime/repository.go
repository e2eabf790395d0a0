package overtime

import (
	"context"
	"time"
)

type Repository interface {
	// FindLargestForDay returns the employee's overtime record with the most
	// hours on the given date, ignoring rejected ones. Returns nil when none.
	FindLargestForDay(ctx context.Context, tenantID, employeeID string, date time.Time) (*Record, error)
}
