package schedule

import (
	"context"
	"time"
)

// Resolver finds the effective shift window for an employee on a date.
// Precedence: published day schedule, then the employee's assigned shift,
// then none.
type Resolver interface {
	Resolve(ctx context.Context, tenantID, employeeID string, date time.Time) (Resolution, error)
}
