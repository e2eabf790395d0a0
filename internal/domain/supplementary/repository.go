package supplementary

import (
	"context"
	"time"
)

type Repository interface {
	// Create inserts a day. The table carries a unique index on
	// (tenant_id, employee_id, date); callers check FindForDay first.
	Create(ctx context.Context, d Day) (Day, error)

	GetByID(ctx context.Context, id, tenantID string) (Day, error)

	// FindForDay returns the employee's day for the reference date, or nil.
	FindForDay(ctx context.Context, tenantID, employeeID string, date time.Time) (*Day, error)

	Update(ctx context.Context, d Day) error

	List(ctx context.Context, filter ListFilter, tenantID string) ([]Day, int64, error)
}
