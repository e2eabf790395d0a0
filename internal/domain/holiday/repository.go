package holiday

import (
	"context"
	"time"
)

type Repository interface {
	// FindOnDay returns the tenant holiday on the given date, or nil.
	FindOnDay(ctx context.Context, tenantID string, date time.Time) (*Holiday, error)
}
