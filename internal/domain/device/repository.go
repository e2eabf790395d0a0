package device

import (
	"context"
	"time"
)

type Repository interface {
	GetByID(ctx context.Context, id, tenantID string) (Device, error)

	// TouchLastSync records the moment a device last pushed a punch.
	TouchLastSync(ctx context.Context, id, tenantID string, at time.Time) error
}
