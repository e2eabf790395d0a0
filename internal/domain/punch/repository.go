package punch

import (
	"context"
	"time"
)

// Repository defines data access for punch events. All methods carry tenantID
// to keep tenants isolated at the query level.
type Repository interface {
	Create(ctx context.Context, p Punch) (Punch, error)

	GetByID(ctx context.Context, id string, tenantID string) (Punch, error)

	// ListForRange returns the employee's punches with from <= timestamp < to,
	// ordered ascending. Used for day-window anomaly checks.
	ListForRange(ctx context.Context, tenantID, employeeID string, from, to time.Time) ([]Punch, error)

	// LastBefore returns the most recent punch strictly before ts, skipping
	// punches whose anomaly type is in exclude. Returns nil when none exists.
	LastBefore(ctx context.Context, tenantID, employeeID string, ts time.Time, exclude []AnomalyType) (*Punch, error)

	// FirstOutAfter returns the earliest OUT with after < timestamp <= until,
	// or nil when the session is still open.
	FirstOutAfter(ctx context.Context, tenantID, employeeID string, after, until time.Time) (*Punch, error)

	// ListInsForRange returns IN punches for a whole tenant in the range,
	// ordered ascending. Used by the missing-out detection job.
	ListInsForRange(ctx context.Context, tenantID string, from, to time.Time) ([]Punch, error)

	// ListMissingOut returns IN punches flagged MISSING_OUT in the range.
	ListMissingOut(ctx context.Context, tenantID string, from, to time.Time) ([]Punch, error)

	// SetAnomaly overwrites the anomaly fields of an existing punch.
	SetAnomaly(ctx context.Context, id, tenantID string, hasAnomaly bool, anomalyType *AnomalyType, note *string) error

	Update(ctx context.Context, p Punch) error

	List(ctx context.Context, filter ListFilter, tenantID string) ([]Punch, int64, error)
}

// TxRunner executes fn inside a single database transaction. Repository
// calls made with the context fn receives join that transaction.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
