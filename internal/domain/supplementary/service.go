package supplementary

import (
	"context"
	"time"
)

// Service owns supplementary-day detection and the review workflow.
type Service interface {
	// ProcessSession inspects a completed IN/OUT session and creates a
	// pending day when the session touches a weekend or holiday. It is
	// idempotent per (employee, reference date).
	ProcessSession(ctx context.Context, tenantID, employeeID, inPunchID, outPunchID string, in, out time.Time) (*Day, error)

	// ClassifyDay classifies a calendar date in the tenant's timezone.
	ClassifyDay(ctx context.Context, tenantID string, date time.Time) (DayClassification, error)

	// DetectMissingDays re-scans completed sessions in [from, to) for one
	// tenant and creates any pending days the live path missed. Returns
	// the number of sessions that resolved to a supplementary day.
	DetectMissingDays(ctx context.Context, tenantID string, from, to time.Time) (int, error)

	// DetectMissingDaysForYesterday runs DetectMissingDays over yesterday
	// for every active tenant.
	DetectMissingDaysForYesterday(ctx context.Context) (int, error)

	Approve(ctx context.Context, req ReviewRequest) (Response, error)
	Reject(ctx context.Context, req ReviewRequest) (Response, error)

	Get(ctx context.Context, id string) (Response, error)
	List(ctx context.Context, filter ListFilter) (ListResponse, error)
}
