package punch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chronopoint/attendance-backend-go/internal/domain/punch"
	"github.com/chronopoint/attendance-backend-go/internal/domain/tenant"
)

// anomalyDetector classifies an incoming punch against the same-day punch
// sequence. Rules: an IN after an unclosed IN is DOUBLE_IN, an OUT with no
// prior IN that day is MISSING_IN. MISSING_OUT is a batch concern and never
// produced here.
type anomalyDetector struct {
	punchRepo  punch.Repository
	tenantRepo tenant.Repository
	logger     *slog.Logger
}

func NewAnomalyDetector(punchRepo punch.Repository, tenantRepo tenant.Repository, logger *slog.Logger) punch.AnomalyDetector {
	return &anomalyDetector{
		punchRepo:  punchRepo,
		tenantRepo: tenantRepo,
		logger:     logger,
	}
}

// Detect implements punch.AnomalyDetector.
func (d *anomalyDetector) Detect(ctx context.Context, tenantID, employeeID string, ts time.Time, direction punch.Direction) punch.AnomalyResult {
	loc := d.tenantLocation(ctx, tenantID)

	local := ts.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	records, err := d.punchRepo.ListForRange(ctx, tenantID, employeeID, dayStart, dayEnd)
	if err != nil {
		// Detection is advisory; a lookup failure must not block ingestion.
		d.logger.Warn("day punch lookup failed, skipping anomaly detection",
			"tenant_id", tenantID, "employee_id", employeeID, "error", err)
		return punch.AnomalyResult{}
	}

	// Only punches before this one matter, and blocked duplicates are noise.
	var prior []punch.Punch
	for _, r := range records {
		if !r.Timestamp.Before(ts) {
			continue
		}
		if r.AnomalyTypeIs(punch.AnomalyDebounceBlocked) {
			continue
		}
		prior = append(prior, r)
	}

	switch direction {
	case punch.DirectionIn:
		return detectDoubleIn(prior, ts)
	case punch.DirectionOut:
		return detectMissingIn(prior)
	}

	return punch.AnomalyResult{}
}

func detectDoubleIn(prior []punch.Punch, ts time.Time) punch.AnomalyResult {
	var lastIn *punch.Punch
	for i := range prior {
		if prior[i].Direction == punch.DirectionIn {
			lastIn = &prior[i]
		}
	}
	if lastIn == nil {
		return punch.AnomalyResult{}
	}

	// An OUT between the two INs means a closed session, so a second IN
	// is a legitimate new session (split shifts).
	for _, r := range prior {
		if r.Direction == punch.DirectionOut && r.Timestamp.After(lastIn.Timestamp) {
			return punch.AnomalyResult{}
		}
	}

	return punch.AnomalyResult{
		HasAnomaly: true,
		Type:       punch.AnomalyDoubleIn,
		Note: fmt.Sprintf("duplicate IN: previous IN at %s has no matching OUT",
			lastIn.Timestamp.Format("15:04")),
	}
}

func detectMissingIn(prior []punch.Punch) punch.AnomalyResult {
	for _, r := range prior {
		if r.Direction == punch.DirectionIn {
			return punch.AnomalyResult{}
		}
	}

	return punch.AnomalyResult{
		HasAnomaly: true,
		Type:       punch.AnomalyMissingIn,
		Note:       "OUT recorded with no IN earlier that day",
	}
}

func (d *anomalyDetector) tenantLocation(ctx context.Context, tenantID string) *time.Location {
	t, err := d.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		d.logger.Warn("tenant lookup failed, using UTC day window",
			"tenant_id", tenantID, "error", err)
		return time.UTC
	}

	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		d.logger.Warn("invalid tenant timezone, using UTC day window",
			"tenant_id", tenantID, "timezone", t.Timezone)
		return time.UTC
	}

	return loc
}
