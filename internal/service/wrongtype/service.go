package wrongtype

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/chronopoint/attendance-backend-go/internal/domain/punch"
	"github.com/chronopoint/attendance-backend-go/internal/domain/schedule"
	"github.com/chronopoint/attendance-backend-go/internal/domain/tenant"
)

// DetectorImpl flags punches whose declared direction likely contradicts the
// employee's shift window or the preceding punch sequence. Detection is
// configured per tenant, with optional per-department overrides.
type DetectorImpl struct {
	settingsRepo tenant.SettingsRepository
	punchRepo    punch.Repository
	resolver     schedule.Resolver
	logger       *slog.Logger
}

func NewDetector(
	settingsRepo tenant.SettingsRepository,
	punchRepo punch.Repository,
	resolver schedule.Resolver,
	logger *slog.Logger,
) punch.WrongTypeDetector {
	return &DetectorImpl{
		settingsRepo: settingsRepo,
		punchRepo:    punchRepo,
		resolver:     resolver,
		logger:       logger,
	}
}

// Detect implements punch.WrongTypeDetector.
func (d *DetectorImpl) Detect(ctx context.Context, tenantID, employeeID string, ts time.Time, declared punch.Direction, departmentID *string) punch.WrongTypeResult {
	cfg, err := d.effectiveConfig(ctx, tenantID, departmentID)
	if err != nil {
		// Detection is advisory; never block ingestion on a config error.
		d.logger.Warn("wrong-type config load failed, skipping detection",
			"tenant_id", tenantID, "error", err)
		return notWrong(declared, "configuration unavailable", punch.MethodNone)
	}

	if !cfg.Enabled {
		return notWrong(declared, "detection disabled", punch.MethodNone)
	}

	method := punch.DetectionMethod(cfg.Method)

	if method == punch.MethodShiftBased || method == punch.MethodCombined {
		res := d.detectByShift(ctx, tenantID, employeeID, ts, declared, cfg.MarginMinutes)
		if res.IsWrongType && res.Confidence >= cfg.Threshold {
			return res
		}
		if method == punch.MethodShiftBased {
			return downgrade(res)
		}
	}

	if method == punch.MethodContextBased || method == punch.MethodCombined {
		res := d.detectByContext(ctx, tenantID, employeeID, ts, declared)
		if res.IsWrongType && res.Confidence >= cfg.Threshold {
			return res
		}
		if method == punch.MethodContextBased {
			return downgrade(res)
		}
	}

	return notWrong(declared, "no direction anomaly detected", method)
}

// detectByShift compares the punch time with the employee's shift window for
// the day. Night shifts normalize the end (and early-morning punches) by
// adding a full day before measuring distances.
func (d *DetectorImpl) detectByShift(ctx context.Context, tenantID, employeeID string, ts time.Time, declared punch.Direction, marginMinutes int) punch.WrongTypeResult {
	res, err := d.resolver.Resolve(ctx, tenantID, employeeID, ts)
	if err != nil {
		d.logger.Warn("shift resolution failed during wrong-type detection",
			"tenant_id", tenantID, "employee_id", employeeID, "error", err)
		return notWrong(declared, "shift resolution failed", punch.MethodShiftBased)
	}

	if !res.HasWindow() {
		return notWrong(declared, "no shift found for employee", punch.MethodShiftBased)
	}

	startMin := schedule.ClockMinutes(res.EffectiveStart())
	endMin := schedule.ClockMinutes(res.EffectiveEnd())
	if startMin < 0 || endMin < 0 {
		return notWrong(declared, "invalid shift window", punch.MethodShiftBased)
	}

	punchMin := ts.Hour()*60 + ts.Minute()

	var distToStart, distToEnd int
	if endMin < startMin {
		// Night shift, e.g. 21:00-05:00.
		normalizedPunch := punchMin
		if punchMin < startMin {
			normalizedPunch += 1440
		}
		distToStart = abs(normalizedPunch - startMin)
		distToEnd = abs(normalizedPunch - (endMin + 1440))
	} else {
		distToStart = abs(punchMin - startMin)
		distToEnd = abs(punchMin - endMin)
	}

	var expected punch.Direction
	var confidence int
	var dist int

	switch {
	case distToStart <= marginMinutes && distToEnd > marginMinutes:
		expected = punch.DirectionIn
		dist = distToStart
		confidence = scaledConfidence(distToStart, marginMinutes)
	case distToEnd <= marginMinutes && distToStart > marginMinutes:
		expected = punch.DirectionOut
		dist = distToEnd
		confidence = scaledConfidence(distToEnd, marginMinutes)
	case distToStart <= marginMinutes && distToEnd <= marginMinutes:
		// Both ends within the margin; pick the closer one, entry on a tie.
		if distToStart <= distToEnd {
			expected = punch.DirectionIn
			dist = distToStart
		} else {
			expected = punch.DirectionOut
			dist = distToEnd
		}
		confidence = 50
	default:
		return notWrong(declared, "punch outside shift margins", punch.MethodShiftBased)
	}

	if expected != declared {
		side := "start"
		if expected == punch.DirectionOut {
			side = "end"
		}
		return punch.WrongTypeResult{
			IsWrongType: true,
			Confidence:  confidence,
			Expected:    &expected,
			Actual:      declared,
			Reason: fmt.Sprintf("%s punch near shift %s (%s-%s), distance %d min",
				declared, side, res.EffectiveStart(), res.EffectiveEnd(), dist),
			Method: punch.MethodShiftBased,
		}
	}

	return notWrong(declared, "direction consistent with shift", punch.MethodShiftBased)
}

// detectByContext checks the punch against the last valid punch. Two same
// direction punches inside fourteen hours point at a wrong declared direction.
func (d *DetectorImpl) detectByContext(ctx context.Context, tenantID, employeeID string, ts time.Time, declared punch.Direction) punch.WrongTypeResult {
	last, err := d.punchRepo.LastBefore(ctx, tenantID, employeeID, ts, []punch.AnomalyType{
		punch.AnomalyDebounceBlocked,
		punch.AnomalyProbableWrongType,
	})
	if err != nil {
		d.logger.Warn("last punch lookup failed during wrong-type detection",
			"tenant_id", tenantID, "employee_id", employeeID, "error", err)
		return notWrong(declared, "punch history unavailable", punch.MethodContextBased)
	}

	if last == nil {
		if declared == punch.DirectionOut {
			expected := punch.DirectionIn
			return punch.WrongTypeResult{
				IsWrongType: true,
				Confidence:  70,
				Expected:    &expected,
				Actual:      declared,
				Reason:      "first punch recorded as OUT, expected IN",
				Method:      punch.MethodContextBased,
			}
		}
		return notWrong(declared, "first punch IN is consistent", punch.MethodContextBased)
	}

	hoursSince := ts.Sub(last.Timestamp).Hours()

	if last.Direction == declared && hoursSince < 14 {
		expected := declared.Opposite()
		confidence := 65
		if hoursSince < 12 {
			confidence = 85
		}
		return punch.WrongTypeResult{
			IsWrongType: true,
			Confidence:  confidence,
			Expected:    &expected,
			Actual:      declared,
			Reason: fmt.Sprintf("two consecutive %s punches (%.1fh apart), expected %s",
				declared, hoursSince, expected),
			Method: punch.MethodContextBased,
		}
	}

	return notWrong(declared, "direction sequence is consistent", punch.MethodContextBased)
}

func (d *DetectorImpl) effectiveConfig(ctx context.Context, tenantID string, departmentID *string) (tenant.WrongTypeConfig, error) {
	settings, err := d.settingsRepo.GetSettings(ctx, tenantID)
	if err != nil {
		return tenant.WrongTypeConfig{}, fmt.Errorf("failed to load tenant settings: %w", err)
	}

	var deptSettings *tenant.DepartmentSettings
	if departmentID != nil && *departmentID != "" {
		deptSettings, err = d.settingsRepo.GetDepartmentSettings(ctx, tenantID, *departmentID)
		if err != nil {
			return tenant.WrongTypeConfig{}, fmt.Errorf("failed to load department settings: %w", err)
		}
	}

	return tenant.ResolveWrongTypeConfig(settings, deptSettings), nil
}

// scaledConfidence decreases linearly from 100 at the window edge to 60 at
// the margin boundary.
func scaledConfidence(distance, margin int) int {
	c := int(math.Round(100 - (float64(distance)/float64(margin))*40))
	if c > 100 {
		c = 100
	}
	if c < 0 {
		c = 0
	}
	return c
}

func notWrong(actual punch.Direction, reason string, method punch.DetectionMethod) punch.WrongTypeResult {
	return punch.WrongTypeResult{
		IsWrongType: false,
		Confidence:  0,
		Actual:      actual,
		Reason:      reason,
		Method:      method,
	}
}

// downgrade strips the wrong-type verdict from a below-threshold result while
// keeping its reason for diagnostics.
func downgrade(r punch.WrongTypeResult) punch.WrongTypeResult {
	if !r.IsWrongType {
		return r
	}
	return punch.WrongTypeResult{
		IsWrongType: false,
		Confidence:  r.Confidence,
		Actual:      r.Actual,
		Reason:      r.Reason,
		Method:      r.Method,
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
