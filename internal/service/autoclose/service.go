package autoclose

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/chronopoint/attendance-backend-go/internal/domain/overtime"
	"github.com/chronopoint/attendance-backend-go/internal/domain/punch"
	"github.com/chronopoint/attendance-backend-go/internal/domain/schedule"
	"github.com/chronopoint/attendance-backend-go/internal/domain/tenant"
)

// defaultDetectionWindowHours is how long after an IN (or after shift end)
// a session may stay open before it is flagged MISSING_OUT.
const defaultDetectionWindowHours = 12

// Service owns the two batch stages of orphan session handling: flagging
// MISSING_OUT on stale INs, then closing flagged sessions with a synthetic
// OUT at the expected shift end.
type Service struct {
	punchRepo    punch.Repository
	tenantRepo   tenant.Repository
	settingsRepo tenant.SettingsRepository
	overtimeRepo overtime.Repository
	resolver     schedule.Resolver
	logger       *slog.Logger
}

func NewService(
	punchRepo punch.Repository,
	tenantRepo tenant.Repository,
	settingsRepo tenant.SettingsRepository,
	overtimeRepo overtime.Repository,
	resolver schedule.Resolver,
	logger *slog.Logger,
) *Service {
	return &Service{
		punchRepo:    punchRepo,
		tenantRepo:   tenantRepo,
		settingsRepo: settingsRepo,
		overtimeRepo: overtimeRepo,
		resolver:     resolver,
		logger:       logger,
	}
}

// DetectMissingOut flags yesterday's INs that never got an OUT inside their
// detection window. Night shifts get until noon the next day before being
// flagged.
func (s *Service) DetectMissingOut(ctx context.Context) error {
	tenants, err := s.tenantRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tenants: %w", err)
	}

	now := time.Now().UTC()
	flagged := 0

	for _, t := range tenants {
		loc := s.location(t)
		dayStart, dayEnd := yesterdayBounds(now, loc)

		ins, err := s.punchRepo.ListInsForRange(ctx, t.ID, dayStart, dayEnd)
		if err != nil {
			s.logger.Error("missing-out scan failed", "tenant_id", t.ID, "error", err)
			continue
		}

		for _, in := range ins {
			if in.AnomalyTypeIs(punch.AnomalyMissingOut) ||
				in.AnomalyTypeIs(punch.AnomalyAutoClosed) ||
				in.AnomalyTypeIs(punch.AnomalyAutoClosedCheckOvertime) ||
				in.AnomalyTypeIs(punch.AnomalyDebounceBlocked) {
				continue
			}

			windowEnd := s.detectionWindowEnd(ctx, t.ID, in, loc)
			if now.Before(windowEnd) {
				// Session may still legitimately close (night shift).
				continue
			}

			out, err := s.punchRepo.FirstOutAfter(ctx, t.ID, in.EmployeeID, in.Timestamp, windowEnd)
			if err != nil {
				s.logger.Error("missing-out pairing failed",
					"tenant_id", t.ID, "punch_id", in.ID, "error", err)
				continue
			}
			if out != nil {
				continue
			}

			anomalyType := punch.AnomalyMissingOut
			hoursOpen := int(now.Sub(in.Timestamp).Hours())
			note := fmt.Sprintf("session open for %dh with no matching OUT", hoursOpen)
			if err := s.punchRepo.SetAnomaly(ctx, in.ID, t.ID, true, &anomalyType, &note); err != nil {
				s.logger.Error("failed to flag missing out",
					"tenant_id", t.ID, "punch_id", in.ID, "error", err)
				continue
			}

			flagged++
			s.logger.Warn("missing OUT detected",
				"tenant_id", t.ID, "employee_id", in.EmployeeID,
				"in_timestamp", in.Timestamp)
		}
	}

	if flagged > 0 {
		s.logger.Info("missing-out detection finished", "flagged", flagged)
	}
	return nil
}

// CloseOrphanSessions creates a synthetic OUT for every MISSING_OUT session
// of the previous day. Approved overtime extends the close time; pending
// overtime closes the session but marks it for HR review.
func (s *Service) CloseOrphanSessions(ctx context.Context) error {
	tenants, err := s.tenantRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tenants: %w", err)
	}

	now := time.Now().UTC()
	closed := 0

	for _, t := range tenants {
		settings, err := s.settingsRepo.GetSettings(ctx, t.ID)
		if err != nil {
			s.logger.Error("settings lookup failed, skipping tenant",
				"tenant_id", t.ID, "error", err)
			continue
		}
		if !settings.AutoCloseOrphans() {
			continue
		}

		loc := s.location(t)
		dayStart, dayEnd := yesterdayBounds(now, loc)

		orphans, err := s.punchRepo.ListMissingOut(ctx, t.ID, dayStart, dayEnd)
		if err != nil {
			s.logger.Error("orphan session scan failed", "tenant_id", t.ID, "error", err)
			continue
		}

		for _, in := range orphans {
			n, err := s.closeSession(ctx, t, settings, in, loc, now)
			if err != nil {
				s.logger.Error("failed to close orphan session",
					"tenant_id", t.ID, "punch_id", in.ID, "error", err)
				continue
			}
			closed += n
		}
	}

	if closed > 0 {
		s.logger.Info("auto-close finished", "closed", closed)
	}
	return nil
}

func (s *Service) closeSession(ctx context.Context, t tenant.Tenant, settings *tenant.Settings, in punch.Punch, loc *time.Location, now time.Time) (int, error) {
	// A real OUT may have arrived since the flag was set; clean up instead.
	out, err := s.punchRepo.FirstOutAfter(ctx, t.ID, in.EmployeeID, in.Timestamp, now)
	if err != nil {
		return 0, err
	}
	if out != nil {
		if err := s.punchRepo.SetAnomaly(ctx, in.ID, t.ID, false, nil, nil); err != nil {
			return 0, err
		}
		s.logger.Info("stale MISSING_OUT cleared, real OUT found",
			"tenant_id", t.ID, "punch_id", in.ID)
		return 0, nil
	}

	baseEnd, baseEndStr := s.baseEndTime(ctx, t.ID, in, settings, loc)

	inDay := time.Date(in.Timestamp.In(loc).Year(), in.Timestamp.In(loc).Month(), in.Timestamp.In(loc).Day(), 0, 0, 0, 0, loc)

	ot, err := s.overtimeRepo.FindLargestForDay(ctx, t.ID, in.EmployeeID, inDay)
	if err != nil {
		return 0, err
	}

	autoOutTime := baseEnd
	outType := punch.AnomalyAutoCorrection
	inType := punch.AnomalyAutoClosed
	note := fmt.Sprintf("automatic OUT at shift end (%s), badge-out missing", baseEndStr)

	switch {
	case ot != nil && ot.Status == overtime.StatusApproved && ot.Hours > 0 && settings.CheckApprovedOvertime():
		autoOutTime = baseEnd.Add(time.Duration(ot.Hours * float64(time.Hour)))
		note = fmt.Sprintf("automatic OUT at shift end (%s) plus %.1fh approved overtime", baseEndStr, ot.Hours)
	case ot != nil && ot.Status == overtime.StatusPending:
		outType = punch.AnomalyAutoClosedCheckOvertime
		inType = punch.AnomalyAutoClosedCheckOvertime
		note = fmt.Sprintf("automatic OUT at shift end (%s); pending overtime of %.1fh needs HR review", baseEndStr, ot.Hours)
		if settings.BufferMinutes() > 0 {
			autoOutTime = baseEnd.Add(time.Duration(settings.BufferMinutes()) * time.Minute)
		}
	case settings.BufferMinutes() > 0:
		autoOutTime = baseEnd.Add(time.Duration(settings.BufferMinutes()) * time.Minute)
		note = fmt.Sprintf("automatic OUT at shift end (%s) plus %d min buffer", baseEndStr, settings.BufferMinutes())
	}

	rawPayload, _ := json.Marshal(map[string]interface{}{
		"auto_generated": true,
		"original_in_id": in.ID,
		"generated_at":   now.Format(time.RFC3339),
		"reason":         "MISSING_OUT_AUTO_CLOSE",
		"base_end_time":  baseEnd.Format(time.RFC3339),
	})

	if _, err := s.punchRepo.Create(ctx, punch.Punch{
		TenantID:    t.ID,
		EmployeeID:  in.EmployeeID,
		DeviceID:    in.DeviceID,
		Timestamp:   autoOutTime.UTC(),
		Direction:   punch.DirectionOut,
		Method:      punch.MethodManual,
		HasAnomaly:  true,
		AnomalyType: &outType,
		AnomalyNote: &note,
		RawPayload:  rawPayload,
	}); err != nil {
		return 0, err
	}

	inNote := fmt.Sprintf("session auto-closed at %s. %s", autoOutTime.In(loc).Format("15:04"), note)
	if err := s.punchRepo.SetAnomaly(ctx, in.ID, t.ID, true, &inType, &inNote); err != nil {
		return 0, err
	}

	s.logger.Info("orphan session closed",
		"tenant_id", t.ID, "employee_id", in.EmployeeID,
		"in_timestamp", in.Timestamp, "out_timestamp", autoOutTime)

	return 1, nil
}

// baseEndTime resolves where the synthetic OUT should land before overtime
// and buffers. A published schedule's end wins and rolls to the next day for
// night windows; an assigned shift end is used as-is; otherwise the tenant's
// configured default close time applies.
func (s *Service) baseEndTime(ctx context.Context, tenantID string, in punch.Punch, settings *tenant.Settings, loc *time.Location) (time.Time, string) {
	localIn := in.Timestamp.In(loc)

	res, err := s.resolver.Resolve(ctx, tenantID, in.EmployeeID, localIn)
	if err != nil {
		s.logger.Warn("shift resolution failed during auto-close",
			"tenant_id", tenantID, "employee_id", in.EmployeeID, "error", err)
		res = schedule.Resolution{Source: schedule.SourceNone}
	}

	endStr := settings.DefaultEndTime()
	rollNextDay := false

	if res.HasWindow() {
		endStr = res.EffectiveEnd()
		if res.Source == schedule.SourceSchedule && res.CrossesMidnight() {
			rollNextDay = true
		}
	}

	endMin := schedule.ClockMinutes(endStr)
	if endMin < 0 {
		endMin = schedule.ClockMinutes(tenant.DefaultAutoCloseEndTime)
		endStr = tenant.DefaultAutoCloseEndTime
	}

	baseEnd := time.Date(localIn.Year(), localIn.Month(), localIn.Day(), endMin/60, endMin%60, 0, 0, loc)
	if rollNextDay {
		baseEnd = baseEnd.Add(24 * time.Hour)
	}

	return baseEnd, endStr
}

// detectionWindowEnd computes when a session must have closed before being
// flagged. Shifted employees get their shift end plus the default window;
// night shifts wait until noon the following day.
func (s *Service) detectionWindowEnd(ctx context.Context, tenantID string, in punch.Punch, loc *time.Location) time.Time {
	localIn := in.Timestamp.In(loc)

	res, err := s.resolver.Resolve(ctx, tenantID, in.EmployeeID, localIn)
	if err != nil || !res.HasWindow() {
		return in.Timestamp.Add(defaultDetectionWindowHours * time.Hour)
	}

	endMin := schedule.ClockMinutes(res.EffectiveEnd())
	if endMin < 0 {
		return in.Timestamp.Add(defaultDetectionWindowHours * time.Hour)
	}

	end := time.Date(localIn.Year(), localIn.Month(), localIn.Day(), endMin/60, endMin%60, 0, 0, loc)

	if res.CrossesMidnight() {
		next := end.Add(24 * time.Hour)
		return time.Date(next.Year(), next.Month(), next.Day(), 12, 0, 0, 0, loc)
	}

	return end.Add(defaultDetectionWindowHours * time.Hour)
}

func (s *Service) location(t tenant.Tenant) *time.Location {
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		s.logger.Warn("invalid tenant timezone, using UTC",
			"tenant_id", t.ID, "timezone", t.Timezone)
		return time.UTC
	}
	return loc
}

func yesterdayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return today.Add(-24 * time.Hour), today
}
