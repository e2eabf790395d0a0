package supplementary

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/chronopoint/attendance-backend-go/internal/domain/employee"
	"github.com/chronopoint/attendance-backend-go/internal/domain/holiday"
	"github.com/chronopoint/attendance-backend-go/internal/domain/punch"
	"github.com/chronopoint/attendance-backend-go/internal/domain/supplementary"
	"github.com/chronopoint/attendance-backend-go/internal/domain/tenant"
	"github.com/go-chi/jwtauth/v5"
)

type ServiceImpl struct {
	supplementary.Repository
	punchRepo    punch.Repository
	employeeRepo employee.Repository
	holidayRepo  holiday.Repository
	tenantRepo   tenant.Repository
	settingsRepo tenant.SettingsRepository
	logger       *slog.Logger
}

func NewService(
	repo supplementary.Repository,
	punchRepo punch.Repository,
	employeeRepo employee.Repository,
	holidayRepo holiday.Repository,
	tenantRepo tenant.Repository,
	settingsRepo tenant.SettingsRepository,
	logger *slog.Logger,
) supplementary.Service {
	return &ServiceImpl{
		Repository:   repo,
		punchRepo:    punchRepo,
		employeeRepo: employeeRepo,
		holidayRepo:  holidayRepo,
		tenantRepo:   tenantRepo,
		settingsRepo: settingsRepo,
		logger:       logger,
	}
}

// ClassifyDay implements supplementary.Service. Weekends win over holidays:
// a holiday that falls on a Sunday is still compensated as a Sunday.
func (s *ServiceImpl) ClassifyDay(ctx context.Context, tenantID string, date time.Time) (supplementary.DayClassification, error) {
	switch date.Weekday() {
	case time.Sunday:
		return supplementary.DayClassification{Kind: supplementary.KindWeekendSunday}, nil
	case time.Saturday:
		return supplementary.DayClassification{Kind: supplementary.KindWeekendSaturday}, nil
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	h, err := s.holidayRepo.FindOnDay(ctx, tenantID, day)
	if err != nil {
		return supplementary.DayClassification{}, fmt.Errorf("failed to check holiday: %w", err)
	}
	if h != nil {
		return supplementary.DayClassification{Kind: supplementary.KindHoliday, HolidayName: h.Name}, nil
	}

	return supplementary.DayClassification{Kind: supplementary.KindOrdinary}, nil
}

// ProcessSession implements supplementary.Service. Night sessions look at the
// IN date first: Saturday 22:00 to Sunday 06:00 compensates Saturday. When the
// IN falls on an ordinary day the OUT date is checked, covering Friday 22:00
// to Saturday 06:00.
func (s *ServiceImpl) ProcessSession(ctx context.Context, tenantID, employeeID, inPunchID, outPunchID string, in, out time.Time) (*supplementary.Day, error) {
	t, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}

	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		s.logger.Warn("invalid tenant timezone, falling back to UTC",
			"tenant_id", tenantID, "timezone", t.Timezone)
		loc = time.UTC
	}

	localIn := in.In(loc)
	localOut := out.In(loc)

	classification, err := s.ClassifyDay(ctx, tenantID, localIn)
	if err != nil {
		return nil, err
	}
	referenceDate := localIn

	if !classification.Compensable() {
		classification, err = s.ClassifyDay(ctx, tenantID, localOut)
		if err != nil {
			return nil, err
		}
		referenceDate = localOut
	}

	if !classification.Compensable() {
		return nil, nil
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}
	if !emp.IsEligibleForOvertime {
		s.logger.Debug("employee not eligible for supplementary days",
			"tenant_id", tenantID, "employee_id", employeeID)
		return nil, nil
	}

	day := time.Date(referenceDate.Year(), referenceDate.Month(), referenceDate.Day(), 0, 0, 0, 0, loc)

	existing, err := s.FindForDay(ctx, tenantID, employeeID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing supplementary day: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	settings, err := s.settingsRepo.GetSettings(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant settings: %w", err)
	}

	hoursWorked := out.Sub(in).Hours()
	minimumHours := float64(settings.SupplementaryMinimum()) / 60

	if hoursWorked < minimumHours {
		s.logger.Debug("session below supplementary minimum",
			"tenant_id", tenantID, "employee_id", employeeID,
			"hours_worked", hoursWorked, "minimum_hours", minimumHours)
		return nil, nil
	}

	var holidayName *string
	if classification.Kind == supplementary.KindHoliday {
		holidayName = &classification.HolidayName
	}

	created, err := s.Create(ctx, supplementary.Day{
		TenantID:    tenantID,
		EmployeeID:  employeeID,
		Date:        day,
		Kind:        classification.Kind,
		HolidayName: holidayName,
		HoursWorked: roundHours(hoursWorked),
		Status:      supplementary.StatusPending,
		InPunchID:   &inPunchID,
		OutPunchID:  &outPunchID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create supplementary day: %w", err)
	}

	s.logger.Info("supplementary day created",
		"tenant_id", tenantID, "employee_id", employeeID,
		"date", day.Format("2006-01-02"), "kind", created.Kind, "hours", created.HoursWorked)

	return &created, nil
}

// DetectMissingDays implements supplementary.Service. Pairs each IN in the
// range with its first following OUT and re-runs ProcessSession, which skips
// dates already recorded.
func (s *ServiceImpl) DetectMissingDays(ctx context.Context, tenantID string, from, to time.Time) (int, error) {
	ins, err := s.punchRepo.ListInsForRange(ctx, tenantID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to scan sessions: %w", err)
	}

	detected := 0
	for _, in := range ins {
		// An IN still flagged MISSING_OUT has no OUT of its own yet;
		// pairing it here would grab the next day's unrelated OUT. It
		// comes back through once auto-close synthesizes its OUT.
		if in.AnomalyTypeIs(punch.AnomalyDebounceBlocked) || in.AnomalyTypeIs(punch.AnomalyMissingOut) {
			continue
		}

		out, err := s.punchRepo.FirstOutAfter(ctx, tenantID, in.EmployeeID, in.Timestamp, time.Now().UTC())
		if err != nil {
			s.logger.Warn("session pairing failed during reconciliation",
				"tenant_id", tenantID, "punch_id", in.ID, "error", err)
			continue
		}
		if out == nil {
			continue
		}

		day, err := s.ProcessSession(ctx, tenantID, in.EmployeeID, in.ID, out.ID, in.Timestamp, out.Timestamp)
		if err != nil {
			s.logger.Warn("reconciliation session processing failed",
				"tenant_id", tenantID, "punch_id", in.ID, "error", err)
			continue
		}
		if day != nil {
			detected++
		}
	}

	return detected, nil
}

// DetectMissingDaysForYesterday implements supplementary.Service.
func (s *ServiceImpl) DetectMissingDaysForYesterday(ctx context.Context) (int, error) {
	tenants, err := s.tenantRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list tenants: %w", err)
	}

	now := time.Now().UTC()
	total := 0

	for _, t := range tenants {
		loc, err := time.LoadLocation(t.Timezone)
		if err != nil {
			loc = time.UTC
		}

		local := now.In(loc)
		today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

		n, err := s.DetectMissingDays(ctx, t.ID, today.Add(-24*time.Hour), today)
		if err != nil {
			s.logger.Error("supplementary reconciliation failed",
				"tenant_id", t.ID, "error", err)
			continue
		}
		total += n
	}

	if total > 0 {
		s.logger.Info("supplementary reconciliation finished", "detected", total)
	}
	return total, nil
}

// Approve implements supplementary.Service.
func (s *ServiceImpl) Approve(ctx context.Context, req supplementary.ReviewRequest) (supplementary.Response, error) {
	return s.review(ctx, req, supplementary.StatusApproved)
}

// Reject implements supplementary.Service.
func (s *ServiceImpl) Reject(ctx context.Context, req supplementary.ReviewRequest) (supplementary.Response, error) {
	return s.review(ctx, req, supplementary.StatusRejected)
}

func (s *ServiceImpl) review(ctx context.Context, req supplementary.ReviewRequest, status supplementary.Status) (supplementary.Response, error) {
	tenantID, err := tenantIDFromContext(ctx)
	if err != nil {
		return supplementary.Response{}, err
	}

	d, err := s.GetByID(ctx, req.ID, tenantID)
	if err != nil {
		return supplementary.Response{}, err
	}

	if d.Status != supplementary.StatusPending {
		return supplementary.Response{}, supplementary.ErrAlreadyReviewed
	}

	now := time.Now().UTC()
	d.Status = status
	d.ReviewedBy = &req.ReviewedBy
	d.ReviewedAt = &now
	if req.Note != "" {
		d.ReviewNote = &req.Note
	}
	if status == supplementary.StatusApproved {
		granted := d.HoursWorked
		if req.ApprovedHours != nil {
			granted = *req.ApprovedHours
		}
		d.ApprovedHours = &granted
	}

	if err := s.Update(ctx, d); err != nil {
		return supplementary.Response{}, err
	}

	return supplementary.ToResponse(d), nil
}

// Get implements supplementary.Service.
func (s *ServiceImpl) Get(ctx context.Context, id string) (supplementary.Response, error) {
	tenantID, err := tenantIDFromContext(ctx)
	if err != nil {
		return supplementary.Response{}, err
	}

	d, err := s.GetByID(ctx, id, tenantID)
	if err != nil {
		return supplementary.Response{}, err
	}

	return supplementary.ToResponse(d), nil
}

// List implements supplementary.Service.
func (s *ServiceImpl) List(ctx context.Context, filter supplementary.ListFilter) (supplementary.ListResponse, error) {
	if err := filter.Validate(); err != nil {
		return supplementary.ListResponse{}, err
	}

	tenantID, err := tenantIDFromContext(ctx)
	if err != nil {
		return supplementary.ListResponse{}, err
	}

	days, total, err := s.Repository.List(ctx, filter, tenantID)
	if err != nil {
		return supplementary.ListResponse{}, err
	}

	responses := make([]supplementary.Response, 0, len(days))
	for _, d := range days {
		responses = append(responses, supplementary.ToResponse(d))
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))

	return supplementary.ListResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Days:       responses,
	}, nil
}

func tenantIDFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	tenantID, ok := claims["tenant_id"].(string)
	if !ok || tenantID == "" {
		return "", fmt.Errorf("tenant_id claim is missing or invalid")
	}

	return tenantID, nil
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
