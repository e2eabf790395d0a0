package punch

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/chronopoint/attendance-backend-go/internal/domain/device"
	"github.com/chronopoint/attendance-backend-go/internal/domain/employee"
	"github.com/chronopoint/attendance-backend-go/internal/domain/punch"
	"github.com/chronopoint/attendance-backend-go/internal/domain/schedule"
	"github.com/chronopoint/attendance-backend-go/internal/domain/supplementary"
	"github.com/chronopoint/attendance-backend-go/internal/domain/tenant"
	"github.com/chronopoint/attendance-backend-go/internal/pkg/debounce"
	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/crypto/bcrypt"
)

type ServiceImpl struct {
	punch.Repository
	employeeRepo     employee.Repository
	deviceRepo       device.Repository
	settingsRepo     tenant.SettingsRepository
	anomalyDetector  punch.AnomalyDetector
	wrongTypeDetect  punch.WrongTypeDetector
	supplementarySvc supplementary.Service
	resolver         schedule.Resolver
	tx               punch.TxRunner
	guard            *debounce.Guard
	logger           *slog.Logger
}

func NewPunchService(
	repo punch.Repository,
	employeeRepo employee.Repository,
	deviceRepo device.Repository,
	settingsRepo tenant.SettingsRepository,
	anomalyDetector punch.AnomalyDetector,
	wrongTypeDetect punch.WrongTypeDetector,
	supplementarySvc supplementary.Service,
	resolver schedule.Resolver,
	tx punch.TxRunner,
	guard *debounce.Guard,
	logger *slog.Logger,
) punch.Service {
	return &ServiceImpl{
		Repository:       repo,
		employeeRepo:     employeeRepo,
		deviceRepo:       deviceRepo,
		settingsRepo:     settingsRepo,
		anomalyDetector:  anomalyDetector,
		wrongTypeDetect:  wrongTypeDetect,
		supplementarySvc: supplementarySvc,
		resolver:         resolver,
		tx:               tx,
		guard:            guard,
		logger:           logger,
	}
}

// Record implements punch.Service.
func (s *ServiceImpl) Record(ctx context.Context, req punch.RecordRequest) (punch.Response, error) {
	if err := req.Validate(); err != nil {
		return punch.Response{}, err
	}

	tenantID, err := tenantIDFromContext(ctx)
	if err != nil {
		return punch.Response{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, tenantID)
	if err != nil {
		return punch.Response{}, err
	}

	ts, _ := time.Parse(time.RFC3339, req.Timestamp)

	p, err := s.ingest(ctx, ingestParams{
		tenantID:   tenantID,
		employee:   emp,
		timestamp:  ts.UTC(),
		direction:  punch.Direction(req.Direction),
		method:     punch.Method(req.Method),
		rawPayload: nil,
	})
	if err != nil {
		return punch.Response{}, err
	}

	return punch.ToResponse(p), nil
}

// HandleWebhook implements punch.Service. The terminal authenticates with its
// api key; the employee field may hold either an internal id or a badge
// number.
func (s *ServiceImpl) HandleWebhook(ctx context.Context, tenantID, deviceID, apiKey string, req punch.WebhookRequest) (punch.Response, error) {
	if err := req.Validate(); err != nil {
		return punch.Response{}, err
	}

	dev, err := s.deviceRepo.GetByID(ctx, deviceID, tenantID)
	if err != nil {
		return punch.Response{}, err
	}
	if !dev.IsActive {
		return punch.Response{}, punch.ErrDeviceNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(dev.APIKeyHash), []byte(apiKey)) != nil {
		return punch.Response{}, punch.ErrInvalidDeviceKey
	}

	emp, err := s.resolveEmployee(ctx, req.EmployeeID, tenantID)
	if err != nil {
		return punch.Response{}, err
	}

	ts, _ := time.Parse(time.RFC3339, req.Timestamp)

	p, err := s.ingest(ctx, ingestParams{
		tenantID:   tenantID,
		employee:   emp,
		deviceID:   &dev.ID,
		timestamp:  ts.UTC(),
		direction:  punch.Direction(req.Direction),
		method:     punch.MethodTerminal,
		rawPayload: req.RawPayload,
	})
	if err != nil {
		return punch.Response{}, err
	}

	if err := s.deviceRepo.TouchLastSync(ctx, dev.ID, tenantID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update device last sync",
			"tenant_id", tenantID, "device_id", dev.ID, "error", err)
	}

	return punch.ToResponse(p), nil
}

type ingestParams struct {
	tenantID   string
	employee   employee.Employee
	deviceID   *string
	timestamp  time.Time
	direction  punch.Direction
	method     punch.Method
	rawPayload []byte
}

func (s *ServiceImpl) ingest(ctx context.Context, params ingestParams) (punch.Punch, error) {
	p := punch.Punch{
		TenantID:   params.tenantID,
		EmployeeID: params.employee.ID,
		DeviceID:   params.deviceID,
		Timestamp:  params.timestamp,
		Direction:  params.direction,
		Method:     params.method,
		RawPayload: params.rawPayload,
	}

	// Debounce only terminal punches; staff entries are deliberate.
	if params.method == punch.MethodTerminal {
		if blocked := s.debounced(ctx, params.tenantID, params.employee.ID); blocked {
			anomalyType := punch.AnomalyDebounceBlocked
			note := "duplicate punch suppressed by debounce window"
			p.HasAnomaly = true
			p.AnomalyType = &anomalyType
			p.AnomalyNote = &note
			return s.Create(ctx, p)
		}
	}

	result := s.anomalyDetector.Detect(ctx, params.tenantID, params.employee.ID, params.timestamp, params.direction)
	if result.HasAnomaly {
		p.HasAnomaly = true
		p.AnomalyType = &result.Type
		p.AnomalyNote = &result.Note
	} else {
		s.applyWrongTypeDetection(ctx, &p, params.employee.DepartmentID)
	}

	created, err := s.Create(ctx, p)
	if err != nil {
		return punch.Punch{}, err
	}

	if created.Direction == punch.DirectionOut && !created.HasAnomaly {
		s.closeSession(ctx, created)
	}

	return created, nil
}

// applyWrongTypeDetection runs the configured detector and either flags the
// punch for validation or silently flips its direction when the tenant has
// opted into auto correction.
func (s *ServiceImpl) applyWrongTypeDetection(ctx context.Context, p *punch.Punch, departmentID *string) {
	result := s.wrongTypeDetect.Detect(ctx, p.TenantID, p.EmployeeID, p.Timestamp, p.Direction, departmentID)
	if !result.IsWrongType || result.Expected == nil {
		return
	}

	cfg := s.wrongTypeConfig(ctx, p.TenantID, departmentID)

	if cfg.AutoCorrect && !cfg.RequiresValidation {
		anomalyType := punch.AnomalyAutoCorrection
		note := fmt.Sprintf("direction corrected %s to %s (confidence %d%%): %s",
			p.Direction, *result.Expected, result.Confidence, result.Reason)
		p.Direction = *result.Expected
		p.HasAnomaly = true
		p.AnomalyType = &anomalyType
		p.AnomalyNote = &note
		return
	}

	anomalyType := punch.AnomalyProbableWrongType
	note := fmt.Sprintf("probable wrong direction, expected %s (confidence %d%%): %s",
		*result.Expected, result.Confidence, result.Reason)
	p.HasAnomaly = true
	p.AnomalyType = &anomalyType
	p.AnomalyNote = &note
}

// closeSession pairs the OUT with the most recent open IN, stores the worked
// hours net of the shift break and hands the session to supplementary-day
// detection.
func (s *ServiceImpl) closeSession(ctx context.Context, out punch.Punch) {
	last, err := s.LastBefore(ctx, out.TenantID, out.EmployeeID, out.Timestamp, []punch.AnomalyType{
		punch.AnomalyDebounceBlocked,
	})
	if err != nil {
		s.logger.Warn("session pairing lookup failed",
			"tenant_id", out.TenantID, "employee_id", out.EmployeeID, "error", err)
		return
	}
	if last == nil || last.Direction != punch.DirectionIn {
		return
	}

	worked := out.Timestamp.Sub(last.Timestamp)
	res, err := s.resolver.Resolve(ctx, out.TenantID, out.EmployeeID, last.Timestamp)
	if err != nil {
		s.logger.Warn("shift resolution failed, break not deducted",
			"tenant_id", out.TenantID, "employee_id", out.EmployeeID, "error", err)
	} else if res.BreakMinutes() > 0 {
		worked -= time.Duration(res.BreakMinutes()) * time.Minute
	}
	if worked < 0 {
		worked = 0
	}

	hours := roundHours(worked.Hours())
	out.HoursWorked = &hours

	// The worked hours and the supplementary day they imply land together
	// or not at all.
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.Update(ctx, out); err != nil {
			return err
		}
		_, err := s.supplementarySvc.ProcessSession(ctx, out.TenantID, out.EmployeeID, last.ID, out.ID, last.Timestamp, out.Timestamp)
		return err
	})
	if err != nil {
		s.logger.Warn("failed to close session",
			"tenant_id", out.TenantID, "punch_id", out.ID, "error", err)
	}
}

// Correct implements punch.Service. Corrected punches are frozen unless the
// caller forces an override.
func (s *ServiceImpl) Correct(ctx context.Context, req punch.CorrectRequest) (punch.Response, error) {
	if err := req.Validate(); err != nil {
		return punch.Response{}, err
	}

	tenantID, err := tenantIDFromContext(ctx)
	if err != nil {
		return punch.Response{}, err
	}

	p, err := s.GetByID(ctx, req.ID, tenantID)
	if err != nil {
		return punch.Response{}, err
	}

	if p.IsCorrected && !req.ForceOverride {
		return punch.Response{}, punch.ErrAlreadyCorrected
	}

	if req.NewTimestamp != nil {
		ts, _ := time.Parse(time.RFC3339, *req.NewTimestamp)
		p.Timestamp = ts.UTC()
	}

	now := time.Now().UTC()
	p.IsCorrected = true
	p.CorrectedBy = &req.CorrectedBy
	p.CorrectedAt = &now
	p.CorrectionNote = &req.Note

	// The old verdict is stale; detection runs again on the corrected
	// timestamp so a punch moved into a conflicting position gets flagged.
	result := s.anomalyDetector.Detect(ctx, p.TenantID, p.EmployeeID, p.Timestamp, p.Direction)
	if result.HasAnomaly {
		p.HasAnomaly = true
		p.AnomalyType = &result.Type
		p.AnomalyNote = &result.Note
	} else {
		p.HasAnomaly = false
		p.AnomalyType = nil
		p.AnomalyNote = nil
	}

	if err := s.Update(ctx, p); err != nil {
		return punch.Response{}, err
	}

	s.logger.Info("punch corrected",
		"tenant_id", tenantID, "punch_id", p.ID, "corrected_by", req.CorrectedBy)

	return punch.ToResponse(p), nil
}

// Get implements punch.Service.
func (s *ServiceImpl) Get(ctx context.Context, id string) (punch.Response, error) {
	tenantID, err := tenantIDFromContext(ctx)
	if err != nil {
		return punch.Response{}, err
	}

	p, err := s.GetByID(ctx, id, tenantID)
	if err != nil {
		return punch.Response{}, err
	}

	return punch.ToResponse(p), nil
}

// List implements punch.Service.
func (s *ServiceImpl) List(ctx context.Context, filter punch.ListFilter) (punch.ListResponse, error) {
	if err := filter.Validate(); err != nil {
		return punch.ListResponse{}, err
	}

	tenantID, err := tenantIDFromContext(ctx)
	if err != nil {
		return punch.ListResponse{}, err
	}

	punches, total, err := s.Repository.List(ctx, filter, tenantID)
	if err != nil {
		return punch.ListResponse{}, err
	}

	responses := make([]punch.Response, 0, len(punches))
	for _, p := range punches {
		responses = append(responses, punch.ToResponse(p))
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))

	return punch.ListResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Punches:    responses,
	}, nil
}

func (s *ServiceImpl) resolveEmployee(ctx context.Context, ref, tenantID string) (employee.Employee, error) {
	emp, err := s.employeeRepo.GetByID(ctx, ref, tenantID)
	if err == nil {
		return emp, nil
	}

	emp, err = s.employeeRepo.GetByBadge(ctx, ref, tenantID)
	if err != nil {
		return employee.Employee{}, punch.ErrEmployeeUnknown
	}

	return emp, nil
}

func (s *ServiceImpl) debounced(ctx context.Context, tenantID, employeeID string) bool {
	settings, err := s.settingsRepo.GetSettings(ctx, tenantID)
	if err != nil {
		s.logger.Warn("settings lookup failed, debounce skipped",
			"tenant_id", tenantID, "error", err)
		return false
	}

	window := time.Duration(settings.DebounceWindowSeconds()) * time.Second
	allowed, err := s.guard.Allow(ctx, tenantID, employeeID, window)
	if err != nil {
		s.logger.Warn("debounce check failed, punch allowed",
			"tenant_id", tenantID, "employee_id", employeeID, "error", err)
		return false
	}

	return !allowed
}

func (s *ServiceImpl) wrongTypeConfig(ctx context.Context, tenantID string, departmentID *string) tenant.WrongTypeConfig {
	settings, err := s.settingsRepo.GetSettings(ctx, tenantID)
	if err != nil {
		s.logger.Warn("settings lookup failed, using wrong-type defaults",
			"tenant_id", tenantID, "error", err)
		return tenant.ResolveWrongTypeConfig(nil, nil)
	}

	var deptSettings *tenant.DepartmentSettings
	if departmentID != nil && *departmentID != "" {
		deptSettings, err = s.settingsRepo.GetDepartmentSettings(ctx, tenantID, *departmentID)
		if err != nil {
			s.logger.Warn("department settings lookup failed",
				"tenant_id", tenantID, "department_id", *departmentID, "error", err)
		}
	}

	return tenant.ResolveWrongTypeConfig(settings, deptSettings)
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
