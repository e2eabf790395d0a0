package punch

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/chronopoint/attendance-backend-go/internal/domain/device"
	"github.com/chronopoint/attendance-backend-go/internal/domain/employee"
	"github.com/chronopoint/attendance-backend-go/internal/domain/punch"
	"github.com/chronopoint/attendance-backend-go/internal/domain/schedule"
	"github.com/chronopoint/attendance-backend-go/internal/domain/supplementary"
	"github.com/chronopoint/attendance-backend-go/internal/domain/tenant"
	"github.com/chronopoint/attendance-backend-go/internal/pkg/debounce"
	"github.com/chronopoint/attendance-backend-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memPunchRepo struct {
	punch.Repository
	byID    map[string]punch.Punch
	created []punch.Punch
	updated []punch.Punch
	last    *punch.Punch
}

func newMemPunchRepo() *memPunchRepo {
	return &memPunchRepo{byID: make(map[string]punch.Punch)}
}

func (m *memPunchRepo) Create(ctx context.Context, p punch.Punch) (punch.Punch, error) {
	p.ID = fmt.Sprintf("p-%d", len(m.created)+1)
	p.CreatedAt = time.Now().UTC()
	m.created = append(m.created, p)
	m.byID[p.ID] = p
	return p, nil
}

func (m *memPunchRepo) GetByID(ctx context.Context, id string, tenantID string) (punch.Punch, error) {
	p, ok := m.byID[id]
	if !ok {
		return punch.Punch{}, punch.ErrPunchNotFound
	}
	return p, nil
}

func (m *memPunchRepo) LastBefore(ctx context.Context, tenantID, employeeID string, ts time.Time, exclude []punch.AnomalyType) (*punch.Punch, error) {
	return m.last, nil
}

func (m *memPunchRepo) Update(ctx context.Context, p punch.Punch) error {
	m.updated = append(m.updated, p)
	m.byID[p.ID] = p
	return nil
}

type memEmployeeRepo struct {
	emp       employee.Employee
	byBadge   bool
	badgeOnly bool
}

func (m *memEmployeeRepo) GetByID(ctx context.Context, id, tenantID string) (employee.Employee, error) {
	if m.badgeOnly {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return m.emp, nil
}

func (m *memEmployeeRepo) GetByBadge(ctx context.Context, matricule, tenantID string) (employee.Employee, error) {
	if !m.byBadge {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return m.emp, nil
}

func (m *memEmployeeRepo) ListActive(ctx context.Context, tenantID string) ([]employee.Employee, error) {
	return []employee.Employee{m.emp}, nil
}

type memDeviceRepo struct {
	dev     device.Device
	touched int
}

func (m *memDeviceRepo) GetByID(ctx context.Context, id, tenantID string) (device.Device, error) {
	if m.dev.ID == "" {
		return device.Device{}, punch.ErrDeviceNotFound
	}
	return m.dev, nil
}

func (m *memDeviceRepo) TouchLastSync(ctx context.Context, id, tenantID string, at time.Time) error {
	m.touched++
	return nil
}

type memSettingsRepo struct {
	settings *tenant.Settings
}

func (m *memSettingsRepo) GetSettings(ctx context.Context, tenantID string) (*tenant.Settings, error) {
	return m.settings, nil
}

func (m *memSettingsRepo) GetDepartmentSettings(ctx context.Context, tenantID, departmentID string) (*tenant.DepartmentSettings, error) {
	return nil, nil
}

type stubAnomalyDetector struct {
	result punch.AnomalyResult
}

func (s *stubAnomalyDetector) Detect(ctx context.Context, tenantID, employeeID string, ts time.Time, direction punch.Direction) punch.AnomalyResult {
	return s.result
}

type stubWrongTypeDetector struct {
	result punch.WrongTypeResult
}

func (s *stubWrongTypeDetector) Detect(ctx context.Context, tenantID, employeeID string, ts time.Time, declared punch.Direction, departmentID *string) punch.WrongTypeResult {
	return s.result
}

type stubSupplementaryService struct {
	supplementary.Service
	sessions int
}

func (s *stubSupplementaryService) ProcessSession(ctx context.Context, tenantID, employeeID, inPunchID, outPunchID string, in, out time.Time) (*supplementary.Day, error) {
	s.sessions++
	return nil, nil
}

type passthroughTxRunner struct {
	calls int
}

func (r *passthroughTxRunner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	return fn(ctx)
}

type stubResolver struct {
	res schedule.Resolution
}

func (s *stubResolver) Resolve(ctx context.Context, tenantID, employeeID string, date time.Time) (schedule.Resolution, error) {
	return s.res, nil
}

type serviceEnv struct {
	svc      punch.Service
	repo     *memPunchRepo
	devices  *memDeviceRepo
	suppl    *stubSupplementaryService
	settings *memSettingsRepo
	resolver *stubResolver
	anomaly  *stubAnomalyDetector
	tx       *passthroughTxRunner
}

func newServiceEnv(empRepo *memEmployeeRepo, anomaly punch.AnomalyResult, wrongType punch.WrongTypeResult) *serviceEnv {
	hash, _ := bcrypt.GenerateFromPassword([]byte("terminal-key"), bcrypt.MinCost)
	env := &serviceEnv{
		repo: newMemPunchRepo(),
		devices: &memDeviceRepo{dev: device.Device{
			ID:         "dev-1",
			TenantID:   "t1",
			APIKeyHash: string(hash),
			IsActive:   true,
		}},
		suppl:    &stubSupplementaryService{},
		settings: &memSettingsRepo{},
		resolver: &stubResolver{res: schedule.Resolution{Source: schedule.SourceNone}},
		anomaly:  &stubAnomalyDetector{result: anomaly},
		tx:       &passthroughTxRunner{},
	}
	env.svc = NewPunchService(
		env.repo,
		empRepo,
		env.devices,
		env.settings,
		env.anomaly,
		&stubWrongTypeDetector{result: wrongType},
		env.suppl,
		env.resolver,
		env.tx,
		debounce.NewGuard(nil),
		anomalyTestLogger(),
	)
	return env
}

func defaultEmployeeRepo() *memEmployeeRepo {
	return &memEmployeeRepo{emp: employee.Employee{ID: "e1", TenantID: "t1", IsActive: true}}
}

func authedContext(t *testing.T, tenantID string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"tenant_id": tenantID,
		"user_id":   "manager-1",
		"type":      "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func cleanResult() punch.WrongTypeResult {
	return punch.WrongTypeResult{IsWrongType: false, Actual: punch.DirectionIn, Method: punch.MethodNone}
}

func TestRecord_Success(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(defaultEmployeeRepo(), punch.AnomalyResult{}, cleanResult())

	res, err := env.svc.Record(authedContext(t, "t1"), punch.RecordRequest{
		EmployeeID: "e1",
		Timestamp:  "2026-03-02T08:00:00Z",
		Direction:  "IN",
	})
	require.NoError(t, err)

	assert.Equal(t, "IN", res.Direction)
	assert.Equal(t, string(punch.MethodManual), res.Method)
	assert.False(t, res.HasAnomaly)
	require.Len(t, env.repo.created, 1)
}

func TestRecord_InvalidDirection(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(defaultEmployeeRepo(), punch.AnomalyResult{}, cleanResult())

	_, err := env.svc.Record(authedContext(t, "t1"), punch.RecordRequest{
		EmployeeID: "e1",
		Timestamp:  "2026-03-02T08:00:00Z",
		Direction:  "SIDEWAYS",
	})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "direction", verrs[0].Field)
}

func TestHandleWebhook_Success(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(defaultEmployeeRepo(), punch.AnomalyResult{}, cleanResult())

	res, err := env.svc.HandleWebhook(context.Background(), "t1", "dev-1", "terminal-key", punch.WebhookRequest{
		EmployeeID: "e1",
		Timestamp:  "2026-03-02T08:00:00Z",
		Direction:  "IN",
	})
	require.NoError(t, err)

	assert.Equal(t, string(punch.MethodTerminal), res.Method)
	assert.Equal(t, 1, env.devices.touched)
}

func TestHandleWebhook_BadgeFallback(t *testing.T) {
	t.Parallel()
	empRepo := &memEmployeeRepo{
		emp:       employee.Employee{ID: "e1", TenantID: "t1", Matricule: "B042", IsActive: true},
		badgeOnly: true,
		byBadge:   true,
	}
	env := newServiceEnv(empRepo, punch.AnomalyResult{}, cleanResult())

	res, err := env.svc.HandleWebhook(context.Background(), "t1", "dev-1", "terminal-key", punch.WebhookRequest{
		EmployeeID: "B042",
		Timestamp:  "2026-03-02T08:00:00Z",
		Direction:  "IN",
	})
	require.NoError(t, err)
	assert.Equal(t, "e1", res.EmployeeID)
}

func TestHandleWebhook_UnknownEmployee(t *testing.T) {
	t.Parallel()
	empRepo := &memEmployeeRepo{badgeOnly: true, byBadge: false}
	env := newServiceEnv(empRepo, punch.AnomalyResult{}, cleanResult())

	_, err := env.svc.HandleWebhook(context.Background(), "t1", "dev-1", "terminal-key", punch.WebhookRequest{
		EmployeeID: "ghost",
		Timestamp:  "2026-03-02T08:00:00Z",
		Direction:  "IN",
	})

	assert.ErrorIs(t, err, punch.ErrEmployeeUnknown)
}

func TestHandleWebhook_InvalidKey(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(defaultEmployeeRepo(), punch.AnomalyResult{}, cleanResult())

	_, err := env.svc.HandleWebhook(context.Background(), "t1", "dev-1", "wrong-key", punch.WebhookRequest{
		EmployeeID: "e1",
		Timestamp:  "2026-03-02T08:00:00Z",
		Direction:  "IN",
	})

	assert.ErrorIs(t, err, punch.ErrInvalidDeviceKey)
}

func TestHandleWebhook_InactiveDevice(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(defaultEmployeeRepo(), punch.AnomalyResult{}, cleanResult())
	env.devices.dev.IsActive = false

	_, err := env.svc.HandleWebhook(context.Background(), "t1", "dev-1", "terminal-key", punch.WebhookRequest{
		EmployeeID: "e1",
		Timestamp:  "2026-03-02T08:00:00Z",
		Direction:  "IN",
	})

	assert.ErrorIs(t, err, punch.ErrDeviceNotFound)
}

func TestIngest_AnomalyFrozenOnPunch(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(defaultEmployeeRepo(), punch.AnomalyResult{
		HasAnomaly: true,
		Type:       punch.AnomalyDoubleIn,
		Note:       "duplicate IN",
	}, cleanResult())

	res, err := env.svc.Record(authedContext(t, "t1"), punch.RecordRequest{
		EmployeeID: "e1",
		Timestamp:  "2026-03-02T10:00:00Z",
		Direction:  "IN",
	})
	require.NoError(t, err)

	assert.True(t, res.HasAnomaly)
	require.NotNil(t, res.AnomalyType)
	assert.Equal(t, string(punch.AnomalyDoubleIn), *res.AnomalyType)
}

func TestIngest_WrongTypeFlaggedForValidation(t *testing.T) {
	t.Parallel()
	expected := punch.DirectionIn
	env := newServiceEnv(defaultEmployeeRepo(), punch.AnomalyResult{}, punch.WrongTypeResult{
		IsWrongType: true,
		Confidence:  90,
		Expected:    &expected,
		Actual:      punch.DirectionOut,
		Reason:      "OUT punch near shift start",
		Method:      punch.MethodShiftBased,
	})

	res, err := env.svc.Record(authedContext(t, "t1"), punch.RecordRequest{
		EmployeeID: "e1",
		Timestamp:  "2026-03-02T07:30:00Z",
		Direction:  "OUT",
	})
	require.NoError(t, err)

	// Default config requires validation, so the direction is kept.
	assert.Equal(t, "OUT", res.Direction)
	assert.True(t, res.HasAnomaly)
	require.NotNil(t, res.AnomalyType)
	assert.Equal(t, string(punch.AnomalyProbableWrongType), *res.AnomalyType)
}

func TestIngest_WrongTypeAutoCorrected(t *testing.T) {
	t.Parallel()
	expected := punch.DirectionIn
	env := newServiceEnv(defaultEmployeeRepo(), punch.AnomalyResult{}, punch.WrongTypeResult{
		IsWrongType: true,
		Confidence:  90,
		Expected:    &expected,
		Actual:      punch.DirectionOut,
		Reason:      "OUT punch near shift start",
		Method:      punch.MethodShiftBased,
	})

	autoCorrect := true
	requiresValidation := false
	env.settings.settings = &tenant.Settings{
		WrongTypeAutoCorrect:        &autoCorrect,
		WrongTypeRequiresValidation: &requiresValidation,
	}

	res, err := env.svc.Record(authedContext(t, "t1"), punch.RecordRequest{
		EmployeeID: "e1",
		Timestamp:  "2026-03-02T07:30:00Z",
		Direction:  "OUT",
	})
	require.NoError(t, err)

	assert.Equal(t, "IN", res.Direction)
	require.NotNil(t, res.AnomalyType)
	assert.Equal(t, string(punch.AnomalyAutoCorrection), *res.AnomalyType)
}

func TestIngest_CleanOutClosesSession(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(defaultEmployeeRepo(), punch.AnomalyResult{}, punch.WrongTypeResult{
		IsWrongType: false,
		Actual:      punch.DirectionOut,
		Method:      punch.MethodNone,
	})
	env.repo.last = &punch.Punch{
		ID:         "p-in",
		Direction:  punch.DirectionIn,
		Timestamp:  time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		EmployeeID: "e1",
	}

	_, err := env.svc.Record(authedContext(t, "t1"), punch.RecordRequest{
		EmployeeID: "e1",
		Timestamp:  "2026-03-02T17:15:00Z",
		Direction:  "OUT",
	})
	require.NoError(t, err)

	require.Len(t, env.repo.updated, 1)
	require.NotNil(t, env.repo.updated[0].HoursWorked)
	assert.Equal(t, 8.25, *env.repo.updated[0].HoursWorked)
	assert.Equal(t, 1, env.suppl.sessions)
	assert.Equal(t, 1, env.tx.calls)
}

func TestIngest_ShiftBreakDeducted(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(defaultEmployeeRepo(), punch.AnomalyResult{}, punch.WrongTypeResult{
		IsWrongType: false,
		Actual:      punch.DirectionOut,
		Method:      punch.MethodNone,
	})
	env.resolver.res = schedule.Resolution{
		Source: schedule.SourceAssigned,
		Window: &schedule.ShiftWindow{
			StartTime:    "09:00",
			EndTime:      "17:15",
			BreakMinutes: 60,
		},
	}
	env.repo.last = &punch.Punch{
		ID:         "p-in",
		Direction:  punch.DirectionIn,
		Timestamp:  time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		EmployeeID: "e1",
	}

	_, err := env.svc.Record(authedContext(t, "t1"), punch.RecordRequest{
		EmployeeID: "e1",
		Timestamp:  "2026-03-02T17:15:00Z",
		Direction:  "OUT",
	})
	require.NoError(t, err)

	require.Len(t, env.repo.updated, 1)
	require.NotNil(t, env.repo.updated[0].HoursWorked)
	assert.Equal(t, 7.25, *env.repo.updated[0].HoursWorked)
}

func TestCorrect_FrozenWithoutOverride(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(defaultEmployeeRepo(), punch.AnomalyResult{}, cleanResult())
	ctx := authedContext(t, "t1")

	res, err := env.svc.Record(ctx, punch.RecordRequest{
		EmployeeID: "e1",
		Timestamp:  "2026-03-02T08:00:00Z",
		Direction:  "IN",
	})
	require.NoError(t, err)

	_, err = env.svc.Correct(ctx, punch.CorrectRequest{
		ID:          res.ID,
		Note:        "badge misread",
		CorrectedBy: "manager-1",
	})
	require.NoError(t, err)

	_, err = env.svc.Correct(ctx, punch.CorrectRequest{
		ID:          res.ID,
		Note:        "second thoughts",
		CorrectedBy: "manager-1",
	})
	assert.ErrorIs(t, err, punch.ErrAlreadyCorrected)

	corrected, err := env.svc.Correct(ctx, punch.CorrectRequest{
		ID:            res.ID,
		Note:          "HR override",
		CorrectedBy:   "manager-2",
		ForceOverride: true,
	})
	require.NoError(t, err)
	assert.True(t, corrected.IsCorrected)
}

func TestCorrect_ClearsAnomaly(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(defaultEmployeeRepo(), punch.AnomalyResult{
		HasAnomaly: true,
		Type:       punch.AnomalyMissingIn,
		Note:       "OUT with no IN",
	}, cleanResult())
	ctx := authedContext(t, "t1")

	res, err := env.svc.Record(ctx, punch.RecordRequest{
		EmployeeID: "e1",
		Timestamp:  "2026-03-02T17:00:00Z",
		Direction:  "OUT",
	})
	require.NoError(t, err)
	require.True(t, res.HasAnomaly)

	// The corrected timestamp no longer trips detection.
	env.anomaly.result = punch.AnomalyResult{}

	corrected, err := env.svc.Correct(ctx, punch.CorrectRequest{
		ID:          res.ID,
		Note:        "employee forgot to badge in, confirmed present",
		CorrectedBy: "manager-1",
	})
	require.NoError(t, err)

	assert.False(t, corrected.HasAnomaly)
	assert.Nil(t, corrected.AnomalyType)
}

func TestCorrect_RedetectsAnomaly(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(defaultEmployeeRepo(), punch.AnomalyResult{}, cleanResult())
	ctx := authedContext(t, "t1")

	res, err := env.svc.Record(ctx, punch.RecordRequest{
		EmployeeID: "e1",
		Timestamp:  "2026-03-02T14:00:00Z",
		Direction:  "IN",
	})
	require.NoError(t, err)
	require.False(t, res.HasAnomaly)

	// Moving the punch earlier lands it on a day that already has an IN.
	env.anomaly.result = punch.AnomalyResult{
		HasAnomaly: true,
		Type:       punch.AnomalyDoubleIn,
		Note:       "already clocked in at 08:00",
	}

	newTS := "2026-03-02T08:30:00Z"
	corrected, err := env.svc.Correct(ctx, punch.CorrectRequest{
		ID:           res.ID,
		NewTimestamp: &newTS,
		Note:         "terminal clock drift",
		CorrectedBy:  "manager-1",
	})
	require.NoError(t, err)

	assert.True(t, corrected.IsCorrected)
	assert.True(t, corrected.HasAnomaly)
	require.NotNil(t, corrected.AnomalyType)
	assert.Equal(t, string(punch.AnomalyDoubleIn), *corrected.AnomalyType)
}
