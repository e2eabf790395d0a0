package supplementary

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/chronopoint/attendance-backend-go/internal/domain/employee"
	"github.com/chronopoint/attendance-backend-go/internal/domain/holiday"
	"github.com/chronopoint/attendance-backend-go/internal/domain/punch"
	"github.com/chronopoint/attendance-backend-go/internal/domain/supplementary"
	"github.com/chronopoint/attendance-backend-go/internal/domain/tenant"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDayRepo struct {
	days    map[string]supplementary.Day
	created []supplementary.Day
	updated []supplementary.Day
}

func newFakeDayRepo() *fakeDayRepo {
	return &fakeDayRepo{days: make(map[string]supplementary.Day)}
}

func (f *fakeDayRepo) Create(ctx context.Context, d supplementary.Day) (supplementary.Day, error) {
	d.ID = "day-1"
	d.CreatedAt = time.Now().UTC()
	f.created = append(f.created, d)
	f.days[d.ID] = d
	return d, nil
}

func (f *fakeDayRepo) GetByID(ctx context.Context, id, tenantID string) (supplementary.Day, error) {
	d, ok := f.days[id]
	if !ok {
		return supplementary.Day{}, supplementary.ErrDayNotFound
	}
	return d, nil
}

func (f *fakeDayRepo) FindForDay(ctx context.Context, tenantID, employeeID string, date time.Time) (*supplementary.Day, error) {
	for _, d := range f.days {
		if d.EmployeeID == employeeID && d.Date.Equal(date) {
			day := d
			return &day, nil
		}
	}
	return nil, nil
}

func (f *fakeDayRepo) Update(ctx context.Context, d supplementary.Day) error {
	f.updated = append(f.updated, d)
	f.days[d.ID] = d
	return nil
}

func (f *fakeDayRepo) List(ctx context.Context, filter supplementary.ListFilter, tenantID string) ([]supplementary.Day, int64, error) {
	var out []supplementary.Day
	for _, d := range f.days {
		out = append(out, d)
	}
	return out, int64(len(out)), nil
}

type fakeEmployeeRepo struct {
	emp employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id, tenantID string) (employee.Employee, error) {
	return f.emp, nil
}

func (f *fakeEmployeeRepo) GetByBadge(ctx context.Context, matricule, tenantID string) (employee.Employee, error) {
	return f.emp, nil
}

func (f *fakeEmployeeRepo) ListActive(ctx context.Context, tenantID string) ([]employee.Employee, error) {
	return []employee.Employee{f.emp}, nil
}

type fakeHolidayRepo struct {
	holidays map[string]holiday.Holiday // keyed YYYY-MM-DD
}

func (f *fakeHolidayRepo) FindOnDay(ctx context.Context, tenantID string, date time.Time) (*holiday.Holiday, error) {
	if f.holidays == nil {
		return nil, nil
	}
	if h, ok := f.holidays[date.Format("2006-01-02")]; ok {
		return &h, nil
	}
	return nil, nil
}

type fakeTenantRepo struct {
	tenant tenant.Tenant
}

func (f *fakeTenantRepo) GetByID(ctx context.Context, id string) (tenant.Tenant, error) {
	return f.tenant, nil
}

func (f *fakeTenantRepo) ListActive(ctx context.Context) ([]tenant.Tenant, error) {
	return []tenant.Tenant{f.tenant}, nil
}

type fakeSettingsRepo struct {
	settings *tenant.Settings
}

func (f *fakeSettingsRepo) GetSettings(ctx context.Context, tenantID string) (*tenant.Settings, error) {
	return f.settings, nil
}

func (f *fakeSettingsRepo) GetDepartmentSettings(ctx context.Context, tenantID, departmentID string) (*tenant.DepartmentSettings, error) {
	return nil, nil
}

type fakeSessionRepo struct {
	punch.Repository
	ins []punch.Punch
	out *punch.Punch
}

func (f *fakeSessionRepo) ListInsForRange(ctx context.Context, tenantID string, from, to time.Time) ([]punch.Punch, error) {
	return f.ins, nil
}

func (f *fakeSessionRepo) FirstOutAfter(ctx context.Context, tenantID, employeeID string, after, until time.Time) (*punch.Punch, error) {
	return f.out, nil
}

type testEnv struct {
	svc     supplementary.Service
	repo    *fakeDayRepo
	punches *fakeSessionRepo
}

func newTestEnv(eligible bool, holidays map[string]holiday.Holiday) testEnv {
	repo := newFakeDayRepo()
	punches := &fakeSessionRepo{}
	svc := NewService(
		repo,
		punches,
		&fakeEmployeeRepo{emp: employee.Employee{ID: "e1", IsEligibleForOvertime: eligible, IsActive: true}},
		&fakeHolidayRepo{holidays: holidays},
		&fakeTenantRepo{tenant: tenant.Tenant{ID: "t1", Timezone: "UTC", IsActive: true}},
		&fakeSettingsRepo{},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return testEnv{svc: svc, repo: repo, punches: punches}
}

// 2026-03-07 is a Saturday, 2026-03-08 a Sunday.
func TestClassifyDay(t *testing.T) {
	t.Parallel()
	env := newTestEnv(true, map[string]holiday.Holiday{
		"2026-03-04": {Name: "National Day"},
		"2026-03-07": {Name: "Shadowed Holiday"},
	})

	cases := []struct {
		date string
		want supplementary.DayKind
	}{
		{"2026-03-05", supplementary.KindOrdinary},
		{"2026-03-06", supplementary.KindOrdinary},
		{"2026-03-07", supplementary.KindWeekendSaturday}, // weekend wins over holiday
		{"2026-03-08", supplementary.KindWeekendSunday},
		{"2026-03-04", supplementary.KindHoliday},
	}

	for _, c := range cases {
		date, err := time.Parse("2006-01-02", c.date)
		require.NoError(t, err)

		got, err := env.svc.ClassifyDay(context.Background(), "t1", date)
		require.NoError(t, err)
		assert.Equal(t, c.want, got.Kind, "date %s", c.date)
	}
}

func TestProcessSession_SaturdayDayShift(t *testing.T) {
	t.Parallel()
	env := newTestEnv(true, nil)

	in := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
	out := time.Date(2026, 3, 7, 17, 0, 0, 0, time.UTC)

	day, err := env.svc.ProcessSession(context.Background(), "t1", "e1", "p-in", "p-out", in, out)
	require.NoError(t, err)
	require.NotNil(t, day)

	assert.Equal(t, supplementary.KindWeekendSaturday, day.Kind)
	assert.Equal(t, supplementary.StatusPending, day.Status)
	assert.Equal(t, 8.0, day.HoursWorked)
	assert.Equal(t, "2026-03-07", day.Date.Format("2006-01-02"))
}

func TestProcessSession_NightSessionUsesInDate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(true, nil)

	// Saturday 22:00 to Sunday 06:00 compensates the Saturday.
	in := time.Date(2026, 3, 7, 22, 0, 0, 0, time.UTC)
	out := time.Date(2026, 3, 8, 6, 0, 0, 0, time.UTC)

	day, err := env.svc.ProcessSession(context.Background(), "t1", "e1", "p-in", "p-out", in, out)
	require.NoError(t, err)
	require.NotNil(t, day)

	assert.Equal(t, supplementary.KindWeekendSaturday, day.Kind)
	assert.Equal(t, "2026-03-07", day.Date.Format("2006-01-02"))
}

func TestProcessSession_OutDateFallback(t *testing.T) {
	t.Parallel()
	env := newTestEnv(true, nil)

	// Friday 22:00 to Saturday 06:00: the IN day is ordinary but the OUT
	// lands on the weekend.
	in := time.Date(2026, 3, 6, 22, 0, 0, 0, time.UTC)
	out := time.Date(2026, 3, 7, 6, 0, 0, 0, time.UTC)

	day, err := env.svc.ProcessSession(context.Background(), "t1", "e1", "p-in", "p-out", in, out)
	require.NoError(t, err)
	require.NotNil(t, day)

	assert.Equal(t, supplementary.KindWeekendSaturday, day.Kind)
	assert.Equal(t, "2026-03-07", day.Date.Format("2006-01-02"))
}

func TestProcessSession_OrdinarySession(t *testing.T) {
	t.Parallel()
	env := newTestEnv(true, nil)

	in := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	out := time.Date(2026, 3, 5, 17, 0, 0, 0, time.UTC)

	day, err := env.svc.ProcessSession(context.Background(), "t1", "e1", "p-in", "p-out", in, out)
	require.NoError(t, err)
	assert.Nil(t, day)
	assert.Empty(t, env.repo.created)
}

func TestProcessSession_IneligibleEmployee(t *testing.T) {
	t.Parallel()
	env := newTestEnv(false, nil)

	in := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
	out := time.Date(2026, 3, 7, 17, 0, 0, 0, time.UTC)

	day, err := env.svc.ProcessSession(context.Background(), "t1", "e1", "p-in", "p-out", in, out)
	require.NoError(t, err)
	assert.Nil(t, day)
}

func TestProcessSession_BelowMinimum(t *testing.T) {
	t.Parallel()
	env := newTestEnv(true, nil)

	// 20 minutes is below the default 30 minute floor.
	in := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
	out := time.Date(2026, 3, 7, 9, 20, 0, 0, time.UTC)

	day, err := env.svc.ProcessSession(context.Background(), "t1", "e1", "p-in", "p-out", in, out)
	require.NoError(t, err)
	assert.Nil(t, day)
}

func TestProcessSession_Idempotent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(true, nil)

	in := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
	out := time.Date(2026, 3, 7, 17, 0, 0, 0, time.UTC)

	first, err := env.svc.ProcessSession(context.Background(), "t1", "e1", "p-in", "p-out", in, out)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := env.svc.ProcessSession(context.Background(), "t1", "e1", "p-in2", "p-out2", in, out)
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, env.repo.created, 1)
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

func TestApprove(t *testing.T) {
	t.Parallel()
	env := newTestEnv(true, nil)

	in := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
	out := time.Date(2026, 3, 7, 17, 0, 0, 0, time.UTC)
	day, err := env.svc.ProcessSession(context.Background(), "t1", "e1", "p-in", "p-out", in, out)
	require.NoError(t, err)
	require.NotNil(t, day)

	ctx := authedContext(t, "t1")
	res, err := env.svc.Approve(ctx, supplementary.ReviewRequest{
		ID:         day.ID,
		ReviewedBy: "manager-1",
		Note:       "confirmed on site",
	})
	require.NoError(t, err)

	assert.Equal(t, string(supplementary.StatusApproved), res.Status)
	require.NotNil(t, res.ReviewedBy)
	assert.Equal(t, "manager-1", *res.ReviewedBy)
	require.NotNil(t, res.ReviewNote)
	assert.Equal(t, "confirmed on site", *res.ReviewNote)
	require.NotNil(t, res.ApprovedHours)
	assert.Equal(t, day.HoursWorked, *res.ApprovedHours)
}

func TestApprove_OverridesGrantedHours(t *testing.T) {
	t.Parallel()
	env := newTestEnv(true, nil)

	in := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
	out := time.Date(2026, 3, 7, 17, 0, 0, 0, time.UTC)
	day, err := env.svc.ProcessSession(context.Background(), "t1", "e1", "p-in", "p-out", in, out)
	require.NoError(t, err)
	require.NotNil(t, day)

	granted := 4.0
	res, err := env.svc.Approve(authedContext(t, "t1"), supplementary.ReviewRequest{
		ID:            day.ID,
		ReviewedBy:    "manager-1",
		ApprovedHours: &granted,
	})
	require.NoError(t, err)

	require.NotNil(t, res.ApprovedHours)
	assert.Equal(t, 4.0, *res.ApprovedHours)
}

func TestDetectMissingDays(t *testing.T) {
	t.Parallel()
	env := newTestEnv(true, nil)

	in := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
	out := time.Date(2026, 3, 7, 17, 0, 0, 0, time.UTC)
	env.punches.ins = []punch.Punch{{
		ID:         "p-in",
		TenantID:   "t1",
		EmployeeID: "e1",
		Direction:  punch.DirectionIn,
		Timestamp:  in,
	}}
	env.punches.out = &punch.Punch{
		ID:         "p-out",
		TenantID:   "t1",
		EmployeeID: "e1",
		Direction:  punch.DirectionOut,
		Timestamp:  out,
	}

	n, err := env.svc.DetectMissingDays(context.Background(), "t1", in.Add(-9*time.Hour), in.Add(15*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, env.repo.created, 1)
	assert.Equal(t, supplementary.KindWeekendSaturday, env.repo.created[0].Kind)

	// A second pass finds the day already recorded and creates nothing new.
	n, err = env.svc.DetectMissingDays(context.Background(), "t1", in.Add(-9*time.Hour), in.Add(15*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, env.repo.created, 1)
}

func TestDetectMissingDays_SkipsFlaggedMissingOut(t *testing.T) {
	t.Parallel()
	env := newTestEnv(true, nil)

	// A Saturday IN still flagged MISSING_OUT must not pair with the
	// following day's unrelated OUT.
	missingOut := punch.AnomalyMissingOut
	env.punches.ins = []punch.Punch{{
		ID:          "p-in",
		TenantID:    "t1",
		EmployeeID:  "e1",
		Direction:   punch.DirectionIn,
		Timestamp:   time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC),
		HasAnomaly:  true,
		AnomalyType: &missingOut,
	}}
	env.punches.out = &punch.Punch{
		ID:         "p-out",
		TenantID:   "t1",
		EmployeeID: "e1",
		Direction:  punch.DirectionOut,
		Timestamp:  time.Date(2026, 3, 8, 17, 0, 0, 0, time.UTC),
	}

	n, err := env.svc.DetectMissingDays(context.Background(), "t1",
		time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, env.repo.created)
}

func TestDetectMissingDays_SkipsOpenSessions(t *testing.T) {
	t.Parallel()
	env := newTestEnv(true, nil)

	in := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
	env.punches.ins = []punch.Punch{{
		ID:         "p-in",
		TenantID:   "t1",
		EmployeeID: "e1",
		Direction:  punch.DirectionIn,
		Timestamp:  in,
	}}

	n, err := env.svc.DetectMissingDays(context.Background(), "t1", in.Add(-9*time.Hour), in.Add(15*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, env.repo.created)
}

func TestReject_AlreadyReviewed(t *testing.T) {
	t.Parallel()
	env := newTestEnv(true, nil)

	in := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
	out := time.Date(2026, 3, 7, 17, 0, 0, 0, time.UTC)
	day, err := env.svc.ProcessSession(context.Background(), "t1", "e1", "p-in", "p-out", in, out)
	require.NoError(t, err)
	require.NotNil(t, day)

	ctx := authedContext(t, "t1")
	_, err = env.svc.Approve(ctx, supplementary.ReviewRequest{ID: day.ID, ReviewedBy: "manager-1"})
	require.NoError(t, err)

	_, err = env.svc.Reject(ctx, supplementary.ReviewRequest{ID: day.ID, ReviewedBy: "manager-1"})
	assert.ErrorIs(t, err, supplementary.ErrAlreadyReviewed)
}
