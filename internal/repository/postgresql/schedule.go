package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/chronopoint/attendance-backend-go/internal/domain/schedule"
	"github.com/chronopoint/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shiftRepository struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) schedule.ShiftRepository {
	return &shiftRepository{db: db}
}

// GetByID implements schedule.ShiftRepository.
func (r *shiftRepository) GetByID(ctx context.Context, id, tenantID string) (schedule.ShiftWindow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, tenant_id, name, start_time, end_time, break_minutes, created_at, updated_at
		FROM shifts
		WHERE id = $1 AND tenant_id = $2
	`

	var s schedule.ShiftWindow
	err := q.QueryRow(ctx, query, id, tenantID).Scan(
		&s.ID, &s.TenantID, &s.Name, &s.StartTime, &s.EndTime, &s.BreakMinutes, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return schedule.ShiftWindow{}, schedule.ErrShiftNotFound
		}
		return schedule.ShiftWindow{}, fmt.Errorf("failed to get shift by id: %w", err)
	}

	return s, nil
}

type scheduleRepository struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) schedule.ScheduleRepository {
	return &scheduleRepository{db: db}
}

// FindPublishedForDay implements schedule.ScheduleRepository.
func (r *scheduleRepository) FindPublishedForDay(ctx context.Context, tenantID, employeeID string, date time.Time) (*schedule.DaySchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			ds.id, ds.tenant_id, ds.employee_id, ds.date, ds.shift_id,
			ds.custom_start_time, ds.custom_end_time, ds.status,
			ds.created_at, ds.updated_at,
			s.id, s.tenant_id, s.name, s.start_time, s.end_time, s.break_minutes, s.created_at, s.updated_at
		FROM day_schedules ds
		LEFT JOIN shifts s ON s.id = ds.shift_id
		WHERE ds.tenant_id = $1
		  AND ds.employee_id = $2
		  AND ds.date = $3
		  AND ds.status = 'PUBLISHED'
		LIMIT 1
	`

	var ds schedule.DaySchedule
	var shiftID, shiftTenantID, shiftName, shiftStart, shiftEnd *string
	var shiftBreak *int
	var shiftCreatedAt, shiftUpdatedAt *time.Time

	err := q.QueryRow(ctx, query, tenantID, employeeID, date).Scan(
		&ds.ID, &ds.TenantID, &ds.EmployeeID, &ds.Date, &ds.ShiftID,
		&ds.CustomStartTime, &ds.CustomEndTime, &ds.Status,
		&ds.CreatedAt, &ds.UpdatedAt,
		&shiftID, &shiftTenantID, &shiftName, &shiftStart, &shiftEnd, &shiftBreak, &shiftCreatedAt, &shiftUpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find published schedule: %w", err)
	}

	if shiftID != nil {
		ds.Shift = &schedule.ShiftWindow{
			ID:        *shiftID,
			TenantID:  *shiftTenantID,
			Name:      *shiftName,
			StartTime: *shiftStart,
			EndTime:   *shiftEnd,
			CreatedAt: *shiftCreatedAt,
			UpdatedAt: *shiftUpdatedAt,
		}
		if shiftBreak != nil {
			ds.Shift.BreakMinutes = *shiftBreak
		}
	}

	return &ds, nil
}
