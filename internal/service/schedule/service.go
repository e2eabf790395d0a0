package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chronopoint/attendance-backend-go/internal/domain/employee"
	"github.com/chronopoint/attendance-backend-go/internal/domain/schedule"
)

type ResolverImpl struct {
	schedule.ScheduleRepository
	schedule.ShiftRepository
	employee.Repository
}

// Resolve implements schedule.Resolver. A published day schedule wins over the
// employee's standing shift. The returned Resolution carries the source so
// callers never guess which branch produced the window.
func (r *ResolverImpl) Resolve(ctx context.Context, tenantID, employeeID string, date time.Time) (schedule.Resolution, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	ds, err := r.FindPublishedForDay(ctx, tenantID, employeeID, day)
	if err != nil {
		return schedule.Resolution{}, fmt.Errorf("failed to resolve day schedule: %w", err)
	}

	if ds != nil {
		return schedule.Resolution{
			Source:      schedule.SourceSchedule,
			Window:      ds.Shift,
			CustomStart: ds.CustomStartTime,
			CustomEnd:   ds.CustomEndTime,
		}, nil
	}

	emp, err := r.Repository.GetByID(ctx, employeeID, tenantID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return schedule.Resolution{Source: schedule.SourceNone}, nil
		}
		return schedule.Resolution{}, fmt.Errorf("failed to load employee for shift resolution: %w", err)
	}

	if emp.CurrentShiftID == nil || *emp.CurrentShiftID == "" {
		return schedule.Resolution{Source: schedule.SourceNone}, nil
	}

	shift, err := r.ShiftRepository.GetByID(ctx, *emp.CurrentShiftID, tenantID)
	if err != nil {
		if errors.Is(err, schedule.ErrShiftNotFound) {
			return schedule.Resolution{Source: schedule.SourceNone}, nil
		}
		return schedule.Resolution{}, fmt.Errorf("failed to load assigned shift: %w", err)
	}

	return schedule.Resolution{
		Source: schedule.SourceAssigned,
		Window: &shift,
	}, nil
}

func NewResolver(
	scheduleRepo schedule.ScheduleRepository,
	shiftRepo schedule.ShiftRepository,
	employeeRepo employee.Repository,
) schedule.Resolver {
	return &ResolverImpl{
		ScheduleRepository: scheduleRepo,
		ShiftRepository:    shiftRepo,
		Repository:         employeeRepo,
	}
}
