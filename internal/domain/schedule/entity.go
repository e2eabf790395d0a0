package schedule

import (
	"fmt"
	"time"
)

// ShiftWindow is a reusable shift definition. Start and end are minute
// precision wall-clock strings ("HH:MM") interpreted in the tenant's timezone.
type ShiftWindow struct {
	ID           string
	TenantID     string
	Name         string
	StartTime    string
	EndTime      string
	BreakMinutes int // unpaid break deducted from worked hours
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsNightShift reports whether the window crosses midnight, i.e. the end
// wall-clock time is earlier than the start.
func (s ShiftWindow) IsNightShift() bool {
	start := ClockMinutes(s.StartTime)
	end := ClockMinutes(s.EndTime)
	if start < 0 || end < 0 {
		return false
	}
	return end < start
}

// ClockMinutes converts an "HH:MM" string to minutes since midnight.
// Invalid input returns -1; callers treat that as "no window".
func ClockMinutes(v string) int {
	var h, m int
	if _, err := fmt.Sscanf(v, "%d:%d", &h, &m); err != nil {
		return -1
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return -1
	}
	return h*60 + m
}

type ScheduleStatus string

const (
	StatusDraft     ScheduleStatus = "DRAFT"
	StatusPublished ScheduleStatus = "PUBLISHED"
)

// DaySchedule assigns an employee to a shift on a specific date. Custom start
// and end times, when set, override the shift window for that day only.
type DaySchedule struct {
	ID              string
	TenantID        string
	EmployeeID      string
	Date            time.Time // date-only, midnight in tenant tz
	ShiftID         *string
	CustomStartTime *string // "HH:MM"
	CustomEndTime   *string
	Status          ScheduleStatus

	Shift *ShiftWindow

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ResolutionSource string

const (
	SourceSchedule ResolutionSource = "SCHEDULE"
	SourceAssigned ResolutionSource = "ASSIGNED"
	SourceNone     ResolutionSource = "NONE"
)

// Resolution is the outcome of resolving an employee's effective shift for a
// date. Source tells the caller which branch won, so downstream logic never
// re-infers it from which pointers happen to be set.
type Resolution struct {
	Source      ResolutionSource
	Window      *ShiftWindow
	CustomStart *string
	CustomEnd   *string
}

// EffectiveStart returns the working start time ("HH:MM"), or "" when none.
func (r Resolution) EffectiveStart() string {
	if r.CustomStart != nil && *r.CustomStart != "" {
		return *r.CustomStart
	}
	if r.Window != nil {
		return r.Window.StartTime
	}
	return ""
}

// EffectiveEnd returns the working end time ("HH:MM"), or "" when none.
func (r Resolution) EffectiveEnd() string {
	if r.CustomEnd != nil && *r.CustomEnd != "" {
		return *r.CustomEnd
	}
	if r.Window != nil {
		return r.Window.EndTime
	}
	return ""
}

// HasWindow reports whether the resolution yields a usable start and end.
func (r Resolution) HasWindow() bool {
	return r.Source != SourceNone && r.EffectiveStart() != "" && r.EffectiveEnd() != ""
}

// BreakMinutes returns the shift's unpaid break length, 0 when no window.
func (r Resolution) BreakMinutes() int {
	if r.Window == nil {
		return 0
	}
	return r.Window.BreakMinutes
}

// CrossesMidnight reports whether the effective window rolls past midnight.
func (r Resolution) CrossesMidnight() bool {
	start := ClockMinutes(r.EffectiveStart())
	end := ClockMinutes(r.EffectiveEnd())
	if start < 0 || end < 0 {
		return false
	}
	return end < start
}
