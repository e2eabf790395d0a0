package tenant

import "time"

type Tenant struct {
	ID        string
	Name      string
	Timezone  string // IANA name, e.g. "Africa/Casablanca"
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Settings holds the per-tenant attendance configuration. Every field is a
// pointer so that "not set" falls through to the documented default.
type Settings struct {
	TenantID string

	// Punch ingestion
	DebounceSeconds *int // default 60

	// Wrong-type detection
	WrongTypeEnabled            *bool   // default false
	WrongTypeAutoCorrect        *bool   // default false
	WrongTypeMethod             *string // default SHIFT_BASED
	WrongTypeMarginMinutes      *int    // default 120
	WrongTypeThreshold          *int    // default 80
	WrongTypeRequiresValidation *bool   // default true

	// Auto close
	AutoCloseEnabled               *bool   // default true
	AutoCloseDefaultEndTime        *string // "HH:MM", default "23:59"
	AutoCloseBufferMinutes         *int    // default 0
	AutoCloseCheckApprovedOvertime *bool   // default true

	// Supplementary days
	SupplementaryMinimumMinutes *int // default 30

	UpdatedAt time.Time
}

// DepartmentSettings override a subset of tenant settings for one department.
// Only enablement, auto correction and the margin can differ per department.
type DepartmentSettings struct {
	TenantID     string
	DepartmentID string

	WrongTypeEnabled       *bool
	WrongTypeAutoCorrect   *bool
	WrongTypeMarginMinutes *int

	UpdatedAt time.Time
}

const (
	DefaultDebounceSeconds          = 60
	DefaultWrongTypeMethod          = "SHIFT_BASED"
	DefaultWrongTypeMarginMinutes   = 120
	DefaultWrongTypeThreshold       = 80
	DefaultAutoCloseEndTime         = "23:59"
	DefaultSupplementaryMinimumMins = 30
)

// WrongTypeConfig is the fully resolved wrong-type detection configuration
// for one employee, after tenant defaults and department overrides.
type WrongTypeConfig struct {
	Enabled            bool
	AutoCorrect        bool
	Method             string // SHIFT_BASED, CONTEXT_BASED or COMBINED
	MarginMinutes      int
	Threshold          int
	RequiresValidation bool
}

// ResolveWrongTypeConfig layers department overrides over tenant settings over
// the built-in defaults. Either settings argument may be nil.
func ResolveWrongTypeConfig(ts *Settings, ds *DepartmentSettings) WrongTypeConfig {
	cfg := WrongTypeConfig{
		Enabled:            false,
		AutoCorrect:        false,
		Method:             DefaultWrongTypeMethod,
		MarginMinutes:      DefaultWrongTypeMarginMinutes,
		Threshold:          DefaultWrongTypeThreshold,
		RequiresValidation: true,
	}

	if ts != nil {
		if ts.WrongTypeEnabled != nil {
			cfg.Enabled = *ts.WrongTypeEnabled
		}
		if ts.WrongTypeAutoCorrect != nil {
			cfg.AutoCorrect = *ts.WrongTypeAutoCorrect
		}
		if ts.WrongTypeMethod != nil && *ts.WrongTypeMethod != "" {
			cfg.Method = *ts.WrongTypeMethod
		}
		if ts.WrongTypeMarginMinutes != nil {
			cfg.MarginMinutes = *ts.WrongTypeMarginMinutes
		}
		if ts.WrongTypeThreshold != nil {
			cfg.Threshold = *ts.WrongTypeThreshold
		}
		if ts.WrongTypeRequiresValidation != nil {
			cfg.RequiresValidation = *ts.WrongTypeRequiresValidation
		}
	}

	if ds != nil {
		if ds.WrongTypeEnabled != nil {
			cfg.Enabled = *ds.WrongTypeEnabled
		}
		if ds.WrongTypeAutoCorrect != nil {
			cfg.AutoCorrect = *ds.WrongTypeAutoCorrect
		}
		if ds.WrongTypeMarginMinutes != nil {
			cfg.MarginMinutes = *ds.WrongTypeMarginMinutes
		}
	}

	return cfg
}

// DebounceSeconds returns the effective punch debounce window.
func (s *Settings) DebounceWindowSeconds() int {
	if s == nil || s.DebounceSeconds == nil {
		return DefaultDebounceSeconds
	}
	return *s.DebounceSeconds
}

// AutoCloseOrphans reports whether the auto-close batch runs for this tenant.
func (s *Settings) AutoCloseOrphans() bool {
	if s == nil || s.AutoCloseEnabled == nil {
		return true
	}
	return *s.AutoCloseEnabled
}

// CheckApprovedOvertime reports whether approved overtime extends the
// synthetic close time.
func (s *Settings) CheckApprovedOvertime() bool {
	if s == nil || s.AutoCloseCheckApprovedOvertime == nil {
		return true
	}
	return *s.AutoCloseCheckApprovedOvertime
}

// DefaultEndTime returns the effective auto-close fallback end time.
func (s *Settings) DefaultEndTime() string {
	if s == nil || s.AutoCloseDefaultEndTime == nil || *s.AutoCloseDefaultEndTime == "" {
		return DefaultAutoCloseEndTime
	}
	return *s.AutoCloseDefaultEndTime
}

// BufferMinutes returns the effective auto-close buffer.
func (s *Settings) BufferMinutes() int {
	if s == nil || s.AutoCloseBufferMinutes == nil {
		return 0
	}
	return *s.AutoCloseBufferMinutes
}

// SupplementaryMinimum returns the minimum worked minutes for a session to
// create a supplementary day.
func (s *Settings) SupplementaryMinimum() int {
	if s == nil || s.SupplementaryMinimumMinutes == nil {
		return DefaultSupplementaryMinimumMins
	}
	return *s.SupplementaryMinimumMinutes
}
