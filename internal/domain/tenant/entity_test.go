package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveWrongTypeConfig_Defaults(t *testing.T) {
	t.Parallel()
	cfg := ResolveWrongTypeConfig(nil, nil)

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.AutoCorrect)
	assert.Equal(t, "SHIFT_BASED", cfg.Method)
	assert.Equal(t, 120, cfg.MarginMinutes)
	assert.Equal(t, 80, cfg.Threshold)
	assert.True(t, cfg.RequiresValidation)
}

func TestResolveWrongTypeConfig_TenantOverrides(t *testing.T) {
	t.Parallel()
	enabled := true
	method := "COMBINED"
	margin := 60
	threshold := 70
	requiresValidation := false

	cfg := ResolveWrongTypeConfig(&Settings{
		WrongTypeEnabled:            &enabled,
		WrongTypeMethod:             &method,
		WrongTypeMarginMinutes:      &margin,
		WrongTypeThreshold:          &threshold,
		WrongTypeRequiresValidation: &requiresValidation,
	}, nil)

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "COMBINED", cfg.Method)
	assert.Equal(t, 60, cfg.MarginMinutes)
	assert.Equal(t, 70, cfg.Threshold)
	assert.False(t, cfg.RequiresValidation)
}

func TestResolveWrongTypeConfig_DepartmentLayersOverTenant(t *testing.T) {
	t.Parallel()
	tenantEnabled := true
	tenantMargin := 60
	deptEnabled := false
	deptMargin := 90

	cfg := ResolveWrongTypeConfig(
		&Settings{WrongTypeEnabled: &tenantEnabled, WrongTypeMarginMinutes: &tenantMargin},
		&DepartmentSettings{WrongTypeEnabled: &deptEnabled, WrongTypeMarginMinutes: &deptMargin},
	)

	assert.False(t, cfg.Enabled)
	assert.Equal(t, 90, cfg.MarginMinutes)
	// Department overrides never touch method or threshold.
	assert.Equal(t, "SHIFT_BASED", cfg.Method)
	assert.Equal(t, 80, cfg.Threshold)
}

func TestSettingsDefaultsOnNil(t *testing.T) {
	t.Parallel()
	var s *Settings

	assert.Equal(t, 60, s.DebounceWindowSeconds())
	assert.Equal(t, "23:59", s.DefaultEndTime())
	assert.Equal(t, 0, s.BufferMinutes())
	assert.Equal(t, 30, s.SupplementaryMinimum())
	assert.True(t, s.AutoCloseOrphans())
	assert.True(t, s.CheckApprovedOvertime())
}

func TestSettingsExplicitValues(t *testing.T) {
	t.Parallel()
	debounce := 90
	endTime := "18:30"
	buffer := 15
	supplementary := 45
	disabled := false

	s := &Settings{
		DebounceSeconds:                &debounce,
		AutoCloseEnabled:               &disabled,
		AutoCloseDefaultEndTime:        &endTime,
		AutoCloseBufferMinutes:         &buffer,
		AutoCloseCheckApprovedOvertime: &disabled,
		SupplementaryMinimumMinutes:    &supplementary,
	}

	assert.Equal(t, 90, s.DebounceWindowSeconds())
	assert.Equal(t, "18:30", s.DefaultEndTime())
	assert.Equal(t, 15, s.BufferMinutes())
	assert.Equal(t, 45, s.SupplementaryMinimum())
	assert.False(t, s.AutoCloseOrphans())
	assert.False(t, s.CheckApprovedOvertime())
}
