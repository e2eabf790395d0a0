package postgresql

import (
	"context"
	"fmt"

	"github.com/chronopoint/attendance-backend-go/internal/domain/tenant"
	"github.com/chronopoint/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type tenantRepository struct {
	db *database.DB
}

func NewTenantRepository(db *database.DB) tenant.Repository {
	return &tenantRepository{db: db}
}

// GetByID implements tenant.Repository.
func (r *tenantRepository) GetByID(ctx context.Context, id string) (tenant.Tenant, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, timezone, is_active, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`

	var t tenant.Tenant
	err := q.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Timezone, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return tenant.Tenant{}, tenant.ErrTenantNotFound
		}
		return tenant.Tenant{}, fmt.Errorf("failed to get tenant by id: %w", err)
	}

	return t, nil
}

// ListActive implements tenant.Repository.
func (r *tenantRepository) ListActive(ctx context.Context) ([]tenant.Tenant, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, timezone, is_active, created_at, updated_at
		FROM tenants
		WHERE is_active = true
		ORDER BY name ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active tenants: %w", err)
	}
	defer rows.Close()

	var tenants []tenant.Tenant
	for rows.Next() {
		var t tenant.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Timezone, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}

	return tenants, rows.Err()
}

type settingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) tenant.SettingsRepository {
	return &settingsRepository{db: db}
}

// GetSettings implements tenant.SettingsRepository.
func (r *settingsRepository) GetSettings(ctx context.Context, tenantID string) (*tenant.Settings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			tenant_id, debounce_seconds,
			wrong_type_enabled, wrong_type_auto_correct, wrong_type_method,
			wrong_type_margin_minutes, wrong_type_threshold, wrong_type_requires_validation,
			auto_close_enabled, auto_close_default_end_time, auto_close_buffer_minutes,
			auto_close_check_approved_overtime,
			supplementary_minimum_minutes, updated_at
		FROM tenant_settings
		WHERE tenant_id = $1
	`

	var s tenant.Settings
	err := q.QueryRow(ctx, query, tenantID).Scan(
		&s.TenantID, &s.DebounceSeconds,
		&s.WrongTypeEnabled, &s.WrongTypeAutoCorrect, &s.WrongTypeMethod,
		&s.WrongTypeMarginMinutes, &s.WrongTypeThreshold, &s.WrongTypeRequiresValidation,
		&s.AutoCloseEnabled, &s.AutoCloseDefaultEndTime, &s.AutoCloseBufferMinutes,
		&s.AutoCloseCheckApprovedOvertime,
		&s.SupplementaryMinimumMinutes, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tenant settings: %w", err)
	}

	return &s, nil
}

// GetDepartmentSettings implements tenant.SettingsRepository.
func (r *settingsRepository) GetDepartmentSettings(ctx context.Context, tenantID, departmentID string) (*tenant.DepartmentSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			tenant_id, department_id,
			wrong_type_enabled, wrong_type_auto_correct, wrong_type_margin_minutes,
			updated_at
		FROM department_settings
		WHERE tenant_id = $1 AND department_id = $2
	`

	var s tenant.DepartmentSettings
	err := q.QueryRow(ctx, query, tenantID, departmentID).Scan(
		&s.TenantID, &s.DepartmentID,
		&s.WrongTypeEnabled, &s.WrongTypeAutoCorrect, &s.WrongTypeMarginMinutes,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get department settings: %w", err)
	}

	return &s, nil
}
