package tenant

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (Tenant, error)

	// ListActive returns all active tenants, used by the background jobs to
	// fan out per tenant.
	ListActive(ctx context.Context) ([]Tenant, error)
}

type SettingsRepository interface {
	// GetSettings returns the tenant settings, or nil when the tenant has
	// never saved any.
	GetSettings(ctx context.Context, tenantID string) (*Settings, error)

	// GetDepartmentSettings returns overrides for a department, or nil.
	GetDepartmentSettings(ctx context.Context, tenantID, departmentID string) (*DepartmentSettings, error)
}
