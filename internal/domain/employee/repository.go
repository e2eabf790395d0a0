package employee

import "context"

type Repository interface {
	GetByID(ctx context.Context, id, tenantID string) (Employee, error)

	// GetByBadge resolves a terminal badge number (matricule) to an employee.
	GetByBadge(ctx context.Context, matricule, tenantID string) (Employee, error)

	// ListActive returns all active employees of a tenant.
	ListActive(ctx context.Context, tenantID string) ([]Employee, error)
}
