package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/chronopoint/attendance-backend-go/internal/domain/device"
	"github.com/chronopoint/attendance-backend-go/internal/domain/punch"
	"github.com/chronopoint/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type deviceRepository struct {
	db *database.DB
}

func NewDeviceRepository(db *database.DB) device.Repository {
	return &deviceRepository{db: db}
}

// GetByID implements device.Repository.
func (r *deviceRepository) GetByID(ctx context.Context, id, tenantID string) (device.Device, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, tenant_id, name, api_key_hash, is_active, last_sync_at, created_at, updated_at
		FROM devices
		WHERE id = $1 AND tenant_id = $2
	`

	var d device.Device
	err := q.QueryRow(ctx, query, id, tenantID).Scan(
		&d.ID, &d.TenantID, &d.Name, &d.APIKeyHash, &d.IsActive, &d.LastSyncAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return device.Device{}, punch.ErrDeviceNotFound
		}
		return device.Device{}, fmt.Errorf("failed to get device by id: %w", err)
	}

	return d, nil
}

// TouchLastSync implements device.Repository.
func (r *deviceRepository) TouchLastSync(ctx context.Context, id, tenantID string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE devices
		SET last_sync_at = $3, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
	`

	if _, err := q.Exec(ctx, query, id, tenantID, at); err != nil {
		return fmt.Errorf("failed to touch device last sync: %w", err)
	}

	return nil
}
