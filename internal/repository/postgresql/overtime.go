package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/chronopoint/attendance-backend-go/internal/domain/overtime"
	"github.com/chronopoint/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type overtimeRepository struct {
	db *database.DB
}

func NewOvertimeRepository(db *database.DB) overtime.Repository {
	return &overtimeRepository{db: db}
}

// FindLargestForDay implements overtime.Repository.
func (r *overtimeRepository) FindLargestForDay(ctx context.Context, tenantID, employeeID string, date time.Time) (*overtime.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, tenant_id, employee_id, date, hours, status, created_at, updated_at
		FROM overtime_records
		WHERE tenant_id = $1
		  AND employee_id = $2
		  AND date = $3
		  AND status != 'REJECTED'
		ORDER BY hours DESC
		LIMIT 1
	`

	var o overtime.Record
	err := q.QueryRow(ctx, query, tenantID, employeeID, date).Scan(
		&o.ID, &o.TenantID, &o.EmployeeID, &o.Date, &o.Hours, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find overtime record: %w", err)
	}

	return &o, nil
}
