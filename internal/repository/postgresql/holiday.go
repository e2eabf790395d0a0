package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/chronopoint/attendance-backend-go/internal/domain/holiday"
	"github.com/chronopoint/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type holidayRepository struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.Repository {
	return &holidayRepository{db: db}
}

// FindOnDay implements holiday.Repository.
func (r *holidayRepository) FindOnDay(ctx context.Context, tenantID string, date time.Time) (*holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, tenant_id, name, date, created_at, updated_at
		FROM holidays
		WHERE tenant_id = $1 AND date = $2
		LIMIT 1
	`

	var h holiday.Holiday
	err := q.QueryRow(ctx, query, tenantID, date).Scan(
		&h.ID, &h.TenantID, &h.Name, &h.Date, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find holiday: %w", err)
	}

	return &h, nil
}
