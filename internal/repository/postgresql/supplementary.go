package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/chronopoint/attendance-backend-go/internal/domain/supplementary"
	"github.com/chronopoint/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const supplementaryColumns = `
	id, tenant_id, employee_id, date, kind, holiday_name, hours_worked,
	approved_hours, status,
	in_punch_id, out_punch_id, reviewed_by, reviewed_at, review_note,
	created_at, updated_at`

type supplementaryRepository struct {
	db *database.DB
}

func NewSupplementaryRepository(db *database.DB) supplementary.Repository {
	return &supplementaryRepository{db: db}
}

func scanSupplementaryDay(row pgx.Row) (supplementary.Day, error) {
	var d supplementary.Day
	err := row.Scan(
		&d.ID, &d.TenantID, &d.EmployeeID, &d.Date, &d.Kind, &d.HolidayName, &d.HoursWorked,
		&d.ApprovedHours, &d.Status,
		&d.InPunchID, &d.OutPunchID, &d.ReviewedBy, &d.ReviewedAt, &d.ReviewNote,
		&d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

// Create implements supplementary.Repository.
func (r *supplementaryRepository) Create(ctx context.Context, d supplementary.Day) (supplementary.Day, error) {
	q := GetQuerier(ctx, r.db)

	if d.ID == "" {
		d.ID = uuid.New().String()
	}

	query := `
		INSERT INTO supplementary_days (
			id, tenant_id, employee_id, date, kind, holiday_name, hours_worked, status,
			in_punch_id, out_punch_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		d.ID, d.TenantID, d.EmployeeID, d.Date, d.Kind, d.HolidayName, d.HoursWorked, d.Status,
		d.InPunchID, d.OutPunchID,
	).Scan(&d.CreatedAt, &d.UpdatedAt)

	if err != nil {
		return supplementary.Day{}, fmt.Errorf("failed to create supplementary day: %w", err)
	}

	return d, nil
}

// GetByID implements supplementary.Repository.
func (r *supplementaryRepository) GetByID(ctx context.Context, id, tenantID string) (supplementary.Day, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			sd.id, sd.tenant_id, sd.employee_id, sd.date, sd.kind, sd.holiday_name,
			sd.hours_worked, sd.approved_hours, sd.status,
			sd.in_punch_id, sd.out_punch_id, sd.reviewed_by, sd.reviewed_at, sd.review_note,
			sd.created_at, sd.updated_at,
			e.first_name || ' ' || e.last_name AS employee_name
		FROM supplementary_days sd
		LEFT JOIN employees e ON e.id = sd.employee_id
		WHERE sd.id = $1 AND sd.tenant_id = $2
	`

	var d supplementary.Day
	err := q.QueryRow(ctx, query, id, tenantID).Scan(
		&d.ID, &d.TenantID, &d.EmployeeID, &d.Date, &d.Kind, &d.HolidayName,
		&d.HoursWorked, &d.ApprovedHours, &d.Status,
		&d.InPunchID, &d.OutPunchID, &d.ReviewedBy, &d.ReviewedAt, &d.ReviewNote,
		&d.CreatedAt, &d.UpdatedAt,
		&d.EmployeeName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return supplementary.Day{}, supplementary.ErrDayNotFound
		}
		return supplementary.Day{}, fmt.Errorf("failed to get supplementary day: %w", err)
	}

	return d, nil
}

// FindForDay implements supplementary.Repository.
func (r *supplementaryRepository) FindForDay(ctx context.Context, tenantID, employeeID string, date time.Time) (*supplementary.Day, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + supplementaryColumns + `
		FROM supplementary_days
		WHERE tenant_id = $1 AND employee_id = $2 AND date = $3
		LIMIT 1
	`

	d, err := scanSupplementaryDay(q.QueryRow(ctx, query, tenantID, employeeID, date))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find supplementary day: %w", err)
	}

	return &d, nil
}

// Update implements supplementary.Repository.
func (r *supplementaryRepository) Update(ctx context.Context, d supplementary.Day) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE supplementary_days
		SET status = $3, approved_hours = $4, reviewed_by = $5, reviewed_at = $6, review_note = $7,
			updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
	`

	tag, err := q.Exec(ctx, query, d.ID, d.TenantID, d.Status, d.ApprovedHours, d.ReviewedBy, d.ReviewedAt, d.ReviewNote)
	if err != nil {
		return fmt.Errorf("failed to update supplementary day: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return supplementary.ErrDayNotFound
	}

	return nil
}

// List implements supplementary.Repository.
func (r *supplementaryRepository) List(ctx context.Context, filter supplementary.ListFilter, tenantID string) ([]supplementary.Day, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "sd.tenant_id = $1"
	args := []interface{}{tenantID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		whereClause += fmt.Sprintf(" AND sd.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		whereClause += fmt.Sprintf(" AND sd.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		whereClause += fmt.Sprintf(" AND sd.date >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		whereClause += fmt.Sprintf(" AND sd.date <= $%d::date", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM supplementary_days sd WHERE " + whereClause
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count supplementary days: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT
			sd.id, sd.tenant_id, sd.employee_id, sd.date, sd.kind, sd.holiday_name,
			sd.hours_worked, sd.approved_hours, sd.status,
			sd.in_punch_id, sd.out_punch_id, sd.reviewed_by, sd.reviewed_at, sd.review_note,
			sd.created_at, sd.updated_at,
			e.first_name || ' ' || e.last_name AS employee_name
		FROM supplementary_days sd
		LEFT JOIN employees e ON e.id = sd.employee_id
		WHERE %s
		ORDER BY sd.date DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query supplementary days: %w", err)
	}
	defer rows.Close()

	var days []supplementary.Day
	for rows.Next() {
		var d supplementary.Day
		if err := rows.Scan(
			&d.ID, &d.TenantID, &d.EmployeeID, &d.Date, &d.Kind, &d.HolidayName,
			&d.HoursWorked, &d.ApprovedHours, &d.Status,
			&d.InPunchID, &d.OutPunchID, &d.ReviewedBy, &d.ReviewedAt, &d.ReviewNote,
			&d.CreatedAt, &d.UpdatedAt,
			&d.EmployeeName,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan supplementary day: %w", err)
		}
		days = append(days, d)
	}

	return days, total, rows.Err()
}
