package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/chronopoint/attendance-backend-go/internal/domain/punch"
	"github.com/chronopoint/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const punchColumns = `
	id, tenant_id, employee_id, device_id, timestamp, direction, method,
	has_anomaly, anomaly_type, anomaly_note, hours_worked,
	is_corrected, corrected_by, corrected_at, correction_note,
	raw_payload, created_at, updated_at`

type punchRepository struct {
	db *database.DB
}

func NewPunchRepository(db *database.DB) punch.Repository {
	return &punchRepository{db: db}
}

func scanPunch(row pgx.Row) (punch.Punch, error) {
	var p punch.Punch
	err := row.Scan(
		&p.ID, &p.TenantID, &p.EmployeeID, &p.DeviceID, &p.Timestamp, &p.Direction, &p.Method,
		&p.HasAnomaly, &p.AnomalyType, &p.AnomalyNote, &p.HoursWorked,
		&p.IsCorrected, &p.CorrectedBy, &p.CorrectedAt, &p.CorrectionNote,
		&p.RawPayload, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// Create implements punch.Repository.
func (r *punchRepository) Create(ctx context.Context, p punch.Punch) (punch.Punch, error) {
	q := GetQuerier(ctx, r.db)

	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	query := `
		INSERT INTO punches (
			id, tenant_id, employee_id, device_id, timestamp, direction, method,
			has_anomaly, anomaly_type, anomaly_note, raw_payload
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		p.ID,
		p.TenantID,
		p.EmployeeID,
		p.DeviceID,
		p.Timestamp,
		p.Direction,
		p.Method,
		p.HasAnomaly,
		p.AnomalyType,
		p.AnomalyNote,
		p.RawPayload,
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return punch.Punch{}, fmt.Errorf("failed to create punch: %w", err)
	}

	return p, nil
}

// GetByID implements punch.Repository.
func (r *punchRepository) GetByID(ctx context.Context, id string, tenantID string) (punch.Punch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			p.id, p.tenant_id, p.employee_id, p.device_id, p.timestamp, p.direction, p.method,
			p.has_anomaly, p.anomaly_type, p.anomaly_note, p.hours_worked,
			p.is_corrected, p.corrected_by, p.corrected_at, p.correction_note,
			p.raw_payload, p.created_at, p.updated_at,
			e.first_name || ' ' || e.last_name AS employee_name
		FROM punches p
		LEFT JOIN employees e ON e.id = p.employee_id
		WHERE p.id = $1 AND p.tenant_id = $2
	`

	var p punch.Punch
	err := q.QueryRow(ctx, query, id, tenantID).Scan(
		&p.ID, &p.TenantID, &p.EmployeeID, &p.DeviceID, &p.Timestamp, &p.Direction, &p.Method,
		&p.HasAnomaly, &p.AnomalyType, &p.AnomalyNote, &p.HoursWorked,
		&p.IsCorrected, &p.CorrectedBy, &p.CorrectedAt, &p.CorrectionNote,
		&p.RawPayload, &p.CreatedAt, &p.UpdatedAt,
		&p.EmployeeName,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return punch.Punch{}, punch.ErrPunchNotFound
		}
		return punch.Punch{}, fmt.Errorf("failed to get punch by id: %w", err)
	}

	return p, nil
}

// ListForRange implements punch.Repository.
func (r *punchRepository) ListForRange(ctx context.Context, tenantID, employeeID string, from, to time.Time) ([]punch.Punch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + punchColumns + `
		FROM punches
		WHERE tenant_id = $1
		  AND employee_id = $2
		  AND timestamp >= $3
		  AND timestamp < $4
		ORDER BY timestamp ASC
	`

	rows, err := q.Query(ctx, query, tenantID, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query punches for range: %w", err)
	}
	defer rows.Close()

	var punches []punch.Punch
	for rows.Next() {
		p, err := scanPunch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan punch: %w", err)
		}
		punches = append(punches, p)
	}

	return punches, rows.Err()
}

// LastBefore implements punch.Repository.
func (r *punchRepository) LastBefore(ctx context.Context, tenantID, employeeID string, ts time.Time, exclude []punch.AnomalyType) (*punch.Punch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + punchColumns + `
		FROM punches
		WHERE tenant_id = $1
		  AND employee_id = $2
		  AND timestamp < $3
		  AND (anomaly_type IS NULL OR NOT (anomaly_type = ANY($4)))
		ORDER BY timestamp DESC
		LIMIT 1
	`

	excluded := make([]string, 0, len(exclude))
	for _, t := range exclude {
		excluded = append(excluded, string(t))
	}

	p, err := scanPunch(q.QueryRow(ctx, query, tenantID, employeeID, ts, excluded))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last punch before: %w", err)
	}

	return &p, nil
}

// FirstOutAfter implements punch.Repository.
func (r *punchRepository) FirstOutAfter(ctx context.Context, tenantID, employeeID string, after, until time.Time) (*punch.Punch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + punchColumns + `
		FROM punches
		WHERE tenant_id = $1
		  AND employee_id = $2
		  AND direction = 'OUT'
		  AND timestamp > $3
		  AND timestamp <= $4
		ORDER BY timestamp ASC
		LIMIT 1
	`

	p, err := scanPunch(q.QueryRow(ctx, query, tenantID, employeeID, after, until))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get first out after: %w", err)
	}

	return &p, nil
}

// ListInsForRange implements punch.Repository.
func (r *punchRepository) ListInsForRange(ctx context.Context, tenantID string, from, to time.Time) ([]punch.Punch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + punchColumns + `
		FROM punches
		WHERE tenant_id = $1
		  AND direction = 'IN'
		  AND timestamp >= $2
		  AND timestamp < $3
		ORDER BY timestamp ASC
	`

	rows, err := q.Query(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query in punches: %w", err)
	}
	defer rows.Close()

	var punches []punch.Punch
	for rows.Next() {
		p, err := scanPunch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan punch: %w", err)
		}
		punches = append(punches, p)
	}

	return punches, rows.Err()
}

// ListMissingOut implements punch.Repository.
func (r *punchRepository) ListMissingOut(ctx context.Context, tenantID string, from, to time.Time) ([]punch.Punch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + punchColumns + `
		FROM punches
		WHERE tenant_id = $1
		  AND direction = 'IN'
		  AND has_anomaly = true
		  AND anomaly_type = 'MISSING_OUT'
		  AND timestamp >= $2
		  AND timestamp < $3
		ORDER BY timestamp ASC
	`

	rows, err := q.Query(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query missing-out punches: %w", err)
	}
	defer rows.Close()

	var punches []punch.Punch
	for rows.Next() {
		p, err := scanPunch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan punch: %w", err)
		}
		punches = append(punches, p)
	}

	return punches, rows.Err()
}

// SetAnomaly implements punch.Repository.
func (r *punchRepository) SetAnomaly(ctx context.Context, id, tenantID string, hasAnomaly bool, anomalyType *punch.AnomalyType, note *string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE punches
		SET has_anomaly = $3, anomaly_type = $4, anomaly_note = $5, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
	`

	tag, err := q.Exec(ctx, query, id, tenantID, hasAnomaly, anomalyType, note)
	if err != nil {
		return fmt.Errorf("failed to set punch anomaly: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return punch.ErrPunchNotFound
	}

	return nil
}

// Update implements punch.Repository.
func (r *punchRepository) Update(ctx context.Context, p punch.Punch) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE punches
		SET timestamp = $3, direction = $4,
			has_anomaly = $5, anomaly_type = $6, anomaly_note = $7, hours_worked = $8,
			is_corrected = $9, corrected_by = $10, corrected_at = $11, correction_note = $12,
			updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
	`

	tag, err := q.Exec(ctx, query,
		p.ID, p.TenantID,
		p.Timestamp, p.Direction,
		p.HasAnomaly, p.AnomalyType, p.AnomalyNote, p.HoursWorked,
		p.IsCorrected, p.CorrectedBy, p.CorrectedAt, p.CorrectionNote,
	)
	if err != nil {
		return fmt.Errorf("failed to update punch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return punch.ErrPunchNotFound
	}

	return nil
}

// List implements punch.Repository.
func (r *punchRepository) List(ctx context.Context, filter punch.ListFilter, tenantID string) ([]punch.Punch, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "p.tenant_id = $1"
	args := []interface{}{tenantID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		whereClause += fmt.Sprintf(" AND p.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		whereClause += fmt.Sprintf(" AND p.timestamp >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		whereClause += fmt.Sprintf(" AND p.timestamp < ($%d::date + interval '1 day')", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.HasAnomaly != nil {
		whereClause += fmt.Sprintf(" AND p.has_anomaly = $%d", argIdx)
		args = append(args, *filter.HasAnomaly)
		argIdx++
	}
	if filter.Direction != nil && *filter.Direction != "" {
		whereClause += fmt.Sprintf(" AND p.direction = $%d", argIdx)
		args = append(args, *filter.Direction)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM punches p WHERE " + whereClause
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count punches: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT
			p.id, p.tenant_id, p.employee_id, p.device_id, p.timestamp, p.direction, p.method,
			p.has_anomaly, p.anomaly_type, p.anomaly_note, p.hours_worked,
			p.is_corrected, p.corrected_by, p.corrected_at, p.correction_note,
			p.raw_payload, p.created_at, p.updated_at,
			e.first_name || ' ' || e.last_name AS employee_name
		FROM punches p
		LEFT JOIN employees e ON e.id = p.employee_id
		WHERE %s
		ORDER BY p.timestamp DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query punches: %w", err)
	}
	defer rows.Close()

	var punches []punch.Punch
	for rows.Next() {
		var p punch.Punch
		if err := rows.Scan(
			&p.ID, &p.TenantID, &p.EmployeeID, &p.DeviceID, &p.Timestamp, &p.Direction, &p.Method,
			&p.HasAnomaly, &p.AnomalyType, &p.AnomalyNote, &p.HoursWorked,
			&p.IsCorrected, &p.CorrectedBy, &p.CorrectedAt, &p.CorrectionNote,
			&p.RawPayload, &p.CreatedAt, &p.UpdatedAt,
			&p.EmployeeName,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan punch: %w", err)
		}
		punches = append(punches, p)
	}

	return punches, total, rows.Err()
}
