// Package storage persists movements and users in SQLite and exposes
// the query surface the lifecycle service and the aggregator build on.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mouvements/internal/core"

	_ "modernc.org/sqlite"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// movementColumns is the select list shared by every movement query.
// The three user joins resolve the audit actor references.
const movementColumns = `
	m.id, m.type, m.last_name, m.first_name, m.employee_number,
	m.job_title, m.contract_kind, m.department, m.effective_date,
	m.note, m.month_key, m.acknowledged, m.acknowledged_at,
	m.created_at, m.updated_at,
	cu.id, cu.username, cu.display_name, cu.role,
	uu.id, uu.username, uu.display_name, uu.role,
	au.id, au.username, au.display_name, au.role`

const movementJoins = `
	FROM movements m
	JOIN users cu ON cu.id = m.created_by
	LEFT JOIN users uu ON uu.id = m.updated_by
	LEFT JOIN users au ON au.id = m.acknowledged_by`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovement(row rowScanner) (core.Movement, error) {
	var (
		m              core.Movement
		typeCode       string
		effectiveDate  string
		acknowledgedAt sql.NullString
		createdAt      string
		updatedAt      string
		updatedBy      nullActor
		ackBy          nullActor
	)

	err := row.Scan(
		&m.ID, &typeCode, &m.LastName, &m.FirstName, &m.EmployeeNumber,
		&m.JobTitle, &m.ContractKind, &m.Department, &effectiveDate,
		&m.Note, &m.MonthKey, &m.Acknowledged, &acknowledgedAt,
		&createdAt, &updatedAt,
		&m.CreatedBy.ID, &m.CreatedBy.Username, &m.CreatedBy.DisplayName, &m.CreatedBy.Role,
		&updatedBy.id, &updatedBy.username, &updatedBy.displayName, &updatedBy.role,
		&ackBy.id, &ackBy.username, &ackBy.displayName, &ackBy.role,
	)
	if err != nil {
		return core.Movement{}, err
	}

	m.Type = core.MovementType(typeCode)
	if m.EffectiveDate, err = time.Parse(dateLayout, effectiveDate); err != nil {
		return core.Movement{}, fmt.Errorf("parse effective_date: %w", err)
	}
	if m.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return core.Movement{}, fmt.Errorf("parse created_at: %w", err)
	}
	if m.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return core.Movement{}, fmt.Errorf("parse updated_at: %w", err)
	}
	if acknowledgedAt.Valid {
		t, err := time.Parse(timeLayout, acknowledgedAt.String)
		if err != nil {
			return core.Movement{}, fmt.Errorf("parse acknowledged_at: %w", err)
		}
		m.AcknowledgedAt = &t
	}
	m.UpdatedBy = updatedBy.toActor()
	m.AcknowledgedBy = ackBy.toActor()

	return m, nil
}

type nullActor struct {
	id          sql.NullInt64
	username    sql.NullString
	displayName sql.NullString
	role        sql.NullString
}

func (n nullActor) toActor() *core.Actor {
	if !n.id.Valid {
		return nil
	}
	return &core.Actor{
		ID:          n.id.Int64,
		Username:    n.username.String,
		DisplayName: n.displayName.String,
		Role:        n.role.String,
	}
}

func actorID(a *core.Actor) any {
	if a == nil {
		return nil
	}
	return a.ID
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(timeLayout)
}

// InsertMovement persists a new movement and fills in its assigned ID.
func (r *SQLiteRepository) InsertMovement(ctx context.Context, m *core.Movement) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO movements (
			type, last_name, first_name, employee_number, job_title,
			contract_kind, department, effective_date, note, month_key,
			acknowledged, acknowledged_at, acknowledged_by,
			created_at, updated_at, created_by, updated_by,
			register_status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending')`,
		string(m.Type), m.LastName, m.FirstName, m.EmployeeNumber, m.JobTitle,
		m.ContractKind, m.Department, m.EffectiveDate.Format(dateLayout),
		m.Note, m.MonthKey,
		m.Acknowledged, nullTime(m.AcknowledgedAt), actorID(m.AcknowledgedBy),
		m.CreatedAt.Format(timeLayout), m.UpdatedAt.Format(timeLayout),
		m.CreatedBy.ID, actorID(m.UpdatedBy),
	)
	if err != nil {
		return 0, fmt.Errorf("insert movement: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted movement id: %w", err)
	}
	m.ID = id

	slog.InfoContext(ctx, "Movement saved to SQLite",
		"id", id,
		"type", string(m.Type),
		"month_key", m.MonthKey,
		"employee_number", m.EmployeeNumber)

	return id, nil
}

// UpdateMovement overwrites an existing movement row and re-queues it
// for register sync.
func (r *SQLiteRepository) UpdateMovement(ctx context.Context, m core.Movement) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE movements SET
			type = ?, last_name = ?, first_name = ?, employee_number = ?,
			job_title = ?, contract_kind = ?, department = ?,
			effective_date = ?, note = ?, month_key = ?,
			acknowledged = ?, acknowledged_at = ?, acknowledged_by = ?,
			updated_at = ?, updated_by = ?,
			register_status = 'pending'
		WHERE id = ?`,
		string(m.Type), m.LastName, m.FirstName, m.EmployeeNumber,
		m.JobTitle, m.ContractKind, m.Department,
		m.EffectiveDate.Format(dateLayout), m.Note, m.MonthKey,
		m.Acknowledged, nullTime(m.AcknowledgedAt), actorID(m.AcknowledgedBy),
		m.UpdatedAt.Format(timeLayout), actorID(m.UpdatedBy),
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("update movement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update movement rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrMovementNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteMovement(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete movement rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrMovementNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetMovement(ctx context.Context, id int64) (core.Movement, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT`+movementColumns+movementJoins+` WHERE m.id = ?`, id)
	m, err := scanMovement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Movement{}, core.ErrMovementNotFound
	}
	if err != nil {
		return core.Movement{}, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) queryMovements(ctx context.Context, query string, args ...any) ([]core.Movement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []core.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// ListByMonth returns the movements of one month ordered by last name
// then first name. The service layer applies the canonical type order.
func (r *SQLiteRepository) ListByMonth(ctx context.Context, monthKey string) ([]core.Movement, error) {
	movements, err := r.queryMovements(ctx,
		`SELECT`+movementColumns+movementJoins+`
		WHERE m.month_key = ?
		ORDER BY m.last_name COLLATE NOCASE ASC, m.first_name COLLATE NOCASE ASC`,
		monthKey)
	if err != nil {
		return nil, fmt.Errorf("list movements by month: %w", err)
	}
	return movements, nil
}

func (r *SQLiteRepository) ListByMonthAndType(ctx context.Context, monthKey string, t core.MovementType) ([]core.Movement, error) {
	movements, err := r.queryMovements(ctx,
		`SELECT`+movementColumns+movementJoins+`
		WHERE m.month_key = ? AND m.type = ?
		ORDER BY m.last_name COLLATE NOCASE ASC, m.first_name COLLATE NOCASE ASC`,
		monthKey, string(t))
	if err != nil {
		return nil, fmt.Errorf("list movements by month and type: %w", err)
	}
	return movements, nil
}

// ListUnacknowledged returns movements the IT service has not processed
// yet, newest first. monthKey narrows to one month when non-empty.
func (r *SQLiteRepository) ListUnacknowledged(ctx context.Context, monthKey string) ([]core.Movement, error) {
	query := `SELECT` + movementColumns + movementJoins + ` WHERE m.acknowledged = 0`
	args := []any{}
	if monthKey != "" {
		query += ` AND m.month_key = ?`
		args = append(args, monthKey)
	}
	query += ` ORDER BY m.created_at DESC`

	movements, err := r.queryMovements(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list unacknowledged movements: %w", err)
	}
	return movements, nil
}

// SearchMovements matches the query against names, employee number, job
// title and department, most recently updated first.
func (r *SQLiteRepository) SearchMovements(ctx context.Context, query, monthKey string) ([]core.Movement, error) {
	pattern := "%" + query + "%"
	sqlQuery := `SELECT` + movementColumns + movementJoins + `
		WHERE (m.last_name LIKE ? OR m.first_name LIKE ?
			OR m.employee_number LIKE ? OR m.job_title LIKE ?
			OR m.department LIKE ?)`
	args := []any{pattern, pattern, pattern, pattern, pattern}
	if monthKey != "" {
		sqlQuery += ` AND m.month_key = ?`
		args = append(args, monthKey)
	}
	sqlQuery += ` ORDER BY m.updated_at DESC`

	movements, err := r.queryMovements(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("search movements: %w", err)
	}
	return movements, nil
}

func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]core.Movement, error) {
	movements, err := r.queryMovements(ctx,
		`SELECT`+movementColumns+movementJoins+`
		ORDER BY m.created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent movements: %w", err)
	}
	return movements, nil
}

// DistinctMonths returns every month key present in the table,
// descending (most recent first).
func (r *SQLiteRepository) DistinctMonths(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT month_key FROM movements ORDER BY month_key DESC`)
	if err != nil {
		return nil, fmt.Errorf("distinct months: %w", err)
	}
	defer rows.Close()

	var months []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan month key: %w", err)
		}
		months = append(months, m)
	}
	return months, rows.Err()
}

// CountByTypeForMonth returns the raw per-type counts of one month.
// Types with no movements are absent; the aggregator zero-fills them.
func (r *SQLiteRepository) CountByTypeForMonth(ctx context.Context, monthKey string) (map[core.MovementType]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT type, COUNT(*) FROM movements WHERE month_key = ? GROUP BY type`,
		monthKey)
	if err != nil {
		return nil, fmt.Errorf("count by type for month: %w", err)
	}
	defer rows.Close()

	counts := make(map[core.MovementType]int)
	for rows.Next() {
		var (
			typeCode string
			count    int
		)
		if err := rows.Scan(&typeCode, &count); err != nil {
			return nil, fmt.Errorf("scan type count: %w", err)
		}
		counts[core.MovementType(typeCode)] = count
	}
	return counts, rows.Err()
}

func (r *SQLiteRepository) CountByMonth(ctx context.Context) ([]core.MonthCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT month_key, COUNT(*) FROM movements
		GROUP BY month_key ORDER BY month_key DESC`)
	if err != nil {
		return nil, fmt.Errorf("count by month: %w", err)
	}
	defer rows.Close()

	var counts []core.MonthCount
	for rows.Next() {
		var mc core.MonthCount
		if err := rows.Scan(&mc.MonthKey, &mc.Count); err != nil {
			return nil, fmt.Errorf("scan month count: %w", err)
		}
		counts = append(counts, mc)
	}
	return counts, rows.Err()
}

func (r *SQLiteRepository) CountMovements(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movements`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count movements: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) CountAcknowledged(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM movements WHERE acknowledged = 1`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count acknowledged movements: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) CountForMonth(ctx context.Context, monthKey string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM movements WHERE month_key = ?`, monthKey).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count movements for month: %w", err)
	}
	return n, nil
}

// PendingRegisterSync returns movements waiting to be mirrored to the
// shared register sheet, oldest first.
func (r *SQLiteRepository) PendingRegisterSync(ctx context.Context, limit int) ([]core.Movement, error) {
	movements, err := r.queryMovements(ctx,
		`SELECT`+movementColumns+movementJoins+`
		WHERE m.register_status = 'pending'
		ORDER BY m.updated_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("pending register sync: %w", err)
	}
	return movements, nil
}

// MarkRegisterSynced records a successful mirror of the movement to the
// register sheet.
func (r *SQLiteRepository) MarkRegisterSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE movements SET register_status = 'synced', register_synced_at = ?
		WHERE id = ?`,
		time.Now().Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("mark register synced: %w", err)
	}

	slog.InfoContext(ctx, "Movement marked as synced to register", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkRegisterSyncError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE movements SET register_status = 'error' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark register sync error: %w", err)
	}

	slog.WarnContext(ctx, "Movement marked with register sync error", "id", id)
	return nil
}
