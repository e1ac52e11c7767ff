package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mouvements/internal/core"
)

// GetUserByUsername resolves an actor by username, as forwarded by the
// authenticating reverse proxy.
func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.Actor, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, display_name, role FROM users WHERE username = ?`, username))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (core.Actor, error) {
	var a core.Actor
	err := row.Scan(&a.ID, &a.Username, &a.DisplayName, &a.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Actor{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.Actor{}, fmt.Errorf("get user: %w", err)
	}
	return a, nil
}

// ListUsers returns the whole directory, ordered by display name, for
// the read-only user list on the statistics page.
func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.Actor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, display_name, role FROM users ORDER BY display_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []core.Actor
	for rows.Next() {
		var a core.Actor
		if err := rows.Scan(&a.ID, &a.Username, &a.DisplayName, &a.Role); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, a)
	}
	return users, rows.Err()
}

// CreateUser registers a directory entry. Authentication is handled
// upstream; only identity and display name live here.
func (r *SQLiteRepository) CreateUser(ctx context.Context, a *core.Actor) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, display_name, role) VALUES (?, ?, ?)`,
		a.Username, a.DisplayName, a.Role)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read created user id: %w", err)
	}
	a.ID = id
	return nil
}
