package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ports/secondary"
)

// RolePermissionRepository implements secondary.RolePermissionRepository with SQLite.
type RolePermissionRepository struct {
	db *sql.DB
}

// NewRolePermissionRepository creates a new SQLite role permission repository.
func NewRolePermissionRepository(db *sql.DB) *RolePermissionRepository {
	return &RolePermissionRepository{db: db}
}

// Set binds a function to a role, replacing any previous binding.
func (r *RolePermissionRepository) Set(ctx context.Context, p *secondary.RolePermissionRecord) error {
	ts := now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO role_permissions (guild_id, function, role_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(guild_id, function) DO UPDATE SET role_id = excluded.role_id, updated_at = excluded.updated_at`,
		p.GuildID, p.Function, p.RoleID, ts, ts,
	)
	if err != nil {
		return courterr.Persistence("role.set", err, "failed to save role permission")
	}
	return nil
}

// Get retrieves the binding for a function. Unbound returns nil, nil.
func (r *RolePermissionRepository) Get(ctx context.Context, guildID int64, function string) (*secondary.RolePermissionRecord, error) {
	record, err := scanRolePermission(r.db.QueryRowContext(ctx,
		"SELECT guild_id, function, role_id, updated_at FROM role_permissions WHERE guild_id = ? AND function = ?",
		guildID, function))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, courterr.Persistence("role.get", err, "failed to get role permission")
	}
	return record, nil
}

// List returns all bindings for a guild.
func (r *RolePermissionRepository) List(ctx context.Context, guildID int64) ([]*secondary.RolePermissionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT guild_id, function, role_id, updated_at FROM role_permissions WHERE guild_id = ? ORDER BY function",
		guildID)
	if err != nil {
		return nil, courterr.Persistence("role.list", err, "failed to list role permissions")
	}
	defer rows.Close()

	var out []*secondary.RolePermissionRecord
	for rows.Next() {
		record, err := scanRolePermission(rows)
		if err != nil {
			return nil, courterr.Persistence("role.list", err, "failed to scan role permission")
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, courterr.Persistence("role.list", err, "failed to list role permissions")
	}
	return out, nil
}

func scanRolePermission(s scanner) (*secondary.RolePermissionRecord, error) {
	var updatedAt sql.NullTime
	record := &secondary.RolePermissionRecord{}
	if err := s.Scan(&record.GuildID, &record.Function, &record.RoleID, &updatedAt); err != nil {
		return nil, err
	}
	record.UpdatedAt = timeOrZero(updatedAt)
	return record, nil
}

// Ensure RolePermissionRepository implements the interface
var _ secondary.RolePermissionRepository = (*RolePermissionRepository)(nil)
