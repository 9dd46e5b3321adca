package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ports/secondary"
)

// AuditLogRepository implements secondary.AuditLogRepository with SQLite.
type AuditLogRepository struct {
	db *sql.DB
}

// NewAuditLogRepository creates a new SQLite audit log repository.
func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create persists a new audit entry.
func (r *AuditLogRepository) Create(ctx context.Context, entry *secondary.AuditRecord) error {
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = now()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (timestamp, actor_id, entity_type, entity_id, action, field_name, old_value, new_value) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.UTC(),
		nullInt64(entry.ActorID),
		entry.EntityType,
		entry.EntityID,
		entry.Action,
		nullString(entry.FieldName),
		nullString(entry.OldValue),
		nullString(entry.NewValue),
	)
	if err != nil {
		return courterr.Persistence("audit.create", err, "failed to write audit entry")
	}
	entry.ID, _ = res.LastInsertId()
	entry.Timestamp = ts.UTC()
	return nil
}

// List retrieves audit entries matching the given filters, newest first.
func (r *AuditLogRepository) List(ctx context.Context, filters secondary.AuditFilters) ([]*secondary.AuditRecord, error) {
	query := `SELECT id, timestamp, actor_id, entity_type, entity_id, action, field_name, old_value, new_value FROM audit_log WHERE 1=1`
	args := []any{}

	if filters.EntityType != "" {
		query += " AND entity_type = ?"
		args = append(args, filters.EntityType)
	}

	if filters.EntityID != "" {
		query += " AND entity_id = ?"
		args = append(args, filters.EntityID)
	}

	if filters.ActorID != 0 {
		query += " AND actor_id = ?"
		args = append(args, filters.ActorID)
	}

	if filters.Action != "" {
		query += " AND action = ?"
		args = append(args, filters.Action)
	}

	query += " ORDER BY timestamp DESC, id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, courterr.Persistence("audit.list", err, "failed to list audit entries")
	}
	defer rows.Close()

	var entries []*secondary.AuditRecord
	for rows.Next() {
		var (
			actorID   sql.NullInt64
			fieldName sql.NullString
			oldValue  sql.NullString
			newValue  sql.NullString
			timestamp sql.NullTime
		)

		record := &secondary.AuditRecord{}
		err := rows.Scan(&record.ID,
			&timestamp,
			&actorID,
			&record.EntityType,
			&record.EntityID,
			&record.Action,
			&fieldName,
			&oldValue,
			&newValue)
		if err != nil {
			return nil, courterr.Persistence("audit.list", err, "failed to scan audit entry")
		}
		record.Timestamp = timeOrZero(timestamp)
		record.ActorID = actorID.Int64
		record.FieldName = fieldName.String
		record.OldValue = oldValue.String
		record.NewValue = newValue.String

		entries = append(entries, record)
	}
	if err := rows.Err(); err != nil {
		return nil, courterr.Persistence("audit.list", err, "failed to list audit entries")
	}

	return entries, nil
}

// PruneOlderThan deletes entries older than the given number of days.
func (r *AuditLogRepository) PruneOlderThan(ctx context.Context, days int) (int, error) {
	cutoff := now().AddDate(0, 0, -days)
	result, err := r.db.ExecContext(ctx, "DELETE FROM audit_log WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, courterr.Persistence("audit.prune", err, fmt.Sprintf("failed to prune entries older than %d days", days))
	}

	count, _ := result.RowsAffected()
	return int(count), nil
}

// Ensure AuditLogRepository implements the interface
var _ secondary.AuditLogRepository = (*AuditLogRepository)(nil)
