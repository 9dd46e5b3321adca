package secondary

import (
	"context"
	"time"
)

// LogWriter defines the interface for writing audit log entries.
// Implementations extract the actor from context.
type LogWriter interface {
	// LogCreate logs a create operation for an entity.
	LogCreate(ctx context.Context, entityType, entityID string) error

	// LogUpdate logs an update operation for an entity field.
	// fieldName, oldValue, newValue describe what changed.
	LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error

	// LogDelete logs a delete operation for an entity.
	LogDelete(ctx context.Context, entityType, entityID string) error
}

// AuditLogRepository defines the secondary port for audit trail persistence.
// Entries are immutable - no Update operations, but old entries can be pruned.
type AuditLogRepository interface {
	// Create persists a new audit entry.
	Create(ctx context.Context, entry *AuditRecord) error

	// List retrieves audit entries matching the given filters, newest first.
	List(ctx context.Context, filters AuditFilters) ([]*AuditRecord, error)

	// PruneOlderThan deletes entries older than the given number of days.
	// Returns the number of deleted entries.
	PruneOlderThan(ctx context.Context, days int) (int, error)
}

// AuditRecord represents an audit entry as stored in persistence.
type AuditRecord struct {
	ID         int64
	Timestamp  time.Time
	ActorID    int64 // 0 means the system (sweep, startup)
	EntityType string
	EntityID   string
	Action     string // 'create', 'update', 'delete'
	FieldName  string // for updates only
	OldValue   string
	NewValue   string
}

// AuditFilters contains filter options for querying the audit log.
type AuditFilters struct {
	EntityType string
	EntityID   string
	ActorID    int64
	Action     string
	Limit      int
}
