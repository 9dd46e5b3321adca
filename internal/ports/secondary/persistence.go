// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"time"
)

// CaseRepository defines the secondary port for case persistence.
// Status transitions are compare-and-swap: when the stored state no longer
// matches the transition's precondition the update affects no rows and the
// repository returns a conflict error.
type CaseRepository interface {
	// Create persists a new case. A second case on the same channel is a conflict.
	Create(ctx context.Context, c *CaseRecord) (*CaseRecord, error)

	// GetByID retrieves a case by its ID.
	GetByID(ctx context.Context, id int64) (*CaseRecord, error)

	// GetByChannel retrieves the case bound to a channel.
	GetByChannel(ctx context.Context, channelID int64) (*CaseRecord, error)

	// NextID returns the id the next created case is expected to receive.
	NextID(ctx context.Context) (int64, error)

	// Assign sets the judge and status=assigned on an open, unassigned case.
	Assign(ctx context.Context, id, judgeID int64) error

	// Close sets status=closed together with the close fields and archived.
	Close(ctx context.Context, id int64, fields CloseFields) error

	// MarkArchived sets archived on an active, not yet archived case.
	MarkArchived(ctx context.Context, id int64) error

	// List retrieves cases matching the given filters, newest first.
	List(ctx context.Context, filters CaseFilters) ([]*CaseRecord, error)

	// Search finds closed or archived cases whose title, description or
	// closing reason contains term.
	Search(ctx context.Context, term string, limit int) ([]*CaseRecord, error)

	// Stats returns case counts by status and per judge.
	Stats(ctx context.Context) (*CaseStats, error)

	// CountOpenAssigned counts active cases assigned to a judge.
	CountOpenAssigned(ctx context.Context, judgeID int64) (int, error)
}

// CaseRecord represents a case as stored in persistence.
type CaseRecord struct {
	ID              int64
	ChannelID       int64
	CategoryID      int64
	CreatorID       int64
	AssignedJudgeID int64 // 0 when unassigned
	Title           string
	Description     string
	Status          string
	Archived        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ClosedAt        time.Time // zero when open
	ClosingReason   string
	ArchiveRef      string
}

// CloseFields are the fields a close commits atomically with status=closed.
type CloseFields struct {
	ClosedAt   time.Time
	Reason     string
	ArchiveRef string
}

// CaseFilters contains filter options for querying cases.
type CaseFilters struct {
	Status   string
	JudgeID  int64
	Archived *bool
	Limit    int
}

// CaseStats aggregates case counts.
type CaseStats struct {
	Total    int
	ByStatus map[string]int
	Archived int
	ByJudge  []JudgeCaseCount
}

// JudgeCaseCount is the number of cases a judge has been assigned.
type JudgeCaseCount struct {
	JudgeID int64
	Total   int
	Active  int
}

// EvidenceRepository defines the secondary port for the evidence ledger.
// Positions are 1-based ranks in insertion order within a case.
type EvidenceRepository interface {
	// Add appends an item and returns its position, counted and inserted in
	// one immediate transaction.
	Add(ctx context.Context, item *EvidenceRecord) (int, error)

	// RemoveAt deletes the item currently at position. Positions outside
	// [1, count] are not found and nothing is deleted.
	RemoveAt(ctx context.Context, caseID int64, position int) (*EvidenceRecord, error)

	// List returns the items of a case in insertion order with positions set.
	List(ctx context.Context, caseID int64) ([]*EvidenceRecord, error)

	// At returns the item at position without loading the whole ledger.
	At(ctx context.Context, caseID int64, position int) (*EvidenceRecord, error)

	// Count returns the number of items for a case.
	Count(ctx context.Context, caseID int64) (int, error)
}

// EvidenceRecord represents an evidence item as stored in persistence.
type EvidenceRecord struct {
	ID          int64 // storage identity, never shown
	CaseID      int64
	Position    int // derived, set on reads
	SubmitterID int64
	Description string
	Link        string
	SubmittedAt time.Time
}

// JudgeRepository defines the secondary port for judge persistence.
type JudgeRepository interface {
	// Upsert creates or replaces the judge's category binding.
	Upsert(ctx context.Context, j *JudgeRecord) error

	// GetByUser retrieves a judge by user id.
	GetByUser(ctx context.Context, userID int64) (*JudgeRecord, error)

	// List returns all judges ordered by category name.
	List(ctx context.Context) ([]*JudgeRecord, error)

	// Delete removes a judge.
	Delete(ctx context.Context, userID int64) error
}

// JudgeRecord represents a judge as stored in persistence.
type JudgeRecord struct {
	UserID       int64
	CategoryID   int64
	CategoryName string
	CreatedAt    time.Time
}

// CategoryRepository defines the secondary port for category persistence.
type CategoryRepository interface {
	// Upsert creates or updates a category by platform id.
	Upsert(ctx context.Context, c *CategoryRecord) error

	// GetByID retrieves a category by platform id.
	GetByID(ctx context.Context, categoryID int64) (*CategoryRecord, error)

	// GetArchive retrieves the archive category.
	GetArchive(ctx context.Context) (*CategoryRecord, error)

	// SetArchive marks a category as the archive, demoting any previous one.
	SetArchive(ctx context.Context, categoryID int64, name string) error

	// List returns categories, optionally of one kind.
	List(ctx context.Context, kind string) ([]*CategoryRecord, error)

	// Delete removes a category.
	Delete(ctx context.Context, categoryID int64) error
}

// CategoryRecord represents a category as stored in persistence.
type CategoryRecord struct {
	CategoryID int64
	Name       string
	RoleID     int64 // 0 when unrestricted
	Kind       string
	CreatedAt  time.Time
}

// NotificationRepository defines the secondary port for scheduled notifications.
type NotificationRepository interface {
	// Create persists a new notification and returns its id.
	Create(ctx context.Context, n *NotificationRecord) (int64, error)

	// GetByID retrieves a notification.
	GetByID(ctx context.Context, id int64) (*NotificationRecord, error)

	// DeleteUnsent deletes a notification only if it has not been sent.
	DeleteUnsent(ctx context.Context, id int64) error

	// ListPending returns unsent notifications ordered by schedule.
	ListPending(ctx context.Context) ([]*NotificationRecord, error)

	// ListDue returns unsent notifications scheduled at or before now.
	ListDue(ctx context.Context, now time.Time) ([]*NotificationRecord, error)

	// MarkSent flips sent to true. It reports false when another run already did.
	MarkSent(ctx context.Context, id int64, at time.Time) (bool, error)
}

// NotificationRecord represents a scheduled notification as stored in persistence.
type NotificationRecord struct {
	ID           int64
	TargetUserID int64
	Message      string
	ScheduledAt  time.Time
	CreatedBy    int64
	CreatedAt    time.Time
	Sent         bool
	SentAt       time.Time
}

// RolePermissionRepository defines the secondary port for role permissions.
type RolePermissionRepository interface {
	// Set binds a function to a role, replacing any previous binding.
	Set(ctx context.Context, p *RolePermissionRecord) error

	// Get retrieves the binding for a function. Unbound returns nil, nil.
	Get(ctx context.Context, guildID int64, function string) (*RolePermissionRecord, error)

	// List returns all bindings for a guild.
	List(ctx context.Context, guildID int64) ([]*RolePermissionRecord, error)
}

// RolePermissionRecord represents a role permission as stored in persistence.
type RolePermissionRecord struct {
	GuildID   int64
	Function  string
	RoleID    int64
	UpdatedAt time.Time
}

// PanelRepository defines the secondary port for intake panels.
type PanelRepository interface {
	// Create persists a panel registration.
	Create(ctx context.Context, p *PanelRecord) (int64, error)

	// GetByCategory retrieves the most recent panel for an intake category.
	GetByCategory(ctx context.Context, categoryID int64) (*PanelRecord, error)

	// List returns every panel.
	List(ctx context.Context) ([]*PanelRecord, error)
}

// PanelRecord represents an intake panel as stored in persistence.
type PanelRecord struct {
	ID          int64
	CategoryID  int64
	ChannelID   int64
	MessageID   int64
	Title       string
	Description string
	Emoji       string
	ButtonText  string
	RoleID      int64
	CreatedAt   time.Time
}
