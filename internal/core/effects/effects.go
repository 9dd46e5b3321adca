// Package effects defines effect types as data structures representing
// chat platform operations. Planners in the functional core return effects;
// the application shell interprets them.
// Effects are pure data - they describe what should happen, not how.
package effects

// Effect is the base interface for all effects.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// Grant is a tri-state permission value on an overwrite.
type Grant int

const (
	Inherit Grant = iota
	Allow
	Deny
)

// TargetKind identifies what a permission overwrite applies to.
type TargetKind string

const (
	TargetRole   TargetKind = "role"
	TargetMember TargetKind = "member"
)

// MoveChannelEffect moves a channel under another category.
type MoveChannelEffect struct {
	ChannelID  int64
	CategoryID int64
}

func (e MoveChannelEffect) EffectType() string { return "move_channel" }

// SyncPermissionsEffect resets a channel's overwrites to its category's.
type SyncPermissionsEffect struct {
	ChannelID int64
}

func (e SyncPermissionsEffect) EffectType() string { return "sync_permissions" }

// PermissionEffect edits one permission overwrite on a channel.
type PermissionEffect struct {
	ChannelID int64
	TargetID  int64
	Target    TargetKind
	View      Grant
	Send      Grant
}

func (e PermissionEffect) EffectType() string { return "permission" }

// NoticeEffect posts an embed notice into a channel.
type NoticeEffect struct {
	ChannelID    int64
	Title        string
	Body         string
	Color        int
	DeleteButton bool // attach the delete-channel affordance
}

func (e NoticeEffect) EffectType() string { return "notice" }

// DirectMessageEffect sends a DM. Best-effort DMs never fail the batch.
type DirectMessageEffect struct {
	UserID     int64
	Body       string
	BestEffort bool
}

func (e DirectMessageEffect) EffectType() string { return "direct_message" }
