package secondary

import (
	"context"
	"errors"
	"time"
)

// ErrUnknownMember is wrapped by GetMember when the user is not a member of
// the guild.
var ErrUnknownMember = errors.New("unknown member")

// ChatPlatform defines the secondary port for the chat platform the court
// runs on. All ids are platform snowflakes. Implementations are bound to a
// single guild.
type ChatPlatform interface {
	// GuildID returns the guild the platform is bound to. The guild's default
	// role has the same id.
	GuildID() int64

	// GetGuild returns the guild owner and roles.
	GetGuild(ctx context.Context) (*GuildRecord, error)

	// GetMember resolves a guild member. A user who is not in the guild
	// yields an error wrapping ErrUnknownMember.
	GetMember(ctx context.Context, userID int64) (*MemberRecord, error)

	// AddMemberRole grants a role to a member.
	AddMemberRole(ctx context.Context, userID, roleID int64) error

	// RemoveMemberRole revokes a role from a member.
	RemoveMemberRole(ctx context.Context, userID, roleID int64) error

	// CreateCategory creates a category channel.
	CreateCategory(ctx context.Context, name string, overwrites []PermissionOverwrite) (*ChannelRecord, error)

	// CreateTextChannel creates a text channel under a category.
	CreateTextChannel(ctx context.Context, req CreateChannelRequest) (*ChannelRecord, error)

	// GetChannel resolves a channel.
	GetChannel(ctx context.Context, channelID int64) (*ChannelRecord, error)

	// ListChannels returns every channel and category in the guild.
	ListChannels(ctx context.Context) ([]*ChannelRecord, error)

	// DeleteChannel deletes a channel or category.
	DeleteChannel(ctx context.Context, channelID int64, reason string) error

	// MoveChannel moves a channel under another category.
	MoveChannel(ctx context.Context, channelID, categoryID int64) error

	// SyncPermissions replaces a channel's overwrites with its category's.
	SyncPermissions(ctx context.Context, channelID int64) error

	// SetPermission creates or replaces one overwrite on a channel.
	SetPermission(ctx context.Context, channelID int64, ow PermissionOverwrite) error

	// SendMessage posts a message to a channel.
	SendMessage(ctx context.Context, channelID int64, msg OutgoingMessage) (*SentMessage, error)

	// SendDirectMessage posts a message to a user's DM channel. A user who
	// does not accept DMs yields an error of kind external.
	SendDirectMessage(ctx context.Context, userID int64, msg OutgoingMessage) (*SentMessage, error)

	// FetchHistory returns up to limit of the most recent messages,
	// oldest first.
	FetchHistory(ctx context.Context, channelID int64, limit int) ([]*MessageRecord, error)
}

// Permission is a set of channel permissions.
type Permission uint64

const (
	PermissionView Permission = 1 << iota
	PermissionSend
)

// OverwriteTarget is what a permission overwrite applies to.
type OverwriteTarget int

const (
	OverwriteRole OverwriteTarget = iota
	OverwriteMember
)

// PermissionOverwrite is an allow/deny pair for one role or member.
type PermissionOverwrite struct {
	TargetID int64
	Target   OverwriteTarget
	Allow    Permission
	Deny     Permission
}

// GuildRecord is a guild as seen by the court.
type GuildRecord struct {
	ID      int64
	Name    string
	OwnerID int64
	Roles   []RoleRecord
}

// HasRole reports whether the guild still has a role.
func (g *GuildRecord) HasRole(roleID int64) bool {
	for _, r := range g.Roles {
		if r.ID == roleID {
			return true
		}
	}
	return false
}

// RoleRecord is a guild role.
type RoleRecord struct {
	ID            int64
	Name          string
	Color         int
	Position      int
	Administrator bool
}

// MemberRecord is a guild member.
type MemberRecord struct {
	UserID        int64
	Username      string
	DisplayName   string
	AvatarURL     string
	Bot           bool
	RoleIDs       []int64
	Administrator bool
	Owner         bool
	Color         int // color of the highest colored role, 0 when none
}

// ChannelRecord is a channel or category.
type ChannelRecord struct {
	ID       int64
	Name     string
	ParentID int64
	Category bool
}

// CreateChannelRequest describes a new text channel.
type CreateChannelRequest struct {
	Name       string
	ParentID   int64
	Topic      string
	Overwrites []PermissionOverwrite
}

// OutgoingMessage is a message to post.
type OutgoingMessage struct {
	Content string
	Embed   *EmbedRecord
	Buttons []Button
	Files   []File
}

// Button is an interactive button. CustomID is dispatched back through the
// interactions endpoint.
type Button struct {
	CustomID string
	Label    string
	Emoji    string
	Danger   bool
}

// File is an attachment to upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// SentMessage identifies a posted message.
type SentMessage struct {
	ID             int64
	ChannelID      int64
	AttachmentURLs []string
}

// MessageRecord is a fetched message.
type MessageRecord struct {
	ID          int64
	AuthorID    int64
	AuthorName  string
	AvatarURL   string
	AuthorBot   bool
	AuthorColor int
	Content     string
	CreatedAt   time.Time
	Attachments []string
	Embeds      []EmbedRecord
}

// EmbedRecord is a rich embed.
type EmbedRecord struct {
	Title       string
	Description string
	Color       int
	Fields      []EmbedFieldRecord
}

// EmbedFieldRecord is one embed field.
type EmbedFieldRecord struct {
	Name   string
	Value  string
	Inline bool
}
