// Package memory provides an in-memory chat platform. It backs service and
// adapter tests and records every mutation for inspection.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ports/secondary"
)

// Sent is a message the platform accepted.
type Sent struct {
	ChannelID int64
	UserID    int64 // set for direct messages
	Message   secondary.OutgoingMessage
}

// Platform implements secondary.ChatPlatform in memory.
type Platform struct {
	mu sync.Mutex

	guild      secondary.GuildRecord
	members    map[int64]*secondary.MemberRecord
	channels   map[int64]*secondary.ChannelRecord
	overwrites map[int64][]secondary.PermissionOverwrite
	history    map[int64][]*secondary.MessageRecord
	dmClosed   map[int64]bool
	failures   map[string]error

	sent    []Sent
	deleted []int64
	calls   []string
	nextID  int64
}

// NewPlatform creates a platform for guildID owned by ownerID.
func NewPlatform(guildID, ownerID int64) *Platform {
	return &Platform{
		guild: secondary.GuildRecord{
			ID:      guildID,
			Name:    "Test Guild",
			OwnerID: ownerID,
			Roles:   []secondary.RoleRecord{{ID: guildID, Name: "@everyone"}},
		},
		members:    map[int64]*secondary.MemberRecord{},
		channels:   map[int64]*secondary.ChannelRecord{},
		overwrites: map[int64][]secondary.PermissionOverwrite{},
		history:    map[int64][]*secondary.MessageRecord{},
		dmClosed:   map[int64]bool{},
		failures:   map[string]error{},
		nextID:     10_000,
	}
}

// AddRole adds a guild role.
func (p *Platform) AddRole(r secondary.RoleRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.guild.Roles = append(p.guild.Roles, r)
}

// AddMember registers a guild member.
func (p *Platform) AddMember(m secondary.MemberRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m.Owner = m.UserID == p.guild.OwnerID
	p.members[m.UserID] = &m
}

// AddChannel registers a channel or category.
func (p *Platform) AddChannel(ch secondary.ChannelRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels[ch.ID] = &ch
}

// SetHistory replaces a channel's message history (oldest first).
func (p *Platform) SetHistory(channelID int64, msgs []*secondary.MessageRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history[channelID] = msgs
}

// CloseDMs makes direct messages to userID fail as forbidden.
func (p *Platform) CloseDMs(userID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dmClosed[userID] = true
}

// FailOn makes the named method return err until cleared with a nil err.
func (p *Platform) FailOn(method string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err == nil {
		delete(p.failures, method)
		return
	}
	p.failures[method] = err
}

// Channel returns a copy of a channel's current state.
func (p *Platform) Channel(id int64) (secondary.ChannelRecord, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.channels[id]
	if !ok {
		return secondary.ChannelRecord{}, false
	}
	return *ch, true
}

// Overwrites returns a channel's permission overwrites.
func (p *Platform) Overwrites(channelID int64) []secondary.PermissionOverwrite {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]secondary.PermissionOverwrite(nil), p.overwrites[channelID]...)
}

// Sent returns every accepted message.
func (p *Platform) Sent() []Sent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Sent(nil), p.sent...)
}

// Deleted returns the ids of deleted channels.
func (p *Platform) Deleted() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int64(nil), p.deleted...)
}

// Calls returns the method names invoked so far, in order.
func (p *Platform) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// enter records a call and returns an injected failure. Callers hold mu.
func (p *Platform) enter(method string) error {
	p.calls = append(p.calls, method)
	if err, ok := p.failures[method]; ok {
		return courterr.External("platform."+method, err, "chat platform request failed")
	}
	return nil
}

func (p *Platform) id() int64 {
	p.nextID++
	return p.nextID
}

func missing(op, what string, id int64) error {
	return courterr.External("platform."+op, errors.New("404 not found"), "unknown %s %d", what, id)
}

// GuildID returns the guild id.
func (p *Platform) GuildID() int64 { return p.guild.ID }

// GetGuild returns the guild.
func (p *Platform) GetGuild(ctx context.Context) (*secondary.GuildRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("GetGuild"); err != nil {
		return nil, err
	}
	g := p.guild
	g.Roles = append([]secondary.RoleRecord(nil), p.guild.Roles...)
	return &g, nil
}

// GetMember returns a member.
func (p *Platform) GetMember(ctx context.Context, userID int64) (*secondary.MemberRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("GetMember"); err != nil {
		return nil, err
	}
	m, ok := p.members[userID]
	if !ok {
		return nil, courterr.External("platform.GetMember", fmt.Errorf("%w %d", secondary.ErrUnknownMember, userID), "unknown member %d", userID)
	}
	cp := *m
	cp.RoleIDs = append([]int64(nil), m.RoleIDs...)
	return &cp, nil
}

// AddMemberRole grants a role.
func (p *Platform) AddMemberRole(ctx context.Context, userID, roleID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("AddMemberRole"); err != nil {
		return err
	}
	m, ok := p.members[userID]
	if !ok {
		return missing("AddMemberRole", "member", userID)
	}
	for _, r := range m.RoleIDs {
		if r == roleID {
			return nil
		}
	}
	m.RoleIDs = append(m.RoleIDs, roleID)
	return nil
}

// RemoveMemberRole revokes a role.
func (p *Platform) RemoveMemberRole(ctx context.Context, userID, roleID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("RemoveMemberRole"); err != nil {
		return err
	}
	m, ok := p.members[userID]
	if !ok {
		return missing("RemoveMemberRole", "member", userID)
	}
	kept := m.RoleIDs[:0]
	for _, r := range m.RoleIDs {
		if r != roleID {
			kept = append(kept, r)
		}
	}
	m.RoleIDs = kept
	return nil
}

// CreateCategory creates a category.
func (p *Platform) CreateCategory(ctx context.Context, name string, overwrites []secondary.PermissionOverwrite) (*secondary.ChannelRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("CreateCategory"); err != nil {
		return nil, err
	}
	ch := &secondary.ChannelRecord{ID: p.id(), Name: name, Category: true}
	p.channels[ch.ID] = ch
	p.overwrites[ch.ID] = append([]secondary.PermissionOverwrite(nil), overwrites...)
	cp := *ch
	return &cp, nil
}

// CreateTextChannel creates a text channel.
func (p *Platform) CreateTextChannel(ctx context.Context, req secondary.CreateChannelRequest) (*secondary.ChannelRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("CreateTextChannel"); err != nil {
		return nil, err
	}
	ch := &secondary.ChannelRecord{ID: p.id(), Name: req.Name, ParentID: req.ParentID}
	p.channels[ch.ID] = ch
	p.overwrites[ch.ID] = append([]secondary.PermissionOverwrite(nil), req.Overwrites...)
	cp := *ch
	return &cp, nil
}

// GetChannel returns a channel.
func (p *Platform) GetChannel(ctx context.Context, channelID int64) (*secondary.ChannelRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("GetChannel"); err != nil {
		return nil, err
	}
	ch, ok := p.channels[channelID]
	if !ok {
		return nil, missing("GetChannel", "channel", channelID)
	}
	cp := *ch
	return &cp, nil
}

// ListChannels returns all channels ordered by id.
func (p *Platform) ListChannels(ctx context.Context) ([]*secondary.ChannelRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("ListChannels"); err != nil {
		return nil, err
	}
	out := make([]*secondary.ChannelRecord, 0, len(p.channels))
	for _, ch := range p.channels {
		cp := *ch
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteChannel deletes a channel.
func (p *Platform) DeleteChannel(ctx context.Context, channelID int64, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("DeleteChannel"); err != nil {
		return err
	}
	if _, ok := p.channels[channelID]; !ok {
		return missing("DeleteChannel", "channel", channelID)
	}
	delete(p.channels, channelID)
	delete(p.overwrites, channelID)
	p.deleted = append(p.deleted, channelID)
	return nil
}

// MoveChannel reparents a channel.
func (p *Platform) MoveChannel(ctx context.Context, channelID, categoryID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("MoveChannel"); err != nil {
		return err
	}
	ch, ok := p.channels[channelID]
	if !ok {
		return missing("MoveChannel", "channel", channelID)
	}
	if cat, ok := p.channels[categoryID]; !ok || !cat.Category {
		return missing("MoveChannel", "category", categoryID)
	}
	ch.ParentID = categoryID
	return nil
}

// SyncPermissions copies the parent's overwrites.
func (p *Platform) SyncPermissions(ctx context.Context, channelID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("SyncPermissions"); err != nil {
		return err
	}
	ch, ok := p.channels[channelID]
	if !ok {
		return missing("SyncPermissions", "channel", channelID)
	}
	p.overwrites[channelID] = append([]secondary.PermissionOverwrite(nil), p.overwrites[ch.ParentID]...)
	return nil
}

// SetPermission replaces one overwrite.
func (p *Platform) SetPermission(ctx context.Context, channelID int64, ow secondary.PermissionOverwrite) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("SetPermission"); err != nil {
		return err
	}
	if _, ok := p.channels[channelID]; !ok {
		return missing("SetPermission", "channel", channelID)
	}
	list := p.overwrites[channelID]
	for i, existing := range list {
		if existing.TargetID == ow.TargetID {
			list[i] = ow
			return nil
		}
	}
	p.overwrites[channelID] = append(list, ow)
	return nil
}

// SendMessage records a message. Files get synthetic attachment URLs.
func (p *Platform) SendMessage(ctx context.Context, channelID int64, msg secondary.OutgoingMessage) (*secondary.SentMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("SendMessage"); err != nil {
		return nil, err
	}
	if _, ok := p.channels[channelID]; !ok {
		return nil, missing("SendMessage", "channel", channelID)
	}
	return p.record(Sent{ChannelID: channelID, Message: msg}), nil
}

// SendDirectMessage records a DM unless the user has closed DMs.
func (p *Platform) SendDirectMessage(ctx context.Context, userID int64, msg secondary.OutgoingMessage) (*secondary.SentMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("SendDirectMessage"); err != nil {
		return nil, err
	}
	if p.dmClosed[userID] {
		return nil, courterr.External("platform.SendDirectMessage", errors.New("403 forbidden"), "cannot send messages to this user")
	}
	return p.record(Sent{UserID: userID, Message: msg}), nil
}

func (p *Platform) record(s Sent) *secondary.SentMessage {
	p.sent = append(p.sent, s)
	out := &secondary.SentMessage{ID: p.id(), ChannelID: s.ChannelID}
	for _, f := range s.Message.Files {
		out.AttachmentURLs = append(out.AttachmentURLs, fmt.Sprintf("https://cdn.test/attachments/%d/%s", out.ID, f.Name))
	}
	return out
}

// FetchHistory returns the newest limit messages, oldest first.
func (p *Platform) FetchHistory(ctx context.Context, channelID int64, limit int) ([]*secondary.MessageRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter("FetchHistory"); err != nil {
		return nil, err
	}
	if _, ok := p.channels[channelID]; !ok {
		return nil, missing("FetchHistory", "channel", channelID)
	}
	msgs := p.history[channelID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]*secondary.MessageRecord(nil), msgs...), nil
}

// Ensure Platform implements the interface
var _ secondary.ChatPlatform = (*Platform)(nil)
