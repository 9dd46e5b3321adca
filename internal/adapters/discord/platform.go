package discord

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"

	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ports/secondary"
)

// historyPage is the largest page the messages endpoint serves.
const historyPage = 100

// Platform implements secondary.ChatPlatform for one guild.
type Platform struct {
	session *discordgo.Session
	guildID int64
}

// NewPlatform binds a session to a guild.
func NewPlatform(session *discordgo.Session, guildID int64) *Platform {
	return &Platform{session: session, guildID: guildID}
}

// GuildID returns the bound guild.
func (p *Platform) GuildID() int64 { return p.guildID }

func (p *Platform) guild() string { return idString(p.guildID) }

// GetGuild returns the guild owner and roles.
func (p *Platform) GetGuild(ctx context.Context) (*secondary.GuildRecord, error) {
	g, err := p.session.Guild(p.guild(), discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrap("platform.get_guild", err)
	}

	record := &secondary.GuildRecord{ID: snowflake(g.ID), Name: g.Name, OwnerID: snowflake(g.OwnerID)}
	for _, r := range g.Roles {
		record.Roles = append(record.Roles, secondary.RoleRecord{
			ID:            snowflake(r.ID),
			Name:          r.Name,
			Color:         r.Color,
			Position:      r.Position,
			Administrator: r.Permissions&discordgo.PermissionAdministrator != 0,
		})
	}
	return record, nil
}

// GetMember resolves a guild member, deriving administrator and color from
// the guild's roles. Guild and member are fetched concurrently.
func (p *Platform) GetMember(ctx context.Context, userID int64) (*secondary.MemberRecord, error) {
	var (
		guild  *secondary.GuildRecord
		member *discordgo.Member
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		guild, err = p.GetGuild(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		member, err = p.getMember(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return memberRecord(guild, member), nil
}

func (p *Platform) getMember(ctx context.Context, userID int64) (*discordgo.Member, error) {
	m, err := p.session.GuildMember(p.guild(), idString(userID), discordgo.WithContext(ctx))
	if IsStatus(err, http.StatusNotFound) {
		return nil, courterr.External("platform.get_member",
			fmt.Errorf("%w %d: %w", secondary.ErrUnknownMember, userID, err), "unknown member %d", userID)
	}
	if err != nil {
		return nil, wrap("platform.get_member", err)
	}
	return m, nil
}

func memberRecord(guild *secondary.GuildRecord, m *discordgo.Member) *secondary.MemberRecord {
	record := &secondary.MemberRecord{
		UserID:      snowflake(m.User.ID),
		Username:    m.User.Username,
		DisplayName: displayName(m),
		AvatarURL:   m.User.AvatarURL(""),
		Bot:         m.User.Bot,
		Owner:       guild.OwnerID == snowflake(m.User.ID),
	}

	bestPosition := -1
	for _, raw := range m.Roles {
		id := snowflake(raw)
		record.RoleIDs = append(record.RoleIDs, id)
		for _, r := range guild.Roles {
			if r.ID != id {
				continue
			}
			if r.Administrator {
				record.Administrator = true
			}
			if r.Color != 0 && r.Position > bestPosition {
				bestPosition = r.Position
				record.Color = r.Color
			}
		}
	}
	// The default role applies to everyone.
	for _, r := range guild.Roles {
		if r.ID == guild.ID && r.Administrator {
			record.Administrator = true
		}
	}
	return record
}

func displayName(m *discordgo.Member) string {
	switch {
	case m.Nick != "":
		return m.Nick
	case m.User.GlobalName != "":
		return m.User.GlobalName
	default:
		return m.User.Username
	}
}

// AddMemberRole grants a role to a member.
func (p *Platform) AddMemberRole(ctx context.Context, userID, roleID int64) error {
	err := p.session.GuildMemberRoleAdd(p.guild(), idString(userID), idString(roleID), discordgo.WithContext(ctx))
	return wrap("platform.add_role", err)
}

// RemoveMemberRole revokes a role from a member.
func (p *Platform) RemoveMemberRole(ctx context.Context, userID, roleID int64) error {
	err := p.session.GuildMemberRoleRemove(p.guild(), idString(userID), idString(roleID), discordgo.WithContext(ctx))
	return wrap("platform.remove_role", err)
}

// CreateCategory creates a category channel.
func (p *Platform) CreateCategory(ctx context.Context, name string, overwrites []secondary.PermissionOverwrite) (*secondary.ChannelRecord, error) {
	return p.createChannel(ctx, "platform.create_category", discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildCategory,
		PermissionOverwrites: toOverwrites(overwrites),
	})
}

// CreateTextChannel creates a text channel under a category.
func (p *Platform) CreateTextChannel(ctx context.Context, req secondary.CreateChannelRequest) (*secondary.ChannelRecord, error) {
	data := discordgo.GuildChannelCreateData{
		Name:                 req.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                req.Topic,
		PermissionOverwrites: toOverwrites(req.Overwrites),
	}
	if req.ParentID != 0 {
		data.ParentID = idString(req.ParentID)
	}
	return p.createChannel(ctx, "platform.create_channel", data)
}

func (p *Platform) createChannel(ctx context.Context, op string, data discordgo.GuildChannelCreateData) (*secondary.ChannelRecord, error) {
	ch, err := p.session.GuildChannelCreateComplex(p.guild(), data, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrap(op, err)
	}
	return channelRecord(ch), nil
}

func channelRecord(ch *discordgo.Channel) *secondary.ChannelRecord {
	return &secondary.ChannelRecord{
		ID:       snowflake(ch.ID),
		Name:     ch.Name,
		ParentID: snowflake(ch.ParentID),
		Category: ch.Type == discordgo.ChannelTypeGuildCategory,
	}
}

// GetChannel resolves a channel.
func (p *Platform) GetChannel(ctx context.Context, channelID int64) (*secondary.ChannelRecord, error) {
	ch, err := p.getChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return channelRecord(ch), nil
}

func (p *Platform) getChannel(ctx context.Context, channelID int64) (*discordgo.Channel, error) {
	ch, err := p.session.Channel(idString(channelID), discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrap("platform.get_channel", err)
	}
	return ch, nil
}

// ListChannels returns every channel and category in the guild.
func (p *Platform) ListChannels(ctx context.Context) ([]*secondary.ChannelRecord, error) {
	chans, err := p.session.GuildChannels(p.guild(), discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrap("platform.list_channels", err)
	}
	out := make([]*secondary.ChannelRecord, 0, len(chans))
	for _, ch := range chans {
		out = append(out, channelRecord(ch))
	}
	return out, nil
}

// DeleteChannel deletes a channel or category.
func (p *Platform) DeleteChannel(ctx context.Context, channelID int64, reason string) error {
	opts := []discordgo.RequestOption{discordgo.WithContext(ctx)}
	if reason != "" {
		opts = append(opts, discordgo.WithAuditLogReason(reason))
	}
	_, err := p.session.ChannelDelete(idString(channelID), opts...)
	return wrap("platform.delete_channel", err)
}

// MoveChannel moves a channel under another category, keeping its overwrites.
func (p *Platform) MoveChannel(ctx context.Context, channelID, categoryID int64) error {
	_, err := p.session.ChannelEdit(idString(channelID),
		&discordgo.ChannelEdit{ParentID: idString(categoryID)}, discordgo.WithContext(ctx))
	return wrap("platform.move_channel", err)
}

// overwriteSync always sends the list, so an empty parent clears the child.
type overwriteSync struct {
	PermissionOverwrites []*discordgo.PermissionOverwrite `json:"permission_overwrites"`
}

// SyncPermissions copies the parent category's overwrites onto the channel.
func (p *Platform) SyncPermissions(ctx context.Context, channelID int64) error {
	ch, err := p.getChannel(ctx, channelID)
	if err != nil {
		return err
	}
	if ch.ParentID == "" {
		return nil
	}
	parent, err := p.getChannel(ctx, snowflake(ch.ParentID))
	if err != nil {
		return err
	}
	body := overwriteSync{PermissionOverwrites: parent.PermissionOverwrites}
	if body.PermissionOverwrites == nil {
		body.PermissionOverwrites = []*discordgo.PermissionOverwrite{}
	}
	endpoint := discordgo.EndpointChannel(ch.ID)
	_, err = p.session.RequestWithBucketID(http.MethodPatch, endpoint, body, endpoint, discordgo.WithContext(ctx))
	return wrap("platform.sync_permissions", err)
}

// SetPermission creates or replaces one overwrite on a channel.
func (p *Platform) SetPermission(ctx context.Context, channelID int64, ow secondary.PermissionOverwrite) error {
	api := toOverwrite(ow)
	err := p.session.ChannelPermissionSet(idString(channelID), api.ID, api.Type, api.Allow, api.Deny, discordgo.WithContext(ctx))
	return wrap("platform.set_permission", err)
}

func toOverwrites(ows []secondary.PermissionOverwrite) []*discordgo.PermissionOverwrite {
	if len(ows) == 0 {
		return nil
	}
	out := make([]*discordgo.PermissionOverwrite, 0, len(ows))
	for _, ow := range ows {
		out = append(out, toOverwrite(ow))
	}
	return out
}

func toOverwrite(ow secondary.PermissionOverwrite) *discordgo.PermissionOverwrite {
	t := discordgo.PermissionOverwriteTypeRole
	if ow.Target == secondary.OverwriteMember {
		t = discordgo.PermissionOverwriteTypeMember
	}
	return &discordgo.PermissionOverwrite{
		ID:    idString(ow.TargetID),
		Type:  t,
		Allow: permissionBits(ow.Allow),
		Deny:  permissionBits(ow.Deny),
	}
}

func permissionBits(p secondary.Permission) int64 {
	var bits int64
	if p&secondary.PermissionView != 0 {
		bits |= discordgo.PermissionViewChannel
	}
	if p&secondary.PermissionSend != 0 {
		bits |= discordgo.PermissionSendMessages
	}
	return bits
}

// SendMessage posts a message to a channel.
func (p *Platform) SendMessage(ctx context.Context, channelID int64, msg secondary.OutgoingMessage) (*secondary.SentMessage, error) {
	send := &discordgo.MessageSend{Content: msg.Content}
	if msg.Embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{toEmbed(msg.Embed)}
	}
	if len(msg.Buttons) > 0 {
		row := discordgo.ActionsRow{}
		for _, b := range msg.Buttons {
			btn := discordgo.Button{Label: b.Label, Style: discordgo.PrimaryButton, CustomID: b.CustomID}
			if b.Danger {
				btn.Style = discordgo.DangerButton
			}
			if b.Emoji != "" {
				btn.Emoji = &discordgo.ComponentEmoji{Name: b.Emoji}
			}
			row.Components = append(row.Components, btn)
		}
		send.Components = []discordgo.MessageComponent{row}
	}
	for _, f := range msg.Files {
		send.Files = append(send.Files, &discordgo.File{
			Name:        f.Name,
			ContentType: f.ContentType,
			Reader:      bytes.NewReader(f.Data),
		})
	}

	sent, err := p.session.ChannelMessageSendComplex(idString(channelID), send, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrap("platform.send_message", err)
	}

	record := &secondary.SentMessage{ID: snowflake(sent.ID), ChannelID: channelID}
	for _, a := range sent.Attachments {
		record.AttachmentURLs = append(record.AttachmentURLs, a.URL)
	}
	return record, nil
}

func toEmbed(e *secondary.EmbedRecord) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{Title: e.Title, Description: e.Description, Color: e.Color}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return out
}

// SendDirectMessage opens the user's DM channel and posts to it.
func (p *Platform) SendDirectMessage(ctx context.Context, userID int64, msg secondary.OutgoingMessage) (*secondary.SentMessage, error) {
	dm, err := p.session.UserChannelCreate(idString(userID), discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrap("platform.open_dm", err)
	}
	return p.SendMessage(ctx, snowflake(dm.ID), msg)
}

// FetchHistory pages backwards from the newest message and returns up to
// limit messages oldest first. Author colors are resolved per distinct human
// author; authors who left the guild keep no color.
func (p *Platform) FetchHistory(ctx context.Context, channelID int64, limit int) ([]*secondary.MessageRecord, error) {
	var (
		raw    []*discordgo.Message
		before string
	)
	for len(raw) < limit {
		page := min(historyPage, limit-len(raw))
		batch, err := p.session.ChannelMessages(idString(channelID), page, before, "", "", discordgo.WithContext(ctx))
		if err != nil {
			return nil, wrap("platform.fetch_history", err)
		}
		raw = append(raw, batch...)
		if len(batch) < page {
			break
		}
		before = batch[len(batch)-1].ID
	}
	slices.Reverse(raw)

	colors, names, err := p.authorStyles(ctx, raw)
	if err != nil {
		return nil, err
	}

	out := make([]*secondary.MessageRecord, 0, len(raw))
	for _, m := range raw {
		if m.Author == nil {
			continue
		}
		authorID := snowflake(m.Author.ID)
		name := m.Author.GlobalName
		if name == "" {
			name = m.Author.Username
		}
		if n, ok := names[authorID]; ok {
			name = n
		}
		record := &secondary.MessageRecord{
			ID:          snowflake(m.ID),
			AuthorID:    authorID,
			AuthorName:  name,
			AvatarURL:   m.Author.AvatarURL(""),
			AuthorBot:   m.Author.Bot,
			AuthorColor: colors[authorID],
			Content:     m.Content,
			CreatedAt:   m.Timestamp.UTC(),
		}
		for _, a := range m.Attachments {
			record.Attachments = append(record.Attachments, a.URL)
		}
		for _, e := range m.Embeds {
			er := secondary.EmbedRecord{Title: e.Title, Description: e.Description, Color: e.Color}
			for _, f := range e.Fields {
				er.Fields = append(er.Fields, secondary.EmbedFieldRecord{Name: f.Name, Value: f.Value, Inline: f.Inline})
			}
			record.Embeds = append(record.Embeds, er)
		}
		out = append(out, record)
	}
	return out, nil
}

// authorStyles resolves role color and display name for each human author.
func (p *Platform) authorStyles(ctx context.Context, msgs []*discordgo.Message) (map[int64]int, map[int64]string, error) {
	colors := map[int64]int{}
	names := map[int64]string{}

	var authors []int64
	seen := map[int64]bool{}
	for _, m := range msgs {
		if m.Author == nil || m.Author.Bot {
			continue
		}
		id := snowflake(m.Author.ID)
		if seen[id] {
			continue
		}
		seen[id] = true
		authors = append(authors, id)
	}
	if len(authors) == 0 {
		return colors, names, nil
	}

	guild, err := p.GetGuild(ctx)
	if err != nil {
		return nil, nil, err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, id := range authors {
		id := id
		g.Go(func() error {
			m, err := p.session.GuildMember(p.guild(), idString(id), discordgo.WithContext(gctx))
			if IsStatus(err, http.StatusNotFound) {
				return nil
			}
			if err != nil {
				return wrap("platform.get_member", err)
			}
			rec := memberRecord(guild, m)
			mu.Lock()
			colors[id] = rec.Color
			names[id] = rec.DisplayName
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return colors, names, nil
}

// Ensure Platform implements the interface
var _ secondary.ChatPlatform = (*Platform)(nil)
