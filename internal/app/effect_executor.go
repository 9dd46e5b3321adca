// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/court/internal/core/caselife"
	"github.com/example/court/internal/core/effects"
	"github.com/example/court/internal/ports/secondary"
)

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - the only place platform I/O for planned
// effects happens.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) error
}

// PlatformEffectExecutor implements EffectExecutor against the chat platform.
type PlatformEffectExecutor struct {
	platform secondary.ChatPlatform
	logger   *zap.SugaredLogger
}

// NewEffectExecutor creates a new PlatformEffectExecutor.
func NewEffectExecutor(platform secondary.ChatPlatform, logger *zap.SugaredLogger) *PlatformEffectExecutor {
	return &PlatformEffectExecutor{platform: platform, logger: logger}
}

// Execute processes a slice of effects, executing each in sequence. The
// first failing effect stops the batch.
func (e *PlatformEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) error {
	for _, eff := range effs {
		if err := e.executeOne(ctx, eff); err != nil {
			return fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
		}
	}
	return nil
}

func (e *PlatformEffectExecutor) executeOne(ctx context.Context, eff effects.Effect) error {
	switch typed := eff.(type) {
	case effects.MoveChannelEffect:
		return e.platform.MoveChannel(ctx, typed.ChannelID, typed.CategoryID)
	case effects.SyncPermissionsEffect:
		return e.platform.SyncPermissions(ctx, typed.ChannelID)
	case effects.PermissionEffect:
		return e.platform.SetPermission(ctx, typed.ChannelID, toOverwrite(typed))
	case effects.NoticeEffect:
		return e.executeNotice(ctx, typed)
	case effects.DirectMessageEffect:
		return e.executeDirectMessage(ctx, typed)
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *PlatformEffectExecutor) executeNotice(ctx context.Context, eff effects.NoticeEffect) error {
	msg := secondary.OutgoingMessage{
		Embed: &secondary.EmbedRecord{Title: eff.Title, Description: eff.Body, Color: eff.Color},
	}
	if eff.DeleteButton {
		msg.Buttons = []secondary.Button{{CustomID: caselife.DeleteButtonID, Label: "Delete channel", Emoji: "🗑️", Danger: true}}
	}
	_, err := e.platform.SendMessage(ctx, eff.ChannelID, msg)
	return err
}

func (e *PlatformEffectExecutor) executeDirectMessage(ctx context.Context, eff effects.DirectMessageEffect) error {
	_, err := e.platform.SendDirectMessage(ctx, eff.UserID, secondary.OutgoingMessage{Content: eff.Body})
	if err != nil && eff.BestEffort {
		e.logger.Warnw("direct message not delivered", "user_id", eff.UserID, "error", err)
		return nil
	}
	return err
}

func toOverwrite(eff effects.PermissionEffect) secondary.PermissionOverwrite {
	ow := secondary.PermissionOverwrite{TargetID: eff.TargetID, Target: secondary.OverwriteRole}
	if eff.Target == effects.TargetMember {
		ow.Target = secondary.OverwriteMember
	}
	apply := func(g effects.Grant, p secondary.Permission) {
		switch g {
		case effects.Allow:
			ow.Allow |= p
		case effects.Deny:
			ow.Deny |= p
		}
	}
	apply(eff.View, secondary.PermissionView)
	apply(eff.Send, secondary.PermissionSend)
	return ow
}

// Ensure PlatformEffectExecutor implements the interface
var _ EffectExecutor = (*PlatformEffectExecutor)(nil)
