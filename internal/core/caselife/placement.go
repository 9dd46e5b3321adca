package caselife

import (
	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/core/effects"
)

// Notice colors.
const (
	ColorInfo    = 0x3498db
	ColorSuccess = 0x2ecc71
	ColorWarning = 0xe67e22
	ColorClosed  = 0xe74c3c
	ColorArchive = 0x95a5a6
)

// NoteTitle titles judge notes. It contains no transcript keyword, so notes
// are left out of exported transcripts.
const NoteTitle = "Judge note"

// ArchivePlacement describes the move of a case channel into the archive.
type ArchivePlacement struct {
	ChannelID         int64
	ArchiveCategoryID int64
	EveryoneRoleID    int64 // the guild's default role, equal to the guild id
	RevokeSend        bool  // closes revoke default send; archive-only does not
}

// PlanArchive generates the effects that place a channel in the archive
// category: move, sync to the category's overwrites, and optionally deny
// sending for the default role.
func PlanArchive(p ArchivePlacement) []effects.Effect {
	effs := []effects.Effect{
		effects.MoveChannelEffect{ChannelID: p.ChannelID, CategoryID: p.ArchiveCategoryID},
		effects.SyncPermissionsEffect{ChannelID: p.ChannelID},
	}
	if p.RevokeSend {
		effs = append(effs, effects.PermissionEffect{
			ChannelID: p.ChannelID,
			TargetID:  p.EveryoneRoleID,
			Target:    effects.TargetRole,
			Send:      effects.Deny,
		})
	}
	return effs
}

// PlanJudgeQuarters generates the effects of a claim: the channel moves to
// the judge's category and the judge is granted view and send.
func PlanJudgeQuarters(channelID, judgeCategoryID, judgeID int64) []effects.Effect {
	return []effects.Effect{
		effects.MoveChannelEffect{ChannelID: channelID, CategoryID: judgeCategoryID},
		effects.PermissionEffect{
			ChannelID: channelID,
			TargetID:  judgeID,
			Target:    effects.TargetMember,
			View:      effects.Allow,
			Send:      effects.Allow,
		},
	}
}

// PlanCategoryMove generates the effects of moving a channel to a category,
// granting the category's role view and send when one is set.
func PlanCategoryMove(channelID, categoryID, roleID int64) []effects.Effect {
	effs := []effects.Effect{
		effects.MoveChannelEffect{ChannelID: channelID, CategoryID: categoryID},
	}
	if roleID != 0 {
		effs = append(effs, effects.PermissionEffect{
			ChannelID: channelID,
			TargetID:  roleID,
			Target:    effects.TargetRole,
			View:      effects.Allow,
			Send:      effects.Allow,
		})
	}
	return effs
}

// RelocationTargets carries the category ids a relocation may need.
type RelocationTargets struct {
	ChannelID         int64
	OriginCategoryID  int64
	OriginRoleID      int64
	JudgeCategoryID   int64 // 0 when the assigned judge has no category
	JudgeID           int64
	ArchiveCategoryID int64 // 0 when no archive category is registered
	EveryoneRoleID    int64
}

// PlanRelocation re-derives the placement implied by stored state and
// returns the effects that restore it. Running it twice is harmless.
func PlanRelocation(status Status, archived bool, t RelocationTargets) ([]effects.Effect, GuardResult) {
	switch PlacementFor(status, archived) {
	case PlacementArchive:
		if t.ArchiveCategoryID == 0 {
			return nil, deny(courterr.KindNotFound, "no archive category is registered")
		}
		return PlanArchive(ArchivePlacement{
			ChannelID:         t.ChannelID,
			ArchiveCategoryID: t.ArchiveCategoryID,
			EveryoneRoleID:    t.EveryoneRoleID,
			RevokeSend:        status == StatusClosed,
		}), allow()
	case PlacementJudge:
		if t.JudgeCategoryID == 0 {
			return nil, deny(courterr.KindNotFound, "the assigned judge has no registered category")
		}
		return PlanJudgeQuarters(t.ChannelID, t.JudgeCategoryID, t.JudgeID), allow()
	default:
		return PlanCategoryMove(t.ChannelID, t.OriginCategoryID, t.OriginRoleID), allow()
	}
}
