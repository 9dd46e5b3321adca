package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/court/internal/adapters/memory"
	"github.com/example/court/internal/core/caselife"
	"github.com/example/court/internal/core/effects"
	"github.com/example/court/internal/ports/secondary"
)

func newTestExecutor() (*PlatformEffectExecutor, *memory.Platform) {
	platform := memory.NewPlatform(testGuildID, testOwnerID)
	platform.AddChannel(secondary.ChannelRecord{ID: testArchiveID, Name: "Arkiv", Category: true})
	platform.AddChannel(secondary.ChannelRecord{ID: testChannelID, Name: "sak-1", ParentID: testIntakeID})
	return NewEffectExecutor(platform, testLogger()), platform
}

func TestEffectExecutor_ArchivePlacement(t *testing.T) {
	executor, platform := newTestExecutor()

	effs := caselife.PlanArchive(caselife.ArchivePlacement{
		ChannelID:         testChannelID,
		ArchiveCategoryID: testArchiveID,
		EveryoneRoleID:    testGuildID,
		RevokeSend:        true,
	})
	if err := executor.Execute(context.Background(), effs); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	ch, _ := platform.Channel(testChannelID)
	if ch.ParentID != testArchiveID {
		t.Errorf("expected parent %d, got %d", testArchiveID, ch.ParentID)
	}
	ows := platform.Overwrites(testChannelID)
	if len(ows) != 1 || ows[0].TargetID != testGuildID || ows[0].Deny != secondary.PermissionSend || ows[0].Target != secondary.OverwriteRole {
		t.Errorf("unexpected overwrites %+v", ows)
	}
}

func TestEffectExecutor_StopsAtFirstFailure(t *testing.T) {
	executor, platform := newTestExecutor()
	platform.FailOn("MoveChannel", errors.New("503"))

	err := executor.Execute(context.Background(), []effects.Effect{
		effects.MoveChannelEffect{ChannelID: testChannelID, CategoryID: testArchiveID},
		effects.NoticeEffect{ChannelID: testChannelID, Title: "never"},
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if len(platform.Sent()) != 0 {
		t.Error("expected later effects skipped")
	}
}

func TestEffectExecutor_NoticeWithDeleteButton(t *testing.T) {
	executor, platform := newTestExecutor()

	err := executor.Execute(context.Background(), []effects.Effect{
		effects.NoticeEffect{ChannelID: testChannelID, Title: "Case closed", DeleteButton: true},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	sent := platform.Sent()
	if len(sent) != 1 || len(sent[0].Message.Buttons) != 1 || sent[0].Message.Buttons[0].CustomID != caselife.DeleteButtonID {
		t.Errorf("expected notice with delete button, got %+v", sent)
	}
}

func TestEffectExecutor_DirectMessage(t *testing.T) {
	executor, platform := newTestExecutor()
	platform.CloseDMs(testCreatorID)

	bestEffort := []effects.Effect{effects.DirectMessageEffect{UserID: testCreatorID, Body: "hi", BestEffort: true}}
	if err := executor.Execute(context.Background(), bestEffort); err != nil {
		t.Errorf("expected best-effort DM failure swallowed, got %v", err)
	}

	required := []effects.Effect{effects.DirectMessageEffect{UserID: testCreatorID, Body: "hi"}}
	if err := executor.Execute(context.Background(), required); err == nil {
		t.Error("expected required DM failure returned")
	}
}
