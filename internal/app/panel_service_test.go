package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/court/internal/adapters/memory"
	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ports/primary"
	"github.com/example/court/internal/ports/secondary"
)

const testLobbyID int64 = 400

func newTestPanelService(perms *mockPermissionService) (*PanelServiceImpl, *mockCategoryRepository, *memory.Platform) {
	platform := memory.NewPlatform(testGuildID, testOwnerID)
	platform.AddChannel(secondary.ChannelRecord{ID: testIntakeID, Name: "Saker", Category: true})
	platform.AddChannel(secondary.ChannelRecord{ID: testLobbyID, Name: "lobby"})

	categories := newMockCategoryRepository()
	svc := NewPanelService(&mockPanelRepository{}, categories, perms, platform, &mockLogWriter{}, testLogger())
	return svc, categories, platform
}

func TestPanelService_CreatePanel(t *testing.T) {
	svc, categories, platform := newTestPanelService(allowAll())
	ctx := context.Background()

	panel, err := svc.CreatePanel(ctx, primary.CreatePanelRequest{
		ChannelID:  testLobbyID,
		CategoryID: testIntakeID,
		Title:      "Open a case",
		RoleID:     42,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if panel.ButtonID != "ticket_button_500" || panel.ButtonText != "Open case" {
		t.Errorf("unexpected panel %+v", panel)
	}

	sent := platform.Sent()
	if len(sent) != 1 || sent[0].ChannelID != testLobbyID {
		t.Fatalf("expected panel posted in lobby, got %+v", sent)
	}
	if buttons := sent[0].Message.Buttons; len(buttons) != 1 || buttons[0].CustomID != "ticket_button_500" {
		t.Errorf("unexpected buttons %+v", buttons)
	}
	if cat, err := categories.GetByID(ctx, testIntakeID); err != nil || cat.Kind != "intake" || cat.RoleID != 42 {
		t.Errorf("expected intake registered with role, got %+v %v", cat, err)
	}

	resolved, err := svc.ResolveButton(ctx, panel.ButtonID)
	if err != nil || resolved.CategoryID != testIntakeID {
		t.Errorf("expected button to resolve, got %+v %v", resolved, err)
	}
}

func TestPanelService_CreatePanel_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		perms *mockPermissionService
		req   primary.CreatePanelRequest
		want  error
	}{
		{"empty title", allowAll(), primary.CreatePanelRequest{ChannelID: testLobbyID, CategoryID: testIntakeID}, courterr.ErrValidation},
		{"not admin", denyFunctions("admin"), primary.CreatePanelRequest{ChannelID: testLobbyID, CategoryID: testIntakeID, Title: "t"}, courterr.ErrPermission},
		{"not a category", allowAll(), primary.CreatePanelRequest{ChannelID: testLobbyID, CategoryID: testLobbyID, Title: "t"}, courterr.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, platform := newTestPanelService(tt.perms)
			if _, err := svc.CreatePanel(context.Background(), tt.req); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if len(platform.Sent()) != 0 {
				t.Error("expected nothing posted")
			}
		})
	}
}

func TestPanelService_ResolveButton(t *testing.T) {
	svc, _, _ := newTestPanelService(allowAll())

	if _, err := svc.ResolveButton(context.Background(), "delete_channel"); !errors.Is(err, courterr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := svc.ResolveButton(context.Background(), "ticket_button_999"); !errors.Is(err, courterr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
