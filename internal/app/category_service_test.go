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

func newTestCategoryService() (*CategoryServiceImpl, *mockCategoryRepository, *memory.Platform) {
	platform := memory.NewPlatform(testGuildID, testOwnerID)
	categories := newMockCategoryRepository()
	svc := NewCategoryService(categories, allowAll(), platform, &mockLogWriter{}, testLogger())
	return svc, categories, platform
}

var testSetup = primary.SetupRequest{IntakeName: "Saker", ArchiveName: "Arkiv", LogChannelName: "arkiv-logg"}

func TestCategoryService_Setup_CreatesLayout(t *testing.T) {
	svc, categories, platform := newTestCategoryService()
	ctx := context.Background()

	report, err := svc.Setup(ctx, testSetup)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(report.Created) != 3 {
		t.Errorf("expected three created objects, got %v", report.Created)
	}

	archive, err := categories.GetArchive(ctx)
	if err != nil || archive.CategoryID != report.ArchiveCategoryID {
		t.Errorf("expected archive registered, got %+v %v", archive, err)
	}
	intake, err := categories.GetByID(ctx, report.IntakeCategoryID)
	if err != nil || intake.Kind != "intake" {
		t.Errorf("expected intake registered, got %+v %v", intake, err)
	}

	logChannel, ok := platform.Channel(report.LogChannelID)
	if !ok || logChannel.ParentID != report.ArchiveCategoryID {
		t.Errorf("expected log channel under archive, got %+v", logChannel)
	}
	overwrites := platform.Overwrites(report.ArchiveCategoryID)
	if len(overwrites) != 1 || overwrites[0].Deny&secondary.PermissionSend == 0 {
		t.Errorf("expected archive to deny sending, got %+v", overwrites)
	}
}

func TestCategoryService_Setup_IsIdempotent(t *testing.T) {
	svc, categories, _ := newTestCategoryService()
	ctx := context.Background()

	first, err := svc.Setup(ctx, testSetup)
	if err != nil {
		t.Fatal(err)
	}
	// A role bound to the intake category survives a second run.
	intake, _ := categories.GetByID(ctx, first.IntakeCategoryID)
	intake.RoleID = 42
	_ = categories.Upsert(ctx, intake)

	second, err := svc.Setup(ctx, primary.SetupRequest{IntakeName: "saker", ArchiveName: "ARKIV", LogChannelName: "arkiv-logg"})
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Created) != 0 {
		t.Errorf("expected nothing created, got %v", second.Created)
	}
	if second.IntakeCategoryID != first.IntakeCategoryID || second.ArchiveCategoryID != first.ArchiveCategoryID || second.LogChannelID != first.LogChannelID {
		t.Errorf("expected same objects, got %+v vs %+v", second, first)
	}
	if got, _ := categories.GetByID(ctx, first.IntakeCategoryID); got.RoleID != 42 {
		t.Errorf("expected role kept, got %d", got.RoleID)
	}
}

func TestCategoryService_Setup_AdoptsExisting(t *testing.T) {
	svc, _, platform := newTestCategoryService()
	platform.AddChannel(secondary.ChannelRecord{ID: 5, Name: "Saker", Category: true})

	report, err := svc.Setup(context.Background(), testSetup)
	if err != nil {
		t.Fatal(err)
	}
	if report.IntakeCategoryID != 5 {
		t.Errorf("expected existing category adopted, got %d", report.IntakeCategoryID)
	}
	if len(report.Created) != 2 {
		t.Errorf("expected archive and log channel created, got %v", report.Created)
	}
}

func TestCategoryService_RegisterCategory(t *testing.T) {
	svc, categories, platform := newTestCategoryService()
	platform.AddChannel(secondary.ChannelRecord{ID: 5, Name: "Tvister", Category: true})
	platform.AddChannel(secondary.ChannelRecord{ID: 6, Name: "general"})
	ctx := context.Background()

	cat, err := svc.RegisterCategory(ctx, primary.RegisterCategoryRequest{CategoryID: 5, RoleID: 9, Kind: "Intake"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cat.Kind != "intake" || cat.Name != "Tvister" {
		t.Errorf("unexpected category %+v", cat)
	}
	if got, _ := categories.GetByID(ctx, 5); got.RoleID != 9 {
		t.Errorf("expected role 9, got %d", got.RoleID)
	}

	tests := []struct {
		name string
		req  primary.RegisterCategoryRequest
		want error
	}{
		{"text channel", primary.RegisterCategoryRequest{CategoryID: 6}, courterr.ErrValidation},
		{"archive kind", primary.RegisterCategoryRequest{CategoryID: 5, Kind: "archive"}, courterr.ErrValidation},
		{"missing", primary.RegisterCategoryRequest{CategoryID: 404}, courterr.ErrExternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.RegisterCategory(ctx, tt.req); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCategoryService_SetArchiveCategory(t *testing.T) {
	svc, categories, platform := newTestCategoryService()
	platform.AddChannel(secondary.ChannelRecord{ID: 5, Name: "Gammelt", Category: true})
	platform.AddChannel(secondary.ChannelRecord{ID: 6, Name: "Arkiv", Category: true})
	ctx := context.Background()

	if _, err := svc.SetArchiveCategory(ctx, 5); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SetArchiveCategory(ctx, 6); err != nil {
		t.Fatal(err)
	}
	archives, _ := svc.ListCategories(ctx, "archive")
	if len(archives) != 1 || archives[0].CategoryID != 6 {
		t.Errorf("expected a single archive 6, got %+v", archives)
	}
	if got, _ := categories.GetByID(ctx, 5); got.Kind != "custom" {
		t.Errorf("expected previous archive demoted, got %s", got.Kind)
	}

	if _, err := svc.ListCategories(ctx, "attic"); !errors.Is(err, courterr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
