package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ports/primary"
)

// mockCaseService implements primary.CaseService for testing
type mockCaseService struct {
	getCaseFn   func(ctx context.Context, caseID int64) (*primary.Case, error)
	listCasesFn func(ctx context.Context, filters primary.CaseFilters) ([]*primary.Case, error)

	lastFilters   primary.CaseFilters
	lastChannelID int64
}

func (m *mockCaseService) OpenCase(ctx context.Context, req primary.OpenCaseRequest) (*primary.OpenCaseResponse, error) {
	return nil, errors.New("not implemented in adapter")
}

func (m *mockCaseService) GetCase(ctx context.Context, caseID int64) (*primary.Case, error) {
	if m.getCaseFn != nil {
		return m.getCaseFn(ctx, caseID)
	}
	return &primary.Case{
		ID:            caseID,
		ChannelID:     800,
		CategoryID:    500,
		CreatorID:     200,
		Title:         "Case for Kari",
		Status:        "closed",
		StatusLabel:   "Closed",
		CreatedAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		ClosedAt:      time.Date(2026, 3, 2, 12, 30, 0, 0, time.UTC),
		ClosingReason: "settled",
		EvidenceCount: 2,
	}, nil
}

func (m *mockCaseService) GetCaseByChannel(ctx context.Context, channelID int64) (*primary.Case, error) {
	m.lastChannelID = channelID
	return &primary.Case{ID: 9, ChannelID: channelID, Title: "By channel", Status: "open"}, nil
}

func (m *mockCaseService) ListCases(ctx context.Context, filters primary.CaseFilters) ([]*primary.Case, error) {
	m.lastFilters = filters
	if m.listCasesFn != nil {
		return m.listCasesFn(ctx, filters)
	}
	return []*primary.Case{}, nil
}

func (m *mockCaseService) SearchArchive(ctx context.Context, term string) ([]*primary.Case, error) {
	return []*primary.Case{{ID: 4, Title: "Tyveri " + term, Status: "closed"}}, nil
}

func (m *mockCaseService) GetStats(ctx context.Context) (*primary.CaseStats, error) {
	return &primary.CaseStats{Total: 5, Open: 2, Assigned: 1, Closed: 2, ByJudge: []primary.JudgeCaseCount{{JudgeID: 100, Total: 3, Active: 1}}}, nil
}

// mockLifecycleService implements primary.LifecycleService for testing
type mockLifecycleService struct {
	primary.LifecycleService
	steps []primary.StepReport
	err   error

	lastMove primary.MoveRequest
}

func (m *mockLifecycleService) Claim(ctx context.Context, req primary.CaseActionRequest) (*primary.ActionResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &primary.ActionResponse{CaseID: 1, Message: "Case #1 assigned to <@100>", Warnings: []string{"channel placement: 503"}}, nil
}

func (m *mockLifecycleService) Move(ctx context.Context, req primary.MoveRequest) (*primary.ActionResponse, error) {
	m.lastMove = req
	return &primary.ActionResponse{CaseID: 1, Message: "Case #1 moved to " + req.CategoryName}, nil
}

func (m *mockLifecycleService) CloseWithReason(ctx context.Context, req primary.CloseWithReasonRequest) (*primary.CloseReport, error) {
	for _, s := range m.steps {
		req.Progress(s)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &primary.CloseReport{CaseID: 3, Steps: m.steps, ArchiveRef: "https://cdn.test/sak_3.html", Committed: true}, nil
}

func (m *mockLifecycleService) LegacyArchive(ctx context.Context, req primary.LegacyArchiveRequest) (*primary.LegacyArchiveResponse, error) {
	return &primary.LegacyArchiveResponse{ArchiveRef: "https://cdn.test/legacy.html", MessageCount: 42, ChannelDeleted: req.DeleteChannel}, nil
}

func newTestCaseAdapter() (*CaseAdapter, *mockCaseService, *mockLifecycleService, *bytes.Buffer) {
	cases := &mockCaseService{}
	lifecycle := &mockLifecycleService{}
	out := &bytes.Buffer{}
	return NewCaseAdapter(cases, lifecycle, out), cases, lifecycle, out
}

func TestCaseAdapter_Show(t *testing.T) {
	adapter, _, _, out := newTestCaseAdapter()

	if err := adapter.Show(context.Background(), 3, 0, "text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := out.String()
	for _, want := range []string{"Case #3: Case for Kari", "Closed", "Reason:   settled", "Evidence: 2"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got: %s", want, output)
		}
	}
}

func TestCaseAdapter_Show_YAML(t *testing.T) {
	adapter, _, _, out := newTestCaseAdapter()

	if err := adapter.Show(context.Background(), 3, 0, "yaml"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := out.String()
	for _, want := range []string{"id: 3", "status: closed", `channel_id: "800"`, "closed_at: \"2026-03-02T12:30:00Z\"", "closing_reason: settled"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected yaml to contain %q, got: %s", want, output)
		}
	}
	if strings.Contains(output, "assigned_judge_id") {
		t.Errorf("expected unassigned judge omitted, got: %s", output)
	}
}

func TestCaseAdapter_Show_ByChannel(t *testing.T) {
	adapter, cases, _, out := newTestCaseAdapter()

	if err := adapter.Show(context.Background(), 0, 800, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cases.lastChannelID != 800 {
		t.Errorf("expected lookup by channel 800, got %d", cases.lastChannelID)
	}
	if !strings.Contains(out.String(), "By channel") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestCaseAdapter_Show_Errors(t *testing.T) {
	adapter, cases, _, _ := newTestCaseAdapter()

	if err := adapter.Show(context.Background(), 3, 0, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}

	cases.getCaseFn = func(ctx context.Context, caseID int64) (*primary.Case, error) {
		return nil, courterr.NotFound("case.get", "case %d not found", caseID)
	}
	err := adapter.Show(context.Background(), 3, 0, "text")
	if !errors.Is(err, courterr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCaseAdapter_List(t *testing.T) {
	adapter, cases, _, out := newTestCaseAdapter()

	if err := adapter.List(context.Background(), primary.CaseFilters{Status: "open"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "No cases found") {
		t.Errorf("expected empty message, got: %s", out.String())
	}
	if cases.lastFilters.Status != "open" {
		t.Errorf("expected filters passed through, got %+v", cases.lastFilters)
	}

	out.Reset()
	cases.listCasesFn = func(ctx context.Context, filters primary.CaseFilters) ([]*primary.Case, error) {
		return []*primary.Case{
			{ID: 1, Status: "open", Title: "First"},
			{ID: 2, Status: "assigned", AssignedJudgeID: 100, Title: "Second"},
		}, nil
	}
	if err := adapter.List(context.Background(), primary.CaseFilters{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := out.String()
	if !strings.Contains(output, "First") || !strings.Contains(output, "100") {
		t.Errorf("expected both cases listed, got: %s", output)
	}
}

func TestCaseAdapter_SearchAndStats(t *testing.T) {
	adapter, _, _, out := newTestCaseAdapter()

	if err := adapter.Search(context.Background(), "sykkel"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Tyveri sykkel") {
		t.Errorf("unexpected search output: %s", out.String())
	}

	out.Reset()
	if err := adapter.Stats(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Cases:    5") || !strings.Contains(out.String(), "100") {
		t.Errorf("unexpected stats output: %s", out.String())
	}
}

func TestCaseAdapter_ActionsPrintWarnings(t *testing.T) {
	adapter, _, lifecycle, out := newTestCaseAdapter()

	if err := adapter.Claim(context.Background(), 800); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "assigned to <@100>") || !strings.Contains(out.String(), "channel placement: 503") {
		t.Errorf("expected message and warning, got: %s", out.String())
	}

	if err := adapter.Move(context.Background(), 800, "Straff"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lifecycle.lastMove.CategoryName != "Straff" || lifecycle.lastMove.ChannelID != 800 {
		t.Errorf("unexpected move request %+v", lifecycle.lastMove)
	}

	lifecycle.err = courterr.Conflict("case.claim", "case 1 is already in a different state")
	if err := adapter.Claim(context.Background(), 800); !errors.Is(err, courterr.ErrConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestCaseAdapter_CloseWithReason(t *testing.T) {
	adapter, _, lifecycle, out := newTestCaseAdapter()
	lifecycle.steps = []primary.StepReport{
		{Step: primary.StepExport, Index: 1, Outcome: primary.StepOK},
		{Step: primary.StepStore, Index: 2, Outcome: primary.StepOK},
		{Step: primary.StepNotify, Index: 3, Outcome: primary.StepWarning, Detail: "creator has DMs closed"},
		{Step: primary.StepCommit, Index: 4, Outcome: primary.StepOK},
		{Step: primary.StepRelocate, Index: 5, Outcome: primary.StepOK},
	}

	if err := adapter.CloseWithReason(context.Background(), 800, "settled"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := out.String()
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) < 6 || !strings.HasPrefix(lines[0], "[1/5] export") || !strings.HasPrefix(lines[4], "[5/5] relocate") {
		t.Errorf("expected one progress line per step in order, got: %s", output)
	}
	if !strings.Contains(output, "closed with warnings") || !strings.Contains(output, "https://cdn.test/sak_3.html") {
		t.Errorf("unexpected summary: %s", output)
	}
}

func TestCaseAdapter_CloseWithReason_Aborted(t *testing.T) {
	adapter, _, lifecycle, out := newTestCaseAdapter()
	lifecycle.steps = []primary.StepReport{{Step: primary.StepExport, Index: 1, Outcome: primary.StepFailed, Detail: "history: 503"}}
	lifecycle.err = courterr.External("case.close_with_reason", errors.New("503"), "export failed")

	if err := adapter.CloseWithReason(context.Background(), 800, "settled"); err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(out.String(), "[1/5] export") || strings.Contains(out.String(), "closed") {
		t.Errorf("expected only the failed step, got: %s", out.String())
	}
}

func TestCaseAdapter_Legacy(t *testing.T) {
	adapter, _, _, out := newTestCaseAdapter()

	err := adapter.Legacy(context.Background(), primary.LegacyArchiveRequest{ChannelID: 900, DeleteChannel: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "42 messages") || !strings.Contains(out.String(), "Channel deleted") {
		t.Errorf("unexpected output: %s", out.String())
	}
}
