// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting but delegate
// business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/example/court/internal/ports/primary"
)

const rule = "────────────────────────────────────────────────────────────────"

// CaseAdapter translates case CLI operations to CaseService and
// LifecycleService calls.
type CaseAdapter struct {
	cases     primary.CaseService
	lifecycle primary.LifecycleService
	out       io.Writer
}

// NewCaseAdapter creates a new CaseAdapter.
func NewCaseAdapter(cases primary.CaseService, lifecycle primary.LifecycleService, out io.Writer) *CaseAdapter {
	return &CaseAdapter{cases: cases, lifecycle: lifecycle, out: out}
}

// caseView is the structured dump of a case.
type caseView struct {
	ID          int64  `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Status      string `yaml:"status"`
	Archived    bool   `yaml:"archived"`
	ChannelID   string `yaml:"channel_id"`
	CategoryID  string `yaml:"category_id"`
	CreatorID   string `yaml:"creator_id"`
	JudgeID     string `yaml:"assigned_judge_id,omitempty"`
	Evidence    int    `yaml:"evidence"`
	CreatedAt   string `yaml:"created_at"`
	ClosedAt    string `yaml:"closed_at,omitempty"`
	Reason      string `yaml:"closing_reason,omitempty"`
	ArchiveRef  string `yaml:"archive_ref,omitempty"`
}

func newCaseView(c *primary.Case) caseView {
	v := caseView{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Status:      c.Status,
		Archived:    c.Archived,
		ChannelID:   strconv.FormatInt(c.ChannelID, 10),
		CategoryID:  strconv.FormatInt(c.CategoryID, 10),
		CreatorID:   strconv.FormatInt(c.CreatorID, 10),
		Evidence:    c.EvidenceCount,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		Reason:      c.ClosingReason,
		ArchiveRef:  c.ArchiveRef,
	}
	if c.AssignedJudgeID != 0 {
		v.JudgeID = strconv.FormatInt(c.AssignedJudgeID, 10)
	}
	if !c.ClosedAt.IsZero() {
		v.ClosedAt = c.ClosedAt.Format(time.RFC3339)
	}
	return v
}

// Show displays one case, looked up by id or, when caseID is 0, by channel.
// format is "text" or "yaml".
func (a *CaseAdapter) Show(ctx context.Context, caseID, channelID int64, format string) error {
	var (
		c   *primary.Case
		err error
	)
	if caseID != 0 {
		c, err = a.cases.GetCase(ctx, caseID)
	} else {
		c, err = a.cases.GetCaseByChannel(ctx, channelID)
	}
	if err != nil {
		return fmt.Errorf("failed to get case: %w", err)
	}

	switch format {
	case "yaml":
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(newCaseView(c)); err != nil {
			return fmt.Errorf("failed to encode case: %w", err)
		}
		return enc.Close()
	case "", "text":
	default:
		return fmt.Errorf("unknown output format %q (text or yaml)", format)
	}

	fmt.Fprintf(a.out, "\nCase #%d: %s\n", c.ID, c.Title)
	fmt.Fprintf(a.out, "Status:   %s\n", statusColor(c.StatusLabel, c.Status))
	fmt.Fprintf(a.out, "Channel:  %d\n", c.ChannelID)
	fmt.Fprintf(a.out, "Creator:  %d\n", c.CreatorID)
	if c.AssignedJudgeID != 0 {
		fmt.Fprintf(a.out, "Judge:    %d\n", c.AssignedJudgeID)
	}
	if c.Description != "" {
		fmt.Fprintf(a.out, "Description: %s\n", c.Description)
	}
	fmt.Fprintf(a.out, "Evidence: %d\n", c.EvidenceCount)
	fmt.Fprintf(a.out, "Created:  %s\n", c.CreatedAt.Format("2006-01-02 15:04"))
	if !c.ClosedAt.IsZero() {
		fmt.Fprintf(a.out, "Closed:   %s\n", c.ClosedAt.Format("2006-01-02 15:04"))
	}
	if c.ClosingReason != "" {
		fmt.Fprintf(a.out, "Reason:   %s\n", c.ClosingReason)
	}
	if c.ArchiveRef != "" {
		fmt.Fprintf(a.out, "Archive:  %s\n", c.ArchiveRef)
	}
	fmt.Fprintln(a.out)
	return nil
}

// List lists cases with optional filters.
func (a *CaseAdapter) List(ctx context.Context, filters primary.CaseFilters) error {
	cases, err := a.cases.ListCases(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list cases: %w", err)
	}
	a.printCases(cases, "No cases found")
	return nil
}

// Search searches the archive.
func (a *CaseAdapter) Search(ctx context.Context, term string) error {
	cases, err := a.cases.SearchArchive(ctx, term)
	if err != nil {
		return err
	}
	a.printCases(cases, fmt.Sprintf("No archived cases match %q", term))
	return nil
}

func (a *CaseAdapter) printCases(cases []*primary.Case, empty string) {
	if len(cases) == 0 {
		fmt.Fprintln(a.out, empty)
		return
	}

	fmt.Fprintf(a.out, "\n%-6s %-12s %-20s %s\n", "ID", "STATUS", "JUDGE", "TITLE")
	fmt.Fprintln(a.out, rule)
	for _, c := range cases {
		judge := "-"
		if c.AssignedJudgeID != 0 {
			judge = strconv.FormatInt(c.AssignedJudgeID, 10)
		}
		fmt.Fprintf(a.out, "%-6d %-12s %-20s %s\n", c.ID, c.Status, judge, c.Title)
	}
	fmt.Fprintln(a.out)
}

// Stats prints case statistics.
func (a *CaseAdapter) Stats(ctx context.Context) error {
	stats, err := a.cases.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}

	fmt.Fprintf(a.out, "\nCases:    %d\n", stats.Total)
	fmt.Fprintf(a.out, "Open:     %d\n", stats.Open)
	fmt.Fprintf(a.out, "Assigned: %d\n", stats.Assigned)
	fmt.Fprintf(a.out, "Closed:   %d\n", stats.Closed)
	fmt.Fprintf(a.out, "Archived: %d\n", stats.Archived)
	if len(stats.ByJudge) > 0 {
		fmt.Fprintf(a.out, "\n%-20s %-8s %s\n", "JUDGE", "ACTIVE", "TOTAL")
		fmt.Fprintln(a.out, rule)
		for _, j := range stats.ByJudge {
			fmt.Fprintf(a.out, "%-20d %-8d %d\n", j.JudgeID, j.Active, j.Total)
		}
	}
	fmt.Fprintln(a.out)
	return nil
}

// Claim assigns the case to the acting judge.
func (a *CaseAdapter) Claim(ctx context.Context, channelID int64) error {
	resp, err := a.lifecycle.Claim(ctx, primary.CaseActionRequest{ChannelID: channelID})
	return a.printAction(resp, err)
}

// Move moves the case to a named category.
func (a *CaseAdapter) Move(ctx context.Context, channelID int64, categoryName string) error {
	resp, err := a.lifecycle.Move(ctx, primary.MoveRequest{ChannelID: channelID, CategoryName: categoryName})
	return a.printAction(resp, err)
}

// Close closes the case without a transcript.
func (a *CaseAdapter) Close(ctx context.Context, channelID int64) error {
	resp, err := a.lifecycle.Close(ctx, primary.CaseActionRequest{ChannelID: channelID})
	return a.printAction(resp, err)
}

// Archive places the case in the archive.
func (a *CaseAdapter) Archive(ctx context.Context, channelID int64) error {
	resp, err := a.lifecycle.Archive(ctx, primary.CaseActionRequest{ChannelID: channelID})
	return a.printAction(resp, err)
}

// Relocate re-applies the placement implied by the stored case.
func (a *CaseAdapter) Relocate(ctx context.Context, channelID int64) error {
	resp, err := a.lifecycle.Relocate(ctx, primary.CaseActionRequest{ChannelID: channelID})
	return a.printAction(resp, err)
}

func (a *CaseAdapter) printAction(resp *primary.ActionResponse, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s\n", color.New(color.FgGreen).Sprint("✓"), resp.Message)
	a.printWarnings(resp.Warnings)
	return nil
}

func (a *CaseAdapter) printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(a.out, "  %s %s\n", color.New(color.FgYellow).Sprint("!"), w)
	}
}

// CloseWithReason runs the close saga and prints each step as it finishes.
func (a *CaseAdapter) CloseWithReason(ctx context.Context, channelID int64, reason string) error {
	report, err := a.lifecycle.CloseWithReason(ctx, primary.CloseWithReasonRequest{
		ChannelID: channelID,
		Reason:    reason,
		Progress: func(step primary.StepReport) {
			line := fmt.Sprintf("[%d/5] %-8s %s", step.Index, step.Step, stepIcon(step.Outcome))
			if step.Detail != "" {
				line += " " + step.Detail
			}
			fmt.Fprintln(a.out, line)
		},
	})
	if err != nil {
		return err
	}

	if len(report.Warnings()) > 0 {
		fmt.Fprintf(a.out, "%s Case #%d closed with warnings\n", color.New(color.FgYellow).Sprint("!"), report.CaseID)
	} else {
		fmt.Fprintf(a.out, "%s Case #%d closed\n", color.New(color.FgGreen).Sprint("✓"), report.CaseID)
	}
	if report.ArchiveRef != "" {
		fmt.Fprintf(a.out, "  Transcript: %s\n", report.ArchiveRef)
	}
	return nil
}

// Legacy archives an unregistered channel.
func (a *CaseAdapter) Legacy(ctx context.Context, req primary.LegacyArchiveRequest) error {
	resp, err := a.lifecycle.LegacyArchive(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s Archived %d messages from channel %d\n", color.New(color.FgGreen).Sprint("✓"), resp.MessageCount, req.ChannelID)
	fmt.Fprintf(a.out, "  Transcript: %s\n", resp.ArchiveRef)
	if resp.ChannelDeleted {
		fmt.Fprintln(a.out, "  Channel deleted")
	}
	a.printWarnings(resp.Warnings)
	return nil
}

func stepIcon(outcome string) string {
	switch outcome {
	case primary.StepOK:
		return color.New(color.FgGreen).Sprint("ok")
	case primary.StepWarning:
		return color.New(color.FgYellow).Sprint("warning")
	case primary.StepFailed:
		return color.New(color.FgRed).Sprint("failed")
	default:
		return color.New(color.FgBlue).Sprint(outcome)
	}
}

func statusColor(label, status string) string {
	if label == "" {
		label = status
	}
	switch status {
	case "open":
		return color.New(color.FgGreen).Sprint(label)
	case "assigned":
		return color.New(color.FgYellow).Sprint(label)
	default:
		return color.New(color.FgRed).Sprint(label)
	}
}
