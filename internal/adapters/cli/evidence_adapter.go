package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/court/internal/ports/primary"
)

// EvidenceAdapter translates evidence CLI operations to EvidenceService calls.
type EvidenceAdapter struct {
	service primary.EvidenceService
	out     io.Writer
}

// NewEvidenceAdapter creates a new EvidenceAdapter.
func NewEvidenceAdapter(service primary.EvidenceService, out io.Writer) *EvidenceAdapter {
	return &EvidenceAdapter{service: service, out: out}
}

// Add appends an evidence item.
func (a *EvidenceAdapter) Add(ctx context.Context, channelID int64, description, link string) error {
	ev, err := a.service.AddEvidence(ctx, primary.AddEvidenceRequest{
		ChannelID:   channelID,
		Description: description,
		Link:        link,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Evidence %s added: %s\n", ev.DisplayID, ev.Description)
	return nil
}

// Remove removes the item shown as displayID.
func (a *EvidenceAdapter) Remove(ctx context.Context, channelID int64, displayID string) error {
	ev, err := a.service.RemoveEvidence(ctx, primary.RemoveEvidenceRequest{ChannelID: channelID, DisplayID: displayID})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Evidence %s removed: %s\n", displayID, ev.Description)
	return nil
}

// List prints the case's evidence in submission order.
func (a *EvidenceAdapter) List(ctx context.Context, channelID int64) error {
	items, err := a.service.ListEvidence(ctx, channelID)
	if err != nil {
		return fmt.Errorf("failed to list evidence: %w", err)
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No evidence registered")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-8s %-20s %-17s %s\n", "ID", "SUBMITTER", "SUBMITTED", "DESCRIPTION")
	fmt.Fprintln(a.out, rule)
	for _, ev := range items {
		fmt.Fprintf(a.out, "%-8s %-20d %-17s %s\n", ev.DisplayID, ev.SubmitterID, ev.SubmittedAt.Format("2006-01-02 15:04"), ev.Description)
		if ev.Link != "" {
			fmt.Fprintf(a.out, "%-8s %s\n", "", ev.Link)
		}
	}
	fmt.Fprintln(a.out)
	return nil
}
