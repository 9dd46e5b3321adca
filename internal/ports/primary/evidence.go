package primary

import (
	"context"
	"time"
)

// EvidenceService defines the primary port for the evidence ledger.
type EvidenceService interface {
	// AddEvidence appends an item to the case bound to ChannelID.
	AddEvidence(ctx context.Context, req AddEvidenceRequest) (*Evidence, error)

	// RemoveEvidence removes the item currently shown as DisplayID.
	RemoveEvidence(ctx context.Context, req RemoveEvidenceRequest) (*Evidence, error)

	// ListEvidence lists the items of the case bound to a channel.
	ListEvidence(ctx context.Context, channelID int64) ([]*Evidence, error)
}

// AddEvidenceRequest contains parameters for adding evidence.
type AddEvidenceRequest struct {
	ChannelID   int64
	Description string
	Link        string
}

// RemoveEvidenceRequest contains parameters for removing evidence.
type RemoveEvidenceRequest struct {
	ChannelID int64
	DisplayID string // "{case}.{position}"
}

// Evidence represents an evidence item at the port boundary.
type Evidence struct {
	DisplayID   string
	CaseID      int64
	Position    int
	SubmitterID int64
	Description string
	Link        string
	SubmittedAt time.Time
}
