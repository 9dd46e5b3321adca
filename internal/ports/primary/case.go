package primary

import (
	"context"
	"time"
)

// CaseService defines the primary port for case intake and queries.
type CaseService interface {
	// OpenCase creates a case channel in an intake category for the acting
	// user and registers the case.
	OpenCase(ctx context.Context, req OpenCaseRequest) (*OpenCaseResponse, error)

	// GetCase retrieves a case by id.
	GetCase(ctx context.Context, caseID int64) (*Case, error)

	// GetCaseByChannel retrieves the case bound to a channel.
	GetCaseByChannel(ctx context.Context, channelID int64) (*Case, error)

	// ListCases lists cases with optional filters.
	ListCases(ctx context.Context, filters CaseFilters) ([]*Case, error)

	// SearchArchive searches closed and archived cases.
	SearchArchive(ctx context.Context, term string) ([]*Case, error)

	// GetStats returns case statistics.
	GetStats(ctx context.Context) (*CaseStats, error)
}

// OpenCaseRequest contains parameters for opening a case.
type OpenCaseRequest struct {
	CategoryID  int64
	Title       string // defaults to "Case for <display name>"
	Description string
}

// OpenCaseResponse contains the result of opening a case.
type OpenCaseResponse struct {
	Case *Case
}

// Case represents a case at the port boundary.
type Case struct {
	ID              int64
	ChannelID       int64
	CategoryID      int64
	CreatorID       int64
	AssignedJudgeID int64
	Title           string
	Description     string
	Status          string
	StatusLabel     string
	Archived        bool
	CreatedAt       time.Time
	ClosedAt        time.Time
	ClosingReason   string
	ArchiveRef      string
	EvidenceCount   int
}

// CaseFilters contains filter options for listing cases.
type CaseFilters struct {
	Status   string
	JudgeID  int64
	Archived *bool
	Limit    int
}

// CaseStats aggregates case counts at the port boundary.
type CaseStats struct {
	Total    int
	Open     int
	Assigned int
	Closed   int
	Archived int
	ByJudge  []JudgeCaseCount
}

// JudgeCaseCount is the case load of one judge.
type JudgeCaseCount struct {
	JudgeID int64
	Total   int
	Active  int
}
