package primary

import "context"

// JudgeService defines the primary port for judge provisioning.
type JudgeService interface {
	// AppointJudge creates a judge category and registers the judge.
	AppointJudge(ctx context.Context, req AppointJudgeRequest) (*Judge, error)

	// DismissJudge removes a judge who holds no active assigned cases.
	DismissJudge(ctx context.Context, userID int64) (*DismissJudgeResponse, error)

	// ListJudges lists registered judges.
	ListJudges(ctx context.Context) ([]*Judge, error)
}

// AppointJudgeRequest contains parameters for appointing a judge.
type AppointJudgeRequest struct {
	UserID       int64
	CategoryName string // defaults to "Judge <display name>"
}

// DismissJudgeResponse reports a dismissal.
type DismissJudgeResponse struct {
	Warnings []string
}

// Judge represents a judge at the port boundary.
type Judge struct {
	UserID       int64
	CategoryID   int64
	CategoryName string
}
