package primary

import "context"

// LifecycleService defines the primary port for case state transitions.
// Every operation acts on the case bound to ChannelID and checks the acting
// user's capability before any state change or side effect.
type LifecycleService interface {
	// Claim assigns the case to the acting judge.
	Claim(ctx context.Context, req CaseActionRequest) (*ActionResponse, error)

	// Move moves the case channel to a category resolved by name.
	Move(ctx context.Context, req MoveRequest) (*ActionResponse, error)

	// Close closes the case without exporting a transcript.
	Close(ctx context.Context, req CaseActionRequest) (*ActionResponse, error)

	// CloseWithReason runs the export, store, notify, commit, relocate saga.
	// An error is returned only when the saga aborts before the commit.
	CloseWithReason(ctx context.Context, req CloseWithReasonRequest) (*CloseReport, error)

	// Archive places the case in the archive without closing it.
	Archive(ctx context.Context, req CaseActionRequest) (*ActionResponse, error)

	// Relocate re-applies the channel placement implied by stored state.
	Relocate(ctx context.Context, req CaseActionRequest) (*ActionResponse, error)

	// LegacyArchive exports and stores an unregistered channel.
	LegacyArchive(ctx context.Context, req LegacyArchiveRequest) (*LegacyArchiveResponse, error)

	// PostNote posts a judge note into the case channel.
	PostNote(ctx context.Context, req NoteRequest) error

	// SendDirectMessage sends a DM to a user through the bot.
	SendDirectMessage(ctx context.Context, req DirectMessageRequest) error

	// DeleteChannel deletes a closed case's channel. The case record is kept.
	DeleteChannel(ctx context.Context, req CaseActionRequest) error
}

// CaseActionRequest identifies the case an action applies to.
type CaseActionRequest struct {
	ChannelID int64
}

// MoveRequest contains parameters for moving a case.
type MoveRequest struct {
	ChannelID    int64
	CategoryName string
}

// CloseWithReasonRequest contains parameters for the close saga.
type CloseWithReasonRequest struct {
	ChannelID int64
	Reason    string
	// Progress, when set, is called after every saga step.
	Progress func(StepReport)
}

// ActionResponse reports a completed transition.
type ActionResponse struct {
	CaseID   int64
	Message  string
	Warnings []string
}

// Saga step names, in order.
const (
	StepExport   = "export"
	StepStore    = "store"
	StepNotify   = "notify"
	StepCommit   = "commit"
	StepRelocate = "relocate"
)

// Step outcomes.
const (
	StepOK      = "ok"
	StepWarning = "warning"
	StepFailed  = "failed"
	StepSkipped = "skipped"
)

// StepReport is the outcome of one saga step.
type StepReport struct {
	Step    string
	Index   int // 1-based
	Outcome string
	Detail  string
}

// CloseReport summarizes a close saga run.
type CloseReport struct {
	RunID      string
	CaseID     int64
	Steps      []StepReport
	ArchiveRef string
	Committed  bool
}

// Warnings returns the details of steps that completed with a warning.
func (r *CloseReport) Warnings() []string {
	var out []string
	for _, s := range r.Steps {
		if s.Outcome == StepWarning {
			out = append(out, s.Step+": "+s.Detail)
		}
	}
	return out
}

// LegacyArchiveRequest contains parameters for archiving an unregistered channel.
type LegacyArchiveRequest struct {
	ChannelID     int64
	Title         string
	Description   string
	DeleteChannel bool
}

// LegacyArchiveResponse reports a legacy archive.
type LegacyArchiveResponse struct {
	ArchiveRef     string
	MessageCount   int
	ChannelDeleted bool
	Warnings       []string
}

// NoteRequest contains parameters for posting a judge note.
type NoteRequest struct {
	ChannelID int64
	Text      string
}

// DirectMessageRequest contains parameters for a DM through the bot.
type DirectMessageRequest struct {
	UserID int64
	Text   string
}
