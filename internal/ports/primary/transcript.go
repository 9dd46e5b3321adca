package primary

import "context"

// Export windows.
const (
	RoutineWindow = 100
	LegacyWindow  = 500
)

// TranscriptService defines the primary port for transcript export.
type TranscriptService interface {
	// ExportCase renders the transcript of a registered case. Any fetch or
	// resolution failure returns an error and no document.
	ExportCase(ctx context.Context, req ExportCaseRequest) (*ExportedDocument, error)

	// ExportChannel renders the transcript of an unregistered channel.
	ExportChannel(ctx context.Context, req ExportChannelRequest) (*ExportedDocument, error)
}

// ExportCaseRequest contains parameters for a case export.
type ExportCaseRequest struct {
	CaseID int64
	Window int // message window, RoutineWindow when 0
}

// ExportChannelRequest contains parameters for a legacy export.
type ExportChannelRequest struct {
	ChannelID   int64
	Title       string
	Description string
	Window      int // LegacyWindow when 0
}

// ExportedDocument is a rendered transcript.
type ExportedDocument struct {
	Name         string
	Data         []byte
	MessageCount int
}
