package transcript

import (
	"fmt"
	"time"

	"github.com/example/court/internal/core/evidence"
)

// DefaultJudgeName is shown when no judge is assigned or the judge's name
// could not be resolved.
const DefaultJudgeName = "None"

// NoEvidenceText is the explicit evidence section of a case without evidence.
const NoEvidenceText = "No evidence has been registered for this case."

// CaseInfo is the part of a case shown in the document header.
type CaseInfo struct {
	ID          int64
	Title       string
	Description string
	Status      string // human-readable label
	Archived    bool
	CreatedAt   time.Time
}

// EvidenceItem is one ledger entry at its current position.
type EvidenceItem struct {
	Position    int
	Description string
	Link        string
	SubmittedAt time.Time
}

// Header is the top block of the document.
type Header struct {
	CaseID      int64
	Title       string
	Description string
	Status      string
	Archived    bool
	CreatedAt   time.Time
	Judge       string

	// Legacy exports only.
	ChannelName string
	ArchivedBy  string
	ArchivedAt  time.Time
}

// EvidenceEntry is an evidence item with its derived display id.
type EvidenceEntry struct {
	DisplayID   string
	Description string
	Link        string
	SubmittedAt time.Time
}

// Document is the full, render-ready transcript.
type Document struct {
	Legacy     bool
	Header     Header
	Evidence   []EvidenceEntry
	NoEvidence string
	Groups     []Group
	Footer     string
}

// Heading is the document title.
func (d Document) Heading() string {
	if d.Legacy {
		return fmt.Sprintf("Legacy archive - %s", d.Header.Title)
	}
	return fmt.Sprintf("Case #%d - %s", d.Header.CaseID, d.Header.Title)
}

// CaseInput collects what BuildCase needs.
type CaseInput struct {
	Case      CaseInfo
	Evidence  []EvidenceItem
	Messages  []Message // oldest-first
	JudgeName string
	Footer    string
}

// BuildCase assembles the document for a registered case.
func BuildCase(in CaseInput, f Filter) Document {
	judge := in.JudgeName
	if judge == "" {
		judge = DefaultJudgeName
	}

	doc := Document{
		Header: Header{
			CaseID:      in.Case.ID,
			Title:       in.Case.Title,
			Description: in.Case.Description,
			Status:      in.Case.Status,
			Archived:    in.Case.Archived,
			CreatedAt:   in.Case.CreatedAt,
			Judge:       judge,
		},
		NoEvidence: NoEvidenceText,
		Groups:     GroupMessages(f.Apply(in.Messages)),
		Footer:     in.Footer,
	}
	for _, item := range in.Evidence {
		doc.Evidence = append(doc.Evidence, EvidenceEntry{
			DisplayID:   evidence.Format(in.Case.ID, item.Position),
			Description: item.Description,
			Link:        item.Link,
			SubmittedAt: item.SubmittedAt,
		})
	}
	return doc
}

// LegacyInput collects what BuildLegacy needs.
type LegacyInput struct {
	Title       string
	Description string
	ChannelName string
	ArchivedBy  string
	ArchivedAt  time.Time
	Messages    []Message
	Footer      string
}

// BuildLegacy assembles the document for a channel that was never
// registered as a case. It has no evidence section.
func BuildLegacy(in LegacyInput, f Filter) Document {
	return Document{
		Legacy: true,
		Header: Header{
			Title:       in.Title,
			Description: in.Description,
			ChannelName: in.ChannelName,
			ArchivedBy:  in.ArchivedBy,
			ArchivedAt:  in.ArchivedAt,
		},
		Groups: GroupMessages(f.Apply(in.Messages)),
		Footer: in.Footer,
	}
}
