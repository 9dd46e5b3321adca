// Package evidence contains the pure rules of the evidence ledger.
//
// Evidence items carry no stored ordinal. The display ID of an item is
// "{case}.{position}", where position is its 1-based rank in insertion order
// within the case. Removing an item shifts the displayed position of every
// later item down by one.
package evidence

import (
	"strconv"
	"strings"

	"github.com/example/court/internal/core/courterr"
)

// DisplayID is the derived, user-facing identity of an evidence item.
type DisplayID struct {
	CaseID   int64
	Position int
}

// String formats the display ID as "{case}.{position}".
func (d DisplayID) String() string {
	return strconv.FormatInt(d.CaseID, 10) + "." + strconv.Itoa(d.Position)
}

// Format builds a display ID string for the item at position in caseID.
func Format(caseID int64, position int) string {
	return DisplayID{CaseID: caseID, Position: position}.String()
}

// ParseDisplayID parses a user-supplied "{case}.{position}" string.
// Both parts must be plain decimal integers; signs, spaces and extra dots are
// rejected. Position 0 parses and is left for the ledger to report as not
// found.
func ParseDisplayID(s string) (DisplayID, error) {
	const op = "evidence.parse"

	caseStr, posStr, ok := strings.Cut(s, ".")
	if !ok || !isDigits(caseStr) || !isDigits(posStr) {
		return DisplayID{}, courterr.Validation(op, "invalid evidence ID %q (expected format: <case>.<number>, e.g. 12.3)", s)
	}

	caseID, err := strconv.ParseInt(caseStr, 10, 64)
	if err != nil || caseID <= 0 {
		return DisplayID{}, courterr.Validation(op, "invalid case number in evidence ID %q", s)
	}
	pos, err := strconv.Atoi(posStr)
	if err != nil {
		return DisplayID{}, courterr.Validation(op, "invalid evidence number in evidence ID %q", s)
	}

	return DisplayID{CaseID: caseID, Position: pos}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// CheckBelongsTo rejects a display ID that names a different case than the
// one bound to the current channel. The mismatch is reported as not found.
func CheckBelongsTo(id DisplayID, caseID int64) error {
	if id.CaseID != caseID {
		return courterr.NotFound("evidence.remove", "evidence %s does not belong to case %d", id, caseID)
	}
	return nil
}

// ValidateSubmission checks the user-supplied fields of a new item. The link
// is free text; a reference that is not a URL is stored as given.
func ValidateSubmission(description, link string) error {
	if strings.TrimSpace(description) == "" {
		return courterr.Validation("evidence.add", "evidence description cannot be empty")
	}
	if strings.TrimSpace(link) == "" {
		return courterr.Validation("evidence.add", "evidence link cannot be empty")
	}
	return nil
}
