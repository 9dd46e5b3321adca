package caselife

import (
	"strconv"
	"strings"
	"unicode"
)

// ChannelName builds the channel name for a new case: the creator's display
// name lowercased with runs of spaces turned into dashes, followed by the id
// the case is expected to receive.
func ChannelName(displayName string, nextID int64) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(displayName)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
			dash = false
		case unicode.IsSpace(r) || r == '-':
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	base := strings.TrimSuffix(b.String(), "-")
	if base == "" {
		base = "case"
	}
	return base + "-" + strconv.FormatInt(nextID, 10)
}

// ArchiveFileName is the name of the exported transcript document.
func ArchiveFileName(caseID int64, stamp string) string {
	return "sak_" + strconv.FormatInt(caseID, 10) + "_" + stamp + ".html"
}

// ArchiveStampLayout formats the timestamp embedded in ArchiveFileName.
const ArchiveStampLayout = "20060102_150405"

// LegacyFileName is the name of a legacy channel export.
func LegacyFileName(stamp string) string {
	return "legacy-arkiv-" + stamp + ".html"
}

// DeleteButtonID is the custom id of the delete-channel affordance posted
// with the closure notice.
const DeleteButtonID = "delete_channel"

const intakeButtonPrefix = "ticket_button_"

// IntakeButtonID is the custom id of the panel button that opens a case in
// the intake category.
func IntakeButtonID(categoryID int64) string {
	return intakeButtonPrefix + strconv.FormatInt(categoryID, 10)
}

// ParseIntakeButtonID extracts the category id from an intake button id.
func ParseIntakeButtonID(customID string) (int64, bool) {
	rest, ok := strings.CutPrefix(customID, intakeButtonPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
