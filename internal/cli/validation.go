package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// mentionPattern matches <#id>, <@id>, <@!id> and <@&id>.
var mentionPattern = regexp.MustCompile(`^<(?:#|@!?|@&)(\d+)>$`)

// parseID parses a platform id. Channel, user and role mentions are
// accepted as pasted from the client.
func parseID(s, what string) (int64, error) {
	s = strings.TrimSpace(s)
	if m := mentionPattern.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q: expected a numeric id or mention", what, s)
	}
	return id, nil
}

// parseCaseID parses a case number, with or without a leading '#'.
func parseCaseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid case number %q", s)
	}
	return id, nil
}
