// Package category contains category kinds and name resolution.
package category

import (
	"sort"
	"strings"

	"github.com/example/court/internal/core/courterr"
)

// Kind classifies a registered category.
type Kind string

const (
	KindIntake  Kind = "intake"  // cases spawn here from a panel button
	KindJudge   Kind = "judge"   // a judge's dedicated category
	KindArchive Kind = "archive" // the single archive category
	KindCustom  Kind = "custom"  // any other registered move target
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindIntake, KindJudge, KindArchive, KindCustom:
		return true
	}
	return false
}

// Candidate is a registered category considered during name resolution.
type Candidate struct {
	CategoryID int64
	Name       string
	RoleID     int64
	Kind       Kind
}

// Resolve finds the category a user meant by name. Matching is
// case-insensitive. An exact name match wins; otherwise every category whose
// name starts with the query is a match. More than one match is a conflict
// listing the candidates, none is not found.
func Resolve(query string, candidates []Candidate) (Candidate, error) {
	const op = "category.resolve"

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Candidate{}, courterr.Validation(op, "category name cannot be empty")
	}

	var exact, prefix []Candidate
	for _, c := range candidates {
		name := strings.ToLower(c.Name)
		switch {
		case name == q:
			exact = append(exact, c)
		case strings.HasPrefix(name, q):
			prefix = append(prefix, c)
		}
	}

	matches := exact
	if len(matches) == 0 {
		matches = prefix
	}

	switch len(matches) {
	case 0:
		return Candidate{}, courterr.NotFound(op, "no category matches %q", query)
	case 1:
		return matches[0], nil
	}

	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Name
	}
	sort.Strings(names)
	return Candidate{}, courterr.Conflict(op, "%q is ambiguous, matching: %s", query, strings.Join(names, ", "))
}
