// Package caselife contains the pure business logic of the case lifecycle.
// This is part of the Functional Core - no I/O, only pure functions.
//
// Status moves open → assigned → closed. Archived is an orthogonal placement
// flag: the case channel lives in the Archive category. Closing always
// archives; archiving never closes.
package caselife

// Status represents the possible states of a case.
type Status string

const (
	StatusOpen     Status = "open"
	StatusAssigned Status = "assigned"
	StatusClosed   Status = "closed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusAssigned, StatusClosed:
		return true
	}
	return false
}

// Label returns the human-readable status shown in messages and exports.
func (s Status) Label() string {
	switch s {
	case StatusOpen:
		return "🟢 Open"
	case StatusAssigned:
		return "🟠 In progress"
	case StatusClosed:
		return "🔴 Closed"
	}
	return string(s)
}

// Active reports whether the case can still change status.
func (s Status) Active() bool {
	return s == StatusOpen || s == StatusAssigned
}

// InitialStatus returns the status of a freshly opened case.
func InitialStatus() Status {
	return StatusOpen
}

// Placement is where the case channel should live for a given state.
type Placement string

const (
	PlacementOrigin  Placement = "origin"  // the intake category the case was opened in
	PlacementJudge   Placement = "judge"   // the assigned judge's category
	PlacementArchive Placement = "archive" // the Archive category, sending revoked
)

// PlacementFor derives the channel placement implied by stored state.
// Relocation re-applies this after a failed channel move.
func PlacementFor(status Status, archived bool) Placement {
	if archived || status == StatusClosed {
		return PlacementArchive
	}
	if status == StatusAssigned {
		return PlacementJudge
	}
	return PlacementOrigin
}
