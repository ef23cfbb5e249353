package domain

import (
	"fmt"
	"strings"
)

// Status represents lifecycle states for content entries and pages.
type Status string

const (
	// StatusDraft indicates content still under preparation
	StatusDraft Status = "draft"
	// StatusPublished identifies content available to consumers
	StatusPublished Status = "published"
	// StatusArchived marks content that is retained for history but not publicly visible
	StatusArchived Status = "archived"
)

// ParseStatus coerces arbitrary status strings into a known representation.
func ParseStatus(input string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(input)))
	switch status {
	case StatusDraft, StatusPublished, StatusArchived:
		return status, nil
	default:
		return "", &UnknownStatusError{Value: input}
	}
}

// transitions enumerates the legal status moves. Archived is terminal and
// same-status assignments are treated as no-ops by CanTransition.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusPublished, StatusArchived},
	StatusPublished: {StatusDraft, StatusArchived},
	StatusArchived:  {},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition validates a status move, returning a TransitionError when the
// move is not part of the lifecycle table.
func Transition(from, to Status) error {
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

// UnknownStatusError reports a status value outside the lifecycle vocabulary.
type UnknownStatusError struct {
	Value string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("domain: unknown status %q", e.Value)
}

// TransitionError reports an illegal lifecycle move.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("domain: illegal status transition %s -> %s", e.From, e.To)
}
