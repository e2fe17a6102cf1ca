package model

import (
	"errors"
	"fmt"
)

// Action is a user intent that moves a task through its workflow.
type Action string

const (
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionDelete   Action = "delete"
)

var ErrTransitionNotAllowed = errors.New("transition not allowed")

// AvailableActions lists what can be done with a task in the given status.
// Done and unknown statuses are terminal.
func AvailableActions(s Status) []Action {
	switch s {
	case StatusPending:
		return []Action{ActionStart, ActionComplete, ActionDelete}
	case StatusInProgress:
		return []Action{ActionComplete}
	default:
		return nil
	}
}

// NextStatus returns the status a task moves to. Delete yields StatusUnknown
// with removed=true since the task stops existing.
func NextStatus(from Status, action Action) (to Status, removed bool, err error) {
	if !isAllowedTransition(from, action) {
		return from, false, fmt.Errorf("%w: %s from %q", ErrTransitionNotAllowed, action, from)
	}
	switch action {
	case ActionStart:
		return StatusInProgress, false, nil
	case ActionComplete:
		return StatusDone, false, nil
	default:
		return StatusUnknown, true, nil
	}
}

func isAllowedTransition(from Status, action Action) bool {
	switch from {
	case StatusPending:
		return action == ActionStart || action == ActionComplete || action == ActionDelete
	case StatusInProgress:
		return action == ActionComplete
	default:
		return false
	}
}

// ParseAction validates a raw action name, e.g. from callback data.
func ParseAction(raw string) (Action, bool) {
	switch a := Action(raw); a {
	case ActionStart, ActionComplete, ActionDelete:
		return a, true
	default:
		return "", false
	}
}
