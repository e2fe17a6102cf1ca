package model

import (
	"errors"
	"reflect"
	"testing"
)

func TestNextStatus_FromPending(t *testing.T) {
	cases := []struct {
		action  Action
		want    Status
		removed bool
	}{
		{ActionStart, StatusInProgress, false},
		{ActionComplete, StatusDone, false},
		{ActionDelete, StatusUnknown, true},
	}
	for _, tc := range cases {
		got, removed, err := NextStatus(StatusPending, tc.action)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.action, err)
		}
		if got != tc.want || removed != tc.removed {
			t.Fatalf("%s: got (%v, %t), want (%v, %t)", tc.action, got, removed, tc.want, tc.removed)
		}
	}
}

func TestNextStatus_InProgressOnlyCompletes(t *testing.T) {
	if got, _, err := NextStatus(StatusInProgress, ActionComplete); err != nil || got != StatusDone {
		t.Fatalf("expected Done, got %v (%v)", got, err)
	}
	for _, a := range []Action{ActionStart, ActionDelete} {
		if _, _, err := NextStatus(StatusInProgress, a); !errors.Is(err, ErrTransitionNotAllowed) {
			t.Fatalf("%s from InProgress: expected ErrTransitionNotAllowed, got %v", a, err)
		}
	}
}

func TestNextStatus_DoneIsTerminal(t *testing.T) {
	for _, a := range []Action{ActionStart, ActionComplete, ActionDelete} {
		if _, _, err := NextStatus(StatusDone, a); !errors.Is(err, ErrTransitionNotAllowed) {
			t.Fatalf("%s from Done: expected ErrTransitionNotAllowed, got %v", a, err)
		}
	}
	if acts := AvailableActions(StatusDone); len(acts) != 0 {
		t.Fatalf("expected no actions from Done, got %v", acts)
	}
}

func TestAvailableActions(t *testing.T) {
	if got := AvailableActions(StatusPending); !reflect.DeepEqual(got, []Action{ActionStart, ActionComplete, ActionDelete}) {
		t.Fatalf("pending actions: %v", got)
	}
	if got := AvailableActions(StatusInProgress); !reflect.DeepEqual(got, []Action{ActionComplete}) {
		t.Fatalf("in-progress actions: %v", got)
	}
	if got := AvailableActions(StatusUnknown); got != nil {
		t.Fatalf("unknown actions: %v", got)
	}
}

func TestParseAction(t *testing.T) {
	if a, ok := ParseAction("complete"); !ok || a != ActionComplete {
		t.Fatalf("got %q %t", a, ok)
	}
	if _, ok := ParseAction("reopen"); ok {
		t.Fatalf("reopen must not parse")
	}
}
