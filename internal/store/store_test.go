package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"taskboard/internal/livequery"
	"taskboard/internal/logger"
	"taskboard/internal/model"
)

func TestStore_SetReplacesWholesaleAndNotifies(t *testing.T) {
	s := New[int]()
	if s.Loaded() {
		t.Fatalf("new store must not be loaded")
	}

	var seen [][]int
	cancel := s.Subscribe(func(v []int) { seen = append(seen, v) })

	s.Set([]int{1, 2, 3})
	s.Set([]int{4})

	if !reflect.DeepEqual(s.Snapshot(), []int{4}) {
		t.Fatalf("snapshot = %v", s.Snapshot())
	}
	if !reflect.DeepEqual(seen, [][]int{{1, 2, 3}, {4}}) {
		t.Fatalf("listener saw %v", seen)
	}
	if s.Version() != 2 || !s.Loaded() {
		t.Fatalf("version=%d loaded=%t", s.Version(), s.Loaded())
	}

	cancel()
	cancel()
	s.Set(nil)
	if len(seen) != 2 {
		t.Fatalf("listener called after cancel")
	}
	if !s.Loaded() || len(s.Snapshot()) != 0 {
		t.Fatalf("empty snapshot is still a loaded state")
	}
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := New[int]()
	in := []int{1}
	s.Set(in)
	in[0] = 9
	out := s.Snapshot()
	out[0] = 7
	if s.Snapshot()[0] != 1 {
		t.Fatalf("store shares memory with callers")
	}
}

// manualSource lets the test decide when snapshots arrive.
type manualSource struct {
	tasks        func([]model.Task)
	taskErr      func(error)
	categories   func([]model.Category)
	unsubscribed int
}

func (m *manualSource) SubscribeTasks(_ context.Context, _ string, on func([]model.Task), onErr func(error)) *livequery.Subscription {
	m.tasks, m.taskErr = on, onErr
	return livequery.NewSubscription(func() { m.unsubscribed++ })
}

func (m *manualSource) SubscribeCategories(_ context.Context, _ string, on func([]model.Category), _ func(error)) *livequery.Subscription {
	m.categories = on
	return livequery.NewSubscription(func() { m.unsubscribed++ })
}

func TestAttach_RequiresOwner(t *testing.T) {
	src := &manualSource{}
	if _, err := Attach(context.Background(), src, "", logger.Nop()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if src.tasks != nil || src.categories != nil {
		t.Fatalf("no subscription may be made without a user")
	}
}

func TestMirror_LoadingUntilFirstTaskPush(t *testing.T) {
	src := &manualSource{}
	m, err := Attach(context.Background(), src, "alice", logger.Nop())
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if !m.Loading() {
		t.Fatalf("expected loading before first push")
	}

	src.categories([]model.Category{{ID: "c1", Name: "Work"}})
	if !m.Loading() {
		t.Fatalf("categories must not end the loading state")
	}

	src.tasks(nil)
	if m.Loading() {
		t.Fatalf("empty task snapshot ends loading")
	}
	if got := m.Categories.Snapshot(); len(got) != 1 || got[0].Name != "Work" {
		t.Fatalf("categories = %+v", got)
	}

	m.Close()
	m.Close()
	if src.unsubscribed != 2 {
		t.Fatalf("expected both subscriptions torn down once, got %d", src.unsubscribed)
	}
}

func TestMirror_SubscriptionErrorClearsLoading(t *testing.T) {
	src := &manualSource{}
	m, err := Attach(context.Background(), src, "alice", logger.Nop())
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	boom := errors.New("permission denied")
	src.taskErr(boom)

	if m.Loading() {
		t.Fatalf("error must clear loading")
	}
	if !errors.Is(m.Err(), boom) {
		t.Fatalf("err = %v", m.Err())
	}
	if m.Tasks.Loaded() {
		t.Fatalf("no snapshot arrived")
	}
}
