package livequery

import (
	"context"
	"sync"
	"sync/atomic"

	"taskboard/internal/metrics"
)

type fetchFunc[T any] func(ctx context.Context, ownerID string) ([]T, error)

// feed fans full owner-scoped snapshots out to subscribers.
type feed[T any] struct {
	collection string
	fetch      fetchFunc[T]

	mu       sync.Mutex
	nextID   uint64
	versions map[string]uint64
	subs     map[string]map[uint64]*subscriber[T]
}

type subscriber[T any] struct {
	mu         sync.Mutex
	closed     atomic.Bool
	delivered  uint64
	onSnapshot func([]T)
	onError    func(error)
}

func newFeed[T any](collection string, fetch fetchFunc[T]) *feed[T] {
	return &feed[T]{
		collection: collection,
		fetch:      fetch,
		versions:   make(map[string]uint64),
		subs:       make(map[string]map[uint64]*subscriber[T]),
	}
}

func (f *feed[T]) subscribe(ctx context.Context, ownerID string, onSnapshot func([]T), onError func(error)) *Subscription {
	sub := &subscriber[T]{onSnapshot: onSnapshot, onError: onError}

	f.mu.Lock()
	f.nextID++
	id := f.nextID
	if f.subs[ownerID] == nil {
		f.subs[ownerID] = make(map[uint64]*subscriber[T])
	}
	f.subs[ownerID][id] = sub
	f.mu.Unlock()
	metrics.ActiveSubscriptions.WithLabelValues(f.collection).Inc()

	s := NewSubscription(func() {
		sub.closed.Store(true)
		f.mu.Lock()
		delete(f.subs[ownerID], id)
		if len(f.subs[ownerID]) == 0 {
			delete(f.subs, ownerID)
		}
		f.mu.Unlock()
		metrics.ActiveSubscriptions.WithLabelValues(f.collection).Dec()
	})

	version := f.bump(ownerID)
	items, err := f.fetch(ctx, ownerID)
	f.deliver(sub, version, items, err)
	return s
}

// publish re-reads the owner's collection and pushes it to every subscriber.
func (f *feed[T]) publish(ctx context.Context, ownerID string) {
	f.mu.Lock()
	n := len(f.subs[ownerID])
	f.mu.Unlock()
	if n == 0 {
		return
	}

	version := f.bump(ownerID)
	items, err := f.fetch(ctx, ownerID)

	f.mu.Lock()
	targets := make([]*subscriber[T], 0, len(f.subs[ownerID]))
	for _, sub := range f.subs[ownerID] {
		targets = append(targets, sub)
	}
	f.mu.Unlock()

	for _, sub := range targets {
		f.deliver(sub, version, items, err)
	}
}

// publishAll refreshes every owner that currently has subscribers.
func (f *feed[T]) publishAll(ctx context.Context) {
	for _, ownerID := range f.owners() {
		f.publish(ctx, ownerID)
	}
}

func (f *feed[T]) owners() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	owners := make([]string, 0, len(f.subs))
	for ownerID := range f.subs {
		owners = append(owners, ownerID)
	}
	return owners
}

func (f *feed[T]) bump(ownerID string) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.versions[ownerID]++
	return f.versions[ownerID]
}

// deliver hands a snapshot to one subscriber. Snapshots older than the last
// one delivered are dropped so a slow fetch never overwrites a newer result.
func (f *feed[T]) deliver(sub *subscriber[T], version uint64, items []T, err error) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed.Load() || version <= sub.delivered {
		return
	}
	sub.delivered = version
	if err != nil {
		if sub.onError != nil {
			sub.onError(err)
		}
		return
	}
	snapshot := make([]T, len(items))
	copy(snapshot, items)
	metrics.SnapshotPushesTotal.WithLabelValues(f.collection).Inc()
	sub.onSnapshot(snapshot)
}

func (f *feed[T]) subscriberCount(ownerID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[ownerID])
}
