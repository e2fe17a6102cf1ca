package store

import (
	"context"
	"errors"
	"sync"

	"taskboard/internal/livequery"
	"taskboard/internal/logger"
	"taskboard/internal/model"
)

var ErrNoSession = errors.New("no authenticated user")

// Source is the live query side of the data source.
type Source interface {
	SubscribeTasks(ctx context.Context, ownerID string, onSnapshot func([]model.Task), onError func(error)) *livequery.Subscription
	SubscribeCategories(ctx context.Context, ownerID string, onSnapshot func([]model.Category), onError func(error)) *livequery.Subscription
}

// Mirror is the always-current copy of one owner's tasks and categories.
type Mirror struct {
	OwnerID    string
	Tasks      *Store[model.Task]
	Categories *Store[model.Category]

	log *logger.Logger

	mu      sync.Mutex
	loadErr error
	failed  bool
	closed  bool
	taskSub *livequery.Subscription
	catSub  *livequery.Subscription
}

// Attach subscribes to both collections for ownerID. No subscription is made
// without an owner.
func Attach(ctx context.Context, src Source, ownerID string, log *logger.Logger) (*Mirror, error) {
	if ownerID == "" {
		return nil, ErrNoSession
	}
	m := &Mirror{
		OwnerID:    ownerID,
		Tasks:      New[model.Task](),
		Categories: New[model.Category](),
		log:        log.WithComponent("mirror").WithUserID(ownerID),
	}

	taskSub := src.SubscribeTasks(ctx, ownerID, m.Tasks.Set, m.onTasksError)
	catSub := src.SubscribeCategories(ctx, ownerID, m.Categories.Set, m.onCategoriesError)

	m.mu.Lock()
	m.taskSub, m.catSub = taskSub, catSub
	m.mu.Unlock()
	return m, nil
}

// Loading is true until the first task snapshot or a task subscription
// failure. Categories never hold the screen in a loading state.
func (m *Mirror) Loading() bool {
	m.mu.Lock()
	failed := m.failed
	m.mu.Unlock()
	return !failed && !m.Tasks.Loaded()
}

// Err returns the last subscription failure, if any.
func (m *Mirror) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadErr
}

// Close tears down both subscriptions. Safe to call more than once.
func (m *Mirror) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	taskSub, catSub := m.taskSub, m.catSub
	m.mu.Unlock()

	taskSub.Unsubscribe()
	catSub.Unsubscribe()
}

func (m *Mirror) onTasksError(err error) {
	m.log.Errorw("task subscription failed", "error", err)
	m.mu.Lock()
	m.failed = true
	m.loadErr = err
	m.mu.Unlock()
}

func (m *Mirror) onCategoriesError(err error) {
	m.log.Errorw("category subscription failed", "error", err)
	m.mu.Lock()
	m.loadErr = err
	m.mu.Unlock()
}
