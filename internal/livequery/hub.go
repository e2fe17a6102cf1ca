// Package livequery turns the request/response stores into owner-scoped live
// queries: a subscriber receives the full result set on subscribe and again
// after every change to the owner's documents. Writes made through the hub
// publish directly; writes made by other clients reach the hub through
// TasksChanged, CategoriesChanged or Refresh.
//
// Snapshot callbacks run on the goroutine that performed the write or
// reported the change (or the subscribing goroutine for the first snapshot).
// They must not write through the hub themselves.
package livequery

import (
	"context"
	"sync"

	"taskboard/internal/metrics"
	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// Hub owns the live feeds of both collections.
type Hub struct {
	tasks      repository.TaskStore
	categories repository.CategoryStore

	taskFeed     *feed[model.Task]
	categoryFeed *feed[model.Category]
}

func NewHub(tasks repository.TaskStore, categories repository.CategoryStore) *Hub {
	return &Hub{
		tasks:        tasks,
		categories:   categories,
		taskFeed:     newFeed[model.Task]("tasks", tasks.ListByOwner),
		categoryFeed: newFeed[model.Category]("categories", categories.ListByOwner),
	}
}

// SubscribeTasks delivers the owner's tasks now and after every change.
func (h *Hub) SubscribeTasks(ctx context.Context, ownerID string, onSnapshot func([]model.Task), onError func(error)) *Subscription {
	return h.taskFeed.subscribe(ctx, ownerID, onSnapshot, onError)
}

// SubscribeCategories delivers the owner's categories now and after every change.
func (h *Hub) SubscribeCategories(ctx context.Context, ownerID string, onSnapshot func([]model.Category), onError func(error)) *Subscription {
	return h.categoryFeed.subscribe(ctx, ownerID, onSnapshot, onError)
}

// Tasks returns the task store whose writes are pushed to subscribers.
func (h *Hub) Tasks() repository.TaskStore {
	return &taskWriter{TaskStore: h.tasks, feed: h.taskFeed}
}

// Categories returns the category store whose writes are pushed to subscribers.
func (h *Hub) Categories() repository.CategoryStore {
	return &categoryWriter{CategoryStore: h.categories, feed: h.categoryFeed}
}

// TasksChanged pushes fresh task snapshots after a change made outside the
// hub. An empty ownerID refreshes every owner with live subscribers.
func (h *Hub) TasksChanged(ctx context.Context, ownerID string) {
	if ownerID == "" {
		h.taskFeed.publishAll(ctx)
		return
	}
	h.taskFeed.publish(ctx, ownerID)
}

// CategoriesChanged is TasksChanged for categories.
func (h *Hub) CategoriesChanged(ctx context.Context, ownerID string) {
	if ownerID == "" {
		h.categoryFeed.publishAll(ctx)
		return
	}
	h.categoryFeed.publish(ctx, ownerID)
}

// Refresh re-reads both collections for every subscribed owner.
func (h *Hub) Refresh(ctx context.Context) {
	h.taskFeed.publishAll(ctx)
	h.categoryFeed.publishAll(ctx)
}

// Subscription cancels a live query. Unsubscribe is idempotent; once it
// returns no new snapshot delivery starts.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// NewSubscription wraps a cancel func.
func NewSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

func (s *Subscription) Unsubscribe() {
	if s == nil || s.cancel == nil {
		return
	}
	s.once.Do(s.cancel)
}

type taskWriter struct {
	repository.TaskStore
	feed *feed[model.Task]
}

func (w *taskWriter) Create(ctx context.Context, task *model.Task) error {
	err := w.TaskStore.Create(ctx, task)
	metrics.StoreWritesTotal.WithLabelValues("tasks", "create", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	w.feed.publish(context.WithoutCancel(ctx), task.OwnerID)
	return nil
}

func (w *taskWriter) UpdateStatus(ctx context.Context, ownerID, taskID string, status model.Status) error {
	err := w.TaskStore.UpdateStatus(ctx, ownerID, taskID, status)
	metrics.StoreWritesTotal.WithLabelValues("tasks", "update", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	w.feed.publish(context.WithoutCancel(ctx), ownerID)
	return nil
}

func (w *taskWriter) Delete(ctx context.Context, ownerID, taskID string) error {
	err := w.TaskStore.Delete(ctx, ownerID, taskID)
	metrics.StoreWritesTotal.WithLabelValues("tasks", "delete", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	w.feed.publish(context.WithoutCancel(ctx), ownerID)
	return nil
}

type categoryWriter struct {
	repository.CategoryStore
	feed *feed[model.Category]
}

func (w *categoryWriter) Create(ctx context.Context, category *model.Category) error {
	err := w.CategoryStore.Create(ctx, category)
	metrics.StoreWritesTotal.WithLabelValues("categories", "create", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	w.feed.publish(context.WithoutCancel(ctx), category.OwnerID)
	return nil
}
