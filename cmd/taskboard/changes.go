package main

import (
	"context"
	"time"

	"taskboard/internal/livequery"
	"taskboard/internal/logger"
	"taskboard/internal/repository/mongodb"
	"taskboard/internal/service"
)

// followChanges pushes writes made by other clients of the document store to
// live subscribers. It prefers the change stream and falls back to polling
// every interval when the server cannot provide one.
func followChanges(ctx context.Context, src *backend, hub *livequery.Hub, scheduler *service.SchedulerService, interval time.Duration, log *logger.Logger) {
	if src.documents == nil {
		return
	}
	err := mongodb.Watch(ctx, src.documents, func(change mongodb.Change) {
		applyChange(ctx, hub, change)
	})
	if err == nil || ctx.Err() != nil {
		return
	}
	if interval <= 0 {
		log.Warnw("change stream unavailable, live views only see local writes", "error", err)
		return
	}
	log.Warnw("change stream unavailable, polling instead", "error", err, "interval", interval)
	if _, err := scheduler.ScheduleInterval(interval, func() {
		pollCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		hub.Refresh(pollCtx)
	}); err != nil {
		log.Errorw("schedule change polling", "error", err)
	}
}

func applyChange(ctx context.Context, hub *livequery.Hub, change mongodb.Change) {
	switch change.Collection {
	case mongodb.TasksCollection:
		hub.TasksChanged(ctx, change.OwnerID)
	case mongodb.CategoriesCollection:
		hub.CategoriesChanged(ctx, change.OwnerID)
	default:
		hub.Refresh(ctx)
	}
}
