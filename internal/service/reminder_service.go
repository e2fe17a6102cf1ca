package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskboard/internal/dates"
	"taskboard/internal/dedup"
	"taskboard/internal/logger"
	"taskboard/internal/metrics"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/view"
)

const deadlineTitle = "🚨 Deadline Hari Ini"

// NotificationSender delivers a local notification to the owner right away.
type NotificationSender interface {
	Schedule(ctx context.Context, ownerID, title, body string) error
}

// BoundUsers lists users that currently have a session.
type BoundUsers interface {
	ListBound(ctx context.Context) ([]model.User, error)
}

// ReminderService schedules deadline notifications for unfinished tasks due
// today. Each (task, day) pair is notified at most once.
type ReminderService struct {
	tasks  repository.TaskStore
	users  BoundUsers
	sender NotificationSender
	ledger dedup.Ledger
	log    *logger.Logger
}

func NewReminderService(tasks repository.TaskStore, users BoundUsers, sender NotificationSender, ledger dedup.Ledger, log *logger.Logger) *ReminderService {
	return &ReminderService{
		tasks:  tasks,
		users:  users,
		sender: sender,
		ledger: ledger,
		log:    log.WithComponent("reminders"),
	}
}

// SetSender replaces the notification sender. The bot registers itself here
// once it is built.
func (s *ReminderService) SetSender(sender NotificationSender) {
	s.sender = sender
}

// Scan schedules a notification for every task in the snapshot that is due
// today and not done. It returns how many were scheduled.
func (s *ReminderService) Scan(ctx context.Context, ownerID string, tasks []model.Task, now time.Time) (int, error) {
	if len(tasks) == 0 || s.sender == nil {
		return 0, nil
	}

	day := dates.DayKey(now, now.Location())
	scheduled := 0
	var errs []error
	for _, task := range view.DueToday(tasks, now) {
		key := dedup.Key(task.ID, day)
		fresh, err := s.ledger.Claim(ctx, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !fresh {
			metrics.NotificationsTotal.WithLabelValues("duplicate").Inc()
			continue
		}

		if err := s.sender.Schedule(ctx, ownerID, deadlineTitle, deadlineBody(task)); err != nil {
			metrics.NotificationsTotal.WithLabelValues("failed").Inc()
			s.log.Warnw("deadline notification failed", "user_id", ownerID, "task_id", task.ID, "error", err)
			if rerr := s.ledger.Release(ctx, key); rerr != nil {
				s.log.Warnw("release notification key", "key", key, "error", rerr)
			}
			errs = append(errs, fmt.Errorf("notify task %s: %w", task.ID, err))
			continue
		}
		metrics.NotificationsTotal.WithLabelValues("scheduled").Inc()
		scheduled++
	}
	return scheduled, errors.Join(errs...)
}

// Sweep scans every signed-in user's tasks. Used by the periodic job so
// users are reminded even when their tasks do not change.
func (s *ReminderService) Sweep(ctx context.Context, now time.Time) error {
	users, err := s.users.ListBound(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		tasks, err := s.tasks.ListByOwner(ctx, user.ID)
		if err != nil {
			s.log.Warnw("list tasks for sweep", "user_id", user.ID, "error", err)
			continue
		}
		if n, err := s.Scan(ctx, user.ID, tasks, now); err != nil {
			s.log.Warnw("sweep scan", "user_id", user.ID, "error", err)
		} else if n > 0 {
			s.log.Infow("deadline notifications scheduled", "user_id", user.ID, "count", n)
		}
	}
	return nil
}

func deadlineBody(task model.Task) string {
	title := strings.TrimSpace(task.Title)
	if title == "" {
		title = "Tugas"
	}
	return fmt.Sprintf("%s belum selesai, segera kerjakan!", title)
}
