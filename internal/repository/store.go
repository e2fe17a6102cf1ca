package repository

import (
	"context"

	"taskboard/internal/model"
)

// TaskStore is the write and query contract of the Tasks collection.
// Every call is scoped to one owner.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	ListByOwner(ctx context.Context, ownerID string) ([]model.Task, error)
	FindByID(ctx context.Context, ownerID, taskID string) (*model.Task, error)
	UpdateStatus(ctx context.Context, ownerID, taskID string, status model.Status) error
	Delete(ctx context.Context, ownerID, taskID string) error
}

// CategoryStore is the write and query contract of the Category collection.
// Categories are append-only.
type CategoryStore interface {
	Create(ctx context.Context, category *model.Category) error
	ListByOwner(ctx context.Context, ownerID string) ([]model.Category, error)
	FindByID(ctx context.Context, ownerID, categoryID string) (*model.Category, error)
}

var (
	_ TaskStore     = (*TaskRepository)(nil)
	_ CategoryStore = (*CategoryRepository)(nil)
)
