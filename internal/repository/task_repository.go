package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's tasks in arrival order.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).
		Order("created_at ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, ownerID, taskID string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Where("owner_id = ? AND id = ?", ownerID, taskID).First(&task).Error
	switch {
	case err == nil:
		return &task, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, model.ErrTaskNotFound
	default:
		return nil, fmt.Errorf("find task: %w", err)
	}
}

// UpdateStatus writes the single status field.
func (r *TaskRepository) UpdateStatus(ctx context.Context, ownerID, taskID string, status model.Status) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("owner_id = ? AND id = ?", ownerID, taskID).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("update task status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrTaskNotFound
	}
	return nil
}

// Delete removes a task for the given owner.
func (r *TaskRepository) Delete(ctx context.Context, ownerID, taskID string) error {
	res := r.db.WithContext(ctx).Where("owner_id = ? AND id = ?", ownerID, taskID).Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrTaskNotFound
	}
	return nil
}
