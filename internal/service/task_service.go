package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"taskboard/internal/logger"
	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title      string `validate:"required"`
	CategoryID string `validate:"required"`
	DueDate    *time.Time
}

// TransitionResult describes an applied workflow action.
type TransitionResult struct {
	Task    model.Task
	Action  model.Action
	Status  model.Status
	Removed bool
}

// TaskService wraps task-related business logic.
type TaskService struct {
	tasks      repository.TaskStore
	categories repository.CategoryStore
	validate   *validator.Validate
	log        *logger.Logger
}

func NewTaskService(tasks repository.TaskStore, categories repository.CategoryStore, log *logger.Logger) *TaskService {
	return &TaskService{
		tasks:      tasks,
		categories: categories,
		validate:   validator.New(),
		log:        log.WithComponent("tasks"),
	}
}

// CreateTask validates the input and writes a new pending task. Nothing is
// written when the title is blank or no category is chosen.
func (s *TaskService) CreateTask(ctx context.Context, ownerID string, input TaskInput) (*model.Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.CategoryID = strings.TrimSpace(input.CategoryID)
	if err := s.validate.Struct(input); err != nil {
		return nil, inputError(err)
	}

	category, err := s.categories.FindByID(ctx, ownerID, input.CategoryID)
	if err != nil {
		return nil, err
	}

	task := model.Task{
		OwnerID:      ownerID,
		CategoryID:   category.ID,
		CategoryName: category.Name,
		Title:        input.Title,
		DueDate:      input.DueDate,
		Status:       model.StatusPending,
	}
	if err := s.tasks.Create(ctx, &task); err != nil {
		return nil, err
	}

	s.log.LogUserAction(ownerID, "create_task", map[string]interface{}{"task_id": task.ID, "category": category.Name})
	return &task, nil
}

// Apply runs a workflow action on a task: start and complete write the
// status field only, delete removes the task.
func (s *TaskService) Apply(ctx context.Context, ownerID, taskID string, action model.Action) (*TransitionResult, error) {
	task, err := s.tasks.FindByID(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	next, removed, err := model.NextStatus(task.Status, action)
	if err != nil {
		return nil, err
	}

	if removed {
		err = s.tasks.Delete(ctx, ownerID, taskID)
	} else {
		err = s.tasks.UpdateStatus(ctx, ownerID, taskID, next)
	}
	if err != nil {
		return nil, fmt.Errorf("%s task: %w", action, err)
	}

	s.log.LogUserAction(ownerID, string(action), map[string]interface{}{"task_id": taskID, "status": next.String()})
	return &TransitionResult{Task: *task, Action: action, Status: next, Removed: removed}, nil
}

func inputError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	switch verrs[0].Field() {
	case "Title":
		return model.ErrTitleRequired
	case "CategoryID":
		return model.ErrCategoryRequired
	default:
		return err
	}
}
