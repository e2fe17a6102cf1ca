package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"taskboard/internal/dates"
	"taskboard/internal/model"
)

// taskDocument mirrors a stored task. Date is left untyped because older
// documents carry it as a timestamp object, a number or a string.
type taskDocument struct {
	ID           string      `bson:"_id"`
	Title        string      `bson:"tugas"`
	CategoryName string      `bson:"category"`
	CategoryID   string      `bson:"categoryId,omitempty"`
	Date         interface{} `bson:"date"`
	Status       string      `bson:"status"`
	OwnerID      string      `bson:"uid"`
	CreatedAt    time.Time   `bson:"createdAt"`
}

func (d taskDocument) toModel(loc *time.Location) model.Task {
	task := model.Task{
		ID:           d.ID,
		OwnerID:      d.OwnerID,
		CategoryID:   d.CategoryID,
		CategoryName: d.CategoryName,
		Title:        d.Title,
		Status:       model.ParseStatus(d.Status),
		CreatedAt:    d.CreatedAt,
	}
	if due, ok := dates.ToTime(d.Date, loc); ok {
		task.DueDate = &due
	}
	return task
}

// TaskRepository implements repository.TaskStore on a mongo collection.
// Date strings without an offset are read in loc.
type TaskRepository struct {
	collection *mongo.Collection
	loc        *time.Location
}

func NewTaskRepository(db *mongo.Database, loc *time.Location) *TaskRepository {
	if loc == nil {
		loc = time.Local
	}
	return &TaskRepository{collection: db.Collection(TasksCollection), loc: loc}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	doc := taskDocument{
		ID:           task.ID,
		Title:        task.Title,
		CategoryName: task.CategoryName,
		CategoryID:   task.CategoryID,
		Status:       task.Status.Label(),
		OwnerID:      task.OwnerID,
		CreatedAt:    task.CreatedAt,
	}
	if task.DueDate != nil {
		doc.Date = *task.DueDate
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Task, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"uid": ownerID}, arrivalOrder())
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	tasks := make([]model.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.toModel(r.loc))
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, ownerID, taskID string) (*model.Task, error) {
	var doc taskDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": taskID, "uid": ownerID}).Decode(&doc)
	switch {
	case err == nil:
		task := doc.toModel(r.loc)
		return &task, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, model.ErrTaskNotFound
	default:
		return nil, fmt.Errorf("find task: %w", err)
	}
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, ownerID, taskID string, status model.Status) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": taskID, "uid": ownerID},
		bson.M{"$set": bson.M{"status": status.Label()}},
	)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, ownerID, taskID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": taskID, "uid": ownerID})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return model.ErrTaskNotFound
	}
	return nil
}
