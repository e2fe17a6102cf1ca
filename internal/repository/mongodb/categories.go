package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"taskboard/internal/model"
)

type categoryDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"category"`
	OwnerID   string    `bson:"uid"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (d categoryDocument) toModel() model.Category {
	return model.Category{ID: d.ID, OwnerID: d.OwnerID, Name: d.Name, CreatedAt: d.CreatedAt}
}

// CategoryRepository implements repository.CategoryStore on a mongo collection.
type CategoryRepository struct {
	collection *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{collection: db.Collection(CategoriesCollection)}
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now()
	}
	doc := categoryDocument{
		ID:        category.ID,
		Name:      category.Name,
		OwnerID:   category.OwnerID,
		CreatedAt: category.CreatedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Category, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"uid": ownerID}, arrivalOrder())
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []categoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	categories := make([]model.Category, 0, len(docs))
	for _, d := range docs {
		categories = append(categories, d.toModel())
	}
	return categories, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, ownerID, categoryID string) (*model.Category, error) {
	var doc categoryDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": categoryID, "uid": ownerID}).Decode(&doc)
	switch {
	case err == nil:
		category := doc.toModel()
		return &category, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, model.ErrCategoryNotFound
	default:
		return nil, fmt.Errorf("find category: %w", err)
	}
}
