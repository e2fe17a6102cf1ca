package service

import (
	"context"
	"strings"

	"taskboard/internal/logger"
	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// CategoryService provides helpers around categories.
type CategoryService struct {
	repo repository.CategoryStore
	log  *logger.Logger
}

func NewCategoryService(repo repository.CategoryStore, log *logger.Logger) *CategoryService {
	return &CategoryService{repo: repo, log: log.WithComponent("categories")}
}

// CreateCategory writes a category. A blank name is ignored without an
// error: no write happens and nil is returned. Duplicate names are allowed.
func (s *CategoryService) CreateCategory(ctx context.Context, ownerID, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" || ownerID == "" {
		return nil, nil
	}
	category := model.Category{OwnerID: ownerID, Name: name}
	if err := s.repo.Create(ctx, &category); err != nil {
		return nil, err
	}
	s.log.LogUserAction(ownerID, "create_category", map[string]interface{}{"category_id": category.ID})
	return &category, nil
}
