package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/repository"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// CreateCategoryRequest represents the request to create a category.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CategoryService handles category CRUD.
type CategoryService struct {
	repo *repository.CategoryRepository
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// Create validates and stores a category.
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, utils.ValidationError("category name is required")
	}

	id, err := s.repo.Create(ctx, &models.Category{Name: name, Description: optionalString(req.Description)})
	if err != nil {
		return nil, utils.PersistenceError("failed to create category", err)
	}
	return s.Get(ctx, id)
}

// List returns all categories ordered by id.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, utils.PersistenceError("failed to list categories", err)
	}
	return list, nil
}

// Get returns a category or a not found error.
func (s *CategoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFoundError("category not found")
		}
		return nil, utils.PersistenceError("failed to get category", err)
	}
	return c, nil
}

// optionalString maps blank input to an absent column value.
func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
