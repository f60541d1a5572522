package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/catalog_api/internal/models"
)

// CategoryRepository handles data access for categories.
type CategoryRepository struct {
	db sqlx.ExtContext
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a category and returns its id.
func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) (int64, error) {
	q := r.db.Rebind(`INSERT INTO categories (name, description) VALUES (?, ?) RETURNING id`)

	var id int64
	if err := sqlx.GetContext(ctx, r.db, &id, q, c.Name, c.Description); err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID returns a category by id or sql.ErrNoRows.
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	q := r.db.Rebind(`SELECT id, name, description, created_at FROM categories WHERE id = ?`)

	var c models.Category
	if err := sqlx.GetContext(ctx, r.db, &c, q, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by id.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	const q = `SELECT id, name, description, created_at FROM categories ORDER BY id`

	categories := []models.Category{}
	if err := sqlx.SelectContext(ctx, r.db, &categories, q); err != nil {
		return nil, err
	}
	return categories, nil
}
