package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/catalog_api/internal/models"
)

const attributeColumns = `id, category_id, name, data_type, is_required, options_json, sort_order, created_at`

// AttributeRepository handles data access for category attribute definitions.
type AttributeRepository struct {
	db sqlx.ExtContext
}

// NewAttributeRepository creates a new AttributeRepository.
func NewAttributeRepository(db *sqlx.DB) *AttributeRepository {
	return &AttributeRepository{db: db}
}

// Create inserts an attribute definition and returns its id.
func (r *AttributeRepository) Create(ctx context.Context, a *models.AttributeDefinition) (int64, error) {
	q := r.db.Rebind(`
        INSERT INTO attributes (category_id, name, data_type, is_required, options_json, sort_order)
        VALUES (?, ?, ?, ?, ?, ?)
        RETURNING id`)

	var id int64
	err := sqlx.GetContext(ctx, r.db, &id, q,
		a.CategoryID, a.Name, a.DataType, a.IsRequired, a.Options, a.SortOrder)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID returns an attribute definition by id or sql.ErrNoRows.
func (r *AttributeRepository) GetByID(ctx context.Context, id int64) (*models.AttributeDefinition, error) {
	q := r.db.Rebind(`SELECT ` + attributeColumns + ` FROM attributes WHERE id = ?`)

	var a models.AttributeDefinition
	if err := sqlx.GetContext(ctx, r.db, &a, q, id); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByCategory returns the schema of a category ordered by sort_order, then
// id. The result is never nil.
func (r *AttributeRepository) ListByCategory(ctx context.Context, categoryID int64) ([]models.AttributeDefinition, error) {
	q := r.db.Rebind(`
        SELECT ` + attributeColumns + `
        FROM attributes
        WHERE category_id = ?
        ORDER BY sort_order, id`)

	attrs := []models.AttributeDefinition{}
	if err := sqlx.SelectContext(ctx, r.db, &attrs, q, categoryID); err != nil {
		return nil, err
	}
	return attrs, nil
}
