package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/catalog_api/internal/models"
)

const productColumns = `id, category_id, name, sku, price, description, created_at`

// ProductRepository handles data access for products and their attribute values.
type ProductRepository struct {
	db sqlx.ExtContext
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithTx returns a repository bound to tx. Every call on it runs on the
// transaction's connection.
func (r *ProductRepository) WithTx(tx *sqlx.Tx) *ProductRepository {
	return &ProductRepository{db: tx}
}

// Create inserts a product row and returns the generated id.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) (int64, error) {
	q := r.db.Rebind(`
        INSERT INTO products (category_id, name, sku, price, description)
        VALUES (?, ?, ?, ?, ?)
        RETURNING id`)

	var id int64
	if err := sqlx.GetContext(ctx, r.db, &id, q, p.CategoryID, p.Name, p.SKU, p.Price, p.Description); err != nil {
		return 0, err
	}
	return id, nil
}

// InsertValue stores one attribute value for a product.
func (r *ProductRepository) InsertValue(ctx context.Context, v models.AttributeValue) error {
	q := r.db.Rebind(`INSERT INTO product_attribute_values (product_id, attribute_id, value) VALUES (?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, q, v.ProductID, v.AttributeID, v.Value)
	return err
}

// GetByID returns a single product by id or sql.ErrNoRows.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	q := r.db.Rebind(`SELECT ` + productColumns + ` FROM products WHERE id = ?`)

	var p models.Product
	if err := sqlx.GetContext(ctx, r.db, &p, q, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByCategory returns the products of a category, newest first.
func (r *ProductRepository) ListByCategory(ctx context.Context, categoryID int64) ([]models.Product, error) {
	q := r.db.Rebind(`SELECT ` + productColumns + ` FROM products WHERE category_id = ? ORDER BY id DESC`)

	products := []models.Product{}
	if err := sqlx.SelectContext(ctx, r.db, &products, q, categoryID); err != nil {
		return nil, err
	}
	return products, nil
}

// ListValues returns the stored values of a product joined with their
// attribute definitions, ordered by the attribute's sort_order then id.
func (r *ProductRepository) ListValues(ctx context.Context, productID int64) ([]models.AttributeValueDetail, error) {
	q := r.db.Rebind(`
        SELECT v.product_id, v.attribute_id, v.value, a.name AS attr_name, a.data_type
        FROM product_attribute_values v
        JOIN attributes a ON a.id = v.attribute_id
        WHERE v.product_id = ?
        ORDER BY a.sort_order, a.id`)

	values := []models.AttributeValueDetail{}
	if err := sqlx.SelectContext(ctx, r.db, &values, q, productID); err != nil {
		return nil, err
	}
	return values, nil
}
