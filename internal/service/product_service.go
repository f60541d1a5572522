package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/GTDGit/catalog_api/internal/codec"
	"github.com/GTDGit/catalog_api/internal/database"
	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/repository"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// AttributeInput is one submitted (attribute, raw value) pair.
type AttributeInput struct {
	AttributeID int64  `json:"attributeId"`
	Value       string `json:"value"`
}

// CreateProductRequest represents the request to create a product with its
// attribute values.
type CreateProductRequest struct {
	Name        string           `json:"name"`
	SKU         string           `json:"sku"`
	Price       float64          `json:"price"`
	Description string           `json:"description"`
	Attributes  []AttributeInput `json:"attributes"`
}

// MaxPrice is the largest price the NUMERIC(12, 2) price column holds.
const MaxPrice = 9999999999.99

// ProductService creates products atomically with their attribute values and
// assembles product details.
type ProductService struct {
	db         *sqlx.DB
	categories *repository.CategoryRepository
	attributes *repository.AttributeRepository
	products   *repository.ProductRepository
	cache      CatalogCache
	strict     bool

	sfGroup singleflight.Group
}

// NewProductService creates a new ProductService. In strict mode submitted
// values are checked against the category schema before anything is written.
// cache may be nil.
func NewProductService(
	db *sqlx.DB,
	categories *repository.CategoryRepository,
	attributes *repository.AttributeRepository,
	products *repository.ProductRepository,
	cache CatalogCache,
	strict bool,
) *ProductService {
	return &ProductService{
		db:         db,
		categories: categories,
		attributes: attributes,
		products:   products,
		cache:      cache,
		strict:     strict,
	}
}

// Create stores a product and one value row per submitted attribute in a
// single transaction and returns the stored product without attributes.
// Nothing is persisted unless every write succeeds.
func (s *ProductService) Create(ctx context.Context, categoryID int64, req CreateProductRequest) (*models.Product, error) {
	name, err := validateProductRequest(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFoundError("category not found")
		}
		return nil, utils.PersistenceError("failed to get category", err)
	}

	if s.strict {
		schema, err := s.attributes.ListByCategory(ctx, categoryID)
		if err != nil {
			return nil, utils.PersistenceError("failed to load category attributes", err)
		}
		if err := checkAgainstSchema(schema, req.Attributes); err != nil {
			return nil, err
		}
	}

	var created *models.Product
	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := s.products.WithTx(tx)

		id, err := repo.Create(ctx, &models.Product{
			CategoryID:  categoryID,
			Name:        name,
			SKU:         optionalString(req.SKU),
			Price:       req.Price,
			Description: optionalString(req.Description),
		})
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}

		for _, a := range req.Attributes {
			v := models.AttributeValue{ProductID: id, AttributeID: a.AttributeID, Value: a.Value}
			if err := repo.InsertValue(ctx, v); err != nil {
				return fmt.Errorf("insert value for attribute %d: %w", a.AttributeID, err)
			}
		}

		created, err = repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("read product %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Int64("category_id", categoryID).Msg("product creation rolled back")
		if database.IsConstraintViolation(err) {
			return nil, utils.PersistenceError("product violates a storage constraint", err)
		}
		return nil, utils.PersistenceError("failed to create product", err)
	}

	log.Info().
		Int64("product_id", created.ID).
		Int64("category_id", categoryID).
		Int("attributes", len(req.Attributes)).
		Msg("product created")
	return created, nil
}

// Get returns the product with its attribute values ordered by the attributes'
// display order. Concurrent misses for the same product share one store read.
func (s *ProductService) Get(ctx context.Context, id int64) (*models.ProductDetail, error) {
	if s.cache != nil {
		detail, found, err := s.cache.GetProduct(ctx, id)
		if err != nil {
			log.Warn().Err(err).Int64("product_id", id).Msg("product cache read failed")
		}
		if found {
			return detail, nil
		}
	}

	// The shared read outlives any single caller; one client going away must
	// not fail the others joined to it.
	shared := context.WithoutCancel(ctx)
	val, err, _ := s.sfGroup.Do(strconv.FormatInt(id, 10), func() (any, error) {
		return s.assemble(shared, id)
	})
	if err != nil {
		return nil, err
	}
	detail := val.(*models.ProductDetail)

	if s.cache != nil {
		if err := s.cache.SetProduct(ctx, detail); err != nil {
			log.Warn().Err(err).Int64("product_id", id).Msg("failed to cache product")
		}
	}
	return detail, nil
}

func (s *ProductService) assemble(ctx context.Context, id int64) (*models.ProductDetail, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFoundError("product not found")
		}
		return nil, utils.PersistenceError("failed to get product", err)
	}

	values, err := s.products.ListValues(ctx, id)
	if err != nil {
		return nil, utils.PersistenceError("failed to get product attributes", err)
	}
	return &models.ProductDetail{Product: *p, Attributes: values}, nil
}

// ListByCategory returns the products of a category, newest first.
func (s *ProductService) ListByCategory(ctx context.Context, categoryID int64) ([]models.Product, error) {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFoundError("category not found")
		}
		return nil, utils.PersistenceError("failed to get category", err)
	}

	list, err := s.products.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, utils.PersistenceError("failed to list products", err)
	}
	return list, nil
}

// validateProductRequest checks the request shape without touching the store
// and returns the trimmed product name.
func validateProductRequest(req CreateProductRequest) (string, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", utils.ValidationError("product name is required")
	}
	if req.Price < 0 {
		return "", utils.ValidationError("price must not be negative")
	}
	if req.Price > MaxPrice {
		return "", utils.ValidationError(fmt.Sprintf("price must not exceed %.2f", MaxPrice))
	}

	seen := make(map[int64]struct{}, len(req.Attributes))
	for _, a := range req.Attributes {
		if a.AttributeID <= 0 {
			return "", utils.ValidationError(fmt.Sprintf("invalid attribute id %d", a.AttributeID))
		}
		if _, dup := seen[a.AttributeID]; dup {
			return "", utils.ValidationError(fmt.Sprintf("attribute %d submitted more than once", a.AttributeID))
		}
		seen[a.AttributeID] = struct{}{}
	}
	return name, nil
}

// checkAgainstSchema rejects values for attributes outside the schema, values
// their data type does not accept and required attributes left empty.
func checkAgainstSchema(schema []models.AttributeDefinition, inputs []AttributeInput) error {
	byID := make(map[int64]models.AttributeDefinition, len(schema))
	for _, def := range schema {
		byID[def.ID] = def
	}

	submitted := make(map[int64]string, len(inputs))
	for _, in := range inputs {
		def, ok := byID[in.AttributeID]
		if !ok {
			return utils.ValidationError(fmt.Sprintf("attribute %d does not belong to this category", in.AttributeID))
		}
		if err := codec.Validate(def, in.Value); err != nil {
			return utils.ValidationError(fmt.Sprintf("%s: %v", def.Name, err))
		}
		submitted[in.AttributeID] = in.Value
	}

	for _, def := range schema {
		if def.IsRequired && strings.TrimSpace(submitted[def.ID]) == "" {
			return utils.ValidationError(fmt.Sprintf("%s is required", def.Name))
		}
	}
	return nil
}
