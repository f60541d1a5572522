package service

import (
	"context"

	"github.com/GTDGit/catalog_api/internal/models"
)

// CatalogCache is the read cache in front of the catalog store. It is
// implemented by cache.CatalogCache; services treat a nil CatalogCache as
// disabled and a cache error as a miss.
//
// Attribute lists are cached per schema generation. InvalidateAttributes
// advances the generation, so a list read before a define can only be stored
// under a generation no reader asks for again.
type CatalogCache interface {
	GetProduct(ctx context.Context, id int64) (*models.ProductDetail, bool, error)
	SetProduct(ctx context.Context, detail *models.ProductDetail) error
	AttributesGeneration(ctx context.Context, categoryID int64) (int64, error)
	GetAttributes(ctx context.Context, categoryID, gen int64) ([]models.AttributeDefinition, bool, error)
	SetAttributes(ctx context.Context, categoryID, gen int64, attrs []models.AttributeDefinition) error
	InvalidateAttributes(ctx context.Context, categoryID int64) error
}
