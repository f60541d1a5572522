package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GTDGit/catalog_api/internal/models"
)

// CatalogCache stores product details and category schemas as JSON.
//
// Keys:
//
//	catalog:product:{productId}          product detail
//	catalog:attrs:gen:{categoryId}       schema generation, no expiry
//	catalog:attrs:{categoryId}:{gen}     ordered attribute definitions
type CatalogCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewCatalogCache creates a new CatalogCache. A zero ttl keeps entries
// until they are deleted.
func NewCatalogCache(redis *RedisClient, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		redis: redis,
		ttl:   ttl,
	}
}

func (c *CatalogCache) keyProduct(id int64) string {
	return fmt.Sprintf("catalog:product:%d", id)
}

func (c *CatalogCache) keyAttributes(categoryID, gen int64) string {
	return fmt.Sprintf("catalog:attrs:%d:%d", categoryID, gen)
}

func (c *CatalogCache) keyAttributesGen(categoryID int64) string {
	return fmt.Sprintf("catalog:attrs:gen:%d", categoryID)
}

// GetProduct returns the cached detail of a product. found is false on a miss.
func (c *CatalogCache) GetProduct(ctx context.Context, id int64) (*models.ProductDetail, bool, error) {
	var detail models.ProductDetail
	found, err := c.get(ctx, c.keyProduct(id), &detail)
	if !found {
		return nil, false, err
	}
	return &detail, true, nil
}

// SetProduct caches a product detail.
func (c *CatalogCache) SetProduct(ctx context.Context, detail *models.ProductDetail) error {
	return c.set(ctx, c.keyProduct(detail.ID), detail)
}

// AttributesGeneration returns the current schema generation of a category.
// A category never invalidated is at generation 0.
func (c *CatalogCache) AttributesGeneration(ctx context.Context, categoryID int64) (int64, error) {
	raw, err := c.redis.Get(ctx, c.keyAttributesGen(categoryID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid schema generation %q: %w", raw, err)
	}
	return gen, nil
}

// GetAttributes returns the schema of a category cached at generation gen.
// found is false on a miss.
func (c *CatalogCache) GetAttributes(ctx context.Context, categoryID, gen int64) ([]models.AttributeDefinition, bool, error) {
	attrs := []models.AttributeDefinition{}
	found, err := c.get(ctx, c.keyAttributes(categoryID, gen), &attrs)
	if !found {
		return nil, false, err
	}
	return attrs, true, nil
}

// SetAttributes caches the schema of a category read at generation gen.
func (c *CatalogCache) SetAttributes(ctx context.Context, categoryID, gen int64, attrs []models.AttributeDefinition) error {
	return c.set(ctx, c.keyAttributes(categoryID, gen), attrs)
}

// InvalidateAttributes advances the schema generation of a category. Lists
// cached under older generations are never read again and expire with the TTL.
func (c *CatalogCache) InvalidateAttributes(ctx context.Context, categoryID int64) error {
	_, err := c.redis.Incr(ctx, c.keyAttributesGen(categoryID))
	return err
}

func (c *CatalogCache) get(ctx context.Context, key string, dest any) (bool, error) {
	jsonData, err := c.redis.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal([]byte(jsonData), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (c *CatalogCache) set(ctx context.Context, key string, value any) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return c.redis.Set(ctx, key, string(jsonData), c.ttl)
}
