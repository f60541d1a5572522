package service

import (
	"context"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/repository"
	"github.com/GTDGit/catalog_api/internal/testutil"
)

type attrKey struct {
	categoryID int64
	gen        int64
}

type fakeCache struct {
	mu       sync.Mutex
	products map[int64]*models.ProductDetail
	attrs    map[attrKey][]models.AttributeDefinition
	gens     map[int64]int64

	productHits int
	attrHits    int
	invalidated []int64

	// beforeSetAttributes runs once, unlocked, ahead of the next SetAttributes.
	beforeSetAttributes func()
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		products: map[int64]*models.ProductDetail{},
		attrs:    map[attrKey][]models.AttributeDefinition{},
		gens:     map[int64]int64{},
	}
}

func (f *fakeCache) GetProduct(_ context.Context, id int64) (*models.ProductDetail, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.products[id]
	if ok {
		f.productHits++
	}
	return d, ok, nil
}

func (f *fakeCache) SetProduct(_ context.Context, detail *models.ProductDetail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[detail.ID] = detail
	return nil
}

func (f *fakeCache) AttributesGeneration(_ context.Context, categoryID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gens[categoryID], nil
}

func (f *fakeCache) GetAttributes(_ context.Context, categoryID, gen int64) ([]models.AttributeDefinition, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attrs[attrKey{categoryID, gen}]
	if ok {
		f.attrHits++
	}
	return a, ok, nil
}

func (f *fakeCache) SetAttributes(_ context.Context, categoryID, gen int64, attrs []models.AttributeDefinition) error {
	f.mu.Lock()
	hook := f.beforeSetAttributes
	f.beforeSetAttributes = nil
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.attrs[attrKey{categoryID, gen}] = attrs
	return nil
}

func (f *fakeCache) InvalidateAttributes(_ context.Context, categoryID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gens[categoryID]++
	f.invalidated = append(f.invalidated, categoryID)
	return nil
}

type fixture struct {
	db         *sqlx.DB
	categories *CategoryService
	attributes *AttributeService
	products   *ProductService
}

// newFixture wires the services over a fresh in-memory store. cache may be nil.
func newFixture(t *testing.T, strict bool, cache CatalogCache) *fixture {
	t.Helper()
	return newFixtureWithDB(t, testutil.NewDB(t), strict, cache)
}

func newFixtureWithDB(t *testing.T, db *sqlx.DB, strict bool, cache CatalogCache) *fixture {
	t.Helper()
	categoryRepo := repository.NewCategoryRepository(db)
	attributeRepo := repository.NewAttributeRepository(db)
	productRepo := repository.NewProductRepository(db)

	return &fixture{
		db:         db,
		categories: NewCategoryService(categoryRepo),
		attributes: NewAttributeService(attributeRepo, cache),
		products:   NewProductService(db, categoryRepo, attributeRepo, productRepo, cache, strict),
	}
}

func (f *fixture) category(t *testing.T, name string) int64 {
	t.Helper()
	c, err := f.categories.Create(context.Background(), CreateCategoryRequest{Name: name})
	require.NoError(t, err)
	return c.ID
}

func (f *fixture) define(t *testing.T, categoryID int64, req DefineAttributeRequest) *models.AttributeDefinition {
	t.Helper()
	def, err := f.attributes.Define(context.Background(), categoryID, req)
	require.NoError(t, err)
	return def
}

func (f *fixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

func (f *fixture) countValues(t *testing.T, productID int64) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.Get(&n, f.db.Rebind(`SELECT COUNT(*) FROM product_attribute_values WHERE product_id = ?`), productID))
	return n
}
