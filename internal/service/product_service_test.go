package service

import (
	"context"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/catalog_api/internal/codec"
	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// shoes defines the Shoes category with a required Size enum and an optional
// Weight number.
func shoes(t *testing.T, f *fixture) (catID int64, size, weight *models.AttributeDefinition) {
	t.Helper()
	catID = f.category(t, "Shoes")
	size = f.define(t, catID, DefineAttributeRequest{
		Name: "Size", DataType: models.DataTypeEnum, IsRequired: true,
		Options: []string{"40", "41", "42"}, SortOrder: 1,
	})
	weight = f.define(t, catID, DefineAttributeRequest{
		Name: "Weight", DataType: models.DataTypeNumber, SortOrder: 2,
	})
	return catID, size, weight
}

func TestProductServiceCreateAndGet(t *testing.T) {
	f := newFixture(t, true, nil)
	ctx := context.Background()
	catID, size, weight := shoes(t, f)

	p, err := f.products.Create(ctx, catID, CreateProductRequest{
		Name:  " Runner ",
		SKU:   "RUN-42",
		Price: 59.5,
		Attributes: []AttributeInput{
			{AttributeID: weight.ID, Value: "0.8"},
			{AttributeID: size.ID, Value: "42"},
		},
	})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "Runner", p.Name)
	assert.Equal(t, catID, p.CategoryID)
	assert.Equal(t, 59.5, p.Price)
	require.NotNil(t, p.SKU)
	assert.Equal(t, "RUN-42", *p.SKU)
	assert.Nil(t, p.Description)

	detail, err := f.products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, *p, detail.Product)
	require.Len(t, detail.Attributes, 2)
	assert.Equal(t, "Size", detail.Attributes[0].AttrName)
	assert.Equal(t, models.DataTypeEnum, detail.Attributes[0].DataType)
	assert.Equal(t, "42", detail.Attributes[0].Value)
	assert.Equal(t, "Weight", detail.Attributes[1].AttrName)
	assert.Equal(t, "0.8", detail.Attributes[1].Value)
}

func TestProductServiceDefaults(t *testing.T) {
	f := newFixture(t, true, nil)
	catID := f.category(t, "Misc")

	p, err := f.products.Create(context.Background(), catID, CreateProductRequest{Name: "Thing", Description: "  "})
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Price)
	assert.Nil(t, p.Description)
	assert.Nil(t, p.SKU)

	detail, err := f.products.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.NotNil(t, detail.Attributes)
	assert.Empty(t, detail.Attributes)
}

func TestProductServiceStoresEverySubmittedValue(t *testing.T) {
	f := newFixture(t, true, nil)
	ctx := context.Background()
	catID := f.category(t, "Shoes")

	var inputs []AttributeInput
	for i := 0; i < 5; i++ {
		def := f.define(t, catID, DefineAttributeRequest{Name: string(rune('A' + i)), SortOrder: i})
		inputs = append(inputs, AttributeInput{AttributeID: def.ID, Value: ""})
	}
	inputs[2].Value = "set"

	p, err := f.products.Create(ctx, catID, CreateProductRequest{Name: "Runner", Attributes: inputs})
	require.NoError(t, err)

	assert.Equal(t, len(inputs), f.countValues(t, p.ID))
}

func TestProductServiceCreateIsAtomic(t *testing.T) {
	f := newFixture(t, false, nil)
	catID, size, _ := shoes(t, f)

	_, err := f.products.Create(context.Background(), catID, CreateProductRequest{
		Name: "Runner",
		Attributes: []AttributeInput{
			{AttributeID: size.ID, Value: "42"},
			{AttributeID: 9999, Value: "orphan"},
		},
	})
	require.ErrorIs(t, err, utils.ErrPersistence)
	assert.Equal(t, "product violates a storage constraint", utils.Message(err))

	assert.Equal(t, 0, f.count(t, "products"))
	assert.Equal(t, 0, f.count(t, "product_attribute_values"))
}

func TestProductServiceLenientAcceptsForeignAttributes(t *testing.T) {
	f := newFixture(t, false, nil)
	ctx := context.Background()
	catID, _, weight := shoes(t, f)
	hats := f.category(t, "Hats")
	brim := f.define(t, hats, DefineAttributeRequest{Name: "Brim", DataType: models.DataTypeNumber})

	p, err := f.products.Create(ctx, catID, CreateProductRequest{
		Name: "Odd",
		Attributes: []AttributeInput{
			{AttributeID: weight.ID, Value: "heavy"},
			{AttributeID: brim.ID, Value: "3"},
		},
	})
	require.NoError(t, err)

	detail, err := f.products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Attributes, 2)
}

func TestProductServiceStrictValidation(t *testing.T) {
	f := newFixture(t, true, nil)
	catID, size, weight := shoes(t, f)
	hats := f.category(t, "Hats")
	brim := f.define(t, hats, DefineAttributeRequest{Name: "Brim"})

	cases := []struct {
		name  string
		attrs []AttributeInput
	}{
		{"foreign attribute", []AttributeInput{{size.ID, "42"}, {brim.ID, "wide"}}},
		{"enum value outside options", []AttributeInput{{size.ID, "47"}}},
		{"not a number", []AttributeInput{{size.ID, "42"}, {weight.ID, "heavy"}}},
		{"required missing", []AttributeInput{{weight.ID, "1.2"}}},
		{"required blank", []AttributeInput{{size.ID, ""}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.products.Create(context.Background(), catID, CreateProductRequest{Name: "Runner", Attributes: tc.attrs})
			assert.ErrorIs(t, err, utils.ErrValidation)
		})
	}
	assert.Equal(t, 0, f.count(t, "products"))
}

func TestProductServiceStructuralValidation(t *testing.T) {
	f := newFixture(t, false, nil)
	catID, size, _ := shoes(t, f)

	cases := []struct {
		name string
		req  CreateProductRequest
	}{
		{"blank name", CreateProductRequest{Name: "  "}},
		{"negative price", CreateProductRequest{Name: "Runner", Price: -1}},
		{"price beyond column precision", CreateProductRequest{Name: "Runner", Price: 1e10}},
		{"zero attribute id", CreateProductRequest{Name: "Runner", Attributes: []AttributeInput{{0, "x"}}}},
		{"duplicate attribute", CreateProductRequest{Name: "Runner", Attributes: []AttributeInput{{size.ID, "41"}, {size.ID, "42"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.products.Create(context.Background(), catID, tc.req)
			assert.ErrorIs(t, err, utils.ErrValidation)
		})
	}
	assert.Equal(t, 0, f.count(t, "products"))
}

func TestProductServiceAcceptsMaxPrice(t *testing.T) {
	f := newFixture(t, false, nil)
	catID := f.category(t, "Yachts")

	p, err := f.products.Create(context.Background(), catID, CreateProductRequest{Name: "Flagship", Price: MaxPrice})
	require.NoError(t, err)
	assert.Equal(t, MaxPrice, p.Price)
}

func TestProductServiceUnknownCategory(t *testing.T) {
	f := newFixture(t, true, nil)

	_, err := f.products.Create(context.Background(), 77, CreateProductRequest{Name: "Runner"})
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = f.products.ListByCategory(context.Background(), 77)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestProductServiceGetNotFound(t *testing.T) {
	f := newFixture(t, true, nil)

	_, err := f.products.Get(context.Background(), 12345)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestProductServiceEnumRoundTrip(t *testing.T) {
	f := newFixture(t, true, nil)
	ctx := context.Background()
	catID, size, _ := shoes(t, f)

	for _, option := range size.Options {
		p, err := f.products.Create(ctx, catID, CreateProductRequest{
			Name:       "Runner " + option,
			Attributes: []AttributeInput{{AttributeID: size.ID, Value: option}},
		})
		require.NoError(t, err)

		detail, err := f.products.Get(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, detail.Attributes, 1)

		got := detail.Attributes[0]
		assert.Equal(t, option, got.Value)
		parsed, err := codec.Parse(got.DataType, got.Value, size.Options)
		require.NoError(t, err)
		assert.Equal(t, option, parsed)
	}
}

func TestProductServiceEnumOptionsMatchExactly(t *testing.T) {
	f := newFixture(t, true, nil)
	ctx := context.Background()
	catID := f.category(t, "Shirts")
	size := f.define(t, catID, DefineAttributeRequest{
		Name: "Size", DataType: models.DataTypeEnum, Options: []string{" S", "M ", "L"},
	})

	p, err := f.products.Create(ctx, catID, CreateProductRequest{
		Name:       "Tee",
		Attributes: []AttributeInput{{size.ID, " S"}},
	})
	require.NoError(t, err)
	detail, err := f.products.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, detail.Attributes, 1)
	assert.Equal(t, " S", detail.Attributes[0].Value)

	_, err = f.products.Create(ctx, catID, CreateProductRequest{
		Name:       "Tee",
		Attributes: []AttributeInput{{size.ID, "S"}},
	})
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestProductServiceGetIsIdempotent(t *testing.T) {
	f := newFixture(t, true, nil)
	ctx := context.Background()
	catID, size, weight := shoes(t, f)

	p, err := f.products.Create(ctx, catID, CreateProductRequest{
		Name:       "Runner",
		Attributes: []AttributeInput{{size.ID, "41"}, {weight.ID, "0.7"}},
	})
	require.NoError(t, err)

	first, err := f.products.Get(ctx, p.ID)
	require.NoError(t, err)
	second, err := f.products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProductServiceGetUsesCache(t *testing.T) {
	cache := newFakeCache()
	f := newFixture(t, true, cache)
	ctx := context.Background()
	catID, size, _ := shoes(t, f)

	p, err := f.products.Create(ctx, catID, CreateProductRequest{
		Name:       "Runner",
		Attributes: []AttributeInput{{size.ID, "40"}},
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			detail, err := f.products.Get(ctx, p.ID)
			assert.NoError(t, err)
			assert.Equal(t, "Runner", detail.Name)
		}()
	}
	wg.Wait()

	_, err = f.products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cache.productHits, 1)
	assert.Contains(t, cache.products, p.ID)
}

func TestProductServiceGetIgnoresCallerCancellation(t *testing.T) {
	f := newFixture(t, true, nil)
	catID, size, _ := shoes(t, f)

	p, err := f.products.Create(context.Background(), catID, CreateProductRequest{
		Name:       "Runner",
		Attributes: []AttributeInput{{size.ID, "41"}},
	})
	require.NoError(t, err)

	// A caller that went away still completes the shared read, so callers
	// joined to it get the product rather than its cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	detail, err := f.products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Runner", detail.Name)
	require.Len(t, detail.Attributes, 1)
}

func TestProductServiceListByCategory(t *testing.T) {
	f := newFixture(t, false, nil)
	ctx := context.Background()
	catID := f.category(t, "Shoes")

	var ids []int64
	for _, name := range []string{"Runner", "Walker"} {
		p, err := f.products.Create(ctx, catID, CreateProductRequest{Name: name})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	list, err := f.products.ListByCategory(ctx, catID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[1], list[0].ID)
	assert.Equal(t, ids[0], list[1].ID)
}

func TestProperty_DetailFollowsAttributeOrder(t *testing.T) {
	f := newFixture(t, true, nil)
	ctx := context.Background()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	parameters.MaxSize = 8
	properties := gopter.NewProperties(parameters)

	properties.Property("values are ordered by sort order then attribute id", prop.ForAll(
		func(sortOrders []int) bool {
			catID := f.category(t, "Generated")

			order := make(map[int64]int, len(sortOrders))
			var inputs []AttributeInput
			// Define in reverse so ids and sort orders disagree.
			for i := len(sortOrders) - 1; i >= 0; i-- {
				def := f.define(t, catID, DefineAttributeRequest{Name: "attr", SortOrder: sortOrders[i]})
				order[def.ID] = def.SortOrder
				inputs = append(inputs, AttributeInput{AttributeID: def.ID, Value: "v"})
			}

			p, err := f.products.Create(ctx, catID, CreateProductRequest{Name: "Generated", Attributes: inputs})
			if err != nil {
				return false
			}
			detail, err := f.products.Get(ctx, p.ID)
			if err != nil || len(detail.Attributes) != len(sortOrders) {
				return false
			}

			for i := 1; i < len(detail.Attributes); i++ {
				prev, cur := detail.Attributes[i-1].AttributeID, detail.Attributes[i].AttributeID
				if order[prev] > order[cur] || (order[prev] == order[cur] && prev > cur) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(-3, 3)),
	))

	properties.TestingRun(t)
}
