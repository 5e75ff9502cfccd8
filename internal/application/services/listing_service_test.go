package services_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitat-inmuebles/habitat-web/internal/application/services"
	"github.com/habitat-inmuebles/habitat-web/internal/domain/entities"
)

func intPtr(v int) *int          { return &v }
func floatPtr(v float64) *float64 { return &v }

func sampleProperties() []entities.Property {
	return []entities.Property{
		{ID: 1, Title: "Casa grande", PropertyType: "Casa", Price: floatPtr(250000), Bedrooms: intPtr(4), Bathrooms: intPtr(3), SquareFeet: floatPtr(320)},
		{ID: 2, Title: "Apartamento céntrico", PropertyType: "Apartamento", Price: floatPtr(120000), Bedrooms: intPtr(2), Bathrooms: intPtr(2), SquareFeet: floatPtr(95)},
		{ID: 3, Title: "Terreno sin construir", PropertyType: "Terreno", Price: floatPtr(80000)},
		{ID: 4, Title: "Casa pequeña", PropertyType: "Casa", Price: floatPtr(95000), Bedrooms: intPtr(2), Bathrooms: intPtr(1), SquareFeet: floatPtr(110)},
		{ID: 5, Title: "Galpón industrial", PropertyType: "Galpón", Price: floatPtr(300000)},
	}
}

func TestParseListingFilter_IgnoresEmptyAndUnparseable(t *testing.T) {
	values := url.Values{}
	values.Set("min_price", "")
	values.Set("max_price", "abc")
	values.Set("min_bedrooms", "2")
	values.Set("category", "Casa")

	filter := services.ParseListingFilter(values)

	assert.Equal(t, "Casa", filter.Category)
	assert.Nil(t, filter.Price.Min)
	assert.Nil(t, filter.Price.Max)
	require.NotNil(t, filter.Bedrooms.Min)
	assert.Equal(t, 2.0, *filter.Bedrooms.Min)
}

func TestApply_NoCriteriaReturnsEverything(t *testing.T) {
	props := sampleProperties()
	filter := services.ParseListingFilter(url.Values{})

	got := filter.Apply(props)

	assert.Len(t, got, len(props))
}

func TestApply_CategoryTodosMatchesAll(t *testing.T) {
	values := url.Values{}
	values.Set("category", services.CategoryAll)

	got := services.ParseListingFilter(values).Apply(sampleProperties())

	assert.Len(t, got, len(sampleProperties()))
}

func TestApply_BoundsAreInclusive(t *testing.T) {
	values := url.Values{}
	values.Set("min_price", "95000")
	values.Set("max_price", "120000")

	got := services.ParseListingFilter(values).Apply(sampleProperties())

	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].ID)
	assert.Equal(t, 4, got[1].ID)
}

func TestApply_NilFieldFailsActiveBound(t *testing.T) {
	// IDs 3 and 5 have no bedroom count, so any bedroom bound
	// excludes them.
	values := url.Values{}
	values.Set("min_bedrooms", "1")

	got := services.ParseListingFilter(values).Apply(sampleProperties())

	require.Len(t, got, 3)
	for _, p := range got {
		assert.NotNil(t, p.Bedrooms)
	}
}

func TestApply_ConjunctionAcrossFields(t *testing.T) {
	values := url.Values{}
	values.Set("category", "Casa")
	values.Set("max_price", "100000")

	got := services.ParseListingFilter(values).Apply(sampleProperties())

	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].ID)
}

func TestApply_PreservesOrderAndIsStable(t *testing.T) {
	values := url.Values{}
	values.Set("category", "Casa")
	filter := services.ParseListingFilter(values)

	first := filter.Apply(sampleProperties())
	second := filter.Apply(first)

	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.True(t, first[0].ID < first[1].ID)
}

func TestGroupByType_InsertionOrderAndFallback(t *testing.T) {
	props := []entities.Property{
		{ID: 1, PropertyType: "Casa"},
		{ID: 2}, // no type recorded
		{ID: 3, PropertyType: "Apartamento"},
		{ID: 4, PropertyType: "Casa"},
	}

	groups := services.GroupByType(props)

	require.Len(t, groups, 3)
	assert.Equal(t, "Casa", groups[0].Category)
	assert.Equal(t, "Otros", groups[1].Category)
	assert.Equal(t, "Apartamento", groups[2].Category)
	assert.Len(t, groups[0].Properties, 2)
}

func TestCategories_ExclusionsAndDedup(t *testing.T) {
	got := services.Categories(sampleProperties(), []string{"Galpón"})

	require.NotEmpty(t, got)
	assert.Equal(t, services.CategoryAll, got[0])
	assert.NotContains(t, got, "Galpón")
	assert.Contains(t, got, "Casa")
	assert.Contains(t, got, "Terreno")

	seen := map[string]bool{}
	for _, c := range got {
		assert.False(t, seen[c], "duplicate category %q", c)
		seen[c] = true
	}
}

func TestFeaturedProperties_LimitAndOrder(t *testing.T) {
	props := []entities.Property{
		{ID: 1, IsFeatured: true},
		{ID: 2},
		{ID: 3, IsFeatured: true},
		{ID: 4, IsFeatured: true},
	}

	got := services.FeaturedProperties(props, 2)

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 3, got[1].ID)
}
