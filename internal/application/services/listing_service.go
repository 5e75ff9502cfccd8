package services

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/habitat-inmuebles/habitat-web/internal/domain/entities"
)

// CategoryAll is the category selector meaning "no category filter".
const CategoryAll = "Todos"

// categoryFallback groups listings with no property_type.
const categoryFallback = "Otros"

// Bound is one optional numeric range constraint. A nil side is open.
type Bound struct {
	Min *float64
	Max *float64
}

// allows reports whether value satisfies the bound. An unset side
// imposes no constraint; a set side excludes records whose field is
// absent (an unrecorded bedroom count cannot satisfy "at least 2").
func (b Bound) allows(value *float64) bool {
	if b.Min != nil && (value == nil || *value < *b.Min) {
		return false
	}
	if b.Max != nil && (value == nil || *value > *b.Max) {
		return false
	}
	return true
}

// ListingFilter is the user-entered constraint set for the public
// listings page: one category selector and four optional numeric
// ranges.
type ListingFilter struct {
	Category  string
	Bedrooms  Bound
	Bathrooms Bound
	Area      Bound
	Price     Bound
}

// ParseListingFilter builds a filter from query parameters. Empty and
// unparseable values leave the corresponding side open.
func ParseListingFilter(values url.Values) ListingFilter {
	category := strings.TrimSpace(values.Get("category"))
	if category == "" {
		category = CategoryAll
	}
	return ListingFilter{
		Category:  category,
		Bedrooms:  Bound{Min: parseBound(values.Get("min_bedrooms")), Max: parseBound(values.Get("max_bedrooms"))},
		Bathrooms: Bound{Min: parseBound(values.Get("min_bathrooms")), Max: parseBound(values.Get("max_bathrooms"))},
		Area:      Bound{Min: parseBound(values.Get("min_area")), Max: parseBound(values.Get("max_area"))},
		Price:     Bound{Min: parseBound(values.Get("min_price")), Max: parseBound(values.Get("max_price"))},
	}
}

func parseBound(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Matches reports whether a single listing passes the filter.
func (f ListingFilter) Matches(p *entities.Property) bool {
	if f.Category != "" && f.Category != CategoryAll && p.PropertyType != f.Category {
		return false
	}
	if !f.Bedrooms.allows(intField(p.Bedrooms)) {
		return false
	}
	if !f.Bathrooms.allows(intField(p.Bathrooms)) {
		return false
	}
	if !f.Area.allows(p.SquareFeet) {
		return false
	}
	if !f.Price.allows(p.Price) {
		return false
	}
	return true
}

// Apply returns the listings that pass the filter, in their original
// order. The result is always a subset of the input; applying the same
// filter twice yields the same list.
func (f ListingFilter) Apply(properties []entities.Property) []entities.Property {
	filtered := make([]entities.Property, 0, len(properties))
	for i := range properties {
		if f.Matches(&properties[i]) {
			filtered = append(filtered, properties[i])
		}
	}
	return filtered
}

func intField(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

// CategoryGroup is one slider's worth of listings on the public page.
type CategoryGroup struct {
	Category   string
	Properties []entities.Property
}

// GroupByType groups listings by property_type in first-seen order.
// Listings without a type land under the fallback group.
func GroupByType(properties []entities.Property) []CategoryGroup {
	index := map[string]int{}
	groups := []CategoryGroup{}
	for _, p := range properties {
		key := p.PropertyType
		if key == "" {
			key = categoryFallback
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, CategoryGroup{Category: key})
		}
		groups[i].Properties = append(groups[i].Properties, p)
	}
	return groups
}

// Categories derives the selectable category list from the working
// set: "Todos" first, then the distinct property types in first-seen
// order, minus the excluded types.
func Categories(properties []entities.Property, exclusions []string) []string {
	excluded := make(map[string]bool, len(exclusions))
	for _, e := range exclusions {
		excluded[e] = true
	}

	categories := []string{CategoryAll}
	seen := map[string]bool{}
	for _, p := range properties {
		t := p.PropertyType
		if t == "" || excluded[t] || seen[t] {
			continue
		}
		seen[t] = true
		categories = append(categories, t)
	}
	return categories
}

// FeaturedProperties returns the listings flagged for the home page,
// in original order, capped at limit (0 means no cap).
func FeaturedProperties(properties []entities.Property, limit int) []entities.Property {
	featured := make([]entities.Property, 0, len(properties))
	for _, p := range properties {
		if p.IsFeatured {
			featured = append(featured, p)
			if limit > 0 && len(featured) == limit {
				break
			}
		}
	}
	return featured
}
