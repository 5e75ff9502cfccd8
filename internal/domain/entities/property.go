package entities

import (
	"math"
	"time"
)

// Property types used across the public catalog.
const (
	PropertyTypeCasa        = "Casa"
	PropertyTypeApartamento = "Apartamento"
	PropertyTypeLocal       = "Local Comercial"
	PropertyTypeOficina     = "Oficina"
	PropertyTypeTerreno     = "Terreno"
	PropertyTypeOtro        = "Otro"
)

// Listing types.
const (
	ListingTypeVenta = "Venta"
	ListingTypeRenta = "Renta"
)

// Property represents a listing as returned by the backend API.
// Numeric fields the backend may omit are pointers; a nil field means
// "not recorded", not zero.
type Property struct {
	ID           int             `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	Price        *float64        `json:"price,omitempty"`
	Location     string          `json:"location,omitempty"`
	PropertyType string          `json:"property_type,omitempty"`
	ListingType  string          `json:"listing_type,omitempty"`
	Bedrooms     *int            `json:"bedrooms,omitempty"`
	Bathrooms    *int            `json:"bathrooms,omitempty"`
	SquareFeet   *float64        `json:"square_feet,omitempty"`
	Latitude     *float64        `json:"latitude,omitempty"`
	Longitude    *float64        `json:"longitude,omitempty"`
	IsFeatured   bool            `json:"is_featured"`
	ImageURL     string          `json:"image_url,omitempty"`
	Images       []PropertyImage `json:"images,omitempty"`
	AssignedTo   *User           `json:"assigned_to,omitempty"`
	CreatedBy    *User           `json:"created_by,omitempty"`
	Clicks       []PropertyClick `json:"clicks,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    *time.Time      `json:"updated_at,omitempty"`
}

// PropertyImage is one entry of a listing's ordered gallery.
type PropertyImage struct {
	ID       int    `json:"id"`
	ImageURL string `json:"image_url"`
	Order    int    `json:"order"`
}

// PropertyClick is one recorded click event on a listing.
type PropertyClick struct {
	ID        int       `json:"id"`
	ClickedAt time.Time `json:"clicked_at"`
}

// HasCoordinates reports whether the listing carries a finite
// latitude/longitude pair. Records failing this check are skipped by
// map rendering.
func (p *Property) HasCoordinates() bool {
	return isFinite(p.Latitude) && isFinite(p.Longitude)
}

func isFinite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
