package services

import (
	"fmt"

	"github.com/habitat-inmuebles/habitat-web/internal/domain/entities"
)

// Coordinates is one geographic point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Marker is one map pin for a listing with valid coordinates.
type Marker struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	PropertyType string   `json:"property_type,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	DetailURL    string   `json:"detail_url"`
}

// MapService builds marker sets for the tile map on the public pages.
type MapService struct {
	fallbackCenter Coordinates
}

// NewMapService creates a map service with the center used when no
// listing provides usable coordinates.
func NewMapService(fallbackLat, fallbackLng float64) *MapService {
	return &MapService{
		fallbackCenter: Coordinates{Latitude: fallbackLat, Longitude: fallbackLng},
	}
}

// BuildMarkers renders one marker per listing with a finite
// latitude/longitude pair; records without one are skipped. The center
// is the first entry's coordinates when present, otherwise the fixed
// fallback. Every valid point is rendered; there is no clustering or
// viewport culling.
func (s *MapService) BuildMarkers(properties []entities.Property) ([]Marker, Coordinates) {
	markers := make([]Marker, 0, len(properties))
	for i := range properties {
		p := &properties[i]
		if !p.HasCoordinates() {
			continue
		}
		markers = append(markers, Marker{
			ID:           p.ID,
			Title:        p.Title,
			PropertyType: p.PropertyType,
			Price:        p.Price,
			ImageURL:     p.ImageURL,
			Latitude:     *p.Latitude,
			Longitude:    *p.Longitude,
			DetailURL:    fmt.Sprintf("/properties/%d", p.ID),
		})
	}

	center := s.fallbackCenter
	if len(properties) > 0 && properties[0].HasCoordinates() {
		center = Coordinates{Latitude: *properties[0].Latitude, Longitude: *properties[0].Longitude}
	}
	return markers, center
}
