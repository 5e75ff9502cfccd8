package services_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitat-inmuebles/habitat-web/internal/application/services"
	"github.com/habitat-inmuebles/habitat-web/internal/domain/entities"
)

func TestBuildMarkers_SkipsRecordsWithoutCoordinates(t *testing.T) {
	svc := services.NewMapService(10.489, -66.879)
	nan := math.NaN()

	props := []entities.Property{
		{ID: 1, Title: "Con mapa", Latitude: floatPtr(10.5), Longitude: floatPtr(-66.9)},
		{ID: 2, Title: "Sin latitud", Longitude: floatPtr(-66.9)},
		{ID: 3, Title: "NaN", Latitude: &nan, Longitude: floatPtr(-66.9)},
	}

	markers, center := svc.BuildMarkers(props)

	require.Len(t, markers, 1)
	assert.Equal(t, 1, markers[0].ID)
	assert.Equal(t, "/properties/1", markers[0].DetailURL)
	assert.Equal(t, 10.5, center.Latitude)
}

func TestBuildMarkers_FallbackCenterWhenFirstEntryHasNoCoordinates(t *testing.T) {
	svc := services.NewMapService(10.489, -66.879)

	props := []entities.Property{
		{ID: 1, Title: "Sin coordenadas"},
		{ID: 2, Title: "Con mapa", Latitude: floatPtr(10.5), Longitude: floatPtr(-66.9)},
	}

	markers, center := svc.BuildMarkers(props)

	require.Len(t, markers, 1)
	assert.Equal(t, 10.489, center.Latitude)
	assert.Equal(t, -66.879, center.Longitude)
}

func TestBuildMarkers_EmptyInput(t *testing.T) {
	svc := services.NewMapService(10.489, -66.879)

	markers, center := svc.BuildMarkers(nil)

	assert.Empty(t, markers)
	assert.Equal(t, 10.489, center.Latitude)
}
