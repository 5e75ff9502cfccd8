package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/habitat-inmuebles/habitat-web/internal/application/services"
	"github.com/habitat-inmuebles/habitat-web/internal/domain/entities"
	"github.com/habitat-inmuebles/habitat-web/internal/infrastructure/observability"
	apperrors "github.com/habitat-inmuebles/habitat-web/pkg/errors"
)

// ListingReader defines the catalog reads used by the listing pages.
type ListingReader interface {
	ListProperties(ctx context.Context) ([]entities.Property, error)
	GetProperty(ctx context.Context, id int) (*entities.Property, error)
	TrackClick(ctx context.Context, id int) error
}

// ListingHandler serves the catalog list, the detail page and the map
// marker feed.
type ListingHandler struct {
	backend    ListingReader
	maps       *services.MapService
	renderer   *Renderer
	exclusions []string
}

// NewListingHandler creates a new listing handler.
func NewListingHandler(backend ListingReader, maps *services.MapService, renderer *Renderer, categoryExclusions []string) *ListingHandler {
	return &ListingHandler{backend: backend, maps: maps, renderer: renderer, exclusions: categoryExclusions}
}

type listingPageData struct {
	Filter      services.ListingFilter
	Query       url.Values
	Categories  []string
	Groups      []services.CategoryGroup
	MarkerQuery string
}

// List handles GET /properties
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	properties, err := h.backend.ListProperties(r.Context())
	if err != nil {
		h.renderer.RenderError(w, r, http.StatusServiceUnavailable, apperrors.Detail(err))
		return
	}

	filter := services.ParseListingFilter(r.URL.Query())
	filtered := filter.Apply(properties)

	markerQuery := ""
	if raw := r.URL.RawQuery; raw != "" {
		markerQuery = "?" + raw
	}

	data := listingPageData{
		Filter:      filter,
		Query:       r.URL.Query(),
		Categories:  services.Categories(properties, h.exclusions),
		Groups:      services.GroupByType(filtered),
		MarkerQuery: markerQuery,
	}

	h.renderer.Render(w, r, http.StatusOK, "properties", "Inmuebles", data)
}

type detailPageData struct {
	Property *entities.Property
	ShowMap  bool
}

// Detail handles GET /properties/{id}
func (h *ListingHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.renderer.RenderError(w, r, http.StatusNotFound, "El inmueble solicitado no existe.")
		return
	}

	property, err := h.backend.GetProperty(r.Context(), id)
	if err != nil {
		if apperrors.TypeOf(err) == apperrors.ErrorTypeNotFound {
			h.renderer.RenderError(w, r, http.StatusNotFound, "El inmueble solicitado no existe.")
			return
		}
		h.renderer.RenderError(w, r, http.StatusServiceUnavailable, apperrors.Detail(err))
		return
	}

	// Click tracking is best effort and never blocks the page.
	if err := h.backend.TrackClick(r.Context(), id); err != nil {
		observability.LoggerFromContext(r.Context()).Warn().Err(err).Int("property_id", id).Msg("failed to track click")
	}

	data := detailPageData{Property: property, ShowMap: property.HasCoordinates()}
	h.renderer.Render(w, r, http.StatusOK, "property_detail", property.Title, data)
}

type markersResponse struct {
	Center  centerJSON   `json:"center"`
	Markers []markerJSON `json:"markers"`
}

type centerJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type markerJSON struct {
	ID        int     `json:"id"`
	Title     string  `json:"title"`
	Price     string  `json:"price,omitempty"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	DetailURL string  `json:"detail_url"`
}

// Markers handles GET /api/markers. It accepts the same query
// parameters as the list page, plus id= to restrict to one listing.
func (h *ListingHandler) Markers(w http.ResponseWriter, r *http.Request) {
	properties, err := h.backend.ListProperties(r.Context())
	if err != nil {
		respondWithError(w, http.StatusServiceUnavailable, apperrors.Detail(err))
		return
	}

	if rawID := r.URL.Query().Get("id"); rawID != "" {
		if id, err := strconv.Atoi(rawID); err == nil {
			single := properties[:0:0]
			for _, p := range properties {
				if p.ID == id {
					single = append(single, p)
					break
				}
			}
			properties = single
		}
	} else {
		properties = services.ParseListingFilter(r.URL.Query()).Apply(properties)
	}

	markers, center := h.maps.BuildMarkers(properties)

	out := markersResponse{
		Center:  centerJSON{Lat: center.Latitude, Lng: center.Longitude},
		Markers: make([]markerJSON, 0, len(markers)),
	}
	for _, m := range markers {
		price := ""
		if m.Price != nil {
			price = formatMoney(m.Price)
		}
		out.Markers = append(out.Markers, markerJSON{
			ID:        m.ID,
			Title:     m.Title,
			Price:     price,
			Lat:       m.Latitude,
			Lng:       m.Longitude,
			DetailURL: m.DetailURL,
		})
	}

	respondWithJSON(w, http.StatusOK, out)
}
