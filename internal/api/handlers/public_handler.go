package handlers

import (
	"context"
	"net/http"

	"github.com/habitat-inmuebles/habitat-web/internal/application/services"
	"github.com/habitat-inmuebles/habitat-web/internal/domain/entities"
	"github.com/habitat-inmuebles/habitat-web/internal/infrastructure/observability"
)

const featuredLimit = 6

// CatalogReader defines the public catalog reads used by the home and
// about pages.
type CatalogReader interface {
	ListProperties(ctx context.Context) ([]entities.Property, error)
	ListTeam(ctx context.Context) ([]entities.TeamMember, error)
}

// PublicHandler serves the home and about pages.
type PublicHandler struct {
	catalog  CatalogReader
	settings SettingsReader
	renderer *Renderer
}

// NewPublicHandler creates a new public page handler.
func NewPublicHandler(catalog CatalogReader, settings SettingsReader, renderer *Renderer) *PublicHandler {
	return &PublicHandler{catalog: catalog, settings: settings, renderer: renderer}
}

type homePageData struct {
	Headline    string
	Subheadline string
	HeroImage   string
	Featured    []entities.Property
}

// Home handles GET /
func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := homePageData{
		Headline:    h.settings.GetString("home_headline", "Encuentra tu próximo hogar"),
		Subheadline: h.settings.GetString("footer_tagline", "Tu socio confiable en bienes raíces."),
		HeroImage:   h.settings.GetString("home_background_url", ""),
	}

	properties, err := h.catalog.ListProperties(r.Context())
	if err != nil {
		// The hero still renders without listings.
		observability.LoggerFromContext(r.Context()).Warn().Err(err).Msg("failed to load listings for home page")
	} else {
		data.Featured = services.FeaturedProperties(properties, featuredLimit)
	}

	h.renderer.Render(w, r, http.StatusOK, "home", "", data)
}

type aboutSection struct {
	Title string
	Body  string
}

type aboutPageData struct {
	Title    string
	Intro    string
	Sections []aboutSection
	Team     []entities.TeamMember
}

// About handles GET /about
func (h *PublicHandler) About(w http.ResponseWriter, r *http.Request) {
	data := aboutPageData{
		Title: h.settings.GetString("about_page_main_title", "Sobre Nosotros"),
		Intro: h.settings.GetString("about_page_main_paragraph", ""),
		Sections: []aboutSection{
			{
				Title: h.settings.GetString("about_page_mission_title", "Nuestra Misión"),
				Body:  h.settings.GetString("about_page_mission_paragraph", ""),
			},
			{
				Title: h.settings.GetString("about_page_vision_title", "Nuestra Visión"),
				Body:  h.settings.GetString("about_page_vision_paragraph", ""),
			},
			{
				Title: h.settings.GetString("about_page_history_title", "Nuestra Historia"),
				Body:  h.settings.GetString("about_page_history_paragraph", ""),
			},
		},
	}

	team, err := h.catalog.ListTeam(r.Context())
	if err != nil {
		observability.LoggerFromContext(r.Context()).Warn().Err(err).Msg("failed to load team for about page")
	} else {
		data.Team = team
	}

	h.renderer.Render(w, r, http.StatusOK, "about", data.Title, data)
}
