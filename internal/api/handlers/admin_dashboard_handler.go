package handlers

import (
	"context"
	"net/http"

	"github.com/habitat-inmuebles/habitat-web/internal/api/middleware"
	"github.com/habitat-inmuebles/habitat-web/internal/application/services"
	"github.com/habitat-inmuebles/habitat-web/internal/domain/entities"
	"github.com/habitat-inmuebles/habitat-web/internal/infrastructure/observability"
)

// DashboardReader defines the backend reads behind the dashboard tiles.
type DashboardReader interface {
	ListProperties(ctx context.Context) ([]entities.Property, error)
	ListContacts(ctx context.Context, token string) ([]entities.ContactSubmission, error)
	ListTeam(ctx context.Context) ([]entities.TeamMember, error)
	ListUsers(ctx context.Context, token string) ([]entities.User, error)
}

// ContactsVisibility reports whether non-admin roles may see contacts.
type ContactsVisibility interface {
	NonAdminCanViewAllContacts() bool
}

// DashboardHandler serves the back-office landing page.
type DashboardHandler struct {
	backend  DashboardReader
	gate     ContactsVisibility
	renderer *Renderer
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(backend DashboardReader, gate ContactsVisibility, renderer *Renderer) *DashboardHandler {
	return &DashboardHandler{backend: backend, gate: gate, renderer: renderer}
}

type dashboardPageData struct {
	PropertyCount  int
	FeaturedCount  int
	ClickCount     int
	TeamCount      int
	UserCount      int
	UnreadContacts int
	ShowContacts   bool
	IsAdmin        bool
}

// Show handles GET /admin/dashboard
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	logger := observability.LoggerFromContext(r.Context())

	data := dashboardPageData{
		IsAdmin:      user != nil && user.Role == entities.RoleAdmin,
		ShowContacts: user != nil && services.Can(user.Role, services.ActionViewContacts) &&
			(user.Role == entities.RoleAdmin || h.gate.NonAdminCanViewAllContacts()),
	}

	properties, err := h.backend.ListProperties(r.Context())
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load listings for dashboard")
	}
	data.PropertyCount = len(properties)
	for i := range properties {
		if properties[i].IsFeatured {
			data.FeaturedCount++
		}
		data.ClickCount += len(properties[i].Clicks)
	}

	team, err := h.backend.ListTeam(r.Context())
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load team for dashboard")
	}
	data.TeamCount = len(team)

	if data.IsAdmin {
		users, err := h.backend.ListUsers(r.Context(), middleware.TokenFromContext(r.Context()))
		if err != nil {
			logger.Warn().Err(err).Msg("failed to load users for dashboard")
		}
		data.UserCount = len(users)
	}

	if data.ShowContacts {
		contacts, err := h.backend.ListContacts(r.Context(), middleware.TokenFromContext(r.Context()))
		if err != nil {
			logger.Warn().Err(err).Msg("failed to load contacts for dashboard")
		}
		for i := range contacts {
			if !contacts[i].IsRead {
				data.UnreadContacts++
			}
		}
	}

	h.renderer.Render(w, r, http.StatusOK, "admin_dashboard", "Panel", data)
}
