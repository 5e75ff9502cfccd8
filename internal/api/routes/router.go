package routes

import (
	"io/fs"
	"net/http"

	"github.com/habitat-inmuebles/habitat-web/internal/api/handlers"
	"github.com/habitat-inmuebles/habitat-web/internal/api/middleware"
	"github.com/habitat-inmuebles/habitat-web/internal/api/session"
	"github.com/habitat-inmuebles/habitat-web/internal/application/services"
	"github.com/habitat-inmuebles/habitat-web/internal/infrastructure/observability"
	"github.com/habitat-inmuebles/habitat-web/web"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	publicHandler  *handlers.PublicHandler
	listingHandler *handlers.ListingHandler
	contactHandler *handlers.ContactHandler
	authHandler    *handlers.AuthHandler

	dashboardHandler *handlers.DashboardHandler
	propertiesAdmin  *handlers.AdminPropertiesHandler
	teamAdmin        *handlers.AdminTeamHandler
	usersAdmin       *handlers.AdminUsersHandler
	contactsAdmin    *handlers.AdminContactsHandler
	settingsAdmin    *handlers.AdminSettingsHandler

	guard           *middleware.SessionGuard
	sessions        *session.Manager
	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	publicHandler *handlers.PublicHandler,
	listingHandler *handlers.ListingHandler,
	contactHandler *handlers.ContactHandler,
	authHandler *handlers.AuthHandler,
	dashboardHandler *handlers.DashboardHandler,
	propertiesAdmin *handlers.AdminPropertiesHandler,
	teamAdmin *handlers.AdminTeamHandler,
	usersAdmin *handlers.AdminUsersHandler,
	contactsAdmin *handlers.AdminContactsHandler,
	settingsAdmin *handlers.AdminSettingsHandler,
	guard *middleware.SessionGuard,
	sessions *session.Manager,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		publicHandler:    publicHandler,
		listingHandler:   listingHandler,
		contactHandler:   contactHandler,
		authHandler:      authHandler,
		dashboardHandler: dashboardHandler,
		propertiesAdmin:  propertiesAdmin,
		teamAdmin:        teamAdmin,
		usersAdmin:       usersAdmin,
		contactsAdmin:    contactsAdmin,
		settingsAdmin:    settingsAdmin,
		guard:            guard,
		sessions:         sessions,
		cacheMiddleware:  cacheMiddleware,
		metrics:          metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Embedded static assets
	static, _ := fs.Sub(web.Files, "static")
	r.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	// Public catalog
	r.mux.HandleFunc("GET /{$}", r.publicHandler.Home)
	r.mux.HandleFunc("GET /about", r.publicHandler.About)
	r.mux.HandleFunc("GET /properties", r.listingHandler.List)
	r.mux.HandleFunc("GET /properties/{id}", r.listingHandler.Detail)
	r.mux.HandleFunc("GET /api/markers", r.listingHandler.Markers)

	// Public contact form
	r.mux.HandleFunc("GET /contact", r.contactHandler.Show)
	r.mux.HandleFunc("POST /contact", r.contactHandler.Submit)

	// Session endpoints live outside the guard
	r.mux.HandleFunc("GET /admin/login", r.authHandler.ShowLogin)
	r.mux.HandleFunc("POST /admin/login", r.authHandler.Login)
	r.mux.HandleFunc("POST /admin/logout", r.authHandler.Logout)

	// Back office, behind the session guard
	admin := http.NewServeMux()
	admin.HandleFunc("GET /admin/dashboard", r.dashboardHandler.Show)

	admin.HandleFunc("GET /admin/properties", r.propertiesAdmin.List)
	admin.HandleFunc("GET /admin/properties/new", r.propertiesAdmin.New)
	admin.Handle("POST /admin/properties", r.requires(services.ActionManageProperties, r.propertiesAdmin.Create))
	admin.HandleFunc("GET /admin/properties/{id}/edit", r.propertiesAdmin.Edit)
	admin.Handle("POST /admin/properties/{id}", r.requires(services.ActionManageProperties, r.propertiesAdmin.Update))
	admin.Handle("POST /admin/properties/{id}/delete", r.requires(services.ActionManageProperties, r.propertiesAdmin.Delete))

	admin.HandleFunc("GET /admin/team", r.teamAdmin.List)
	admin.HandleFunc("GET /admin/team/new", r.teamAdmin.New)
	admin.Handle("POST /admin/team", r.requires(services.ActionManageTeam, r.teamAdmin.Create))
	admin.HandleFunc("GET /admin/team/{id}/edit", r.teamAdmin.Edit)
	admin.Handle("POST /admin/team/{id}", r.requires(services.ActionManageTeam, r.teamAdmin.Update))
	admin.Handle("POST /admin/team/{id}/delete", r.requires(services.ActionManageTeam, r.teamAdmin.Delete))

	admin.HandleFunc("GET /admin/users", r.usersAdmin.List)
	admin.HandleFunc("GET /admin/users/new", r.usersAdmin.New)
	admin.Handle("POST /admin/users", r.requires(services.ActionManageUsers, r.usersAdmin.Create))
	admin.HandleFunc("GET /admin/users/{id}/edit", r.usersAdmin.Edit)
	admin.Handle("POST /admin/users/{id}", r.requires(services.ActionManageUsers, r.usersAdmin.Update))
	admin.Handle("POST /admin/users/{id}/delete", r.requires(services.ActionManageUsers, r.usersAdmin.Delete))

	admin.HandleFunc("GET /admin/contacts", r.contactsAdmin.List)
	admin.Handle("POST /admin/contacts/{id}/assign", r.requires(services.ActionAssignContacts, r.contactsAdmin.Assign))
	admin.HandleFunc("POST /admin/contacts/{id}/read", r.contactsAdmin.MarkRead)
	admin.Handle("POST /admin/contacts/{id}/delete", r.requires(services.ActionDeleteContacts, r.contactsAdmin.Delete))
	admin.Handle("POST /admin/contacts/{id}/email", r.requires(services.ActionSendContactEmail, r.contactsAdmin.SendEmail))
	admin.Handle("GET /admin/contacts/{id}/pdf", r.requires(services.ActionExportContactPDF, r.contactsAdmin.DownloadPDF))

	admin.HandleFunc("GET /admin/settings", r.settingsAdmin.Show)
	admin.Handle("POST /admin/settings", r.requires(services.ActionEditSettings, r.settingsAdmin.Save))
	admin.HandleFunc("GET /admin/appearance", r.settingsAdmin.ShowAppearance)
	admin.Handle("POST /admin/appearance", r.requires(services.ActionEditAppearance, r.settingsAdmin.SaveAppearance))

	r.mux.Handle("/admin/", r.guard.Middleware(admin))

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}

func (r *Router) requires(action services.Action, h http.HandlerFunc) http.Handler {
	return middleware.RequireAction(action, r.sessions)(h)
}
