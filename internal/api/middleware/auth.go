package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/habitat-inmuebles/habitat-web/internal/api/session"
	"github.com/habitat-inmuebles/habitat-web/internal/application/services"
	"github.com/habitat-inmuebles/habitat-web/internal/domain/entities"
	"github.com/habitat-inmuebles/habitat-web/internal/infrastructure/observability"
)

type contextKey string

const (
	userContextKey  contextKey = "admin_user"
	tokenContextKey contextKey = "admin_token"
)

// adminOnlyPrefixes are the back-office sections reserved for the
// admin role; manager and staff sessions are bounced to the dashboard.
var adminOnlyPrefixes = []string{
	"/admin/users",
	"/admin/team",
	"/admin/settings",
	"/admin/appearance",
}

// UserResolver resolves the user owning a bearer token ("whoami").
type UserResolver interface {
	CurrentUser(ctx context.Context, token string) (*entities.User, error)
}

// ContactsGate exposes the flag controlling whether non-admin roles
// may open the contact triage view.
type ContactsGate interface {
	NonAdminCanViewAllContacts() bool
}

// SessionGuard authorizes every protected back-office request. A
// missing cookie redirects to login without touching the backend; a
// rejected or unreachable whoami clears the cookie and redirects with
// no retry; an unrecognized role is sent to the public home page; and
// manager/staff sessions are kept out of the admin-only sections.
type SessionGuard struct {
	resolver UserResolver
	sessions *session.Manager
	gate     ContactsGate
}

// NewSessionGuard creates the guard middleware.
func NewSessionGuard(resolver UserResolver, sessions *session.Manager, gate ContactsGate) *SessionGuard {
	return &SessionGuard{
		resolver: resolver,
		sessions: sessions,
		gate:     gate,
	}
}

// Middleware wraps protected routes.
func (g *SessionGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := observability.LoggerFromContext(r.Context())

		token := g.sessions.Token(r)
		if token == "" {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}

		user, err := g.resolver.CurrentUser(r.Context(), token)
		if err != nil {
			// Transport failure and rejection are handled alike:
			// clear the credential and start over at login.
			logger.Warn().Err(err).Msg("session verification failed")
			g.sessions.ClearToken(w)
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}

		if !user.Role.Valid() {
			logger.Warn().Str("role", string(user.Role)).Msg("unrecognized role on admin request")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		if user.Role != entities.RoleAdmin && matchesAdminOnly(r.URL.Path) {
			logger.Warn().
				Str("role", string(user.Role)).
				Str("path", r.URL.Path).
				Msg("non-admin role attempted admin-only section")
			g.sessions.AddFlash(w, session.FlashWarning, "No tienes permisos para acceder a esa sección.")
			http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
			return
		}

		if user.Role != entities.RoleAdmin && strings.HasPrefix(r.URL.Path, "/admin/contacts") && !g.gate.NonAdminCanViewAllContacts() {
			g.sessions.AddFlash(w, session.FlashWarning, "La vista de contactos está deshabilitada para tu rol.")
			http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, tokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func matchesAdminOnly(path string) bool {
	for _, prefix := range adminOnlyPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// UserFromContext returns the authenticated user placed by the guard.
func UserFromContext(ctx context.Context) *entities.User {
	user, _ := ctx.Value(userContextKey).(*entities.User)
	return user
}

// TokenFromContext returns the bearer token placed by the guard.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// RequireAction enforces one capability on top of the session guard,
// for mutating routes whose section is visible to a role that may not
// perform every action in it.
func RequireAction(action services.Action, sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil || !services.Can(user.Role, action) {
				sessions.AddFlash(w, session.FlashWarning, "No tienes permisos para esa acción.")
				http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
