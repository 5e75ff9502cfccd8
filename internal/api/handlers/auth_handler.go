package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/habitat-inmuebles/habitat-web/internal/api/session"
	"github.com/habitat-inmuebles/habitat-web/internal/infrastructure/observability"
	apperrors "github.com/habitat-inmuebles/habitat-web/pkg/errors"
)

// Authenticator defines the credential exchange used by the login page.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// AuthHandler serves the back-office login and logout.
type AuthHandler struct {
	backend  Authenticator
	sessions *session.Manager
	renderer *Renderer
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(backend Authenticator, sessions *session.Manager, renderer *Renderer) *AuthHandler {
	return &AuthHandler{backend: backend, sessions: sessions, renderer: renderer}
}

type loginPageData struct {
	Username string
	Error    string
}

// ShowLogin handles GET /admin/login
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if h.sessions.Token(r) != "" {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}
	h.renderer.Render(w, r, http.StatusOK, "login", "Acceso", loginPageData{})
}

// Login handles POST /admin/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.RenderError(w, r, http.StatusBadRequest, "No se pudo leer el formulario.")
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	token, err := h.backend.Login(r.Context(), username, password)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Info().Str("username", username).Msg("login rejected")
		message := "Usuario o contraseña incorrectos."
		if apperrors.TypeOf(err) == apperrors.ErrorTypeUnavailable {
			message = "El servicio no está disponible. Intenta de nuevo más tarde."
		}
		h.renderer.Render(w, r, http.StatusUnauthorized, "login", "Acceso", loginPageData{Username: username, Error: message})
		return
	}

	h.sessions.SetToken(w, token)
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// Logout handles POST /admin/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearToken(w)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}
