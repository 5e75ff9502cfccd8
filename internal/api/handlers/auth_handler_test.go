package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitat-inmuebles/habitat-web/internal/api/handlers"
	apperrors "github.com/habitat-inmuebles/habitat-web/pkg/errors"
)

type stubAuthenticator struct {
	token string
	err   error
	seen  []string
}

func (s *stubAuthenticator) Login(ctx context.Context, username, password string) (string, error) {
	s.seen = append(s.seen, username)
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

func TestAuthHandler_LoginSuccessSetsCookie(t *testing.T) {
	renderer, sessions := newTestRenderer(t)
	backend := &stubAuthenticator{token: "jwt-token"}
	handler := handlers.NewAuthHandler(backend, sessions, renderer)

	form := url.Values{}
	form.Set("username", "admin")
	form.Set("password", "secret")

	w := httptest.NewRecorder()
	handler.Login(w, postForm("/admin/login", form))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))

	var tokenCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "habitat_admin_token" {
			tokenCookie = c
		}
	}
	require.NotNil(t, tokenCookie)
	assert.Equal(t, "jwt-token", tokenCookie.Value)
	assert.True(t, tokenCookie.HttpOnly)
}

func TestAuthHandler_BadCredentialsRerendersForm(t *testing.T) {
	renderer, sessions := newTestRenderer(t)
	backend := &stubAuthenticator{err: apperrors.NewUnauthorizedError("invalid credentials")}
	handler := handlers.NewAuthHandler(backend, sessions, renderer)

	form := url.Values{}
	form.Set("username", "admin")
	form.Set("password", "wrong")

	w := httptest.NewRecorder()
	handler.Login(w, postForm("/admin/login", form))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Usuario o contraseña incorrectos")
	// The username survives the round trip.
	assert.Contains(t, body, `value="admin"`)
}

func TestAuthHandler_BackendDownShowsServiceMessage(t *testing.T) {
	renderer, sessions := newTestRenderer(t)
	backend := &stubAuthenticator{err: apperrors.NewUnavailableError("backend unreachable", nil)}
	handler := handlers.NewAuthHandler(backend, sessions, renderer)

	form := url.Values{}
	form.Set("username", "admin")
	form.Set("password", "secret")

	w := httptest.NewRecorder()
	handler.Login(w, postForm("/admin/login", form))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "no está disponible")
}

func TestAuthHandler_LogoutClearsCookie(t *testing.T) {
	renderer, sessions := newTestRenderer(t)
	handler := handlers.NewAuthHandler(&stubAuthenticator{}, sessions, renderer)

	w := httptest.NewRecorder()
	handler.Logout(w, httptest.NewRequest("POST", "/admin/logout", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))

	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "habitat_admin_token" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}
