package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// Flash levels map onto the toast styles rendered by the base layout.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

const flashCookie = "habitat_flash"

// Flash is a one-shot notification carried to the next rendered page.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Manager reads and writes the session token cookie and flash
// messages. The token cookie is the single fixed client-side key the
// admin session lives under; no other client state is persisted.
type Manager struct {
	cookieName string
}

// NewManager creates a session manager using the given cookie name.
func NewManager(cookieName string) *Manager {
	return &Manager{cookieName: cookieName}
}

// Token returns the stored bearer token, or "" when not logged in.
func (m *Manager) Token(r *http.Request) string {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SetToken stores the bearer token in the session cookie.
func (m *Manager) SetToken(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearToken removes the session cookie.
func (m *Manager) ClearToken(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// AddFlash queues a notification for the next rendered page.
func (m *Manager) AddFlash(w http.ResponseWriter, level, message string) {
	data, err := json.Marshal(Flash{Level: level, Message: message})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.URLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// HasFlash reports whether the request carries a pending flash
// cookie, without consuming it.
func HasFlash(r *http.Request) bool {
	_, err := r.Cookie(flashCookie)
	return err == nil
}

// PopFlash returns the pending notification, if any, and clears it.
func (m *Manager) PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	data, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	flash := &Flash{}
	if err := json.Unmarshal(data, flash); err != nil {
		return nil
	}
	return flash
}
