package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/habitat-inmuebles/habitat-web/internal/api/middleware"
	"github.com/habitat-inmuebles/habitat-web/internal/api/session"
	"github.com/habitat-inmuebles/habitat-web/internal/application/services"
	"github.com/habitat-inmuebles/habitat-web/internal/infrastructure/observability"
	"github.com/habitat-inmuebles/habitat-web/web"
)

// SettingsReader exposes the resolved site settings to page rendering.
type SettingsReader interface {
	GetString(key, fallback string) string
	Theme() *services.Theme
}

// viewData is the envelope every page template receives.
type viewData struct {
	Title    string
	SiteName string
	Tagline  string
	Social   []socialLink
	ThemeCSS template.CSS
	Flash    *session.Flash
	User     *userView
	Year     int
	Path     string
	Data     any
}

type socialLink struct {
	Label string
	URL   string
}

// socialKeys maps footer links onto their settings keys, in display order.
var socialKeys = []socialLink{
	{Label: "Facebook", URL: "facebook_profile_url"},
	{Label: "Instagram", URL: "instagram_profile_url"},
	{Label: "TikTok", URL: "tiktok_profile_url"},
	{Label: "LinkedIn", URL: "linkedin_profile_url"},
	{Label: "WhatsApp", URL: "whatsapp_contact_url"},
}

// userView is the slice of the session user the templates need.
type userView struct {
	ID       int
	Username string
	Role     string
}

var templateFuncs = template.FuncMap{
	"money": formatMoney,
	"num":   formatInt,
	"area":  formatFloat,
}

// formatMoney renders a price the way the catalog shows it. A nil price
// reads as "Consultar".
func formatMoney(v *float64) string {
	if v == nil {
		return "Consultar"
	}
	whole := int64(*v)
	s := strconv.FormatInt(whole, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 && r != '-' {
			b.WriteRune('.')
		}
		b.WriteRune(r)
	}
	return "US$ " + b.String()
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Renderer executes the embedded page templates over the shared layout.
type Renderer struct {
	pages    map[string]*template.Template
	settings SettingsReader
	sessions *session.Manager
}

// NewRenderer parses every page template against the base layout.
func NewRenderer(settings SettingsReader, sessions *session.Manager) (*Renderer, error) {
	entries, err := fs.Glob(web.Files, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("listing page templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(entries))
	for _, entry := range entries {
		name := strings.TrimSuffix(path.Base(entry), ".html")
		tmpl, err := template.New("base.html").Funcs(templateFuncs).ParseFS(web.Files, "templates/base.html", entry)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", entry, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages, settings: settings, sessions: sessions}, nil
}

// Render executes a page into a buffer before writing, so a template
// failure yields a clean 500 instead of a half-written body.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	tmpl, ok := rd.pages[page]
	if !ok {
		observability.LoggerFromContext(r.Context()).Error().Str("page", page).Msg("unknown template")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	view := viewData{
		Title:    title,
		SiteName: rd.settings.GetString("site_name", "Habitat"),
		Tagline:  rd.settings.GetString("footer_tagline", ""),
		ThemeCSS: template.CSS(rd.settings.Theme().CSS()),
		Flash:    rd.sessions.PopFlash(w, r),
		Year:     time.Now().Year(),
		Path:     r.URL.Path,
		Data:     data,
	}
	for _, s := range socialKeys {
		if url := rd.settings.GetString(s.URL, ""); url != "" && url != "#" {
			view.Social = append(view.Social, socialLink{Label: s.Label, URL: url})
		}
	}
	if u := middleware.UserFromContext(r.Context()); u != nil {
		view.User = &userView{ID: u.ID, Username: u.Username, Role: string(u.Role)}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("page", page).Msg("template execution failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// errorPageData feeds the shared error template.
type errorPageData struct {
	Heading string
	Message string
}

// RenderError maps a status code onto the error page.
func (rd *Renderer) RenderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	heading := "Algo salió mal"
	switch status {
	case http.StatusNotFound:
		heading = "No encontrado"
	case http.StatusServiceUnavailable:
		heading = "Servicio no disponible"
	}
	rd.Render(w, r, status, "error", heading, errorPageData{Heading: heading, Message: message})
}

// respondWithJSON writes a JSON response with the given status code
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"failed to marshal response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError writes a JSON error response
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
