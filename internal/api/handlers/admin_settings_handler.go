package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/habitat-inmuebles/habitat-web/internal/api/middleware"
	"github.com/habitat-inmuebles/habitat-web/internal/api/session"
	"github.com/habitat-inmuebles/habitat-web/internal/domain/entities"
	"github.com/habitat-inmuebles/habitat-web/internal/infrastructure/observability"
	apperrors "github.com/habitat-inmuebles/habitat-web/pkg/errors"
)

// SettingsAdmin defines the backend operations behind the settings and
// appearance pages.
type SettingsAdmin interface {
	Settings(ctx context.Context, token string) (map[string]entities.SiteSetting, error)
	UpdateSettings(ctx context.Context, token string, settings map[string]entities.SiteSetting) (map[string]entities.SiteSetting, error)
	Upload(ctx context.Context, token, category, filename string, file io.Reader) (string, error)
}

// SettingsRefresher re-resolves the in-memory settings after a save so
// the public pages pick the change up immediately.
type SettingsRefresher interface {
	Refresh(ctx context.Context) error
	GetString(key, fallback string) string
	GetBool(key string) bool
}

// AdminSettingsHandler serves the settings and appearance pages.
type AdminSettingsHandler struct {
	backend  SettingsAdmin
	resolver SettingsRefresher
	sessions *session.Manager
	renderer *Renderer
}

// NewAdminSettingsHandler creates a new settings handler.
func NewAdminSettingsHandler(backend SettingsAdmin, resolver SettingsRefresher, sessions *session.Manager, renderer *Renderer) *AdminSettingsHandler {
	return &AdminSettingsHandler{backend: backend, resolver: resolver, sessions: sessions, renderer: renderer}
}

type settingField struct {
	Key       string
	Label     string
	Value     string
	Multiline bool
}

// settingsFields is the editable general settings form, in display
// order.
var settingsFields = []struct {
	Key       string
	Label     string
	Multiline bool
}{
	{"site_name", "Nombre del sitio", false},
	{"footer_tagline", "Lema del pie de página", false},
	{"contact_phone", "Teléfono de contacto", false},
	{"contact_email", "Correo de contacto", false},
	{"contact_address", "Dirección", false},
	{"office_latitude", "Latitud de la oficina", false},
	{"office_longitude", "Longitud de la oficina", false},
	{"facebook_profile_url", "Facebook", false},
	{"instagram_profile_url", "Instagram", false},
	{"tiktok_profile_url", "TikTok", false},
	{"linkedin_profile_url", "LinkedIn", false},
	{"whatsapp_contact_url", "WhatsApp", false},
	{"about_page_main_title", "Título de Nosotros", false},
	{"about_page_main_paragraph", "Párrafo principal de Nosotros", true},
	{"about_page_mission_title", "Título de la misión", false},
	{"about_page_mission_paragraph", "Párrafo de la misión", true},
	{"about_page_vision_title", "Título de la visión", false},
	{"about_page_vision_paragraph", "Párrafo de la visión", true},
	{"about_page_history_title", "Título de la historia", false},
	{"about_page_history_paragraph", "Párrafo de la historia", true},
}

type settingsPageData struct {
	Fields       []settingField
	ContactsOpen bool
}

// Show handles GET /admin/settings
func (h *AdminSettingsHandler) Show(w http.ResponseWriter, r *http.Request) {
	data := settingsPageData{ContactsOpen: h.resolver.GetBool("non_admin_can_view_all_contacts")}
	for _, f := range settingsFields {
		data.Fields = append(data.Fields, settingField{
			Key:       f.Key,
			Label:     f.Label,
			Value:     h.resolver.GetString(f.Key, ""),
			Multiline: f.Multiline,
		})
	}
	h.renderer.Render(w, r, http.StatusOK, "admin_settings", "Configuración", data)
}

// Save handles POST /admin/settings. Submitted values are written back
// in the shape the backend stored them: direct scalars stay direct and
// wrapped {"text": ...} values stay wrapped.
func (h *AdminSettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.RenderError(w, r, http.StatusBadRequest, "No se pudo leer el formulario.")
		return
	}

	token := middleware.TokenFromContext(r.Context())

	current, err := h.backend.Settings(r.Context(), token)
	if err != nil {
		h.sessions.AddFlash(w, session.FlashError, apperrors.Detail(err))
		http.Redirect(w, r, "/admin/settings", http.StatusSeeOther)
		return
	}

	updated := make(map[string]entities.SiteSetting)
	for _, f := range settingsFields {
		if !r.PostForm.Has(f.Key) {
			continue
		}
		updated[f.Key] = settingEntry(current, f.Key, strings.TrimSpace(r.PostFormValue(f.Key)))
	}
	updated["non_admin_can_view_all_contacts"] = entities.SiteSetting{
		Value:    entities.NewSettingValue(r.PostFormValue("non_admin_can_view_all_contacts") != ""),
		Category: categoryOf(current, "non_admin_can_view_all_contacts"),
	}

	h.persist(w, r, token, updated, "/admin/settings", "Configuración guardada.")
}

// appearance color fields, in display order.
var appearanceColors = []struct {
	Key   string
	Label string
}{
	{"theme_primary_color", "Color primario"},
	{"theme_secondary_color", "Color secundario"},
	{"theme_accent_color", "Color de acento"},
	{"theme_background_primary", "Fondo principal"},
	{"theme_background_secondary", "Fondo secundario"},
	{"theme_header_background_color", "Fondo del encabezado"},
	{"theme_header_text_color", "Texto del encabezado"},
	{"theme_footer_background_color", "Fondo del pie"},
	{"theme_footer_text_color", "Texto del pie"},
	{"theme_text_color_on_dark", "Texto sobre fondo oscuro"},
	{"theme_text_color_primary_lightbg", "Texto principal sobre fondo claro"},
	{"theme_text_color_secondary_lightbg", "Texto secundario sobre fondo claro"},
	{"theme_border_color", "Bordes"},
	{"theme_success_color", "Éxito"},
	{"theme_error_color", "Error"},
	{"theme_info_color", "Información"},
	{"theme_warning_color", "Advertencia"},
}

type appearancePageData struct {
	Colors         []settingField
	FontPrimary    string
	FontSecondary  string
	HomeBackground string
}

// ShowAppearance handles GET /admin/appearance
func (h *AdminSettingsHandler) ShowAppearance(w http.ResponseWriter, r *http.Request) {
	data := appearancePageData{
		FontPrimary:    h.resolver.GetString("primary_font", ""),
		FontSecondary:  h.resolver.GetString("secondary_font", ""),
		HomeBackground: h.resolver.GetString("home_background_url", ""),
	}
	for _, c := range appearanceColors {
		data.Colors = append(data.Colors, settingField{
			Key:   c.Key,
			Label: c.Label,
			Value: h.resolver.GetString(c.Key, "#000000"),
		})
	}
	h.renderer.Render(w, r, http.StatusOK, "admin_appearance", "Apariencia", data)
}

// SaveAppearance handles POST /admin/appearance
func (h *AdminSettingsHandler) SaveAppearance(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.renderer.RenderError(w, r, http.StatusBadRequest, "No se pudo leer el formulario.")
		return
	}

	token := middleware.TokenFromContext(r.Context())

	current, err := h.backend.Settings(r.Context(), token)
	if err != nil {
		h.sessions.AddFlash(w, session.FlashError, apperrors.Detail(err))
		http.Redirect(w, r, "/admin/appearance", http.StatusSeeOther)
		return
	}

	updated := make(map[string]entities.SiteSetting)
	for _, c := range appearanceColors {
		if !r.PostForm.Has(c.Key) {
			continue
		}
		updated[c.Key] = settingEntry(current, c.Key, strings.TrimSpace(r.PostFormValue(c.Key)))
	}
	if v := strings.TrimSpace(r.PostFormValue("font_primary")); v != "" {
		updated["primary_font"] = settingEntry(current, "primary_font", v)
	}
	if v := strings.TrimSpace(r.PostFormValue("font_secondary")); v != "" {
		updated["secondary_font"] = settingEntry(current, "secondary_font", v)
	}

	// Optional hero background upload runs before the save.
	file, header, err := r.FormFile("home_background")
	switch err {
	case nil:
		url, uploadErr := h.backend.Upload(r.Context(), token, "settings", header.Filename, file)
		file.Close()
		if uploadErr != nil {
			h.sessions.AddFlash(w, session.FlashError, "No se pudo subir la imagen de fondo: "+apperrors.Detail(uploadErr))
			http.Redirect(w, r, "/admin/appearance", http.StatusSeeOther)
			return
		}
		updated["home_background_url"] = settingEntry(current, "home_background_url", url)
	case http.ErrMissingFile:
	default:
		h.renderer.RenderError(w, r, http.StatusBadRequest, "Archivo inválido.")
		return
	}

	h.persist(w, r, token, updated, "/admin/appearance", "Apariencia guardada.")
}

func (h *AdminSettingsHandler) persist(w http.ResponseWriter, r *http.Request, token string, updated map[string]entities.SiteSetting, redirect, success string) {
	if _, err := h.backend.UpdateSettings(r.Context(), token, updated); err != nil {
		h.sessions.AddFlash(w, session.FlashError, apperrors.Detail(err))
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}

	if err := h.resolver.Refresh(r.Context()); err != nil {
		observability.LoggerFromContext(r.Context()).Warn().Err(err).Msg("settings refresh after save failed")
	}

	h.sessions.AddFlash(w, session.FlashSuccess, success)
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

// settingEntry rebuilds one setting in the shape the backend stored it.
func settingEntry(current map[string]entities.SiteSetting, key, value string) entities.SiteSetting {
	entry := entities.SiteSetting{Category: categoryOf(current, key)}
	if existing, ok := current[key]; ok && existing.Value.IsWrapped() && !entities.ScalarSettingKey(key) {
		entry.Value = entities.NewSettingValue(map[string]any{"text": value})
	} else {
		entry.Value = entities.NewSettingValue(value)
	}
	return entry
}

func categoryOf(current map[string]entities.SiteSetting, key string) string {
	if existing, ok := current[key]; ok {
		return existing.Category
	}
	return ""
}
