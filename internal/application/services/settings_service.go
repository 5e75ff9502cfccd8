package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/habitat-inmuebles/habitat-web/internal/domain/entities"
	"github.com/habitat-inmuebles/habitat-web/internal/infrastructure/observability"
)

const themePrefix = "theme_"

// defaultSettings is the built-in fallback table. The resolver serves
// these values whenever the backend has no value for a key or cannot
// be reached at all.
var defaultSettings = map[string]any{
	"site_name":       "Habitat",
	"contact_email":   "info@example.com",
	"contact_phone":   "(123) 456-7890",
	"contact_address": "123 Main St, Anytown, USA",
	// Caracas center
	"office_latitude":  "10.491",
	"office_longitude": "-66.879",

	"facebook_profile_url":  "#",
	"instagram_profile_url": "#",
	"tiktok_profile_url":    "#",
	"linkedin_profile_url":  "#",
	"whatsapp_contact_url":  "#",

	"about_page_main_title":        "Sobre Nosotros",
	"about_page_main_paragraph":    "Comprometidos con encontrar tu espacio ideal.",
	"about_page_mission_title":     "Nuestra Misión",
	"about_page_mission_paragraph": "Facilitar a nuestros clientes el proceso de encontrar y adquirir la propiedad de sus sueños.",
	"about_page_vision_title":      "Nuestra Visión",
	"about_page_vision_paragraph":  "Ser la agencia inmobiliaria líder y más respetada en Caracas y sus alrededores.",
	"about_page_history_title":     "Nuestra Historia",
	"about_page_history_paragraph": "Con más de una década de experiencia en el sector inmobiliario.",
	"footer_tagline":               "Tu socio confiable en bienes raíces.",

	"primary_font":   "Montserrat",
	"secondary_font": "Raleway",

	"theme_primary_color":                "#282e4b",
	"theme_secondary_color":              "#242c3c",
	"theme_accent_color":                 "#c8a773",
	"theme_text_color_on_dark":           "#FFFFFF",
	"theme_background_primary":           "#1A1A1A",
	"theme_background_secondary":         "#1f2937",
	"theme_header_background_color":      "#f3f4f6",
	"theme_header_text_color":            "#111827",
	"theme_footer_background_color":      "#f3f4f6",
	"theme_footer_text_color":            "#111827",
	"theme_border_color":                 "#4b5563",
	"theme_success_color":                "#16a34a",
	"theme_error_color":                  "#dc2626",
	"theme_info_color":                   "#3b82f6",
	"theme_warning_color":                "#eab308",
	"theme_text_color_primary_lightbg":   "#111827",
	"theme_text_color_secondary_lightbg": "#6b7280",

	// Empty means the hero renders on the theme background alone.
	"home_background_url": "",

	// Legacy keys kept for copy that predates the theme_ prefix.
	"primary_color":    "#282e4b",
	"secondary_color":  "#242c3c",
	"accent_color":     "#c8a773",
	"text_color":       "#FFFFFF",
	"background_color": "#1A1A1A",

	"non_admin_can_view_all_contacts": true,
}

// SettingsFetcher is the backend read used by the resolver.
type SettingsFetcher interface {
	PublicSettings(ctx context.Context) (map[string]entities.SiteSetting, error)
}

// ThemeVar is one CSS custom property of the active theme.
type ThemeVar struct {
	Name  string
	Value string
}

// Theme is the process-wide presentation state derived from settings.
// It is built as a whole on every refresh and swapped wholesale; one
// theme is active at a time.
type Theme struct {
	Vars            []ThemeVar
	FontPrimary     string
	FontSecondary   string
	BackgroundColor string
	TextColor       string
	BackgroundImage string
}

// CSS renders the theme as a stylesheet fragment for the base layout.
func (t *Theme) CSS() string {
	var b strings.Builder
	b.WriteString(":root{")
	for _, v := range t.Vars {
		fmt.Fprintf(&b, "%s:%s;", v.Name, v.Value)
	}
	b.WriteString("}")

	fmt.Fprintf(&b, "body{font-family:%q,sans-serif;background-color:var(--color-background-primary);color:var(--color-text-on-dark);", t.FontPrimary)
	if t.BackgroundImage != "" {
		fmt.Fprintf(&b, "background-image:url(%s);background-size:cover;background-position:center center;background-attachment:fixed;", t.BackgroundImage)
	}
	b.WriteString("}")
	return b.String()
}

// SettingsService loads the site settings document, merges it over the
// built-in defaults and answers every lookup the templates and
// handlers make. Lookups never fail: with the backend unreachable the
// full default table is served.
type SettingsService struct {
	fetcher SettingsFetcher

	mu     sync.RWMutex
	values map[string]any
	theme  *Theme
}

// NewSettingsService creates a resolver primed with the default table.
func NewSettingsService(fetcher SettingsFetcher) *SettingsService {
	s := &SettingsService{fetcher: fetcher}
	s.install(nil)
	return s
}

// Refresh reloads settings from the backend and swaps the merged table
// and the active theme in one step. On failure the default table is
// installed in full; the error is returned for logging only and no
// lookup ever observes it.
func (s *SettingsService) Refresh(ctx context.Context) error {
	fetched, err := s.fetcher.PublicSettings(ctx)
	if err != nil {
		s.install(nil)
		return err
	}
	s.install(fetched)
	return nil
}

// StartPeriodicRefresh reloads settings on a fixed interval until the
// context is cancelled, so admin edits made elsewhere reach this
// process without a restart.
func (s *SettingsService) StartPeriodicRefresh(ctx context.Context, interval time.Duration) {
	logger := observability.GetLogger()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				logger.Warn().Err(err).Msg("settings refresh failed, serving defaults")
			}
		}
	}
}

// install builds the merged table from defaults plus fetched values
// and replaces the current snapshot wholesale.
func (s *SettingsService) install(fetched map[string]entities.SiteSetting) {
	values := make(map[string]any, len(defaultSettings)+len(fetched))
	for k, v := range defaultSettings {
		values[k] = v
	}
	for key, setting := range fetched {
		scalar := setting.Value.Scalar()
		if scalar == nil {
			continue
		}
		values[key] = scalar
	}

	theme := buildTheme(values)

	s.mu.Lock()
	s.values = values
	s.theme = theme
	s.mu.Unlock()
}

// Get resolves a setting in priority order: the fetched/merged value,
// the _color twin for theme-prefixed keys, the caller's fallback, then
// the default table. It never panics and never returns an error.
func (s *SettingsService) Get(key string, fallback any) any {
	s.mu.RLock()
	values := s.values
	s.mu.RUnlock()

	if v, ok := values[key]; ok {
		return v
	}
	if strings.HasPrefix(key, themePrefix) && !strings.HasSuffix(key, "_color") {
		if v, ok := values[key+"_color"]; ok {
			return v
		}
	}
	if fallback != nil {
		return fallback
	}
	if v, ok := defaultSettings[key]; ok {
		return v
	}
	if v, ok := defaultSettings[key+"_color"]; ok {
		return v
	}
	return nil
}

// GetString resolves a setting as a string.
func (s *SettingsService) GetString(key, fallback string) string {
	v := s.Get(key, nil)
	if v == nil {
		return fallback
	}
	switch typed := v.(type) {
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fallback
	}
}

// GetBool resolves a setting as a bool; non-boolean values are parsed
// leniently ("true"/"1" count as true).
func (s *SettingsService) GetBool(key string) bool {
	switch typed := s.Get(key, nil).(type) {
	case bool:
		return typed
	case string:
		parsed, err := strconv.ParseBool(typed)
		return err == nil && parsed
	case float64:
		return typed != 0
	default:
		return false
	}
}

// NonAdminCanViewAllContacts is the feature flag gating the contact
// triage view for manager and staff roles.
func (s *SettingsService) NonAdminCanViewAllContacts() bool {
	return s.GetBool("non_admin_can_view_all_contacts")
}

// Theme returns the currently active theme snapshot.
func (s *SettingsService) Theme() *Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// buildTheme projects the merged table into the presentation state:
// every theme_*_color key becomes a CSS custom property, plus explicit
// variables for the dark background, text-on-dark and both fonts.
func buildTheme(values map[string]any) *Theme {
	theme := &Theme{
		FontPrimary:     stringValue(values, "primary_font"),
		FontSecondary:   stringValue(values, "secondary_font"),
		BackgroundColor: stringValue(values, "theme_background_primary"),
		TextColor:       stringValue(values, "theme_text_color_on_dark"),
		BackgroundImage: stringValue(values, "home_background_url"),
	}

	colorKeys := make([]string, 0, len(values))
	for key := range values {
		if strings.HasPrefix(key, themePrefix) && strings.HasSuffix(key, "_color") {
			colorKeys = append(colorKeys, key)
		}
	}
	sort.Strings(colorKeys)

	for _, key := range colorKeys {
		theme.Vars = append(theme.Vars, ThemeVar{Name: cssVarName(key), Value: stringValue(values, key)})
	}
	theme.Vars = append(theme.Vars,
		ThemeVar{Name: "--color-background-primary", Value: theme.BackgroundColor},
		ThemeVar{Name: "--color-background-secondary", Value: stringValue(values, "theme_background_secondary")},
		ThemeVar{Name: "--color-text-on-dark", Value: theme.TextColor},
		ThemeVar{Name: "--font-primary", Value: theme.FontPrimary},
		ThemeVar{Name: "--font-secondary", Value: theme.FontSecondary},
	)
	return theme
}

// cssVarName maps theme_accent_color to --color-accent.
func cssVarName(key string) string {
	name := strings.TrimPrefix(key, themePrefix)
	name = strings.TrimSuffix(name, "_color")
	name = strings.ReplaceAll(name, "_", "-")
	return "--color-" + name
}

func stringValue(values map[string]any, key string) string {
	if v, ok := values[key].(string); ok {
		return v
	}
	return ""
}
