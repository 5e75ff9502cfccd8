package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/habitat-inmuebles/habitat-web/internal/api/session"
	"github.com/habitat-inmuebles/habitat-web/internal/domain/entities"
	"github.com/habitat-inmuebles/habitat-web/internal/infrastructure/clients/backendapi"
	apperrors "github.com/habitat-inmuebles/habitat-web/pkg/errors"
)

// ContactSubmitter defines the backend operation the contact form uses.
type ContactSubmitter interface {
	SubmitContact(ctx context.Context, payload backendapi.ContactPayload) (*entities.ContactSubmission, error)
}

// ContactHandler serves the public contact form.
type ContactHandler struct {
	backend  ContactSubmitter
	settings SettingsReader
	sessions *session.Manager
	renderer *Renderer
}

// NewContactHandler creates a new contact form handler.
func NewContactHandler(backend ContactSubmitter, settings SettingsReader, sessions *session.Manager, renderer *Renderer) *ContactHandler {
	return &ContactHandler{backend: backend, settings: settings, sessions: sessions, renderer: renderer}
}

type contactForm struct {
	Name       string
	Email      string
	Phone      string
	Subject    string
	Message    string
	PropertyID string
}

type contactPageData struct {
	Form    contactForm
	Error   string
	Phone   string
	Email   string
	Address string
}

func (h *ContactHandler) pageData(form contactForm) contactPageData {
	return contactPageData{
		Form:    form,
		Phone:   h.settings.GetString("contact_phone", ""),
		Email:   h.settings.GetString("contact_email", ""),
		Address: h.settings.GetString("contact_address", ""),
	}
}

// Show handles GET /contact
func (h *ContactHandler) Show(w http.ResponseWriter, r *http.Request) {
	form := contactForm{PropertyID: r.URL.Query().Get("property_id")}
	h.renderer.Render(w, r, http.StatusOK, "contact", "Contacto", h.pageData(form))
}

// Submit handles POST /contact. On backend rejection the form renders
// again with every field retained and the backend's message shown.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.RenderError(w, r, http.StatusBadRequest, "No se pudo leer el formulario.")
		return
	}

	form := contactForm{
		Name:       strings.TrimSpace(r.PostFormValue("name")),
		Email:      strings.TrimSpace(r.PostFormValue("email")),
		Phone:      strings.TrimSpace(r.PostFormValue("phone")),
		Subject:    strings.TrimSpace(r.PostFormValue("subject")),
		Message:    strings.TrimSpace(r.PostFormValue("message")),
		PropertyID: strings.TrimSpace(r.PostFormValue("property_id")),
	}

	payload := backendapi.ContactPayload{
		Name:    form.Name,
		Email:   form.Email,
		Phone:   form.Phone,
		Subject: form.Subject,
		Message: form.Message,
	}
	if form.PropertyID != "" {
		if id, err := strconv.Atoi(form.PropertyID); err == nil {
			payload.PropertyID = &id
		}
	}

	if _, err := h.backend.SubmitContact(r.Context(), payload); err != nil {
		status := http.StatusBadGateway
		if apperrors.TypeOf(err) == apperrors.ErrorTypeValidation {
			status = http.StatusBadRequest
		}
		data := h.pageData(form)
		data.Error = apperrors.Detail(err)
		h.renderer.Render(w, r, status, "contact", "Contacto", data)
		return
	}

	h.sessions.AddFlash(w, session.FlashSuccess, "Tu mensaje fue enviado. Te contactaremos pronto.")
	http.Redirect(w, r, "/contact", http.StatusSeeOther)
}
