package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/habitat-inmuebles/habitat-web/internal/api/middleware"
	"github.com/habitat-inmuebles/habitat-web/internal/api/session"
	"github.com/habitat-inmuebles/habitat-web/internal/application/services"
	"github.com/habitat-inmuebles/habitat-web/internal/domain/entities"
	"github.com/habitat-inmuebles/habitat-web/internal/infrastructure/clients/backendapi"
	apperrors "github.com/habitat-inmuebles/habitat-web/pkg/errors"
)

// ContactAdmin defines the backend operations behind contact triage.
type ContactAdmin interface {
	ListContacts(ctx context.Context, token string) ([]entities.ContactSubmission, error)
	UpdateContact(ctx context.Context, token string, id int, payload backendapi.ContactUpdatePayload) (*entities.ContactSubmission, error)
	DeleteContact(ctx context.Context, token string, id int) error
	ContactPDF(ctx context.Context, token string, id int) ([]byte, error)
	SendContactEmail(ctx context.Context, token string, id int, recipient string) error
	ListUsers(ctx context.Context, token string) ([]entities.User, error)
}

// AdminContactsHandler serves the contact triage pages.
type AdminContactsHandler struct {
	backend  ContactAdmin
	sessions *session.Manager
	renderer *Renderer
}

// NewAdminContactsHandler creates a new contact triage handler.
func NewAdminContactsHandler(backend ContactAdmin, sessions *session.Manager, renderer *Renderer) *AdminContactsHandler {
	return &AdminContactsHandler{backend: backend, sessions: sessions, renderer: renderer}
}

type adminContactsPageData struct {
	Contacts  []entities.ContactSubmission
	Users     []entities.User
	CanAssign bool
	CanDelete bool
	CanExport bool
}

// List handles GET /admin/contacts
func (h *AdminContactsHandler) List(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())

	contacts, err := h.backend.ListContacts(r.Context(), token)
	if err != nil {
		h.renderer.RenderError(w, r, http.StatusServiceUnavailable, apperrors.Detail(err))
		return
	}

	data := adminContactsPageData{Contacts: contacts}
	if user := middleware.UserFromContext(r.Context()); user != nil {
		data.CanAssign = services.Can(user.Role, services.ActionAssignContacts)
		data.CanDelete = services.Can(user.Role, services.ActionDeleteContacts)
		data.CanExport = services.Can(user.Role, services.ActionExportContactPDF)
	}
	if data.CanAssign {
		if users, err := h.backend.ListUsers(r.Context(), token); err == nil {
			data.Users = users
		}
	}

	h.renderer.Render(w, r, http.StatusOK, "admin_contacts", "Consultas", data)
}

// Assign handles POST /admin/contacts/{id}/assign. An empty selection
// explicitly unassigns the submission.
func (h *AdminContactsHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contactID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.RenderError(w, r, http.StatusBadRequest, "No se pudo leer el formulario.")
		return
	}

	payload := backendapi.ContactUpdatePayload{
		AssignedToID: parseOptionalInt(r.PostFormValue("assigned_to_id")),
	}

	if _, err := h.backend.UpdateContact(r.Context(), middleware.TokenFromContext(r.Context()), id, payload); err != nil {
		h.sessions.AddFlash(w, session.FlashError, apperrors.Detail(err))
	} else {
		h.sessions.AddFlash(w, session.FlashSuccess, "Consulta actualizada.")
	}
	http.Redirect(w, r, "/admin/contacts", http.StatusSeeOther)
}

// MarkRead handles POST /admin/contacts/{id}/read
func (h *AdminContactsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contactID(w, r)
	if !ok {
		return
	}

	read := true
	payload := backendapi.ContactUpdatePayload{IsRead: &read}
	if _, err := h.backend.UpdateContact(r.Context(), middleware.TokenFromContext(r.Context()), id, payload); err != nil {
		h.sessions.AddFlash(w, session.FlashError, apperrors.Detail(err))
	}
	http.Redirect(w, r, "/admin/contacts", http.StatusSeeOther)
}

// Delete handles POST /admin/contacts/{id}/delete
func (h *AdminContactsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contactID(w, r)
	if !ok {
		return
	}

	if err := h.backend.DeleteContact(r.Context(), middleware.TokenFromContext(r.Context()), id); err != nil {
		h.sessions.AddFlash(w, session.FlashError, apperrors.Detail(err))
	} else {
		h.sessions.AddFlash(w, session.FlashSuccess, "Consulta eliminada.")
	}
	http.Redirect(w, r, "/admin/contacts", http.StatusSeeOther)
}

// SendEmail handles POST /admin/contacts/{id}/email. The backend sends
// to the submitter's address when no recipient override is given.
func (h *AdminContactsHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contactID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.RenderError(w, r, http.StatusBadRequest, "No se pudo leer el formulario.")
		return
	}

	recipient := r.PostFormValue("recipient")
	if err := h.backend.SendContactEmail(r.Context(), middleware.TokenFromContext(r.Context()), id, recipient); err != nil {
		h.sessions.AddFlash(w, session.FlashError, apperrors.Detail(err))
	} else {
		h.sessions.AddFlash(w, session.FlashSuccess, "Correo enviado.")
	}
	http.Redirect(w, r, "/admin/contacts", http.StatusSeeOther)
}

// DownloadPDF handles GET /admin/contacts/{id}/pdf
func (h *AdminContactsHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contactID(w, r)
	if !ok {
		return
	}

	pdf, err := h.backend.ContactPDF(r.Context(), middleware.TokenFromContext(r.Context()), id)
	if err != nil {
		if apperrors.TypeOf(err) == apperrors.ErrorTypeNotFound {
			h.renderer.RenderError(w, r, http.StatusNotFound, "La consulta solicitada no existe.")
			return
		}
		h.renderer.RenderError(w, r, http.StatusServiceUnavailable, apperrors.Detail(err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=contact_submission_%d.pdf", id))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func (h *AdminContactsHandler) contactID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.renderer.RenderError(w, r, http.StatusNotFound, "La consulta solicitada no existe.")
		return 0, false
	}
	return id, true
}
