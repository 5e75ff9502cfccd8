package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/habitat-inmuebles/habitat-web/internal/api/middleware"
	"github.com/habitat-inmuebles/habitat-web/internal/api/session"
	"github.com/habitat-inmuebles/habitat-web/internal/domain/entities"
	"github.com/habitat-inmuebles/habitat-web/internal/infrastructure/clients/backendapi"
	apperrors "github.com/habitat-inmuebles/habitat-web/pkg/errors"
)

// TeamAdmin defines the backend operations behind team management.
type TeamAdmin interface {
	ListTeam(ctx context.Context) ([]entities.TeamMember, error)
	GetTeamMember(ctx context.Context, token string, id int) (*entities.TeamMember, error)
	CreateTeamMember(ctx context.Context, token string, payload backendapi.TeamMemberPayload) (*entities.TeamMember, error)
	UpdateTeamMember(ctx context.Context, token string, id int, payload backendapi.TeamMemberPayload) (*entities.TeamMember, error)
	DeleteTeamMember(ctx context.Context, token string, id int) error
	Upload(ctx context.Context, token, category, filename string, file io.Reader) (string, error)
}

// AdminTeamHandler serves the team management pages.
type AdminTeamHandler struct {
	backend  TeamAdmin
	sessions *session.Manager
	renderer *Renderer
}

// NewAdminTeamHandler creates a new team management handler.
func NewAdminTeamHandler(backend TeamAdmin, sessions *session.Manager, renderer *Renderer) *AdminTeamHandler {
	return &AdminTeamHandler{backend: backend, sessions: sessions, renderer: renderer}
}

type adminTeamPageData struct {
	Members []entities.TeamMember
}

// List handles GET /admin/team
func (h *AdminTeamHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.backend.ListTeam(r.Context())
	if err != nil {
		h.renderer.RenderError(w, r, http.StatusServiceUnavailable, apperrors.Detail(err))
		return
	}
	h.renderer.Render(w, r, http.StatusOK, "admin_team", "Equipo", adminTeamPageData{Members: members})
}

type teamFormData struct {
	Member *entities.TeamMember
	Action string
	Error  string
}

// New handles GET /admin/team/new
func (h *AdminTeamHandler) New(w http.ResponseWriter, r *http.Request) {
	data := teamFormData{Member: &entities.TeamMember{}, Action: "/admin/team"}
	h.renderer.Render(w, r, http.StatusOK, "admin_team_form", "Nuevo miembro", data)
}

// Edit handles GET /admin/team/{id}/edit
func (h *AdminTeamHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.renderer.RenderError(w, r, http.StatusNotFound, "El miembro solicitado no existe.")
		return
	}

	member, err := h.backend.GetTeamMember(r.Context(), middleware.TokenFromContext(r.Context()), id)
	if err != nil {
		if apperrors.TypeOf(err) == apperrors.ErrorTypeNotFound {
			h.renderer.RenderError(w, r, http.StatusNotFound, "El miembro solicitado no existe.")
			return
		}
		h.renderer.RenderError(w, r, http.StatusServiceUnavailable, apperrors.Detail(err))
		return
	}

	data := teamFormData{Member: member, Action: fmt.Sprintf("/admin/team/%d", id)}
	h.renderer.Render(w, r, http.StatusOK, "admin_team_form", "Editar miembro", data)
}

// Create handles POST /admin/team
func (h *AdminTeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, 0)
}

// Update handles POST /admin/team/{id}
func (h *AdminTeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.renderer.RenderError(w, r, http.StatusNotFound, "El miembro solicitado no existe.")
		return
	}
	h.save(w, r, id)
}

func (h *AdminTeamHandler) save(w http.ResponseWriter, r *http.Request, id int) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.renderer.RenderError(w, r, http.StatusBadRequest, "No se pudo leer el formulario.")
		return
	}

	token := middleware.TokenFromContext(r.Context())

	payload := backendapi.TeamMemberPayload{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Position: strings.TrimSpace(r.PostFormValue("position")),
	}
	if payload.Name == "" {
		h.renderFormError(w, r, id, payload, "El nombre es obligatorio.", http.StatusBadRequest)
		return
	}
	if order, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("order"))); err == nil {
		payload.Order = order
	}

	file, header, err := r.FormFile("photo")
	switch err {
	case nil:
		url, uploadErr := h.backend.Upload(r.Context(), token, "team", header.Filename, file)
		file.Close()
		if uploadErr != nil {
			h.renderFormError(w, r, id, payload, "No se pudo subir la fotografía: "+apperrors.Detail(uploadErr), http.StatusBadGateway)
			return
		}
		payload.ImageURL = url
	case http.ErrMissingFile:
		if id != 0 {
			if current, err := h.backend.GetTeamMember(r.Context(), token, id); err == nil {
				payload.ImageURL = current.ImageURL
			}
		}
	default:
		h.renderFormError(w, r, id, payload, "Archivo inválido.", http.StatusBadRequest)
		return
	}

	if id == 0 {
		_, err = h.backend.CreateTeamMember(r.Context(), token, payload)
	} else {
		_, err = h.backend.UpdateTeamMember(r.Context(), token, id, payload)
	}
	if err != nil {
		status := http.StatusBadGateway
		if apperrors.TypeOf(err) == apperrors.ErrorTypeValidation {
			status = http.StatusBadRequest
		}
		h.renderFormError(w, r, id, payload, apperrors.Detail(err), status)
		return
	}

	h.sessions.AddFlash(w, session.FlashSuccess, "Equipo actualizado.")
	http.Redirect(w, r, "/admin/team", http.StatusSeeOther)
}

// Delete handles POST /admin/team/{id}/delete
func (h *AdminTeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.renderer.RenderError(w, r, http.StatusNotFound, "El miembro solicitado no existe.")
		return
	}

	if err := h.backend.DeleteTeamMember(r.Context(), middleware.TokenFromContext(r.Context()), id); err != nil {
		h.sessions.AddFlash(w, session.FlashError, apperrors.Detail(err))
	} else {
		h.sessions.AddFlash(w, session.FlashSuccess, "Miembro eliminado.")
	}
	http.Redirect(w, r, "/admin/team", http.StatusSeeOther)
}

// renderFormError re-renders the form from the submitted values so a
// failed upload or save keeps everything the user typed.
func (h *AdminTeamHandler) renderFormError(w http.ResponseWriter, r *http.Request, id int, payload backendapi.TeamMemberPayload, message string, status int) {
	member := &entities.TeamMember{
		ID:       id,
		Name:     payload.Name,
		Position: payload.Position,
		Order:    payload.Order,
		ImageURL: payload.ImageURL,
	}
	action := "/admin/team"
	if id != 0 {
		action = fmt.Sprintf("/admin/team/%d", id)
		if member.ImageURL == "" {
			if current, err := h.backend.GetTeamMember(r.Context(), middleware.TokenFromContext(r.Context()), id); err == nil {
				member.ImageURL = current.ImageURL
			}
		}
	}
	h.renderer.Render(w, r, status, "admin_team_form", "Equipo", teamFormData{Member: member, Action: action, Error: message})
}
