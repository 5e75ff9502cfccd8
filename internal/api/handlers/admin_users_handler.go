package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/habitat-inmuebles/habitat-web/internal/api/middleware"
	"github.com/habitat-inmuebles/habitat-web/internal/api/session"
	"github.com/habitat-inmuebles/habitat-web/internal/domain/entities"
	"github.com/habitat-inmuebles/habitat-web/internal/infrastructure/clients/backendapi"
	apperrors "github.com/habitat-inmuebles/habitat-web/pkg/errors"
)

// UserAdmin defines the backend operations behind account management.
type UserAdmin interface {
	ListUsers(ctx context.Context, token string) ([]entities.User, error)
	GetUser(ctx context.Context, token string, id int) (*entities.User, error)
	CreateUser(ctx context.Context, token string, payload backendapi.UserPayload) (*entities.User, error)
	UpdateUser(ctx context.Context, token string, id int, payload backendapi.UserPayload) (*entities.User, error)
	DeleteUser(ctx context.Context, token string, id int) error
}

// AdminUsersHandler serves the account management pages.
type AdminUsersHandler struct {
	backend  UserAdmin
	sessions *session.Manager
	renderer *Renderer
}

// NewAdminUsersHandler creates a new account management handler.
func NewAdminUsersHandler(backend UserAdmin, sessions *session.Manager, renderer *Renderer) *AdminUsersHandler {
	return &AdminUsersHandler{backend: backend, sessions: sessions, renderer: renderer}
}

type adminUsersPageData struct {
	Users []entities.User
}

// List handles GET /admin/users
func (h *AdminUsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.backend.ListUsers(r.Context(), middleware.TokenFromContext(r.Context()))
	if err != nil {
		h.renderer.RenderError(w, r, http.StatusServiceUnavailable, apperrors.Detail(err))
		return
	}
	h.renderer.Render(w, r, http.StatusOK, "admin_users", "Usuarios", adminUsersPageData{Users: users})
}

type userFormData struct {
	Account *entities.User
	Action  string
	Roles   []entities.Role
	Error   string
}

func userForm(account *entities.User, action string) userFormData {
	return userFormData{
		Account: account,
		Action:  action,
		Roles:   []entities.Role{entities.RoleAdmin, entities.RoleManager, entities.RoleStaff},
	}
}

// New handles GET /admin/users/new
func (h *AdminUsersHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "admin_user_form", "Nuevo usuario", userForm(&entities.User{Role: entities.RoleStaff}, "/admin/users"))
}

// Edit handles GET /admin/users/{id}/edit
func (h *AdminUsersHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.renderer.RenderError(w, r, http.StatusNotFound, "El usuario solicitado no existe.")
		return
	}

	account, err := h.backend.GetUser(r.Context(), middleware.TokenFromContext(r.Context()), id)
	if err != nil {
		if apperrors.TypeOf(err) == apperrors.ErrorTypeNotFound {
			h.renderer.RenderError(w, r, http.StatusNotFound, "El usuario solicitado no existe.")
			return
		}
		h.renderer.RenderError(w, r, http.StatusServiceUnavailable, apperrors.Detail(err))
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "admin_user_form", "Editar usuario", userForm(account, fmt.Sprintf("/admin/users/%d", id)))
}

// Create handles POST /admin/users
func (h *AdminUsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, 0)
}

// Update handles POST /admin/users/{id}
func (h *AdminUsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.renderer.RenderError(w, r, http.StatusNotFound, "El usuario solicitado no existe.")
		return
	}
	h.save(w, r, id)
}

func (h *AdminUsersHandler) save(w http.ResponseWriter, r *http.Request, id int) {
	if err := r.ParseForm(); err != nil {
		h.renderer.RenderError(w, r, http.StatusBadRequest, "No se pudo leer el formulario.")
		return
	}

	payload := backendapi.UserPayload{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Role:     r.PostFormValue("role"),
		Password: r.PostFormValue("password"),
	}

	if payload.Username == "" || payload.Email == "" {
		h.renderFormError(w, r, id, payload, "Usuario y correo son obligatorios.", http.StatusBadRequest)
		return
	}
	if !entities.Role(payload.Role).Valid() {
		h.renderFormError(w, r, id, payload, "Rol inválido.", http.StatusBadRequest)
		return
	}
	if id == 0 && payload.Password == "" {
		h.renderFormError(w, r, id, payload, "La contraseña es obligatoria.", http.StatusBadRequest)
		return
	}

	token := middleware.TokenFromContext(r.Context())
	var err error
	if id == 0 {
		_, err = h.backend.CreateUser(r.Context(), token, payload)
	} else {
		_, err = h.backend.UpdateUser(r.Context(), token, id, payload)
	}
	if err != nil {
		status := http.StatusBadGateway
		if apperrors.TypeOf(err) == apperrors.ErrorTypeValidation {
			status = http.StatusBadRequest
		}
		h.renderFormError(w, r, id, payload, apperrors.Detail(err), status)
		return
	}

	h.sessions.AddFlash(w, session.FlashSuccess, "Usuario guardado.")
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// Delete handles POST /admin/users/{id}/delete. Deleting the signed-in
// account is rejected before reaching the backend.
func (h *AdminUsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.renderer.RenderError(w, r, http.StatusNotFound, "El usuario solicitado no existe.")
		return
	}

	if current := middleware.UserFromContext(r.Context()); current != nil && current.ID == id {
		h.sessions.AddFlash(w, session.FlashWarning, "No puedes eliminar tu propia cuenta.")
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}

	if err := h.backend.DeleteUser(r.Context(), middleware.TokenFromContext(r.Context()), id); err != nil {
		h.sessions.AddFlash(w, session.FlashError, apperrors.Detail(err))
	} else {
		h.sessions.AddFlash(w, session.FlashSuccess, "Usuario eliminado.")
	}
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// renderFormError re-renders the form from the submitted values so a
// failed save keeps everything the user typed.
func (h *AdminUsersHandler) renderFormError(w http.ResponseWriter, r *http.Request, id int, payload backendapi.UserPayload, message string, status int) {
	account := &entities.User{
		ID:       id,
		Username: payload.Username,
		Email:    payload.Email,
		Role:     entities.Role(payload.Role),
	}
	action := "/admin/users"
	if id != 0 {
		action = fmt.Sprintf("/admin/users/%d", id)
	}
	data := userForm(account, action)
	data.Error = message
	h.renderer.Render(w, r, status, "admin_user_form", "Usuario", data)
}
