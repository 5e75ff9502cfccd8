package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/habitat-inmuebles/habitat-web/internal/api/handlers"
	"github.com/habitat-inmuebles/habitat-web/internal/domain/entities"
	"github.com/habitat-inmuebles/habitat-web/internal/infrastructure/clients/backendapi"
	apperrors "github.com/habitat-inmuebles/habitat-web/pkg/errors"
)

type stubUserAdmin struct {
	createErr error
	updateErr error
	getCalls  int
}

func (s *stubUserAdmin) ListUsers(ctx context.Context, token string) ([]entities.User, error) {
	return nil, nil
}

func (s *stubUserAdmin) GetUser(ctx context.Context, token string, id int) (*entities.User, error) {
	s.getCalls++
	return &entities.User{ID: id, Username: "stored", Email: "stored@example.com", Role: entities.RoleStaff}, nil
}

func (s *stubUserAdmin) CreateUser(ctx context.Context, token string, payload backendapi.UserPayload) (*entities.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &entities.User{ID: 9, Username: payload.Username}, nil
}

func (s *stubUserAdmin) UpdateUser(ctx context.Context, token string, id int, payload backendapi.UserPayload) (*entities.User, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &entities.User{ID: id, Username: payload.Username}, nil
}

func (s *stubUserAdmin) DeleteUser(ctx context.Context, token string, id int) error { return nil }

func usersHandler(t *testing.T, backend *stubUserAdmin) *handlers.AdminUsersHandler {
	t.Helper()
	renderer, sessions := newTestRenderer(t)
	return handlers.NewAdminUsersHandler(backend, sessions, renderer)
}

func TestAdminUsers_CreateRejectionKeepsEnteredValues(t *testing.T) {
	backend := &stubUserAdmin{createErr: apperrors.NewValidationError("Invalid email")}
	handler := usersHandler(t, backend)

	w := httptest.NewRecorder()
	handler.Create(w, postForm("/admin/users", url.Values{
		"username": {"nuevo-usuario"},
		"email":    {"nuevo@example.com"},
		"role":     {"staff"},
		"password": {"secreto"},
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Invalid email")
	assert.Contains(t, body, `value="nuevo-usuario"`)
	assert.Contains(t, body, `value="nuevo@example.com"`)
}

func TestAdminUsers_UpdateRejectionKeepsEnteredValues(t *testing.T) {
	backend := &stubUserAdmin{updateErr: apperrors.NewValidationError("Username already taken")}
	handler := usersHandler(t, backend)

	req := postForm("/admin/users/4", url.Values{
		"username": {"renombrado"},
		"email":    {"renombrado@example.com"},
		"role":     {"manager"},
	})
	req.SetPathValue("id", "4")
	w := httptest.NewRecorder()
	handler.Update(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `value="renombrado"`)
	assert.NotContains(t, body, "stored@example.com")
	assert.Zero(t, backend.getCalls)
}

func TestAdminUsers_MissingPasswordOnCreate(t *testing.T) {
	handler := usersHandler(t, &stubUserAdmin{})

	w := httptest.NewRecorder()
	handler.Create(w, postForm("/admin/users", url.Values{
		"username": {"sinclave"},
		"email":    {"sinclave@example.com"},
		"role":     {"staff"},
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "La contraseña es obligatoria.")
	assert.Contains(t, w.Body.String(), `value="sinclave"`)
}
