package handlers_test

import (
	"context"
	"io"
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

type stubTeamAdmin struct {
	createErr error
}

func (s *stubTeamAdmin) ListTeam(ctx context.Context) ([]entities.TeamMember, error) {
	return nil, nil
}

func (s *stubTeamAdmin) GetTeamMember(ctx context.Context, token string, id int) (*entities.TeamMember, error) {
	return &entities.TeamMember{ID: id, Name: "stored"}, nil
}

func (s *stubTeamAdmin) CreateTeamMember(ctx context.Context, token string, payload backendapi.TeamMemberPayload) (*entities.TeamMember, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &entities.TeamMember{ID: 1, Name: payload.Name}, nil
}

func (s *stubTeamAdmin) UpdateTeamMember(ctx context.Context, token string, id int, payload backendapi.TeamMemberPayload) (*entities.TeamMember, error) {
	return &entities.TeamMember{ID: id, Name: payload.Name}, nil
}

func (s *stubTeamAdmin) DeleteTeamMember(ctx context.Context, token string, id int) error {
	return nil
}

func (s *stubTeamAdmin) Upload(ctx context.Context, token, category, filename string, file io.Reader) (string, error) {
	return "/uploads/team/" + filename, nil
}

func TestAdminTeam_CreateRejectionKeepsEnteredValues(t *testing.T) {
	backend := &stubTeamAdmin{createErr: apperrors.NewValidationError("Name already exists")}
	renderer, sessions := newTestRenderer(t)
	handler := handlers.NewAdminTeamHandler(backend, sessions, renderer)

	w := httptest.NewRecorder()
	handler.Create(w, postMultipart(t, "/admin/team", url.Values{
		"name":     {"María Pérez"},
		"position": {"Asesora"},
		"order":    {"2"},
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Name already exists")
	assert.Contains(t, body, `value="María Pérez"`)
	assert.Contains(t, body, `value="Asesora"`)
}
