package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitat-inmuebles/habitat-web/internal/api/handlers"
	"github.com/habitat-inmuebles/habitat-web/internal/api/session"
	"github.com/habitat-inmuebles/habitat-web/internal/application/services"
	"github.com/habitat-inmuebles/habitat-web/internal/domain/entities"
	"github.com/habitat-inmuebles/habitat-web/internal/infrastructure/clients/backendapi"
	apperrors "github.com/habitat-inmuebles/habitat-web/pkg/errors"
)

type stubContactSubmitter struct {
	received []backendapi.ContactPayload
	err      error
}

func (s *stubContactSubmitter) SubmitContact(ctx context.Context, payload backendapi.ContactPayload) (*entities.ContactSubmission, error) {
	s.received = append(s.received, payload)
	if s.err != nil {
		return nil, s.err
	}
	return &entities.ContactSubmission{ID: 1, Name: payload.Name}, nil
}

func newTestRenderer(t *testing.T) (*handlers.Renderer, *session.Manager) {
	t.Helper()
	sessions := session.NewManager("habitat_admin_token")
	settings := services.NewSettingsService(nil)
	renderer, err := handlers.NewRenderer(settings, sessions)
	require.NoError(t, err)
	return renderer, sessions
}

func contactHandler(t *testing.T, backend *stubContactSubmitter) *handlers.ContactHandler {
	t.Helper()
	renderer, sessions := newTestRenderer(t)
	settings := services.NewSettingsService(nil)
	return handlers.NewContactHandler(backend, settings, sessions, renderer)
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestContactHandler_Show(t *testing.T) {
	handler := contactHandler(t, &stubContactSubmitter{})

	w := httptest.NewRecorder()
	handler.Show(w, httptest.NewRequest("GET", "/contact?property_id=42", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="property_id" value="42"`)
}

func TestContactHandler_SubmitSuccessRedirects(t *testing.T) {
	backend := &stubContactSubmitter{}
	handler := contactHandler(t, backend)

	form := url.Values{}
	form.Set("name", "Ana")
	form.Set("email", "ana@example.com")
	form.Set("message", "Me interesa")
	form.Set("property_id", "7")

	w := httptest.NewRecorder()
	handler.Submit(w, postForm("/contact", form))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/contact", w.Header().Get("Location"))

	require.Len(t, backend.received, 1)
	payload := backend.received[0]
	assert.Equal(t, "Ana", payload.Name)
	require.NotNil(t, payload.PropertyID)
	assert.Equal(t, 7, *payload.PropertyID)
}

func TestContactHandler_BackendRejectionRetainsFields(t *testing.T) {
	backend := &stubContactSubmitter{err: apperrors.NewValidationError("Invalid email address")}
	handler := contactHandler(t, backend)

	form := url.Values{}
	form.Set("name", "Ana")
	form.Set("email", "not-an-email")
	form.Set("message", "Hola, quiero información")

	w := httptest.NewRecorder()
	handler.Submit(w, postForm("/contact", form))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Invalid email address")
	assert.Contains(t, body, "Ana")
	assert.Contains(t, body, "not-an-email")
	assert.Contains(t, body, "Hola, quiero información")
}

func TestContactHandler_BackendUnreachable(t *testing.T) {
	backend := &stubContactSubmitter{err: apperrors.NewUnavailableError("backend unreachable", nil)}
	handler := contactHandler(t, backend)

	form := url.Values{}
	form.Set("name", "Ana")
	form.Set("message", "Hola")

	w := httptest.NewRecorder()
	handler.Submit(w, postForm("/contact", form))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Ana")
}
