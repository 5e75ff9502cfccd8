package handlers_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitat-inmuebles/habitat-web/internal/api/handlers"
	"github.com/habitat-inmuebles/habitat-web/internal/domain/entities"
	"github.com/habitat-inmuebles/habitat-web/internal/infrastructure/clients/backendapi"
	apperrors "github.com/habitat-inmuebles/habitat-web/pkg/errors"
)

type stubPropertyAdmin struct {
	createErr error
	stored    *entities.Property
}

func (s *stubPropertyAdmin) ListProperties(ctx context.Context) ([]entities.Property, error) {
	return nil, nil
}

func (s *stubPropertyAdmin) GetProperty(ctx context.Context, id int) (*entities.Property, error) {
	if s.stored == nil {
		return nil, apperrors.NewNotFoundError("property not found")
	}
	return s.stored, nil
}

func (s *stubPropertyAdmin) CreateProperty(ctx context.Context, token string, payload backendapi.PropertyPayload) (*entities.Property, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &entities.Property{ID: 1, Title: payload.Title}, nil
}

func (s *stubPropertyAdmin) UpdateProperty(ctx context.Context, token string, id int, payload backendapi.PropertyPayload) (*entities.Property, error) {
	return &entities.Property{ID: id, Title: payload.Title}, nil
}

func (s *stubPropertyAdmin) DeleteProperty(ctx context.Context, token string, id int) error {
	return nil
}

func (s *stubPropertyAdmin) ListUsers(ctx context.Context, token string) ([]entities.User, error) {
	return nil, nil
}

func (s *stubPropertyAdmin) Upload(ctx context.Context, token, category, filename string, file io.Reader) (string, error) {
	return "/uploads/properties/" + filename, nil
}

// postMultipart builds an image-less listing form submission.
func postMultipart(t *testing.T, path string, fields url.Values) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, values := range fields {
		for _, value := range values {
			require.NoError(t, writer.WriteField(key, value))
		}
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func propertiesHandler(t *testing.T, backend *stubPropertyAdmin) *handlers.AdminPropertiesHandler {
	t.Helper()
	renderer, sessions := newTestRenderer(t)
	return handlers.NewAdminPropertiesHandler(backend, sessions, renderer)
}

func TestAdminProperties_CreateRejectionKeepsEnteredValues(t *testing.T) {
	backend := &stubPropertyAdmin{createErr: apperrors.NewValidationError("Price out of range")}
	handler := propertiesHandler(t, backend)

	w := httptest.NewRecorder()
	handler.Create(w, postMultipart(t, "/admin/properties", url.Values{
		"title":    {"Quinta en La Lagunita"},
		"price":    {"250000"},
		"location": {"La Lagunita, Caracas"},
		"bedrooms": {"4"},
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Price out of range")
	assert.Contains(t, body, `value="Quinta en La Lagunita"`)
	assert.Contains(t, body, `value="La Lagunita, Caracas"`)
	assert.Contains(t, body, `value="250000"`)
}

func TestAdminProperties_ValidationErrorKeepsTitle(t *testing.T) {
	handler := propertiesHandler(t, &stubPropertyAdmin{})

	w := httptest.NewRecorder()
	handler.Create(w, postMultipart(t, "/admin/properties", url.Values{
		"title": {"Sin precio"},
		"price": {"no-es-numero"},
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "El precio debe ser un número válido.")
	assert.Contains(t, w.Body.String(), `value="Sin precio"`)
}

func TestAdminProperties_UpdateRejectionKeepsEntryAndStoredGallery(t *testing.T) {
	backend := &stubPropertyAdmin{
		stored: &entities.Property{
			ID:       7,
			Title:    "Título viejo",
			ImageURL: "/uploads/properties/vieja.jpg",
			Images:   []entities.PropertyImage{{ID: 3, ImageURL: "/uploads/properties/galeria.jpg"}},
		},
	}
	handler := propertiesHandler(t, backend)

	req := postMultipart(t, "/admin/properties/7", url.Values{
		"title": {""},
		"price": {"100"},
	})
	req.SetPathValue("id", "7")
	w := httptest.NewRecorder()
	handler.Update(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "El título es obligatorio.")
	assert.NotContains(t, body, `value="Título viejo"`)
	assert.Contains(t, body, "galeria.jpg")
}
