package backendapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitat-inmuebles/habitat-web/internal/infrastructure/clients/backendapi"
	apperrors "github.com/habitat-inmuebles/habitat-web/pkg/errors"
)

func newClient(t *testing.T, handler http.HandlerFunc) *backendapi.HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return backendapi.NewClient(server.URL, 5*time.Second)
}

func TestLogin_SendsFormAndReturnsToken(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/users/token/", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "admin", r.PostFormValue("username"))
		assert.Equal(t, "secret", r.PostFormValue("password"))

		json.NewEncoder(w).Encode(map[string]string{"access_token": "jwt", "token_type": "bearer"})
	})

	token, err := client.Login(context.Background(), "admin", "secret")

	require.NoError(t, err)
	assert.Equal(t, "jwt", token)
}

func TestLogin_RejectionSurfacesDetail(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect username or password"})
	})

	_, err := client.Login(context.Background(), "admin", "bad")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeUnauthorized, apperrors.TypeOf(err))
	assert.Equal(t, "Incorrect username or password", apperrors.Detail(err))
}

func TestCurrentUser_SendsBearerToken(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{"id": 4, "username": "ana", "role": "manager"})
	})

	user, err := client.CurrentUser(context.Background(), "tok-1")

	require.NoError(t, err)
	assert.Equal(t, 4, user.ID)
	assert.Equal(t, "manager", string(user.Role))
}

func TestGetProperty_NotFound(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Property not found"})
	})

	_, err := client.GetProperty(context.Background(), 99)

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))
}

func TestCreateProperty_ValidationDetail(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/properties/", r.URL.Path)
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"detail": "price must be positive"})
	})

	_, err := client.CreateProperty(context.Background(), "tok", backendapi.PropertyPayload{Title: "X", Price: -1})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
	assert.Equal(t, "price must be positive", apperrors.Detail(err))
}

func TestTrackClick_PostsWithoutAuth(t *testing.T) {
	var gotPath, gotAuth string
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.TrackClick(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, "/properties/7/track-click", gotPath)
	assert.Empty(t, gotAuth)
}

func TestUpload_MultipartRoundTrip(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/uploads/properties", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "casa.jpg", header.Filename)

		json.NewEncoder(w).Encode(map[string]string{"filename": "casa.jpg", "url": "/media/properties/casa.jpg"})
	})

	url, err := client.Upload(context.Background(), "tok", "properties", "casa.jpg", strings.NewReader("fake-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "/media/properties/casa.jpg", url)
}

func TestUnreachableBackendMapsToUnavailable(t *testing.T) {
	client := backendapi.NewClient("http://127.0.0.1:1", 200*time.Millisecond)

	_, err := client.ListProperties(context.Background())

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeUnavailable, apperrors.TypeOf(err))
}

func TestContactPDF_ReturnsRawBytes(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contact/5/pdf", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 fake"))
	})

	pdf, err := client.ContactPDF(context.Background(), "tok", 5)

	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake"), pdf)
}
