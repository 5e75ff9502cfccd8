package handlers

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/habitat-inmuebles/habitat-web/internal/api/middleware"
	"github.com/habitat-inmuebles/habitat-web/internal/api/session"
	"github.com/habitat-inmuebles/habitat-web/internal/domain/entities"
	"github.com/habitat-inmuebles/habitat-web/internal/infrastructure/clients/backendapi"
	apperrors "github.com/habitat-inmuebles/habitat-web/pkg/errors"
)

const maxUploadMemory = 32 << 20

// PropertyAdmin defines the backend operations behind listing
// management.
type PropertyAdmin interface {
	ListProperties(ctx context.Context) ([]entities.Property, error)
	GetProperty(ctx context.Context, id int) (*entities.Property, error)
	CreateProperty(ctx context.Context, token string, payload backendapi.PropertyPayload) (*entities.Property, error)
	UpdateProperty(ctx context.Context, token string, id int, payload backendapi.PropertyPayload) (*entities.Property, error)
	DeleteProperty(ctx context.Context, token string, id int) error
	ListUsers(ctx context.Context, token string) ([]entities.User, error)
	Upload(ctx context.Context, token, category, filename string, file io.Reader) (string, error)
}

// AdminPropertiesHandler serves the listing management pages.
type AdminPropertiesHandler struct {
	backend  PropertyAdmin
	sessions *session.Manager
	renderer *Renderer
}

// NewAdminPropertiesHandler creates a new listing management handler.
func NewAdminPropertiesHandler(backend PropertyAdmin, sessions *session.Manager, renderer *Renderer) *AdminPropertiesHandler {
	return &AdminPropertiesHandler{backend: backend, sessions: sessions, renderer: renderer}
}

type adminPropertiesPageData struct {
	Properties []entities.Property
}

// List handles GET /admin/properties
func (h *AdminPropertiesHandler) List(w http.ResponseWriter, r *http.Request) {
	properties, err := h.backend.ListProperties(r.Context())
	if err != nil {
		h.renderer.RenderError(w, r, http.StatusServiceUnavailable, apperrors.Detail(err))
		return
	}
	h.renderer.Render(w, r, http.StatusOK, "admin_properties", "Inmuebles", adminPropertiesPageData{Properties: properties})
}

type propertyFormData struct {
	Property      *entities.Property
	Action        string
	PropertyTypes []string
	ListingTypes  []string
	Users         []entities.User
	Error         string
}

func (h *AdminPropertiesHandler) formData(ctx context.Context, property *entities.Property, action string) propertyFormData {
	data := propertyFormData{
		Property: property,
		Action:   action,
		PropertyTypes: []string{
			entities.PropertyTypeCasa,
			entities.PropertyTypeApartamento,
			entities.PropertyTypeLocal,
			entities.PropertyTypeOficina,
			entities.PropertyTypeTerreno,
			entities.PropertyTypeOtro,
		},
		ListingTypes: []string{entities.ListingTypeVenta, entities.ListingTypeRenta},
	}

	// The assignable user list is optional on the form.
	users, err := h.backend.ListUsers(ctx, middleware.TokenFromContext(ctx))
	if err == nil {
		data.Users = users
	}
	return data
}

// New handles GET /admin/properties/new
func (h *AdminPropertiesHandler) New(w http.ResponseWriter, r *http.Request) {
	data := h.formData(r.Context(), &entities.Property{}, "/admin/properties")
	h.renderer.Render(w, r, http.StatusOK, "admin_property_form", "Nuevo inmueble", data)
}

// Edit handles GET /admin/properties/{id}/edit
func (h *AdminPropertiesHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.renderer.RenderError(w, r, http.StatusNotFound, "El inmueble solicitado no existe.")
		return
	}

	property, err := h.backend.GetProperty(r.Context(), id)
	if err != nil {
		if apperrors.TypeOf(err) == apperrors.ErrorTypeNotFound {
			h.renderer.RenderError(w, r, http.StatusNotFound, "El inmueble solicitado no existe.")
			return
		}
		h.renderer.RenderError(w, r, http.StatusServiceUnavailable, apperrors.Detail(err))
		return
	}

	data := h.formData(r.Context(), property, fmt.Sprintf("/admin/properties/%d", id))
	h.renderer.Render(w, r, http.StatusOK, "admin_property_form", "Editar inmueble", data)
}

// Create handles POST /admin/properties
func (h *AdminPropertiesHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, 0)
}

// Update handles POST /admin/properties/{id}
func (h *AdminPropertiesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.renderer.RenderError(w, r, http.StatusNotFound, "El inmueble solicitado no existe.")
		return
	}
	h.save(w, r, id)
}

// save runs the create/update pipeline: parse the form, upload images
// one at a time, then send a single save request. If any upload fails
// the save is aborted and nothing is persisted.
func (h *AdminPropertiesHandler) save(w http.ResponseWriter, r *http.Request, id int) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.renderer.RenderError(w, r, http.StatusBadRequest, "No se pudo leer el formulario.")
		return
	}

	token := middleware.TokenFromContext(r.Context())
	payload, parseErr := parsePropertyForm(r)
	if parseErr != "" {
		h.renderFormError(w, r, id, payload, parseErr, http.StatusBadRequest)
		return
	}

	// Uploads run before the save so a failed upload leaves the
	// listing untouched.
	if url, err, ok := h.uploadFormFile(r, token, "main_image"); err != nil {
		h.renderFormError(w, r, id, payload, "No se pudo subir la imagen principal: "+apperrors.Detail(err), http.StatusBadGateway)
		return
	} else if ok {
		payload.ImageURL = url
	} else if id != 0 {
		// Keep the existing main image on update.
		if current, err := h.backend.GetProperty(r.Context(), id); err == nil {
			payload.ImageURL = current.ImageURL
		}
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["additional_images"] {
			url, err := h.uploadHeader(r.Context(), token, header)
			if err != nil {
				h.renderFormError(w, r, id, payload, "No se pudo subir una imagen de la galería: "+apperrors.Detail(err), http.StatusBadGateway)
				return
			}
			payload.AdditionalImageURLs = append(payload.AdditionalImageURLs, url)
		}
	}

	var err error
	if id == 0 {
		_, err = h.backend.CreateProperty(r.Context(), token, payload)
	} else {
		_, err = h.backend.UpdateProperty(r.Context(), token, id, payload)
	}
	if err != nil {
		status := http.StatusBadGateway
		if apperrors.TypeOf(err) == apperrors.ErrorTypeValidation {
			status = http.StatusBadRequest
		}
		h.renderFormError(w, r, id, payload, apperrors.Detail(err), status)
		return
	}

	if id == 0 {
		h.sessions.AddFlash(w, session.FlashSuccess, "Inmueble creado.")
	} else {
		h.sessions.AddFlash(w, session.FlashSuccess, "Inmueble actualizado.")
	}
	http.Redirect(w, r, "/admin/properties", http.StatusSeeOther)
}

// Delete handles POST /admin/properties/{id}/delete
func (h *AdminPropertiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.renderer.RenderError(w, r, http.StatusNotFound, "El inmueble solicitado no existe.")
		return
	}

	if err := h.backend.DeleteProperty(r.Context(), middleware.TokenFromContext(r.Context()), id); err != nil {
		h.sessions.AddFlash(w, session.FlashError, apperrors.Detail(err))
	} else {
		h.sessions.AddFlash(w, session.FlashSuccess, "Inmueble eliminado.")
	}
	http.Redirect(w, r, "/admin/properties", http.StatusSeeOther)
}

// renderFormError re-renders the form from the submitted values so a
// failed upload or save keeps everything the user typed. On update the
// stored gallery is still fetched so the image checkboxes stay visible.
func (h *AdminPropertiesHandler) renderFormError(w http.ResponseWriter, r *http.Request, id int, payload backendapi.PropertyPayload, message string, status int) {
	property := &entities.Property{
		ID:           id,
		Title:        payload.Title,
		Description:  payload.Description,
		Location:     payload.Location,
		PropertyType: payload.PropertyType,
		ListingType:  payload.ListingType,
		Bedrooms:     payload.Bedrooms,
		Bathrooms:    payload.Bathrooms,
		SquareFeet:   payload.SquareFeet,
		Latitude:     payload.Latitude,
		Longitude:    payload.Longitude,
		IsFeatured:   payload.IsFeatured,
		ImageURL:     payload.ImageURL,
	}
	if r.PostFormValue("price") != "" {
		price := payload.Price
		property.Price = &price
	}
	if payload.AssignedToID != nil {
		property.AssignedTo = &entities.User{ID: *payload.AssignedToID}
	}

	action := "/admin/properties"
	if id != 0 {
		action = fmt.Sprintf("/admin/properties/%d", id)
		if current, err := h.backend.GetProperty(r.Context(), id); err == nil {
			property.Images = current.Images
			if property.ImageURL == "" {
				property.ImageURL = current.ImageURL
			}
		}
	}
	data := h.formData(r.Context(), property, action)
	data.Error = message
	h.renderer.Render(w, r, status, "admin_property_form", "Inmueble", data)
}

// uploadFormFile uploads a single optional form file. ok is false when
// the field was left empty.
func (h *AdminPropertiesHandler) uploadFormFile(r *http.Request, token, field string) (string, error, bool) {
	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return "", nil, false
	}
	if err != nil {
		return "", apperrors.NewValidationError("archivo inválido"), false
	}
	defer file.Close()

	url, err := h.backend.Upload(r.Context(), token, "properties", header.Filename, file)
	if err != nil {
		return "", err, false
	}
	return url, nil, true
}

func (h *AdminPropertiesHandler) uploadHeader(ctx context.Context, token string, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", apperrors.NewValidationError("archivo inválido")
	}
	defer file.Close()
	return h.backend.Upload(ctx, token, "properties", header.Filename, file)
}

// parsePropertyForm reads the listing form defensively. Unparseable
// optional numbers are dropped instead of failing the save; only the
// required fields report an error message.
func parsePropertyForm(r *http.Request) (backendapi.PropertyPayload, string) {
	var payload backendapi.PropertyPayload

	payload.Title = strings.TrimSpace(r.PostFormValue("title"))
	if payload.Title == "" {
		return payload, "El título es obligatorio."
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(r.PostFormValue("price")), 64)
	if err != nil || price < 0 {
		return payload, "El precio debe ser un número válido."
	}
	payload.Price = price

	payload.Description = strings.TrimSpace(r.PostFormValue("description"))
	payload.Location = strings.TrimSpace(r.PostFormValue("location"))
	payload.PropertyType = r.PostFormValue("property_type")
	payload.ListingType = r.PostFormValue("listing_type")
	payload.IsFeatured = r.PostFormValue("is_featured") != ""

	payload.Bedrooms = parseOptionalInt(r.PostFormValue("bedrooms"))
	payload.Bathrooms = parseOptionalInt(r.PostFormValue("bathrooms"))
	payload.SquareFeet = parseOptionalFloat(r.PostFormValue("square_feet"))
	payload.Latitude = parseOptionalFloat(r.PostFormValue("latitude"))
	payload.Longitude = parseOptionalFloat(r.PostFormValue("longitude"))
	payload.AssignedToID = parseOptionalInt(r.PostFormValue("assigned_to_id"))

	for _, raw := range r.PostForm["delete_image_ids"] {
		if imageID, err := strconv.Atoi(raw); err == nil {
			payload.DeleteImageIDs = append(payload.DeleteImageIDs, imageID)
		}
	}

	return payload, ""
}

func parseOptionalInt(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func parseOptionalFloat(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
