package backendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/habitat-inmuebles/habitat-web/internal/domain/entities"
	apperrors "github.com/habitat-inmuebles/habitat-web/pkg/errors"
)

// Client is the typed surface of the external backend API. All
// persistence, authentication and file storage live behind it; this
// service only holds request-scoped copies of what it returns.
type Client interface {
	Login(ctx context.Context, username, password string) (string, error)
	CurrentUser(ctx context.Context, token string) (*entities.User, error)

	ListProperties(ctx context.Context) ([]entities.Property, error)
	GetProperty(ctx context.Context, id int) (*entities.Property, error)
	CreateProperty(ctx context.Context, token string, payload PropertyPayload) (*entities.Property, error)
	UpdateProperty(ctx context.Context, token string, id int, payload PropertyPayload) (*entities.Property, error)
	DeleteProperty(ctx context.Context, token string, id int) error
	TrackClick(ctx context.Context, id int) error

	ListTeam(ctx context.Context) ([]entities.TeamMember, error)
	GetTeamMember(ctx context.Context, token string, id int) (*entities.TeamMember, error)
	CreateTeamMember(ctx context.Context, token string, payload TeamMemberPayload) (*entities.TeamMember, error)
	UpdateTeamMember(ctx context.Context, token string, id int, payload TeamMemberPayload) (*entities.TeamMember, error)
	DeleteTeamMember(ctx context.Context, token string, id int) error

	ListUsers(ctx context.Context, token string) ([]entities.User, error)
	GetUser(ctx context.Context, token string, id int) (*entities.User, error)
	CreateUser(ctx context.Context, token string, payload UserPayload) (*entities.User, error)
	UpdateUser(ctx context.Context, token string, id int, payload UserPayload) (*entities.User, error)
	DeleteUser(ctx context.Context, token string, id int) error

	SubmitContact(ctx context.Context, payload ContactPayload) (*entities.ContactSubmission, error)
	ListContacts(ctx context.Context, token string) ([]entities.ContactSubmission, error)
	UpdateContact(ctx context.Context, token string, id int, payload ContactUpdatePayload) (*entities.ContactSubmission, error)
	DeleteContact(ctx context.Context, token string, id int) error
	ContactPDF(ctx context.Context, token string, id int) ([]byte, error)
	SendContactEmail(ctx context.Context, token string, id int, recipient string) error

	PublicSettings(ctx context.Context) (map[string]entities.SiteSetting, error)
	Settings(ctx context.Context, token string) (map[string]entities.SiteSetting, error)
	UpdateSettings(ctx context.Context, token string, settings map[string]entities.SiteSetting) (map[string]entities.SiteSetting, error)

	Upload(ctx context.Context, token, category, filename string, file io.Reader) (string, error)
}

// PropertyPayload is the create/update body for a listing. Image
// removal travels inside the update payload as DeleteImageIDs rather
// than as separate delete calls.
type PropertyPayload struct {
	Title               string   `json:"title"`
	Description         string   `json:"description,omitempty"`
	Price               float64  `json:"price"`
	Location            string   `json:"location,omitempty"`
	PropertyType        string   `json:"property_type,omitempty"`
	ListingType         string   `json:"listing_type,omitempty"`
	Bedrooms            *int     `json:"bedrooms"`
	Bathrooms           *int     `json:"bathrooms"`
	SquareFeet          *float64 `json:"square_feet"`
	Latitude            *float64 `json:"latitude"`
	Longitude           *float64 `json:"longitude"`
	IsFeatured          bool     `json:"is_featured"`
	ImageURL            string   `json:"image_url,omitempty"`
	AdditionalImageURLs []string `json:"additional_image_urls,omitempty"`
	DeleteImageIDs      []int    `json:"delete_image_ids,omitempty"`
	AssignedToID        *int     `json:"assigned_to_id"`
}

// TeamMemberPayload is the create/update body for a team member.
type TeamMemberPayload struct {
	Name     string `json:"name"`
	Position string `json:"position,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Order    int    `json:"order"`
}

// UserPayload is the create/update body for a back-office user.
// Password is only sent when set.
type UserPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
	Password string `json:"password,omitempty"`
}

// ContactPayload is the public contact form body.
type ContactPayload struct {
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Message    string `json:"message"`
	PropertyID *int   `json:"property_id,omitempty"`
}

// ContactUpdatePayload is the admin triage update body. A nil
// AssignedToID explicitly unassigns the submission.
type ContactUpdatePayload struct {
	AssignedToID *int  `json:"assigned_to_id"`
	IsRead       *bool `json:"is_read,omitempty"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type uploadResponse struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// HTTPClient implements Client against a single backend root.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend API client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Login exchanges credentials for a bearer token via the form-encoded
// token endpoint.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/token/", strings.NewReader(form.Encode()))
	if err != nil {
		return "", apperrors.NewInternalError("failed to build login request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewUnavailableError("backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", c.statusError(resp)
	}

	out := tokenResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperrors.NewExternalError("malformed token response", err)
	}
	if out.AccessToken == "" {
		return "", apperrors.NewExternalError("empty access token", nil)
	}
	return out.AccessToken, nil
}

// CurrentUser resolves the user owning the given token ("whoami").
func (c *HTTPClient) CurrentUser(ctx context.Context, token string) (*entities.User, error) {
	out := &entities.User{}
	if err := c.doJSON(ctx, http.MethodGet, "/users/me", token, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListProperties(ctx context.Context) ([]entities.Property, error) {
	var out []entities.Property
	if err := c.doJSON(ctx, http.MethodGet, "/properties/", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetProperty(ctx context.Context, id int) (*entities.Property, error) {
	out := &entities.Property{}
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/properties/%d/", id), "", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateProperty(ctx context.Context, token string, payload PropertyPayload) (*entities.Property, error) {
	out := &entities.Property{}
	if err := c.doJSON(ctx, http.MethodPost, "/properties/", token, payload, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) UpdateProperty(ctx context.Context, token string, id int, payload PropertyPayload) (*entities.Property, error) {
	out := &entities.Property{}
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/properties/%d/", id), token, payload, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) DeleteProperty(ctx context.Context, token string, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/properties/%d/", id), token, nil, nil)
}

// TrackClick records a click event for a listing. Unauthenticated and
// best-effort: callers log failures and move on.
func (c *HTTPClient) TrackClick(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/properties/%d/track-click", id), "", nil, nil)
}

func (c *HTTPClient) ListTeam(ctx context.Context) ([]entities.TeamMember, error) {
	var out []entities.TeamMember
	if err := c.doJSON(ctx, http.MethodGet, "/team/", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetTeamMember(ctx context.Context, token string, id int) (*entities.TeamMember, error) {
	out := &entities.TeamMember{}
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/team/%d/", id), token, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateTeamMember(ctx context.Context, token string, payload TeamMemberPayload) (*entities.TeamMember, error) {
	out := &entities.TeamMember{}
	if err := c.doJSON(ctx, http.MethodPost, "/team/", token, payload, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) UpdateTeamMember(ctx context.Context, token string, id int, payload TeamMemberPayload) (*entities.TeamMember, error) {
	out := &entities.TeamMember{}
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/team/%d/", id), token, payload, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) DeleteTeamMember(ctx context.Context, token string, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/team/%d/", id), token, nil, nil)
}

func (c *HTTPClient) ListUsers(ctx context.Context, token string) ([]entities.User, error) {
	var out []entities.User
	if err := c.doJSON(ctx, http.MethodGet, "/users/", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetUser(ctx context.Context, token string, id int) (*entities.User, error) {
	out := &entities.User{}
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/users/%d/", id), token, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateUser(ctx context.Context, token string, payload UserPayload) (*entities.User, error) {
	out := &entities.User{}
	if err := c.doJSON(ctx, http.MethodPost, "/users/", token, payload, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, token string, id int, payload UserPayload) (*entities.User, error) {
	out := &entities.User{}
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/users/%d/", id), token, payload, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) DeleteUser(ctx context.Context, token string, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/users/%d/", id), token, nil, nil)
}

func (c *HTTPClient) SubmitContact(ctx context.Context, payload ContactPayload) (*entities.ContactSubmission, error) {
	out := &entities.ContactSubmission{}
	if err := c.doJSON(ctx, http.MethodPost, "/contact/", "", payload, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListContacts(ctx context.Context, token string) ([]entities.ContactSubmission, error) {
	var out []entities.ContactSubmission
	if err := c.doJSON(ctx, http.MethodGet, "/contact/", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) UpdateContact(ctx context.Context, token string, id int, payload ContactUpdatePayload) (*entities.ContactSubmission, error) {
	out := &entities.ContactSubmission{}
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/contact/%d/", id), token, payload, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) DeleteContact(ctx context.Context, token string, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/contact/%d/", id), token, nil, nil)
}

// ContactPDF fetches the rendered PDF for a submission as a binary blob.
func (c *HTTPClient) ContactPDF(ctx context.Context, token string, id int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/contact/%d/pdf", c.baseURL, id), nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build pdf request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewUnavailableError("backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to read pdf body", err)
	}
	return data, nil
}

func (c *HTTPClient) SendContactEmail(ctx context.Context, token string, id int, recipient string) error {
	body := map[string]string{"recipient_email": recipient}
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/contact/%d/send-email", id), token, body, nil)
}

// PublicSettings fetches the unauthenticated settings document used by
// the public site.
func (c *HTTPClient) PublicSettings(ctx context.Context) (map[string]entities.SiteSetting, error) {
	out := map[string]entities.SiteSetting{}
	if err := c.doJSON(ctx, http.MethodGet, "/settings/", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Settings fetches the settings document with admin credentials.
func (c *HTTPClient) Settings(ctx context.Context, token string) (map[string]entities.SiteSetting, error) {
	out := map[string]entities.SiteSetting{}
	if err := c.doJSON(ctx, http.MethodGet, "/settings", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) UpdateSettings(ctx context.Context, token string, settings map[string]entities.SiteSetting) (map[string]entities.SiteSetting, error) {
	out := map[string]entities.SiteSetting{}
	if err := c.doJSON(ctx, http.MethodPut, "/settings", token, settings, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Upload posts one file as multipart form data and returns the stored
// URL. Callers upload files strictly one at a time; a record is never
// saved with a partial image set.
func (c *HTTPClient) Upload(ctx context.Context, token, category, filename string, file io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", apperrors.NewInternalError("failed to build upload body", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", apperrors.NewInternalError("failed to read upload file", err)
	}
	if err := writer.Close(); err != nil {
		return "", apperrors.NewInternalError("failed to finish upload body", err)
	}

	endpoint := fmt.Sprintf("%s/uploads/%s", c.baseURL, url.PathEscape(category))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", apperrors.NewInternalError("failed to build upload request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewUnavailableError("backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", c.statusError(resp)
	}

	out := uploadResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperrors.NewExternalError("malformed upload response", err)
	}
	return out.URL, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewInternalError("failed to encode request body", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.NewInternalError("failed to build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewUnavailableError("backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewExternalError("malformed response body", err)
	}
	return nil
}

// statusError maps a non-2xx backend response onto the error taxonomy,
// surfacing the backend's detail message when one is present.
func (c *HTTPClient) statusError(resp *http.Response) error {
	detail := decodeDetail(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if detail == "" {
			detail = "invalid or expired credentials"
		}
		return apperrors.NewUnauthorizedError(detail)
	case resp.StatusCode == http.StatusForbidden:
		if detail == "" {
			detail = "insufficient permissions"
		}
		return apperrors.NewForbiddenError(detail)
	case resp.StatusCode == http.StatusNotFound:
		if detail == "" {
			detail = "resource not found"
		}
		return apperrors.NewNotFoundError(detail)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		if detail == "" {
			detail = fmt.Sprintf("backend rejected request (status %d)", resp.StatusCode)
		}
		return apperrors.NewValidationError(detail)
	default:
		if detail == "" {
			detail = fmt.Sprintf("backend returned status %d", resp.StatusCode)
		}
		return apperrors.NewExternalError(detail, nil)
	}
}

func decodeDetail(body io.Reader) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Detail)
}
