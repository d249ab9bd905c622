package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"itemvault/internal/handlers"
	"itemvault/internal/middleware"
	"itemvault/internal/models"
	"itemvault/internal/repositories"
	"itemvault/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

// setupApp assembles a Fiber app over the in-memory repositories with all
// handlers and the auth middleware wired, mirroring the production wiring.
func setupApp() (*fiber.App, *services.AuthService) {
	userRepo := repositories.NewMockUserRepository()
	itemRepo := repositories.NewMockItemRepository()

	authService := services.NewAuthService(userRepo, "test_jwt_secret", "HS256", time.Hour)
	itemService := services.NewItemService(itemRepo, nil) // nil for RabbitMQ client

	authHandler := handlers.NewAuthHandler(authService)
	itemHandler := handlers.NewItemHandler(itemService)

	app := fiber.New()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authHandler.RegisterRoutes(app)

	protected := app.Group("", middleware.AuthRequired(authService))
	itemHandler.RegisterRoutes(protected)

	return app, authService
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// registerUser registers an account and returns its public view.
func registerUser(t *testing.T, app *fiber.App, email, password string) models.UserOut {
	t.Helper()
	req := jsonRequest(http.MethodPost, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
	})
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var out models.UserOut
	decodeBody(t, resp, &out)
	assert.NotEmpty(t, out.ID)
	return out
}

// obtainToken exchanges credentials for a bearer token through the form
// endpoint.
func obtainToken(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.TokenResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, "bearer", out.TokenType)
	assert.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

func authedRequest(method, target, token string, body interface{}) *http.Request {
	req := jsonRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func createItem(t *testing.T, app *fiber.App, token string, body map[string]interface{}) models.ItemOut {
	t.Helper()
	resp, err := app.Test(authedRequest(http.MethodPost, "/items", token, body), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var out models.ItemOut
	decodeBody(t, resp, &out)
	assert.NotEmpty(t, out.ID)
	return out
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := setupApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	decodeBody(t, resp, &out)
	assert.Equal(t, "ok", out["status"])
}

func TestRegisterLowercasesEmailAndRejectsDuplicates(t *testing.T) {
	app, _ := setupApp()

	out := registerUser(t, app, "User@Example.COM", "secret1")
	assert.Equal(t, "user@example.com", out.Email)

	// A second registration with any casing of the same email fails.
	req := jsonRequest(http.MethodPost, "/auth/register", map[string]string{
		"email":    "USER@example.com",
		"password": "another1",
	})
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRegisterValidation(t *testing.T) {
	app, _ := setupApp()

	cases := []map[string]string{
		{"email": "not-an-email", "password": "secret1"},
		{"email": "a@x.com", "password": "short"},
		{"email": "a@x.com", "password": strings.Repeat("x", 129)},
		{"email": "", "password": "secret1"},
	}
	for _, body := range cases {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/auth/register", body), -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "body: %v", body)
		resp.Body.Close()
	}
}

func TestTokenEndpoint(t *testing.T) {
	app, authService := setupApp()

	registered := registerUser(t, app, "a@x.com", "secret1")
	token := obtainToken(t, app, "a@x.com", "secret1")

	// The token's subject is the registered user's id.
	subject, err := authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, registered.ID, subject)

	// Wrong password and unknown user both yield 401.
	for _, creds := range [][2]string{
		{"a@x.com", "wrongpassword"},
		{"nobody@x.com", "secret1"},
	} {
		form := url.Values{}
		form.Set("username", creds[0])
		form.Set("password", creds[1])
		req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	app, _ := setupApp()

	// No Authorization header
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get(fiber.HeaderWWWAuthenticate))
	resp.Body.Close()

	// Garbage token
	resp, err = app.Test(authedRequest(http.MethodGet, "/items", "garbage", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get(fiber.HeaderWWWAuthenticate))
	resp.Body.Close()

	// Wrong scheme
	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestItemCRUDRoundTrip(t *testing.T) {
	app, _ := setupApp()

	user := registerUser(t, app, "a@x.com", "secret1")
	token := obtainToken(t, app, "a@x.com", "secret1")

	created := createItem(t, app, token, map[string]interface{}{
		"title":       "T",
		"description": "first version",
	})
	assert.Equal(t, user.ID, created.OwnerID)
	assert.Equal(t, "T", created.Title)

	// Get returns the identical document.
	resp, err := app.Test(authedRequest(http.MethodGet, "/items/"+created.ID, token, nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.ItemOut
	decodeBody(t, resp, &fetched)
	assert.Equal(t, created, fetched)

	// A partial patch leaves unspecified fields alone.
	resp, err = app.Test(authedRequest(http.MethodPut, "/items/"+created.ID, token, map[string]interface{}{
		"description": "second version",
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.ItemOut
	decodeBody(t, resp, &updated)
	assert.Equal(t, "T", updated.Title)
	assert.NotNil(t, updated.Description)
	assert.Equal(t, "second version", *updated.Description)

	// An empty patch returns the current document unchanged.
	resp, err = app.Test(authedRequest(http.MethodPut, "/items/"+created.ID, token, map[string]interface{}{}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var unchanged models.ItemOut
	decodeBody(t, resp, &unchanged)
	assert.Equal(t, updated, unchanged)

	// Delete reports success exactly once.
	resp, err = app.Test(authedRequest(http.MethodDelete, "/items/"+created.ID, token, nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var deleted map[string]bool
	decodeBody(t, resp, &deleted)
	assert.True(t, deleted["deleted"])

	resp, err = app.Test(authedRequest(http.MethodGet, "/items/"+created.ID, token, nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestItemValidation(t *testing.T) {
	app, _ := setupApp()

	registerUser(t, app, "a@x.com", "secret1")
	token := obtainToken(t, app, "a@x.com", "secret1")

	cases := []map[string]interface{}{
		{"title": "x"},                      // too short
		{"title": strings.Repeat("x", 201)}, // too long
		{"title": "ok title", "description": strings.Repeat("x", 1001)},
		{}, // title required
	}
	for _, body := range cases {
		resp, err := app.Test(authedRequest(http.MethodPost, "/items", token, body), -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "body: %v", body)
		resp.Body.Close()
	}

	// The same bounds apply to updates.
	created := createItem(t, app, token, map[string]interface{}{"title": "ok title"})
	resp, err := app.Test(authedRequest(http.MethodPut, "/items/"+created.ID, token, map[string]interface{}{
		"title": "x",
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func TestOwnershipIsolation(t *testing.T) {
	app, _ := setupApp()

	registerUser(t, app, "a@x.com", "secret1")
	tokenA := obtainToken(t, app, "a@x.com", "secret1")
	registerUser(t, app, "b@x.com", "secret2")
	tokenB := obtainToken(t, app, "b@x.com", "secret2")

	created := createItem(t, app, tokenA, map[string]interface{}{"title": "private item"})

	// User B sees user A's item as missing, on every operation.
	resp, err := app.Test(authedRequest(http.MethodGet, "/items/"+created.ID, tokenB, nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp, err = app.Test(authedRequest(http.MethodPut, "/items/"+created.ID, tokenB, map[string]interface{}{
		"title": "hijacked",
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp, err = app.Test(authedRequest(http.MethodDelete, "/items/"+created.ID, tokenB, nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// A malformed id gets the same uniform 404.
	resp, err = app.Test(authedRequest(http.MethodGet, "/items/not-a-hex-id", tokenA, nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// And user A's listing is untouched by B's attempts.
	resp, err = app.Test(authedRequest(http.MethodGet, "/items", tokenA, nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var items []models.ItemOut
	decodeBody(t, resp, &items)
	assert.Len(t, items, 1)
}

func TestListSkipLimit(t *testing.T) {
	app, _ := setupApp()

	registerUser(t, app, "a@x.com", "secret1")
	token := obtainToken(t, app, "a@x.com", "secret1")

	createdIDs := make(map[string]bool)
	for i := 0; i < 10; i++ {
		item := createItem(t, app, token, map[string]interface{}{
			"title": fmt.Sprintf("Item %d", i),
		})
		createdIDs[item.ID] = true
	}

	resp, err := app.Test(authedRequest(http.MethodGet, "/items?skip=5&limit=3", token, nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var window []models.ItemOut
	decodeBody(t, resp, &window)
	assert.Len(t, window, 3)
	for _, item := range window {
		assert.True(t, createdIDs[item.ID], "listed item %s was never created", item.ID)
	}

	// Defaults: skip=0, limit=50.
	resp, err = app.Test(authedRequest(http.MethodGet, "/items", token, nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var all []models.ItemOut
	decodeBody(t, resp, &all)
	assert.Len(t, all, 10)
}

// TestEndToEndFlow walks the whole register → token → create → delete → 404
// story in one pass.
func TestEndToEndFlow(t *testing.T) {
	app, _ := setupApp()

	user := registerUser(t, app, "a@x.com", "secret1")
	token := obtainToken(t, app, "a@x.com", "secret1")

	item := createItem(t, app, token, map[string]interface{}{"title": "T"})
	assert.Equal(t, user.ID, item.OwnerID)

	resp, err := app.Test(authedRequest(http.MethodDelete, "/items/"+item.ID, token, nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var deleted map[string]bool
	decodeBody(t, resp, &deleted)
	assert.True(t, deleted["deleted"])

	resp, err = app.Test(authedRequest(http.MethodGet, "/items/"+item.ID, token, nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
