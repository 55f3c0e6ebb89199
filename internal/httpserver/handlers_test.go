package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"backoffice/catalog/internal/config"
	"backoffice/catalog/internal/infrastructure/memory"
	"backoffice/catalog/internal/infrastructure/token"
	"backoffice/catalog/internal/obs"
	authusecase "backoffice/catalog/internal/usecase/auth"
	productusecase "backoffice/catalog/internal/usecase/product"
	"backoffice/catalog/internal/usecase/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	server  *Server
	auth    *authusecase.Service
	catalog *productusecase.Catalog
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	auth := authusecase.NewService(
		memory.NewUserRepository(),
		token.NewJWTManager("test-secret", time.Hour, "catalog"),
		nil,
		0,
	)
	tracker := session.NewTracker(auth)
	t.Cleanup(tracker.Close)

	metrics := obs.NewMetrics()
	catalog := productusecase.NewCatalog(memory.NewProductStore(true), tracker, metrics)
	cfg := config.Config{HTTPPort: "0", AllowedOrigins: []string{"*"}}
	return &testEnv{
		server:  NewServer(cfg, auth, tracker, catalog, metrics),
		auth:    auth,
		catalog: catalog,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) signUp(t *testing.T) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/register", map[string]string{"email": "alice@example.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestGatePendingThenDenied(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "loading", decode(t, rec)["status"])

	env.auth.Restore(context.Background(), "")

	rec = env.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = env.do(t, http.MethodDelete, "/products/abc", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestNotFoundScreen(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "page not found", body["error"])
	assert.Equal(t, "/", body["home"])
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t)

	rec := env.do(t, http.MethodPost, "/login", map[string]string{"email": "alice@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password.", decode(t, rec)["error"])

	rec = env.do(t, http.MethodPost, "/login", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/login", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "login", decode(t, rec)["screen"])
}

func TestRegisterFailures(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/register", map[string]string{"email": "bob@example.com", "password": "123"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decode(t, rec)["errors"].(map[string]any)
	assert.Contains(t, errs, "password")

	env.signUp(t)
	rec = env.do(t, http.MethodPost, "/register", map[string]string{"email": "alice@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCatalogFlow(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t)

	rec := env.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, "alice@example.com", body["user"].(map[string]any)["email"])

	rec = env.do(t, http.MethodPost, "/", map[string]any{"productCode": "P1", "name": "Pen", "price": 1.5})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode(t, rec)["item"].(map[string]any)
	id := item["documentId"].(string)
	assert.NotEmpty(t, id)
	assert.Equal(t, "alice@example.com", item["owner"])

	rec = env.do(t, http.MethodPost, "/", map[string]any{"productCode": "P2", "name": "Paper", "price": "3"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/", map[string]any{"productCode": "P1", "name": "Other", "price": 2})
	assert.Equal(t, http.StatusConflict, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "This product code has already been used.", body["error"])
	assert.Equal(t, "This product code has already been used.", body["errors"].(map[string]any)["productCode"])

	rec = env.do(t, http.MethodPost, "/", map[string]any{"productCode": "", "name": "", "price": "abc"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decode(t, rec)["errors"].(map[string]any)
	assert.Equal(t, "Product ID is required", errs["productCode"])
	assert.Equal(t, "Product name is required", errs["name"])
	assert.Equal(t, "Valid price is required", errs["price"])

	rec = env.do(t, http.MethodGet, "/?q=PEN", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, "PEN", body["keyword"])

	rec = env.do(t, http.MethodPatch, "/products/"+id, map[string]any{"name": "Fountain Pen", "price": 9})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Fountain Pen")

	rec = env.do(t, http.MethodPatch, "/products/"+id, map[string]any{"price": -2})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodDelete, "/products/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, "/products/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["count"])
}

func TestLogoutResetsCatalog(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t)

	rec := env.do(t, http.MethodPost, "/", map[string]any{"productCode": "P1", "name": "Pen", "price": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, env.catalog.Loaded())

	rec = env.do(t, http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, env.catalog.Loaded())
	assert.Empty(t, env.catalog.Snapshot())

	rec = env.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = env.do(t, http.MethodGet, "/logout", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t)
	env.do(t, http.MethodGet, "/", nil)

	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	env.server.UseHealthCheck(func(context.Context) error { return errors.New("store down") })
	rec = env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	env.server.UseHealthCheck(nil)

	rec = env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	text := rec.Body.String()
	assert.True(t, strings.Contains(text, "catalog_operations_total"), text)
	assert.True(t, strings.Contains(text, `session_transitions_total{state="allowed"}`), text)
}

func TestRequestIDAndCORS(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}
