package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rBrown1405/zentry-pos-sub001/internal/access"
	"github.com/rBrown1405/zentry-pos-sub001/internal/auth"
	"github.com/rBrown1405/zentry-pos-sub001/internal/config"
	"github.com/rBrown1405/zentry-pos-sub001/internal/registration"
	"github.com/rBrown1405/zentry-pos-sub001/internal/registry"
	"github.com/rBrown1405/zentry-pos-sub001/internal/session"
	"github.com/rBrown1405/zentry-pos-sub001/internal/store"
	"github.com/rBrown1405/zentry-pos-sub001/internal/telemetry"
	"github.com/rBrown1405/zentry-pos-sub001/internal/validator"
)

type testApp struct {
	app          *fiber.App
	store        *store.MemoryStore
	registration *registration.Manager
	cookies      []*http.Cookie
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st := store.NewMemoryStore()
	reg := registry.New(store.NewMemoryKV(), logger)
	accessSvc := access.NewService(st, nil, logger)
	regManager := registration.NewManager(st, reg, validator.New(), nil, logger)

	ready := session.NewReady()
	ready.Resolve()

	tel, err := telemetry.New(config.TelemetryConfig{Enabled: false})
	require.NoError(t, err)

	app := fiber.New()
	handler := NewHandler(HandlerParam{
		Sessions:     fibersession.New(),
		Store:        st,
		Auth:         auth.NewAuthenticator(st, nil, logger),
		Registration: regManager,
		Access:       accessSvc,
		Ready:        ready,
		Telemetry:    tel,
		Logger:       logger,
		ReadyTimeout: time.Second,
	})
	handler.RegisterRoutes(app)

	return &testApp{app: app, store: st, registration: regManager}
}

func (ta *testApp) request(t *testing.T, method, target string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range ta.cookies {
		req.AddCookie(cookie)
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	if cookies := resp.Cookies(); len(cookies) > 0 {
		ta.cookies = cookies
	}
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func registerDemoBusiness(t *testing.T, ta *testApp) map[string]any {
	t.Helper()
	resp := ta.request(t, http.MethodPost, "/api/register/business", map[string]any{
		"CompanyName":  "Demo Restaurant Group",
		"BusinessType": "restaurant",
		"OwnerName":    "Dana Owner",
		"Email":        "dana@example.com",
		"Password":     "correct horse",
		"Address":      "1 Demo Street",
		"TaxRate":      0.08,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode(t, resp)
}

func TestHealth(t *testing.T) {
	ta := newTestApp(t)
	resp := ta.request(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "healthy", body["status"])
}

func TestRegisterAndOwnerLoginFlow(t *testing.T) {
	ta := newTestApp(t)
	created := registerDemoBusiness(t, ta)

	business := created["business"].(map[string]any)
	mainProperty := created["main_property"].(map[string]any)
	assert.Equal(t, true, mainProperty["is_main_property"])

	// Unauthenticated session access is rejected.
	resp := ta.request(t, http.MethodGet, "/api/session", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ta.request(t, http.MethodPost, "/api/login", map[string]any{
		"mode":     "owner",
		"email":    "dana@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode(t, resp)
	assert.Equal(t, "business-owner", login["kind"])
	assert.Equal(t, "/business/dashboard", login["landing_route"])

	// The cookie session now resolves.
	resp = ta.request(t, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sess := decode(t, resp)
	assert.Equal(t, business["business_id"], sess["business"].(map[string]any)["business_id"])
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	ta := newTestApp(t)
	registerDemoBusiness(t, ta)

	resp := ta.request(t, http.MethodPost, "/api/login", map[string]any{
		"mode":     "owner",
		"email":    "dana@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSwitchPropertyFlow(t *testing.T) {
	ta := newTestApp(t)
	created := registerDemoBusiness(t, ta)
	mainProperty := created["main_property"].(map[string]any)

	resp := ta.request(t, http.MethodPost, "/api/login", map[string]any{
		"mode":     "owner",
		"email":    "dana@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The owner holds explicit access to the seeded main property.
	resp = ta.request(t, http.MethodPost, "/api/session/switch-property", map[string]any{
		"property_id": mainProperty["id"],
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	switched := decode(t, resp)
	assert.Equal(t, mainProperty["id"], switched["property"].(map[string]any)["id"])

	// A second property exists but was never granted; switching is denied.
	second, err := ta.registration.AddProperty(context.Background(), registration.AddPropertyParam{
		BusinessID: uuid.MustParse(created["business"].(map[string]any)["id"].(string)),
		Name:       "Downtown Cafe",
		Address:    "2 Demo Street",
	})
	require.NoError(t, err)

	resp = ta.request(t, http.MethodPost, "/api/session/switch-property", map[string]any{
		"property_id": second.ID.String(),
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestStaffRegistrationAndApproval(t *testing.T) {
	ta := newTestApp(t)
	created := registerDemoBusiness(t, ta)
	mainProperty := created["main_property"].(map[string]any)

	resp := ta.request(t, http.MethodPost, "/api/register/staff", map[string]any{
		"FullName":       "Alice Manager",
		"Email":          "alice@example.com",
		"Password":       "another pass",
		"ConnectionCode": mainProperty["connection_code"],
		"Position":       "manager",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	staff := decode(t, resp)["staff"].(map[string]any)
	staffID := staff["staff_id"].(string)
	assert.Equal(t, false, staff["is_approved"])

	// Unapproved staff cannot sign in yet.
	resp = ta.request(t, http.MethodPost, "/api/login", map[string]any{
		"staff_id": staffID,
		"password": "another pass",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The owner approves through the management surface.
	resp = ta.request(t, http.MethodPost, "/api/login", map[string]any{
		"mode":     "owner",
		"email":    "dana@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = ta.request(t, http.MethodPost, "/api/staff/"+staffID+"/approve", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Fresh client without the owner cookie.
	staffClient := &testApp{app: ta.app, store: ta.store, registration: ta.registration}
	resp = staffClient.request(t, http.MethodPost, "/api/login", map[string]any{
		"staff_id": staffID,
		"password": "another pass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode(t, resp)
	assert.Equal(t, "staff", login["kind"])
	assert.Equal(t, "/staff/dashboard", login["landing_route"])
}

func TestOwnerRoutesRequireOwnerKind(t *testing.T) {
	ta := newTestApp(t)
	created := registerDemoBusiness(t, ta)
	mainProperty := created["main_property"].(map[string]any)

	resp := ta.request(t, http.MethodPost, "/api/register/staff", map[string]any{
		"FullName":       "Alice Manager",
		"Email":          "alice@example.com",
		"Password":       "another pass",
		"ConnectionCode": mainProperty["connection_code"],
		"Position":       "manager",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	staffID := decode(t, resp)["staff"].(map[string]any)["staff_id"].(string)

	require.NoError(t, ta.registration.ApproveStaff(context.Background(), staffID))

	resp = ta.request(t, http.MethodPost, "/api/login", map[string]any{
		"staff_id": staffID,
		"password": "another pass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = ta.request(t, http.MethodPost, "/api/properties", map[string]any{
		"name":    "Rogue Property",
		"address": "3 Demo Street",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
