package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/conecta-isp/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/conecta-isp/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "conecta-isp-test"
	testExpMin    = 60
)

// protectedApp registra /r con los middlewares reales (JWT + RBAC) y un
// handler que responde 200.
func protectedApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/r",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		},
	)
	return app
}

func bearerFor(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func request(t *testing.T, app *fiber.App, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/r", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

// TestRequireRole_PoliticaDeRutas recorre las combinaciones de roles que el
// router registra: network solo admin, leads admin/ventas, work-orders
// admin/soporte/tecnico, tickets admin/soporte.
func TestRequireRole_PoliticaDeRutas(t *testing.T) {
	cases := []struct {
		name       string
		allowed    []string
		role       string
		wantStatus int
	}{
		{"admin accede a red", []string{"admin"}, "admin", http.StatusOK},
		{"soporte no administra red", []string{"admin"}, "soporte", http.StatusForbidden},
		{"ventas gestiona leads", []string{"admin", "ventas"}, "ventas", http.StatusOK},
		{"tecnico no gestiona leads", []string{"admin", "ventas"}, "tecnico", http.StatusForbidden},
		{"tecnico avanza ordenes", []string{"admin", "soporte", "tecnico"}, "tecnico", http.StatusOK},
		{"ventas no toca ordenes", []string{"admin", "soporte", "tecnico"}, "ventas", http.StatusForbidden},
		{"soporte atiende tickets", []string{"admin", "soporte"}, "soporte", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := request(t, protectedApp(tc.allowed...), bearerFor(t, tc.role))
			assert.Equal(t, tc.wantStatus, status)
			if tc.wantStatus == http.StatusForbidden {
				assert.Contains(t, body, "FORBIDDEN")
			}
		})
	}
}

// TestAuthMiddleware_TokensDefectuosos cubre las formas en que una credencial
// puede fallar antes de llegar al RBAC.
func TestAuthMiddleware_TokensDefectuosos(t *testing.T) {
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, "admin", testIssuer, -1)
	require.NoError(t, err)
	foreign, err := pkgjwt.Generate("otro-secret-completamente-distinto", testUserID, testCompanyID, "admin", testIssuer, testExpMin)
	require.NoError(t, err)
	noRole, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, "", testIssuer, testExpMin)
	require.NoError(t, err)

	cases := []struct {
		name     string
		header   string
		wantCode string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"sin esquema Bearer", "Basic abc123", "INVALID_TOKEN"},
		{"token corrupto", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"token expirado", "Bearer " + expired, "INVALID_TOKEN"},
		{"firmado con otro secret", "Bearer " + foreign, "INVALID_TOKEN"},
		{"token sin rol", "Bearer " + noRole, "MISSING_ROLE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := request(t, protectedApp("admin"), tc.header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Contains(t, body, tc.wantCode)
		})
	}
}

func TestAuthMiddleware_CargaLocalsDelToken(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":    apphttp.GetUserID(c),
			"company_id": apphttp.GetCompanyID(c),
			"role":       apphttp.GetRole(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", bearerFor(t, "tecnico"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testCompanyID, body["company_id"])
	assert.Equal(t, "tecnico", body["role"])
}

func TestJWT_GenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, "soporte", testIssuer, testExpMin)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, companyID, role, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testUserID, userID)
	assert.Equal(t, testCompanyID, companyID)
	assert.Equal(t, "soporte", role)
}
