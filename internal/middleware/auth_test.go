package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tgscraper/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func signClaims(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestIssueAndParseAdminToken(t *testing.T) {
	token, err := IssueAdminToken(testSecret, "ops", time.Hour)
	require.NoError(t, err)

	sub, err := ParseAdminToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "ops", sub)

	_, err = ParseAdminToken("another-secret", token)
	assert.Error(t, err)

	_, err = IssueAdminToken(testSecret, "  ", time.Hour)
	assert.Error(t, err)
}

func TestAdminRequired(t *testing.T) {
	app := fiber.New()
	InitMiddleware(&config.Config{JWTSecret: testSecret, AuthEnabled: true})
	defer InitMiddleware(nil)

	app.Post("/test", AdminRequired, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"subject": c.Locals(AdminSubjectLocal)})
	})

	valid, err := IssueAdminToken(testSecret, "ops", time.Hour)
	require.NoError(t, err)

	now := time.Now()
	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"Happy Path", "Bearer " + valid, http.StatusOK},
		{"Missing Header", "", http.StatusUnauthorized},
		{"Invalid Format", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"Malformed Token", "Bearer malformed.token.here", http.StatusUnauthorized},
		{
			"Expired Token",
			"Bearer " + signClaims(t, jwt.MapClaims{
				"sub": "ops", "iss": TokenIssuer, "aud": TokenAudience,
				"exp": now.Add(-time.Hour).Unix(),
			}),
			http.StatusUnauthorized,
		},
		{
			"Wrong Audience",
			"Bearer " + signClaims(t, jwt.MapClaims{
				"sub": "ops", "iss": TokenIssuer, "aud": "someone-else",
				"exp": now.Add(time.Hour).Unix(),
			}),
			http.StatusUnauthorized,
		},
		{
			"Wrong Issuer",
			"Bearer " + signClaims(t, jwt.MapClaims{
				"sub": "ops", "iss": "other", "aud": TokenAudience,
				"exp": now.Add(time.Hour).Unix(),
			}),
			http.StatusUnauthorized,
		},
		{
			"Missing Subject",
			"Bearer " + signClaims(t, jwt.MapClaims{
				"iss": TokenIssuer, "aud": TokenAudience,
				"exp": now.Add(time.Hour).Unix(),
			}),
			http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]interface{}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, "ops", body["subject"])
			}
		})
	}
}

func TestAdminRequired_DisabledPassesThrough(t *testing.T) {
	app := fiber.New()
	InitMiddleware(&config.Config{JWTSecret: testSecret, AuthEnabled: false})
	defer InitMiddleware(nil)

	app.Post("/test", AdminRequired, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/test", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestWebSocketAdminRequired(t *testing.T) {
	app := fiber.New()
	InitMiddleware(&config.Config{JWTSecret: testSecret, AuthEnabled: true})
	defer InitMiddleware(nil)

	app.Get("/ws-test", WebSocketAdminRequired, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	token, err := IssueAdminToken(testSecret, "watcher", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name           string
		tokenParam     string
		authHeader     string
		expectedStatus int
	}{
		{"Token via Query Param", token, "", http.StatusOK},
		{"Token via Header", "", "Bearer " + token, http.StatusOK},
		{"Missing Token", "", "", http.StatusUnauthorized},
		{"Invalid Token", "invalid-token", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/ws-test"
			if tt.tokenParam != "" {
				path += "?token=" + tt.tokenParam
			}
			req := httptest.NewRequest(http.MethodGet, path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}
