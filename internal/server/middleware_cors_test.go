package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"tgscraper/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dashboardOrigin = "http://localhost:5173"

// fullApp wires the global middleware stack in front of the routes.
func fullApp(t *testing.T, env *testEnv) *fiber.App {
	t.Helper()
	app := NewApp()
	env.srv.SetupMiddleware(app)
	env.srv.SetupRoutes(app)
	return app
}

func dashboardRequest(t *testing.T, app *fiber.App, method, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Origin", dashboardOrigin)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestSetupMiddleware_GlobalLimitKeepsCORSHeaders(t *testing.T) {
	env := newTestEnv(t, false, func(c *config.Config) { c.AllowedOrigins = dashboardOrigin })
	app := fullApp(t, env)

	// Exhaust the per-IP limiter on a stats read.
	for i := 0; i < 100; i++ {
		resp := dashboardRequest(t, app, http.MethodGet, "/api/stats/global")
		require.Equal(t, fiber.StatusOK, resp.StatusCode, "request %d", i+1)
	}

	resp := dashboardRequest(t, app, http.MethodGet, "/api/stats/global")
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, dashboardOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestSetupMiddleware_ScrapeLimitKeepsCORSAndPreflight(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	env := newTestEnv(t, true, func(c *config.Config) { c.AllowedOrigins = dashboardOrigin })
	app := fullApp(t, env)

	for i := 0; i < scrapeRateLimit; i++ {
		resp := dashboardRequest(t, app, http.MethodPost, "/api/scrape")
		require.Equal(t, fiber.StatusOK, resp.StatusCode, "request %d", i+1)
	}

	limited := dashboardRequest(t, app, http.MethodPost, "/api/scrape")
	assert.Equal(t, fiber.StatusTooManyRequests, limited.StatusCode)
	assert.Equal(t, dashboardOrigin, limited.Header.Get("Access-Control-Allow-Origin"))

	// Preflight is answered by CORS before either limiter.
	req := httptest.NewRequest(http.MethodOptions, "/api/scrape", nil)
	req.Header.Set("Origin", dashboardOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
	preflight, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = preflight.Body.Close() }()

	assert.Equal(t, fiber.StatusNoContent, preflight.StatusCode)
	assert.Equal(t, dashboardOrigin, preflight.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, preflight.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
}
