package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tgscraper/internal/cache"
	"tgscraper/internal/config"
	"tgscraper/internal/database"
	"tgscraper/internal/middleware"
	"tgscraper/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

// mockSource stands in for the Telegram client.
type mockSource struct {
	mock.Mock
}

func (m *mockSource) FetchRecentPosts(_ context.Context, ref models.ChannelRef, limit int) ([]models.FetchedPost, error) {
	args := m.Called(ref, limit)
	posts, _ := args.Get(0).([]models.FetchedPost)
	return posts, args.Error(1)
}

func (m *mockSource) FetchChannelMetadata(_ context.Context, ref models.ChannelRef) (models.ChannelMetadata, error) {
	args := m.Called(ref)
	meta, _ := args.Get(0).(models.ChannelMetadata)
	return meta, args.Error(1)
}

func (m *mockSource) FetchPost(_ context.Context, ref models.ChannelRef, messageID int) (models.FetchedPost, error) {
	args := m.Called(ref, messageID)
	post, _ := args.Get(0).(models.FetchedPost)
	return post, args.Error(1)
}

func (m *mockSource) DiscoverChannels(_ context.Context) ([]models.DiscoveredChannel, error) {
	args := m.Called()
	found, _ := args.Get(0).([]models.DiscoveredChannel)
	return found, args.Error(1)
}

type testEnv struct {
	srv *Server
	app *fiber.App
	db  *gorm.DB
	mr  *miniredis.Miniredis
	src *mockSource
	cfg *config.Config
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=1"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})
	return mr, rdb
}

// newTestEnv wires a Server over SQLite and miniredis. withSource controls
// whether the message source is configured.
func newTestEnv(t *testing.T, withSource bool, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	mr, rdb := setupTestRedis(t)

	cfg := &config.Config{
		JWTSecret:            testSecret,
		ScrapePostLimit:      200,
		ScrapeTimeoutMinutes: 1,
		StatsWindowDays:      7,
		StatsCacheTTLSeconds: 60,
	}
	for _, m := range mutate {
		m(cfg)
	}

	src := &mockSource{}
	opts := Options{}
	if withSource {
		opts.Source = src
		opts.Discoverer = src
	}

	srv, err := NewServer(cfg, db, rdb, opts)
	require.NoError(t, err)
	t.Cleanup(func() { middleware.InitMiddleware(nil) })

	app := NewApp()
	srv.SetupRoutes(app)

	return &testEnv{srv: srv, app: app, db: db, mr: mr, src: src, cfg: cfg}
}

func (e *testEnv) request(t *testing.T, method, path string, body any, headers ...string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) rawRequest(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

func (e *testEnv) createChannel(t *testing.T, title string, channelID int64, subscribers *int) models.Channel {
	t.Helper()
	ch := models.Channel{Title: title, ChannelID: channelID, IsActive: true, SubscriberCount: subscribers}
	require.NoError(t, e.db.Create(&ch).Error)
	return ch
}

func intPtr(v int) *int { return &v }
