package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tgscraper/internal/database"
	"tgscraper/internal/models"
	"tgscraper/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sampleFile = `
channels:
  - title: Daily News
    username: https://t.me/daily_news
    channel_id: -1001234567890
    color_flag: 2
  - title: "  Market Watch "
    username: "@market_watch"
    channel_id: 987654321
    inactive: true
    notes: paused for review
`

func setupSQLiteDB(t *testing.T) *gorm.DB {
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

func TestParseChannels(t *testing.T) {
	specs, err := ParseChannels([]byte(sampleFile))
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.Equal(t, "Daily News", specs[0].Title)
	assert.Equal(t, "daily_news", specs[0].Username)
	assert.Equal(t, int64(1234567890), specs[0].ChannelID)
	require.NotNil(t, specs[0].ColorFlag)
	assert.Equal(t, 2, *specs[0].ColorFlag)

	assert.Equal(t, "Market Watch", specs[1].Title)
	assert.Equal(t, "market_watch", specs[1].Username)
	assert.True(t, specs[1].Inactive)
}

func TestParseChannels_Rejects(t *testing.T) {
	tests := map[string]string{
		"missing title":  "channels:\n  - channel_id: 5\n",
		"missing id":     "channels:\n  - title: A\n",
		"bad username":   "channels:\n  - title: A\n    channel_id: 5\n    username: a!\n",
		"duplicate id":   "channels:\n  - title: A\n    channel_id: -1005\n  - title: B\n    channel_id: 5\n",
		"malformed yaml": "channels: [",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseChannels([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestLoadChannels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleFile), 0o600))

	specs, err := LoadChannels(path)
	require.NoError(t, err)
	assert.Len(t, specs, 2)

	_, err = LoadChannels(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestSeedChannels_IsIdempotent(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := repository.NewChannelRepository(db)
	ctx := context.Background()

	specs, err := ParseChannels([]byte(sampleFile))
	require.NoError(t, err)

	created, skipped, err := SeedChannels(ctx, repo, specs)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Equal(t, 0, skipped)

	created, skipped, err = SeedChannels(ctx, repo, specs)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, 2, skipped)

	var rows []models.Channel
	require.NoError(t, db.Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].IsActive)
	assert.False(t, rows[1].IsActive)
	require.NotNil(t, rows[1].Notes)
	assert.Equal(t, "paused for review", *rows[1].Notes)
}

func TestFactory_BuildFetchedPosts(t *testing.T) {
	f := NewFactory(Options{MaxDays: 10, Seed: 42})
	posts := f.BuildFetchedPosts(50)

	if len(posts) != 50 {
		t.Fatalf("expected 50 posts, got %d", len(posts))
	}
	if posts[0].MessageID != 50 || posts[49].MessageID != 1 {
		t.Fatalf("expected newest first, got %d..%d", posts[0].MessageID, posts[49].MessageID)
	}
	for i, p := range posts {
		if time.Since(p.Date) > 11*24*time.Hour {
			t.Fatalf("post %d too old: %v", i, p.Date)
		}
		if i > 0 && p.Date.After(posts[i-1].Date) {
			t.Fatalf("post %d dated after its predecessor", i)
		}
		ingested := p.Normalize()
		if ingested.EngagementCount < 0 || ingested.EngagementRate < 0 {
			t.Fatalf("negative engagement on post %d", i)
		}
	}
}

func TestFactory_Deterministic(t *testing.T) {
	a := NewFactory(Options{Seed: 7})
	b := NewFactory(Options{Seed: 7})
	fixed := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }
	b.now = func() time.Time { return fixed }

	assert.Equal(t, a.BuildFetchedPost(1), b.BuildFetchedPost(1))
	assert.Equal(t, a.BuildChannel().Title, b.BuildChannel().Title)
}

func TestSeed_DemoData(t *testing.T) {
	db := setupSQLiteDB(t)

	require.NoError(t, Seed(context.Background(), db, Options{NumChannels: 2, PostsPerChannel: 15, Seed: 3}))

	var channels, posts int64
	require.NoError(t, db.Model(&models.Channel{}).Count(&channels).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	assert.Equal(t, int64(2), channels)
	assert.Equal(t, int64(30), posts)

	require.NoError(t, Seed(context.Background(), db, Options{NumChannels: 1, PostsPerChannel: 5, Seed: 4, ShouldClean: true}))
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	assert.Equal(t, int64(5), posts)
}
