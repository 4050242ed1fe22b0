package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"tgscraper/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedChannel(t *testing.T, db *gorm.DB, title string, channelID int64, active bool) *models.Channel {
	t.Helper()
	ch := &models.Channel{Title: title, ChannelID: channelID, IsActive: true}
	require.NoError(t, db.Create(ch).Error)
	if !active {
		require.NoError(t, db.Model(ch).Update("is_active", false).Error)
		ch.IsActive = false
	}
	return ch
}

func ingested(messageID, views, forwards, replies, reactions int, date time.Time, text string) models.IngestedPost {
	p := models.FetchedPost{
		MessageID: messageID,
		Date:      date,
		Text:      text,
		Views:     &views,
		Forwards:  &forwards,
		Replies:   &replies,
	}.Normalize()
	p.TotalReactions = reactions
	p.EngagementCount = reactions + forwards + replies
	if views > 0 {
		p.EngagementRate = float64(p.EngagementCount) / float64(views) * 100
	}
	return p
}

func storedPosts(t *testing.T, db *gorm.DB, channelID uint) []models.Post {
	t.Helper()
	var posts []models.Post
	require.NoError(t, db.Where("channel_id = ?", channelID).Order("message_id").Find(&posts).Error)
	return posts
}

func TestPostRepository_UpsertBatch_Idempotent(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	ch := seedChannel(t, db, "Poker News", 1001, true)

	day := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	batch := []models.IngestedPost{
		ingested(1, 1000, 5, 3, 20, day, "first"),
		ingested(2, 500, 0, 1, 4, day.Add(time.Hour), "second"),
		ingested(3, 0, 0, 0, 0, day.Add(2*time.Hour), "third"),
	}

	first, err := repo.UpsertBatch(ctx, ch.ID, batch, nil)
	require.NoError(t, err)
	assert.Equal(t, UpsertResult{New: 3}, first)
	before := storedPosts(t, db, ch.ID)

	second, err := repo.UpsertBatch(ctx, ch.ID, batch, nil)
	require.NoError(t, err)
	assert.Equal(t, UpsertResult{Updated: 3}, second)
	after := storedPosts(t, db, ch.ID)

	if diff := cmp.Diff(before, after, cmpopts.IgnoreFields(models.Post{}, "UpdatedAt")); diff != "" {
		t.Errorf("re-applying the same batch changed stored rows (-before +after):\n%s", diff)
	}
}

func TestPostRepository_UpsertBatch_UpdatesInPlace(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db).(*postRepository)
	scrapedAt := time.Date(2026, 10, 16, 8, 30, 0, 0, time.UTC)
	repo.now = func() time.Time { return scrapedAt }
	ctx := context.Background()
	ch := seedChannel(t, db, "Poker News", 1001, true)

	date := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	_, err := repo.UpsertBatch(ctx, ch.ID, []models.IngestedPost{ingested(10, 100, 1, 1, 2, date, "original")}, nil)
	require.NoError(t, err)
	original := storedPosts(t, db, ch.ID)[0]

	edited := ingested(10, 400, 4, 2, 10, date.Add(time.Hour), "edited text")
	subs := 12000
	res, err := repo.UpsertBatch(ctx, ch.ID, []models.IngestedPost{edited}, &models.ChannelMetadata{SubscriberCount: &subs})
	require.NoError(t, err)
	assert.Equal(t, UpsertResult{Updated: 1}, res)

	rows := storedPosts(t, db, ch.ID)
	require.Len(t, rows, 1)
	got := rows[0]
	assert.Equal(t, original.ID, got.ID)
	assert.Equal(t, 400, got.Views)
	assert.Equal(t, 16, got.EngagementCount)
	assert.InDelta(t, 4.0, got.EngagementRate, 1e-9)
	assert.Equal(t, "original", got.Text, "text is not rewritten on update")
	assert.True(t, got.Date.Equal(date), "date is not rewritten on update")

	var stored models.Channel
	require.NoError(t, db.First(&stored, ch.ID).Error)
	require.NotNil(t, stored.SubscriberCount)
	assert.Equal(t, 12000, *stored.SubscriberCount)
	require.NotNil(t, stored.LastScrapedAt)
	assert.True(t, stored.LastScrapedAt.Equal(scrapedAt))
}

func TestPostRepository_UpsertBatch_KeepsSubscriberCountWithoutMetadata(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ch := seedChannel(t, db, "Poker News", 1001, true)
	require.NoError(t, db.Model(ch).Update("subscriber_count", 77).Error)

	_, err := repo.UpsertBatch(context.Background(), ch.ID, nil, nil)
	require.NoError(t, err)

	var stored models.Channel
	require.NoError(t, db.First(&stored, ch.ID).Error)
	require.NotNil(t, stored.SubscriberCount)
	assert.Equal(t, 77, *stored.SubscriberCount)
	assert.NotNil(t, stored.LastScrapedAt)
}

func TestPostRepository_UpsertBatch_UniqueViolationFallsBackToUpdate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	date := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	post := ingested(42, 100, 1, 1, 3, date, "raced")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "posts" WHERE channel_id = $1 AND message_id = $2`)).
		WithArgs(3, 42, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`SAVEPOINT`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectExec(`ROLLBACK TO SAVEPOINT`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "posts" WHERE channel_id = $1 AND message_id = $2`)).
		WithArgs(3, 42, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "channels" SET`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := repo.UpsertBatch(context.Background(), 3, []models.IngestedPost{post}, nil)
	require.NoError(t, err)
	assert.Equal(t, UpsertResult{Updated: 1}, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_UpsertBatch_RollsBackOnError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	post := ingested(1, 10, 0, 0, 1, time.Now().UTC(), "x")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`SAVEPOINT`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).WillReturnError(errors.New("disk full"))
	mock.ExpectExec(`ROLLBACK TO SAVEPOINT`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	res, err := repo.UpsertBatch(context.Background(), 3, []models.IngestedPost{post}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert message 1")
	assert.Equal(t, UpsertResult{}, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ListByChannel(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	ch := seedChannel(t, db, "A", 1, true)
	other := seedChannel(t, db, "B", 2, true)

	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	_, err := repo.UpsertBatch(ctx, ch.ID, []models.IngestedPost{
		ingested(1, 300, 0, 0, 3, base, "a"),
		ingested(2, 100, 0, 0, 9, base.Add(time.Hour), "b"),
		ingested(3, 200, 0, 0, 1, base.Add(2*time.Hour), "c"),
	}, nil)
	require.NoError(t, err)
	_, err = repo.UpsertBatch(ctx, other.ID, []models.IngestedPost{ingested(1, 999, 0, 0, 1, base, "z")}, nil)
	require.NoError(t, err)

	messageIDs := func(posts []models.Post) []int {
		ids := make([]int, len(posts))
		for i, p := range posts {
			ids[i] = p.MessageID
		}
		return ids
	}

	byDate, err := repo.ListByChannel(ctx, ch.ID, PostListQuery{})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1}, messageIDs(byDate))

	byViewsAsc, err := repo.ListByChannel(ctx, ch.ID, PostListQuery{OrderBy: "views", Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 1}, messageIDs(byViewsAsc))

	paged, err := repo.ListByChannel(ctx, ch.ID, PostListQuery{OrderBy: "engagement_count", Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, messageIDs(paged))

	unknown, err := repo.ListByChannel(ctx, ch.ID, PostListQuery{OrderBy: "text; DROP TABLE posts"})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1}, messageIDs(unknown))
}

func TestPostRepository_StatsSamples(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	a := seedChannel(t, db, "A", 1, true)
	b := seedChannel(t, db, "B", 2, true)
	empty := seedChannel(t, db, "C", 3, true)

	day := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	_, err := repo.UpsertBatch(ctx, a.ID, []models.IngestedPost{
		ingested(1, 10, 1, 0, 2, day, "x"),
		ingested(2, 0, 0, 0, 0, day, "no views"),
	}, nil)
	require.NoError(t, err)
	_, err = repo.UpsertBatch(ctx, b.ID, []models.IngestedPost{
		ingested(1, 20, 0, 0, 0, day, "y"),
		ingested(2, 40, 0, 0, 0, day.Add(time.Hour), "zz"),
	}, nil)
	require.NoError(t, err)

	samples, err := repo.StatsSamples(ctx, []uint{a.ID, b.ID, empty.ID})
	require.NoError(t, err)
	require.Len(t, samples[a.ID], 1)
	assert.Equal(t, 10, samples[a.ID][0].Views)
	assert.Equal(t, 2, samples[a.ID][0].Reactions)
	require.Len(t, samples[b.ID], 2)
	assert.Equal(t, 2, samples[b.ID][1].PostLength)
	assert.Empty(t, samples[empty.ID])

	none, err := repo.StatsSamples(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPostRepository_RankingPool(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	active := seedChannel(t, db, "Active", 1, true)
	inactive := seedChannel(t, db, "Dormant", 2, false)
	other := seedChannel(t, db, "Other", 3, true)

	old := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)
	_, err := repo.UpsertBatch(ctx, active.ID, []models.IngestedPost{
		ingested(1, 100, 0, 0, 5, old, "old"),
		ingested(2, 100, 0, 0, 0, recent, "no engagement"),
		ingested(3, 0, 0, 0, 7, recent, "no views"),
		ingested(4, 100, 1, 0, 2, recent, "recent"),
	}, nil)
	require.NoError(t, err)
	_, err = repo.UpsertBatch(ctx, inactive.ID, []models.IngestedPost{ingested(1, 100, 0, 0, 50, recent, "hidden")}, nil)
	require.NoError(t, err)
	_, err = repo.UpsertBatch(ctx, other.ID, []models.IngestedPost{ingested(1, 50, 0, 0, 1, recent, "other")}, nil)
	require.NoError(t, err)

	pool, err := repo.RankingPool(ctx, RankingFilter{})
	require.NoError(t, err)
	require.Len(t, pool, 3)
	assert.Equal(t, "Active", pool[0].ChannelTitle)
	assert.Equal(t, 1, pool[0].MessageID)
	assert.Equal(t, 4, pool[1].MessageID)
	assert.Equal(t, "Other", pool[2].ChannelTitle)

	since := recent.Add(-24 * time.Hour)
	filtered, err := repo.RankingPool(ctx, RankingFilter{ChannelIDs: []uint{active.ID}, Since: &since})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, 4, filtered[0].MessageID)
	assert.Equal(t, 3, filtered[0].EngagementCount)
}

func TestPostRepository_CountAndGetByMessage(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	ch := seedChannel(t, db, "A", 1, true)

	_, err := repo.UpsertBatch(ctx, ch.ID, []models.IngestedPost{
		ingested(1, 10, 0, 0, 1, time.Now().UTC(), "one"),
		ingested(2, 10, 0, 0, 1, time.Now().UTC(), "two"),
	}, nil)
	require.NoError(t, err)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	post, err := repo.GetByMessage(ctx, ch.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "two", post.Text)

	_, err = repo.GetByMessage(ctx, ch.ID, 99)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPostRepository_UpsertBatch_Postgres(t *testing.T) {
	db := requirePostgres(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	ch := seedChannel(t, db, "Integration", 555, true)

	batch := []models.IngestedPost{ingested(1, 10, 0, 0, 1, time.Now().UTC(), "pg")}
	first, err := repo.UpsertBatch(ctx, ch.ID, batch, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, first.New)

	second, err := repo.UpsertBatch(ctx, ch.ID, batch, nil)
	require.NoError(t, err)
	assert.Equal(t, UpsertResult{Updated: 1}, second)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: posts.channel_id, posts.message_id")))
	assert.False(t, isUniqueViolation(errors.New("connection reset")))
}
