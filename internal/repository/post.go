package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tgscraper/internal/models"
	"tgscraper/internal/observability"
	"tgscraper/internal/ranking"
	"tgscraper/internal/stats"

	"gorm.io/gorm"
)

// UpsertResult counts the rows touched by one channel batch.
type UpsertResult struct {
	New     int
	Updated int
}

// PostListQuery pages through a channel's stored posts.
type PostListQuery struct {
	OrderBy string
	Order   string
	Limit   int
	Offset  int
}

// RankingFilter narrows the ranking pool. Zero values disable a filter.
type RankingFilter struct {
	ChannelIDs []uint
	Since      *time.Time
}

var postOrderColumns = map[string]string{
	"date":             "date",
	"engagement_rate":  "engagement_rate",
	"engagement_count": "engagement_count",
	"views":            "views",
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	UpsertBatch(ctx context.Context, channelID uint, posts []models.IngestedPost, meta *models.ChannelMetadata) (UpsertResult, error)
	ListByChannel(ctx context.Context, channelID uint, q PostListQuery) ([]models.Post, error)
	GetByMessage(ctx context.Context, channelID uint, messageID int) (*models.Post, error)
	StatsSamples(ctx context.Context, channelIDs []uint) (map[uint][]stats.Sample, error)
	RankingPool(ctx context.Context, filter RankingFilter) ([]ranking.Candidate, error)
	Count(ctx context.Context) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
	now    func() time.Time
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{
		db:     db,
		logger: observability.NewRepoLogger("posts"),
		now:    time.Now,
	}
}

// UpsertBatch writes one channel's posts in a single transaction and stamps
// the channel's last_scraped_at. Existing rows only get their metric columns
// refreshed; text and date stay as first stored.
func (r *postRepository) UpsertBatch(ctx context.Context, channelID uint, posts []models.IngestedPost, meta *models.ChannelMetadata) (UpsertResult, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "UpsertBatch", "posts")
	defer span.End()
	defer observability.TrackQuery("upsert_batch", "posts")()

	var result UpsertResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range posts {
			created, err := upsertPost(tx, channelID, p)
			if err != nil {
				return fmt.Errorf("upsert message %d: %w", p.MessageID, err)
			}
			if created {
				result.New++
			} else {
				result.Updated++
			}
		}

		updates := map[string]interface{}{"last_scraped_at": r.now().UTC()}
		if meta != nil && meta.SubscriberCount != nil {
			updates["subscriber_count"] = *meta.SubscriberCount
		}
		return tx.Model(&models.Channel{}).Where("id = ?", channelID).Updates(updates).Error
	})
	if err != nil {
		span.RecordError(err)
		r.logger.LogError(ctx, err, "upsert_batch")
		return UpsertResult{}, err
	}

	r.logger.LogUpdate(ctx, map[string]interface{}{
		"channel_id": channelID,
		"new":        result.New,
		"updated":    result.Updated,
	})
	return result, nil
}

// upsertPost reports whether a new row was inserted.
func upsertPost(tx *gorm.DB, channelID uint, p models.IngestedPost) (bool, error) {
	id, found, err := findPostID(tx, channelID, p.MessageID)
	if err != nil {
		return false, err
	}
	if found {
		return false, updatePostMetrics(tx, id, p)
	}

	row := p.ToPost(channelID)
	err = tx.Transaction(func(sp *gorm.DB) error {
		return sp.Create(&row).Error
	})
	if err == nil {
		return true, nil
	}
	if !isUniqueViolation(err) {
		return false, err
	}

	// Another writer inserted the same message after our lookup.
	id, found, err = findPostID(tx, channelID, p.MessageID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, fmt.Errorf("message %d vanished after unique violation", p.MessageID)
	}
	return false, updatePostMetrics(tx, id, p)
}

func findPostID(tx *gorm.DB, channelID uint, messageID int) (uint, bool, error) {
	var existing models.Post
	err := tx.Select("id").
		Where("channel_id = ? AND message_id = ?", channelID, messageID).
		Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return existing.ID, true, nil
}

func updatePostMetrics(tx *gorm.DB, id uint, p models.IngestedPost) error {
	return tx.Model(&models.Post{}).Where("id = ?", id).Updates(p.MetricUpdates()).Error
}

func (r *postRepository) ListByChannel(ctx context.Context, channelID uint, q PostListQuery) ([]models.Post, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "ListByChannel", "posts")
	defer span.End()
	defer observability.TrackQuery("list_by_channel", "posts")()

	column, ok := postOrderColumns[q.OrderBy]
	if !ok {
		column = "date"
	}
	direction := "DESC"
	if strings.EqualFold(q.Order, "asc") {
		direction = "ASC"
	}

	var posts []models.Post
	db := readDB(r.db).WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order(column + " " + direction).
		Order("id " + direction)
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	if q.Offset > 0 {
		db = db.Offset(q.Offset)
	}
	if err := db.Find(&posts).Error; err != nil {
		r.logger.LogError(ctx, err, "list_by_channel")
		return nil, err
	}
	r.logger.LogRead(ctx, map[string]interface{}{"channel_id": channelID, "rows": len(posts)})
	return posts, nil
}

func (r *postRepository) GetByMessage(ctx context.Context, channelID uint, messageID int) (*models.Post, error) {
	var post models.Post
	if err := readDB(r.db).WithContext(ctx).
		Where("channel_id = ? AND message_id = ?", channelID, messageID).
		Take(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

type sampleRow struct {
	ChannelID       uint
	Date            time.Time
	Views           int
	TotalReactions  int
	Forwards        int
	Replies         int
	PostLength      int
	EngagementCount int
	EngagementRate  float64
}

// StatsSamples loads aggregator input for the given channels, grouped by
// channel. Posts without views are skipped at the query.
func (r *postRepository) StatsSamples(ctx context.Context, channelIDs []uint) (map[uint][]stats.Sample, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "StatsSamples", "posts")
	defer span.End()
	defer observability.TrackQuery("stats_samples", "posts")()

	out := make(map[uint][]stats.Sample, len(channelIDs))
	if len(channelIDs) == 0 {
		return out, nil
	}

	var rows []sampleRow
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.Post{}).
		Select("channel_id, date, views, total_reactions, forwards, replies, post_length, engagement_count, engagement_rate").
		Where("channel_id IN ? AND views > 0", channelIDs).
		Order("channel_id ASC").
		Order("date ASC").
		Scan(&rows).Error; err != nil {
		r.logger.LogError(ctx, err, "stats_samples")
		return nil, err
	}
	r.logger.LogRead(ctx, map[string]interface{}{"channels": len(channelIDs), "rows": len(rows)})

	for _, row := range rows {
		out[row.ChannelID] = append(out[row.ChannelID], stats.Sample{
			Date:            row.Date,
			Views:           row.Views,
			Reactions:       row.TotalReactions,
			Forwards:        row.Forwards,
			Replies:         row.Replies,
			PostLength:      row.PostLength,
			EngagementCount: row.EngagementCount,
			EngagementRate:  row.EngagementRate,
		})
	}
	return out, nil
}

type candidateRow struct {
	ChannelID       uint
	ChannelTitle    string
	MessageID       int
	Date            time.Time
	Text            string
	Views           int
	Forwards        int
	Replies         int
	TotalReactions  int
	EngagementCount int
	EngagementRate  float64
}

// RankingPool returns posts from active channels that can appear in a
// ranking, in insertion order.
func (r *postRepository) RankingPool(ctx context.Context, filter RankingFilter) ([]ranking.Candidate, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "RankingPool", "posts")
	defer span.End()
	defer observability.TrackQuery("ranking_pool", "posts")()

	q := readDB(r.db).WithContext(ctx).
		Table("posts").
		Select(`posts.channel_id, channels.title AS channel_title, posts.message_id, posts.date,
			posts.text, posts.views, posts.forwards, posts.replies, posts.total_reactions,
			posts.engagement_count, posts.engagement_rate`).
		Joins("JOIN channels ON channels.id = posts.channel_id").
		Where("channels.is_active = ?", true).
		Where("posts.views > 0 AND posts.engagement_count > 0")
	if len(filter.ChannelIDs) > 0 {
		q = q.Where("posts.channel_id IN ?", filter.ChannelIDs)
	}
	if filter.Since != nil {
		q = q.Where("posts.date >= ?", *filter.Since)
	}

	var rows []candidateRow
	if err := q.Order("posts.id ASC").Scan(&rows).Error; err != nil {
		r.logger.LogError(ctx, err, "ranking_pool")
		return nil, err
	}

	pool := make([]ranking.Candidate, len(rows))
	for i, row := range rows {
		pool[i] = ranking.Candidate{
			ChannelID:       row.ChannelID,
			ChannelTitle:    row.ChannelTitle,
			MessageID:       row.MessageID,
			Date:            row.Date,
			Text:            row.Text,
			Views:           row.Views,
			Forwards:        row.Forwards,
			Replies:         row.Replies,
			TotalReactions:  row.TotalReactions,
			EngagementCount: row.EngagementCount,
			EngagementRate:  row.EngagementRate,
		}
	}
	return pool, nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Post{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
