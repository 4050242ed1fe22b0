// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tgscraper/internal/models"
	"tgscraper/internal/observability"

	"gorm.io/gorm"
)

// ChannelFilter narrows channel listings. A nil IsActive matches every channel.
type ChannelFilter struct {
	IsActive *bool
	Limit    int
	Offset   int
}

// ChannelRepository defines the interface for channel data operations
type ChannelRepository interface {
	List(ctx context.Context, filter ChannelFilter) ([]models.Channel, error)
	ListWithStats(ctx context.Context, filter ChannelFilter) ([]models.ChannelWithStats, error)
	ListActive(ctx context.Context, ids []uint) ([]models.Channel, error)
	ListForSubscriberRefresh(ctx context.Context, all bool) ([]models.Channel, error)
	GetByID(ctx context.Context, id uint) (*models.Channel, error)
	FindByChannelID(ctx context.Context, channelID int64) (*models.Channel, error)
	ExistingChannelIDs(ctx context.Context, channelIDs []int64) (map[int64]bool, error)
	Create(ctx context.Context, channel *models.Channel) error
	Update(ctx context.Context, channel *models.Channel) error
	UpdateSubscriberCount(ctx context.Context, id uint, count int) error
	Deactivate(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
	Counts(ctx context.Context) (total, active int64, err error)
	LastScrapedAt(ctx context.Context) (*time.Time, error)
}

// channelRepository implements ChannelRepository
type channelRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewChannelRepository creates a new channel repository
func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &channelRepository{db: db, logger: observability.NewRepoLogger("channels")}
}

func applyChannelFilter(q *gorm.DB, column string, filter ChannelFilter) *gorm.DB {
	if filter.IsActive != nil {
		q = q.Where(column+" = ?", *filter.IsActive)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	return q
}

func (r *channelRepository) List(ctx context.Context, filter ChannelFilter) ([]models.Channel, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "List", "channels")
	defer span.End()
	defer observability.TrackQuery("list", "channels")()

	var channels []models.Channel
	q := readDB(r.db).WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if err := applyChannelFilter(q, "is_active", filter).Find(&channels).Error; err != nil {
		r.logger.LogError(ctx, err, "list")
		return nil, err
	}
	return channels, nil
}

const channelStatsColumns = `channels.*,
	COUNT(posts.id) AS messages_count,
	MAX(posts.date) AS latest_message_date,
	AVG(CASE WHEN posts.views > 0 THEN posts.engagement_rate END) AS avg_engagement_rate,
	AVG(CASE WHEN posts.views > 0 THEN posts.views END) AS avg_views`

// ListWithStats returns channels with post totals in one grouped query.
func (r *channelRepository) ListWithStats(ctx context.Context, filter ChannelFilter) ([]models.ChannelWithStats, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "ListWithStats", "channels")
	defer span.End()
	defer observability.TrackQuery("list_with_stats", "channels")()

	var rows []models.ChannelWithStats
	q := readDB(r.db).WithContext(ctx).
		Table("channels").
		Select(channelStatsColumns).
		Joins("LEFT JOIN posts ON posts.channel_id = channels.id").
		Group("channels.id").
		Order("channels.created_at DESC").
		Order("channels.id DESC")
	if err := applyChannelFilter(q, "channels.is_active", filter).Scan(&rows).Error; err != nil {
		r.logger.LogError(ctx, err, "list_with_stats")
		return nil, err
	}
	return rows, nil
}

// ListActive returns active channels ordered by id. An empty ids slice selects
// every active channel.
func (r *channelRepository) ListActive(ctx context.Context, ids []uint) ([]models.Channel, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "ListActive", "channels")
	defer span.End()

	var channels []models.Channel
	q := r.db.WithContext(ctx).Where("is_active = ?", true)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	if err := q.Order("id ASC").Find(&channels).Error; err != nil {
		r.logger.LogError(ctx, err, "list_active")
		return nil, err
	}
	return channels, nil
}

// ListForSubscriberRefresh returns channels with no subscriber count, or every
// channel when all is set.
func (r *channelRepository) ListForSubscriberRefresh(ctx context.Context, all bool) ([]models.Channel, error) {
	var channels []models.Channel
	q := r.db.WithContext(ctx)
	if !all {
		q = q.Where("subscriber_count IS NULL")
	}
	if err := q.Order("id ASC").Find(&channels).Error; err != nil {
		return nil, err
	}
	return channels, nil
}

func (r *channelRepository) GetByID(ctx context.Context, id uint) (*models.Channel, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "GetByID", "channels")
	defer span.End()

	var channel models.Channel
	if err := readDB(r.db).WithContext(ctx).First(&channel, id).Error; err != nil {
		return nil, err
	}
	return &channel, nil
}

// FindByChannelID looks a channel up by its Telegram id. It returns nil, nil
// when no channel matches.
func (r *channelRepository) FindByChannelID(ctx context.Context, channelID int64) (*models.Channel, error) {
	var channel models.Channel
	err := r.db.WithContext(ctx).Where("channel_id = ?", channelID).Take(&channel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

func (r *channelRepository) ExistingChannelIDs(ctx context.Context, channelIDs []int64) (map[int64]bool, error) {
	existing := make(map[int64]bool, len(channelIDs))
	if len(channelIDs) == 0 {
		return existing, nil
	}

	var found []int64
	if err := r.db.WithContext(ctx).
		Model(&models.Channel{}).
		Where("channel_id IN ?", channelIDs).
		Pluck("channel_id", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

// Create inserts a channel. A collision on channel_id returns ErrDuplicate.
func (r *channelRepository) Create(ctx context.Context, channel *models.Channel) error {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "Create", "channels")
	defer span.End()

	if err := r.db.WithContext(ctx).Create(channel).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("channel %d: %w", channel.ChannelID, ErrDuplicate)
		}
		r.logger.LogError(ctx, err, "create")
		return err
	}
	r.logger.LogCreate(ctx, map[string]interface{}{"id": channel.ID, "channel_id": channel.ChannelID})
	return nil
}

func (r *channelRepository) Update(ctx context.Context, channel *models.Channel) error {
	if err := r.db.WithContext(ctx).Save(channel).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("channel %d: %w", channel.ChannelID, ErrDuplicate)
		}
		r.logger.LogError(ctx, err, "update")
		return err
	}
	r.logger.LogUpdate(ctx, map[string]interface{}{"id": channel.ID})
	return nil
}

func (r *channelRepository) UpdateSubscriberCount(ctx context.Context, id uint, count int) error {
	return r.db.WithContext(ctx).
		Model(&models.Channel{}).
		Where("id = ?", id).
		Update("subscriber_count", count).Error
}

// Deactivate flips is_active off. Posts are kept.
func (r *channelRepository) Deactivate(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Channel{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.logger.LogDelete(ctx, map[string]interface{}{"id": id, "soft": true})
	return nil
}

// Delete removes the channel row; the foreign key cascades to its posts.
func (r *channelRepository) Delete(ctx context.Context, id uint) error {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "Delete", "channels")
	defer span.End()

	result := r.db.WithContext(ctx).Delete(&models.Channel{}, id)
	if result.Error != nil {
		r.logger.LogError(ctx, result.Error, "delete")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.logger.LogDelete(ctx, map[string]interface{}{"id": id, "soft": false})
	return nil
}

func (r *channelRepository) Counts(ctx context.Context) (total, active int64, err error) {
	db := readDB(r.db).WithContext(ctx)
	if err = db.Model(&models.Channel{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = db.Model(&models.Channel{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

// LastScrapedAt returns the most recent last_scraped_at over all channels,
// or nil before the first scrape.
func (r *channelRepository) LastScrapedAt(ctx context.Context) (*time.Time, error) {
	var last sql.NullTime
	row := readDB(r.db).WithContext(ctx).
		Model(&models.Channel{}).
		Select("MAX(last_scraped_at)").
		Row()
	if err := row.Scan(&last); err != nil {
		return nil, err
	}
	if !last.Valid {
		return nil, nil
	}
	t := last.Time.UTC()
	return &t, nil
}
