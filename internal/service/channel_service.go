package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tgscraper/internal/cache"
	"tgscraper/internal/engagement"
	"tgscraper/internal/models"
	"tgscraper/internal/observability"
	"tgscraper/internal/repository"
	"tgscraper/internal/validation"

	"gorm.io/gorm"
)

// CreateChannelInput is the payload for registering a channel.
type CreateChannelInput struct {
	Title     string  `json:"title"`
	Username  *string `json:"username"`
	ChannelID int64   `json:"channel_id"`
	IsActive  *bool   `json:"is_active"`
	ColorFlag *int    `json:"color_flag"`
	Notes     *string `json:"notes"`
}

// UpdateChannelInput is a partial update. Nil fields are left unchanged.
type UpdateChannelInput struct {
	Title     *string `json:"title"`
	Username  *string `json:"username"`
	ChannelID *int64  `json:"channel_id"`
	IsActive  *bool   `json:"is_active"`
	ColorFlag *int    `json:"color_flag"`
	Notes     *string `json:"notes"`
}

// ImportResult reports a discovery import.
type ImportResult struct {
	Discovered int              `json:"discovered"`
	Created    int              `json:"created"`
	Skipped    int              `json:"skipped"`
	Channels   []models.Channel `json:"channels"`
}

// RefreshResult reports a subscriber-count refresh.
type RefreshResult struct {
	Checked int      `json:"checked"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

// ReactionReport is the live reaction breakdown of one post.
type ReactionReport struct {
	ChannelID     uint               `json:"channel_id"`
	ChannelTitle  string             `json:"channel_title"`
	MessageID     int                `json:"message_id"`
	Date          time.Time          `json:"date"`
	Views         int                `json:"views"`
	Forwards      int                `json:"forwards"`
	Replies       int                `json:"replies"`
	Engagement    engagement.Metrics `json:"engagement"`
	EngagementAll engagement.Metrics `json:"engagement_all_reactions"`
	engagement.Classification
}

// ChannelDeps are the collaborators of ChannelService. Source and Discoverer
// may be nil when Telegram is not configured.
type ChannelDeps struct {
	Channels   repository.ChannelRepository
	Posts      repository.PostRepository
	Source     PostSource
	Discoverer ChannelDiscoverer
}

// ChannelService manages tracked channels.
type ChannelService struct {
	deps         ChannelDeps
	refreshDelay time.Duration
	sleep        func(ctx context.Context, d time.Duration) error
}

func NewChannelService(deps ChannelDeps, refreshDelay time.Duration) *ChannelService {
	return &ChannelService{deps: deps, refreshDelay: refreshDelay, sleep: sleepContext}
}

func (s *ChannelService) List(ctx context.Context, filter repository.ChannelFilter) ([]models.Channel, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultChannelListLimit
	}
	return s.deps.Channels.List(ctx, filter)
}

func (s *ChannelService) Get(ctx context.Context, id uint) (*models.Channel, error) {
	ch, err := s.deps.Channels.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Channel", id)
	}
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func duplicateChannel(channelID int64) error {
	return models.NewValidationError(fmt.Sprintf("Channel with channel_id %d already exists", channelID))
}

func (s *ChannelService) Create(ctx context.Context, in CreateChannelInput) (*models.Channel, error) {
	title := strings.TrimSpace(in.Title)
	if err := validation.ValidateChannelTitle(title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateChannelID(in.ChannelID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	username, err := normalizeUsername(in.Username)
	if err != nil {
		return nil, err
	}
	if in.ColorFlag != nil {
		if err := validation.ValidateColorFlag(*in.ColorFlag); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	channelID := models.NormalizeChannelID(in.ChannelID)
	existing, err := s.deps.Channels.FindByChannelID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, duplicateChannel(channelID)
	}

	ch := &models.Channel{
		Title:     title,
		Username:  username,
		ChannelID: channelID,
		IsActive:  true,
		ColorFlag: in.ColorFlag,
		Notes:     in.Notes,
	}
	if err := s.deps.Channels.Create(ctx, ch); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateChannel(channelID)
		}
		return nil, err
	}
	if in.IsActive != nil && !*in.IsActive {
		if err := s.deps.Channels.Deactivate(ctx, ch.ID); err != nil {
			return nil, err
		}
		ch.IsActive = false
	}

	cache.InvalidateStats(ctx)
	return ch, nil
}

func (s *ChannelService) Update(ctx context.Context, id uint, in UpdateChannelInput) (*models.Channel, error) {
	ch, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if err := validation.ValidateChannelTitle(title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		ch.Title = title
	}
	if in.Username != nil {
		username, err := normalizeUsername(in.Username)
		if err != nil {
			return nil, err
		}
		ch.Username = username
	}
	if in.ChannelID != nil {
		if err := validation.ValidateChannelID(*in.ChannelID); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		channelID := models.NormalizeChannelID(*in.ChannelID)
		if channelID != ch.ChannelID {
			existing, err := s.deps.Channels.FindByChannelID(ctx, channelID)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != ch.ID {
				return nil, duplicateChannel(channelID)
			}
			ch.ChannelID = channelID
		}
	}
	if in.IsActive != nil {
		ch.IsActive = *in.IsActive
	}
	if in.ColorFlag != nil {
		if err := validation.ValidateColorFlag(*in.ColorFlag); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		ch.ColorFlag = in.ColorFlag
	}
	if in.Notes != nil {
		ch.Notes = in.Notes
	}

	if err := s.deps.Channels.Update(ctx, ch); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateChannel(ch.ChannelID)
		}
		return nil, err
	}
	cache.InvalidateStats(ctx)
	return ch, nil
}

// SetColorFlag sets the flag, or clears it when flag is nil.
func (s *ChannelService) SetColorFlag(ctx context.Context, id uint, flag *int) (*models.Channel, error) {
	if flag != nil {
		if err := validation.ValidateColorFlag(*flag); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}
	ch, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ch.ColorFlag = flag
	if err := s.deps.Channels.Update(ctx, ch); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.ChannelsListingKey)
	return ch, nil
}

// Deactivate soft-deletes a channel and returns its new state.
func (s *ChannelService) Deactivate(ctx context.Context, id uint) (*models.Channel, error) {
	ch, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Channels.Deactivate(ctx, id); err != nil {
		return nil, err
	}
	ch.IsActive = false
	cache.InvalidateStats(ctx)
	return ch, nil
}

// Delete removes a channel and, through the foreign key, all of its posts.
func (s *ChannelService) Delete(ctx context.Context, id uint) error {
	err := s.deps.Channels.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Channel", id)
	}
	if err != nil {
		return err
	}
	cache.InvalidateStats(ctx)
	return nil
}

// Messages pages through a channel's stored posts.
func (s *ChannelService) Messages(ctx context.Context, id uint, q repository.PostListQuery) ([]models.Post, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	posts, err := s.deps.Posts.ListByChannel(ctx, id, q)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

// Import registers every discovered broadcast channel that is not tracked yet.
func (s *ChannelService) Import(ctx context.Context) (*ImportResult, error) {
	if s.deps.Discoverer == nil {
		return nil, sourceUnavailable()
	}
	discovered, err := s.deps.Discoverer.DiscoverChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover channels: %w", err)
	}

	ids := make([]int64, len(discovered))
	for i, d := range discovered {
		ids[i] = models.NormalizeChannelID(d.ChannelID)
	}
	existing, err := s.deps.Channels.ExistingChannelIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Discovered: len(discovered), Channels: []models.Channel{}}
	for i, d := range discovered {
		if existing[ids[i]] {
			result.Skipped++
			continue
		}
		ch := &models.Channel{Title: d.Title, ChannelID: ids[i], IsActive: true}
		if d.Username != "" {
			username := d.Username
			ch.Username = &username
		}
		if err := s.deps.Channels.Create(ctx, ch); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				result.Skipped++
				continue
			}
			return nil, fmt.Errorf("create %q: %w", d.Title, err)
		}
		existing[ids[i]] = true
		result.Created++
		result.Channels = append(result.Channels, *ch)
	}

	if result.Created > 0 {
		cache.InvalidateStats(ctx)
	}
	observability.GlobalLogger.InfoContext(ctx, "channel import finished",
		"discovered", result.Discovered, "created", result.Created, "skipped", result.Skipped)
	return result, nil
}

// RefreshSubscriberCounts fills missing subscriber counts, or refreshes every
// channel when all is set. Per-channel failures are collected.
func (s *ChannelService) RefreshSubscriberCounts(ctx context.Context, all bool) (*RefreshResult, error) {
	if s.deps.Source == nil {
		return nil, sourceUnavailable()
	}
	channels, err := s.deps.Channels.ListForSubscriberRefresh(ctx, all)
	if err != nil {
		return nil, err
	}

	result := &RefreshResult{Errors: []string{}}
	for i, ch := range channels {
		if i > 0 {
			if err := s.sleep(ctx, s.refreshDelay); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("refresh cancelled: %v", err))
				break
			}
		}
		result.Checked++
		meta, err := s.deps.Source.FetchChannelMetadata(ctx, ch.Ref())
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", ch.Title, err))
			continue
		}
		if meta.SubscriberCount == nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: subscriber count not reported", ch.Title))
			continue
		}
		if err := s.deps.Channels.UpdateSubscriberCount(ctx, ch.ID, *meta.SubscriberCount); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", ch.Title, err))
			continue
		}
		result.Updated++
	}

	if result.Updated > 0 {
		cache.InvalidateStats(ctx)
	}
	return result, nil
}

// ReactionBreakdown fetches one post live and classifies its reactions.
func (s *ChannelService) ReactionBreakdown(ctx context.Context, id uint, messageID int) (*ReactionReport, error) {
	if s.deps.Source == nil {
		return nil, sourceUnavailable()
	}
	if messageID <= 0 {
		return nil, models.NewValidationError("message id must be positive")
	}
	ch, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fetched, err := s.deps.Source.FetchPost(ctx, ch.Ref(), messageID)
	if err != nil {
		return nil, fmt.Errorf("fetch message %d: %w", messageID, err)
	}
	post := fetched.Normalize()
	class := engagement.Classify(fetched.Reactions)

	return &ReactionReport{
		ChannelID:      ch.ID,
		ChannelTitle:   ch.Title,
		MessageID:      post.MessageID,
		Date:           post.Date,
		Views:          post.Views,
		Forwards:       post.Forwards,
		Replies:        post.Replies,
		Engagement:     engagement.Compute(post.Views, post.Forwards, post.Replies, class.TotalFree),
		EngagementAll:  engagement.Compute(post.Views, post.Forwards, post.Replies, class.TotalAll),
		Classification: class,
	}, nil
}

func normalizeUsername(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	username := validation.NormalizeUsername(*raw)
	if username == "" {
		return nil, nil
	}
	if err := validation.ValidateChannelUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return &username, nil
}
