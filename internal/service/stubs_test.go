package service

import (
	"context"
	"sync"
	"time"

	"tgscraper/internal/models"
	"tgscraper/internal/notifications"
	"tgscraper/internal/ranking"
	"tgscraper/internal/repository"
	"tgscraper/internal/stats"

	"gorm.io/gorm"
)

// channelRepoStub is a stub for repository.ChannelRepository.
type channelRepoStub struct {
	listFn                     func(context.Context, repository.ChannelFilter) ([]models.Channel, error)
	listWithStatsFn            func(context.Context, repository.ChannelFilter) ([]models.ChannelWithStats, error)
	listActiveFn               func(context.Context, []uint) ([]models.Channel, error)
	listForSubscriberRefreshFn func(context.Context, bool) ([]models.Channel, error)
	getByIDFn                  func(context.Context, uint) (*models.Channel, error)
	findByChannelIDFn          func(context.Context, int64) (*models.Channel, error)
	existingChannelIDsFn       func(context.Context, []int64) (map[int64]bool, error)
	createFn                   func(context.Context, *models.Channel) error
	updateFn                   func(context.Context, *models.Channel) error
	updateSubscriberCountFn    func(context.Context, uint, int) error
	deactivateFn               func(context.Context, uint) error
	deleteFn                   func(context.Context, uint) error
	countsFn                   func(context.Context) (int64, int64, error)
	lastScrapedAtFn            func(context.Context) (*time.Time, error)
}

func (s *channelRepoStub) List(ctx context.Context, f repository.ChannelFilter) ([]models.Channel, error) {
	return s.listFn(ctx, f)
}
func (s *channelRepoStub) ListWithStats(ctx context.Context, f repository.ChannelFilter) ([]models.ChannelWithStats, error) {
	return s.listWithStatsFn(ctx, f)
}
func (s *channelRepoStub) ListActive(ctx context.Context, ids []uint) ([]models.Channel, error) {
	return s.listActiveFn(ctx, ids)
}
func (s *channelRepoStub) ListForSubscriberRefresh(ctx context.Context, all bool) ([]models.Channel, error) {
	return s.listForSubscriberRefreshFn(ctx, all)
}
func (s *channelRepoStub) GetByID(ctx context.Context, id uint) (*models.Channel, error) {
	return s.getByIDFn(ctx, id)
}
func (s *channelRepoStub) FindByChannelID(ctx context.Context, channelID int64) (*models.Channel, error) {
	return s.findByChannelIDFn(ctx, channelID)
}
func (s *channelRepoStub) ExistingChannelIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	return s.existingChannelIDsFn(ctx, ids)
}
func (s *channelRepoStub) Create(ctx context.Context, ch *models.Channel) error {
	return s.createFn(ctx, ch)
}
func (s *channelRepoStub) Update(ctx context.Context, ch *models.Channel) error {
	return s.updateFn(ctx, ch)
}
func (s *channelRepoStub) UpdateSubscriberCount(ctx context.Context, id uint, count int) error {
	return s.updateSubscriberCountFn(ctx, id, count)
}
func (s *channelRepoStub) Deactivate(ctx context.Context, id uint) error {
	return s.deactivateFn(ctx, id)
}
func (s *channelRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *channelRepoStub) Counts(ctx context.Context) (int64, int64, error) {
	return s.countsFn(ctx)
}
func (s *channelRepoStub) LastScrapedAt(ctx context.Context) (*time.Time, error) {
	return s.lastScrapedAtFn(ctx)
}

func noopChannelRepo() *channelRepoStub {
	return &channelRepoStub{
		listFn:                     func(_ context.Context, _ repository.ChannelFilter) ([]models.Channel, error) { return nil, nil },
		listWithStatsFn:            func(_ context.Context, _ repository.ChannelFilter) ([]models.ChannelWithStats, error) { return nil, nil },
		listActiveFn:               func(_ context.Context, _ []uint) ([]models.Channel, error) { return nil, nil },
		listForSubscriberRefreshFn: func(_ context.Context, _ bool) ([]models.Channel, error) { return nil, nil },
		getByIDFn:                  func(_ context.Context, _ uint) (*models.Channel, error) { return nil, gorm.ErrRecordNotFound },
		findByChannelIDFn:          func(_ context.Context, _ int64) (*models.Channel, error) { return nil, nil },
		existingChannelIDsFn:       func(_ context.Context, _ []int64) (map[int64]bool, error) { return map[int64]bool{}, nil },
		createFn:                   func(_ context.Context, _ *models.Channel) error { return nil },
		updateFn:                   func(_ context.Context, _ *models.Channel) error { return nil },
		updateSubscriberCountFn:    func(_ context.Context, _ uint, _ int) error { return nil },
		deactivateFn:               func(_ context.Context, _ uint) error { return nil },
		deleteFn:                   func(_ context.Context, _ uint) error { return nil },
		countsFn:                   func(_ context.Context) (int64, int64, error) { return 0, 0, nil },
		lastScrapedAtFn:            func(_ context.Context) (*time.Time, error) { return nil, nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	upsertBatchFn   func(context.Context, uint, []models.IngestedPost, *models.ChannelMetadata) (repository.UpsertResult, error)
	listByChannelFn func(context.Context, uint, repository.PostListQuery) ([]models.Post, error)
	getByMessageFn  func(context.Context, uint, int) (*models.Post, error)
	statsSamplesFn  func(context.Context, []uint) (map[uint][]stats.Sample, error)
	rankingPoolFn   func(context.Context, repository.RankingFilter) ([]ranking.Candidate, error)
	countFn         func(context.Context) (int64, error)
}

func (s *postRepoStub) UpsertBatch(ctx context.Context, channelID uint, posts []models.IngestedPost, meta *models.ChannelMetadata) (repository.UpsertResult, error) {
	return s.upsertBatchFn(ctx, channelID, posts, meta)
}
func (s *postRepoStub) ListByChannel(ctx context.Context, channelID uint, q repository.PostListQuery) ([]models.Post, error) {
	return s.listByChannelFn(ctx, channelID, q)
}
func (s *postRepoStub) GetByMessage(ctx context.Context, channelID uint, messageID int) (*models.Post, error) {
	return s.getByMessageFn(ctx, channelID, messageID)
}
func (s *postRepoStub) StatsSamples(ctx context.Context, ids []uint) (map[uint][]stats.Sample, error) {
	return s.statsSamplesFn(ctx, ids)
}
func (s *postRepoStub) RankingPool(ctx context.Context, f repository.RankingFilter) ([]ranking.Candidate, error) {
	return s.rankingPoolFn(ctx, f)
}
func (s *postRepoStub) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		upsertBatchFn: func(_ context.Context, _ uint, posts []models.IngestedPost, _ *models.ChannelMetadata) (repository.UpsertResult, error) {
			return repository.UpsertResult{New: len(posts)}, nil
		},
		listByChannelFn: func(_ context.Context, _ uint, _ repository.PostListQuery) ([]models.Post, error) { return nil, nil },
		getByMessageFn:  func(_ context.Context, _ uint, _ int) (*models.Post, error) { return nil, gorm.ErrRecordNotFound },
		statsSamplesFn:  func(_ context.Context, _ []uint) (map[uint][]stats.Sample, error) { return map[uint][]stats.Sample{}, nil },
		rankingPoolFn:   func(_ context.Context, _ repository.RankingFilter) ([]ranking.Candidate, error) { return nil, nil },
		countFn:         func(_ context.Context) (int64, error) { return 0, nil },
	}
}

// sourceStub is a stub for PostSource and ChannelDiscoverer.
type sourceStub struct {
	fetchRecentFn   func(context.Context, models.ChannelRef, int) ([]models.FetchedPost, error)
	fetchMetadataFn func(context.Context, models.ChannelRef) (models.ChannelMetadata, error)
	fetchPostFn     func(context.Context, models.ChannelRef, int) (models.FetchedPost, error)
	discoverFn      func(context.Context) ([]models.DiscoveredChannel, error)
}

func (s *sourceStub) FetchRecentPosts(ctx context.Context, ref models.ChannelRef, limit int) ([]models.FetchedPost, error) {
	return s.fetchRecentFn(ctx, ref, limit)
}
func (s *sourceStub) FetchChannelMetadata(ctx context.Context, ref models.ChannelRef) (models.ChannelMetadata, error) {
	return s.fetchMetadataFn(ctx, ref)
}
func (s *sourceStub) FetchPost(ctx context.Context, ref models.ChannelRef, messageID int) (models.FetchedPost, error) {
	return s.fetchPostFn(ctx, ref, messageID)
}
func (s *sourceStub) DiscoverChannels(ctx context.Context) ([]models.DiscoveredChannel, error) {
	return s.discoverFn(ctx)
}

func noopSource() *sourceStub {
	return &sourceStub{
		fetchRecentFn: func(_ context.Context, _ models.ChannelRef, _ int) ([]models.FetchedPost, error) { return nil, nil },
		fetchMetadataFn: func(_ context.Context, _ models.ChannelRef) (models.ChannelMetadata, error) {
			return models.ChannelMetadata{}, nil
		},
		fetchPostFn: func(_ context.Context, _ models.ChannelRef, id int) (models.FetchedPost, error) {
			return models.FetchedPost{MessageID: id}, nil
		},
		discoverFn: func(_ context.Context) ([]models.DiscoveredChannel, error) { return nil, nil },
	}
}

type publisherStub struct {
	mu     sync.Mutex
	events []notifications.ScrapeEvent
}

func (p *publisherStub) PublishScrapeEvent(ctx context.Context, ev notifications.ScrapeEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *publisherStub) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type alertStub struct {
	sent []string
}

func (a *alertStub) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.sent = append(a.sent, text)
	return nil
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }
