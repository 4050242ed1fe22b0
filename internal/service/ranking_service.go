package service

import (
	"context"
	"fmt"
	"time"

	"tgscraper/internal/ranking"
	"tgscraper/internal/repository"
)

// MaxTopPosts caps a ranking request.
const MaxTopPosts = 100

// RankingService ranks stored posts across active channels.
type RankingService struct {
	posts repository.PostRepository
}

func NewRankingService(posts repository.PostRepository) *RankingService {
	return &RankingService{posts: posts}
}

// TopPosts returns the n best posts by metric. channelIDs and since are
// optional filters.
func (s *RankingService) TopPosts(ctx context.Context, metric ranking.Metric, n int, channelIDs []uint, since *time.Time) ([]ranking.Entry, error) {
	if n > MaxTopPosts {
		n = MaxTopPosts
	}
	pool, err := s.posts.RankingPool(ctx, repository.RankingFilter{ChannelIDs: channelIDs, Since: since})
	if err != nil {
		return nil, fmt.Errorf("load ranking pool: %w", err)
	}
	return ranking.Top(pool, metric, n), nil
}
