package server

import (
	"time"

	"tgscraper/internal/models"
	"tgscraper/internal/ranking"

	"github.com/gofiber/fiber/v2"
)

// GetTopPosts handles GET /api/posts/top
// @Summary Top posts across channels
// @Tags posts
// @Produce json
// @Param metric query string false "engagement_rate|engagement_count|total_reactions|views|reactions_per_view"
// @Param limit query int false "Number of posts (default 5, max 100)"
// @Param channel_ids query string false "Comma-separated channel IDs"
// @Param since_days query int false "Only posts from the last N days"
// @Success 200 {object} object{metric=string,posts=[]ranking.Entry}
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/top [get]
func (s *Server) GetTopPosts(c *fiber.Ctx) error {
	metric, err := ranking.ParseMetric(c.Query("metric"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	channelIDs, err := parseIDList(c.Query("channel_ids"))
	if err != nil {
		return respondServiceError(c, err)
	}

	var since *time.Time
	if days := c.QueryInt("since_days", 0); days > 0 {
		t := nowUTC().AddDate(0, 0, -days)
		since = &t
	} else if days < 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("since_days must be positive"))
	}

	limit := c.QueryInt("limit", ranking.DefaultLimit)
	entries, err := s.rankingService.TopPosts(c.UserContext(), metric, limit, channelIDs, since)
	if err != nil {
		return respondServiceError(c, err)
	}
	if entries == nil {
		entries = []ranking.Entry{}
	}
	return c.JSON(fiber.Map{
		"metric": metric,
		"posts":  entries,
	})
}
