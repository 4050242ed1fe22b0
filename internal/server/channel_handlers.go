package server

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"tgscraper/internal/models"
	"tgscraper/internal/repository"
	"tgscraper/internal/service"
	"tgscraper/internal/telegram"

	"github.com/gofiber/fiber/v2"
)

const defaultMessagesLimit = 50

var messageOrderFields = map[string]bool{
	"date":             true,
	"engagement_rate":  true,
	"engagement_count": true,
	"views":            true,
}

func (s *Server) channelFilter(c *fiber.Ctx) (repository.ChannelFilter, error) {
	active, err := parseOptionalBool(c, "is_active")
	if err != nil {
		return repository.ChannelFilter{}, err
	}
	page := parsePagination(c, service.DefaultChannelListLimit)
	return repository.ChannelFilter{IsActive: active, Limit: page.Limit, Offset: page.Offset}, nil
}

// ListChannels handles GET /api/channels
// @Summary List channels
// @Description Tracked channels, newest first.
// @Tags channels
// @Produce json
// @Param is_active query bool false "Filter by active flag"
// @Param limit query int false "Page size (default 100, max 1000)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Channel
// @Failure 400 {object} models.ErrorResponse
// @Router /channels [get]
func (s *Server) ListChannels(c *fiber.Ctx) error {
	filter, err := s.channelFilter(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	channels, err := s.channelService.List(c.UserContext(), filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	if channels == nil {
		channels = []models.Channel{}
	}
	return c.JSON(channels)
}

// ListChannelsWithStats handles GET /api/channels/with-stats
// @Summary List channels with post totals
// @Tags channels
// @Produce json
// @Param is_active query bool false "Filter by active flag"
// @Param limit query int false "Page size (default 100, max 1000)"
// @Param offset query int false "Offset"
// @Success 200 {array} ChannelWithStatsDTO
// @Router /channels/with-stats [get]
func (s *Server) ListChannelsWithStats(c *fiber.Ctx) error {
	filter, err := s.channelFilter(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	rows, err := s.statsService.ChannelsWithStats(c.UserContext(), filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(toChannelWithStatsDTOs(rows))
}

// GetChannel handles GET /api/channels/:id
// @Summary Get a channel
// @Tags channels
// @Produce json
// @Param id path int true "Channel ID"
// @Success 200 {object} models.Channel
// @Failure 404 {object} models.ErrorResponse
// @Router /channels/{id} [get]
func (s *Server) GetChannel(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	ch, err := s.channelService.Get(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(ch)
}

// CreateChannel handles POST /api/channels
// @Summary Register a channel
// @Tags channels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateChannelInput true "Channel"
// @Success 201 {object} models.Channel
// @Failure 400 {object} models.ErrorResponse
// @Router /channels [post]
func (s *Server) CreateChannel(c *fiber.Ctx) error {
	var req service.CreateChannelInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	ch, err := s.channelService.Create(c.UserContext(), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ch)
}

// UpdateChannel handles PATCH /api/channels/:id
// @Summary Update a channel
// @Description Partial update; omitted fields are unchanged.
// @Tags channels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Channel ID"
// @Param request body service.UpdateChannelInput true "Fields to change"
// @Success 200 {object} models.Channel
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /channels/{id} [patch]
func (s *Server) UpdateChannel(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdateChannelInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	ch, err := s.channelService.Update(c.UserContext(), id, req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(ch)
}

// SetChannelColor handles PATCH /api/channels/:id/color
// @Summary Set or clear the color flag
// @Tags channels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Channel ID"
// @Param request body object{color_flag=int} true "Null clears the flag"
// @Success 200 {object} models.Channel
// @Router /channels/{id}/color [patch]
func (s *Server) SetChannelColor(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		ColorFlag *int `json:"color_flag"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	ch, err := s.channelService.SetColorFlag(c.UserContext(), id, req.ColorFlag)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(ch)
}

// DeactivateChannel handles DELETE /api/channels/:id
// @Summary Deactivate a channel
// @Description Soft delete. Stored posts are kept.
// @Tags channels
// @Produce json
// @Security BearerAuth
// @Param id path int true "Channel ID"
// @Success 200 {object} models.Channel
// @Router /channels/{id} [delete]
func (s *Server) DeactivateChannel(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	ch, err := s.channelService.Deactivate(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(ch)
}

// HardDeleteChannel handles DELETE /api/channels/:id/hard
// @Summary Delete a channel and its posts
// @Tags channels
// @Security BearerAuth
// @Param id path int true "Channel ID"
// @Success 204
// @Router /channels/{id}/hard [delete]
func (s *Server) HardDeleteChannel(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.channelService.Delete(c.UserContext(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetChannelMessages handles GET /api/channels/:id/messages
// @Summary List a channel's stored posts
// @Tags channels
// @Produce json
// @Param id path int true "Channel ID"
// @Param order_by query string false "date|engagement_rate|engagement_count|views"
// @Param order query string false "asc|desc"
// @Param limit query int false "Page size (default 50, max 1000)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Router /channels/{id}/messages [get]
func (s *Server) GetChannelMessages(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	orderBy := strings.ToLower(c.Query("order_by", "date"))
	if !messageOrderFields[orderBy] {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("order_by must be one of date, engagement_rate, engagement_count, views"))
	}
	order := strings.ToLower(c.Query("order", "desc"))
	if order != "asc" && order != "desc" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("order must be asc or desc"))
	}

	page := parsePagination(c, defaultMessagesLimit)
	posts, err := s.channelService.Messages(c.UserContext(), id, repository.PostListQuery{
		OrderBy: orderBy,
		Order:   order,
		Limit:   page.Limit,
		Offset:  page.Offset,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetPostReactions handles GET /api/channels/:id/posts/:messageId/reactions
// @Summary Live reaction breakdown of one post
// @Tags channels
// @Produce json
// @Param id path int true "Channel ID"
// @Param messageId path int true "Telegram message ID"
// @Success 200 {object} service.ReactionReport
// @Failure 404 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /channels/{id}/posts/{messageId}/reactions [get]
func (s *Server) GetPostReactions(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	messageID, err := s.parseID(c, "messageId")
	if err != nil {
		return nil
	}

	report, err := s.channelService.ReactionBreakdown(c.UserContext(), id, int(messageID))
	if err != nil {
		return respondSourceError(c, err)
	}
	return c.JSON(report)
}

// ImportChannels handles POST /api/channels/import
// @Summary Import subscribed broadcast channels
// @Tags channels
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ImportResult
// @Failure 503 {object} models.ErrorResponse
// @Router /channels/import [post]
func (s *Server) ImportChannels(c *fiber.Ctx) error {
	result, err := s.channelService.Import(c.UserContext())
	if err != nil {
		return respondSourceError(c, err)
	}
	return c.JSON(result)
}

// RefreshSubscribers handles POST /api/channels/refresh-subscribers
// @Summary Fill missing subscriber counts
// @Tags channels
// @Produce json
// @Security BearerAuth
// @Param all query bool false "Refresh every channel"
// @Success 200 {object} service.RefreshResult
// @Failure 503 {object} models.ErrorResponse
// @Router /channels/refresh-subscribers [post]
func (s *Server) RefreshSubscribers(c *fiber.Ctx) error {
	all, err := parseOptionalBool(c, "all")
	if err != nil {
		return respondServiceError(c, err)
	}
	result, err := s.channelService.RefreshSubscriberCounts(c.UserContext(), all != nil && *all)
	if err != nil {
		return respondSourceError(c, err)
	}
	return c.JSON(result)
}

// respondSourceError maps message source failures onto HTTP statuses.
// Flood waits become 429 with Retry-After.
func respondSourceError(c *fiber.Ctx, err error) error {
	var flood *telegram.FloodWaitError
	switch {
	case errors.As(err, &flood):
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(flood.Wait.Seconds()))))
		return models.RespondWithError(c, fiber.StatusTooManyRequests,
			&models.AppError{Code: "RATE_LIMITED", Message: "Telegram rate limit hit", Err: err})
	case errors.Is(err, telegram.ErrMessageNotFound), errors.Is(err, telegram.ErrChannelNotFound):
		return models.RespondWithError(c, fiber.StatusNotFound,
			&models.AppError{Code: models.CodeNotFound, Message: "Not found in Telegram", Err: err})
	case errors.Is(err, telegram.ErrNotReady), errors.Is(err, telegram.ErrUnauthorized):
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewUnavailableError("Telegram client is not ready", err))
	default:
		return respondServiceError(c, err)
	}
}
