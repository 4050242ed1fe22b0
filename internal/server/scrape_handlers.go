package server

import (
	"context"
	"fmt"

	"tgscraper/internal/models"
	"tgscraper/internal/service"

	"github.com/gofiber/fiber/v2"
)

// TriggerScrape handles POST /api/scrape
// @Summary Run a scrape
// @Description Fetches recent posts for active channels and upserts them. Runs synchronously.
// @Tags scrape
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ScrapeInput false "Channel selection and per-channel limit (1..1000, default 200)"
// @Success 200 {object} service.ScrapeSummary
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /scrape [post]
func (s *Server) TriggerScrape(c *fiber.Ctx) error {
	var req service.ScrapeInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}
	if req.Limit < 0 || req.Limit > service.MaxScrapeLimit {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(fmt.Sprintf("limit must be between 1 and %d", service.MaxScrapeLimit)))
	}

	ctx := c.UserContext()
	if timeout := s.config.ScrapeTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	summary, err := s.scrapeService.Run(ctx, req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(summary)
}
