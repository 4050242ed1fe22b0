package server

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// GetGlobalStats handles GET /api/stats/global
// @Summary Service-wide totals
// @Tags stats
// @Produce json
// @Success 200 {object} service.GlobalStats
// @Router /stats/global [get]
func (s *Server) GetGlobalStats(c *fiber.Ctx) error {
	stats, err := s.statsService.Global(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(stats)
}

// GetChannelStats handles GET /api/stats/channels
// @Summary Per-channel aggregates
// @Description Mean and median metrics over posts with views. Channels without such posts are omitted.
// @Tags stats
// @Produce json
// @Success 200 {array} ChannelStatsDTO
// @Router /stats/channels [get]
func (s *Server) GetChannelStats(c *fiber.Ctx) error {
	rows, err := s.statsService.ChannelStats(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(toChannelStatsDTOs(rows, s.statsService.WindowDays()))
}

// GetChannelStatsCSV handles GET /api/stats/channels.csv
// @Summary Per-channel aggregates as CSV
// @Tags stats
// @Produce text/csv
// @Success 200 {string} string
// @Router /stats/channels.csv [get]
func (s *Server) GetChannelStatsCSV(c *fiber.Ctx) error {
	rows, err := s.statsService.ChannelStats(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(channelStatsCSVHeader); err != nil {
		return respondServiceError(c, err)
	}
	for _, row := range toChannelStatsDTOs(rows, s.statsService.WindowDays()) {
		if err := w.Write(row.csvRecord()); err != nil {
			return respondServiceError(c, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return respondServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="channel_stats_%s.csv"`, nowUTC().Format("20060102")))
	return c.Send(buf.Bytes())
}
