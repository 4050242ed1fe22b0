package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags returns configured feature flags and their evaluated state.
// An optional channel_id query evaluates percentage rollouts for that channel.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	channelID := int64(c.QueryInt("channel_id", 0))

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(channelID),
	})
}
