package api

import (
	"github.com/gofiber/fiber/v2"
)

type OverviewResponse struct {
	Version string         `json:"topomq_version"`
	Broker  map[string]any `json:"broker"`
}

// GetOverview passes the broker's overview document through, tagged with the
// serving topomq version.
func GetOverview(c *fiber.Ctx, l Loader, version string) error {
	overview, err := l.Overview(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(OverviewResponse{
		Version: version,
		Broker:  overview,
	})
}
