package api

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/topomq/topomq/internal/check"
	"github.com/topomq/topomq/internal/source"
	"github.com/topomq/topomq/internal/topology"
	"github.com/topomq/topomq/pkg/metrics"
)

// Loader supplies a fresh view of the configured broker.
type Loader interface {
	Load(ctx context.Context) (*source.Source, error)
	Overview(ctx context.Context) (topology.Record, error)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// GetTopology returns the broker's cleaned topology as snapshot JSON.
func GetTopology(c *fiber.Ctx, l Loader) error {
	src, err := l.Load(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(src.Topology)
}

// GetCheck runs the anomaly rules against the broker's live topology.
func GetCheck(c *fiber.Ctx, l Loader) error {
	src, err := l.Load(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
	}
	report := check.Run(src.Topology, src.Consumers)

	metrics.Anomalies.WithLabelValues("unbound_queues").Add(float64(len(report.UnboundQueues)))
	metrics.Anomalies.WithLabelValues("unbound_exchanges").Add(float64(len(report.UnboundExchanges)))
	metrics.Anomalies.WithLabelValues("no_consumers_no_ttl").Add(float64(len(report.NoConsumersNoTTL)))
	metrics.Anomalies.WithLabelValues("no_consumers_no_dlx").Add(float64(len(report.NoConsumersNoDLX)))

	return c.Status(fiber.StatusOK).JSON(report)
}
