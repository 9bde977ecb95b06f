package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topomq/topomq/internal/source"
	"github.com/topomq/topomq/internal/topology"
)

type stubLoader struct {
	src *source.Source
	err error
}

func (s *stubLoader) Load(context.Context) (*source.Source, error) {
	return s.src, s.err
}

func (s *stubLoader) Overview(context.Context) (topology.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	return topology.Record{"product": "RabbitMQ"}, nil
}

func testApp(loader Loader, version string) *fiber.App {
	app := fiber.New()
	app.Get("/api/topology", func(c *fiber.Ctx) error { return GetTopology(c, loader) })
	app.Get("/api/check", func(c *fiber.Ctx) error { return GetCheck(c, loader) })
	app.Get("/api/overview", func(c *fiber.Ctx) error { return GetOverview(c, loader, version) })
	return app
}

func loadedStub() *stubLoader {
	return &stubLoader{src: &source.Source{
		Topology: &topology.Topology{
			Exchanges: []topology.Exchange{{Name: "orders", VHost: "/", Type: "topic", Durable: true, Arguments: map[string]any{}}},
			Queues:    []topology.Queue{{Name: "jobs", VHost: "/", Durable: true, Arguments: map[string]any{}}},
			Bindings:  []topology.Binding{},
		},
		Consumers: map[string]int{},
		Origin:    "http://broker:15672",
	}}
}

func TestGetTopology(t *testing.T) {
	app := testApp(loadedStub(), "test")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/topology", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var tp topology.Topology
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tp))
	require.Len(t, tp.Exchanges, 1)
	assert.Equal(t, "orders", tp.Exchanges[0].Name)
}

func TestGetTopologyBrokerDown(t *testing.T) {
	app := testApp(&stubLoader{err: errors.New("broker at x is unreachable")}, "test")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/topology", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestGetCheck(t *testing.T) {
	app := testApp(loadedStub(), "test")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/check", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var report map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	// jobs has no binding, no consumers, no ttl, no dlx
	assert.Equal(t, []string{"jobs"}, report["unbound_queues"])
	assert.Equal(t, []string{"jobs"}, report["no_consumers_no_ttl"])
	assert.Equal(t, []string{"orders"}, report["unbound_exchanges"])
}

func TestGetOverview(t *testing.T) {
	app := testApp(loadedStub(), "1.2.3")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/overview", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body OverviewResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "1.2.3", body.Version)
	assert.Equal(t, "RabbitMQ", body.Broker["product"])
}
