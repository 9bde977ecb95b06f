package web

import (
	"context"
	"strconv"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/topomq/topomq/internal/mgmt"
	"github.com/topomq/topomq/internal/source"
	"github.com/topomq/topomq/internal/topology"
	"github.com/topomq/topomq/pkg/metrics"
	"github.com/topomq/topomq/web/handlers/api"
	"github.com/topomq/topomq/web/handlers/api_admin"
	"github.com/topomq/topomq/web/middleware"
)

type Config struct {
	BrokerAddr    string
	Username      string
	Password      string
	VHost         string
	JwtKey        string
	WebServerPort string
	Version       string
}

// WebServer exposes one broker's topology and check report over HTTP. Broker
// state is loaded fresh per request; the server itself is stateless.
type WebServer struct {
	config       *Config
	passwordHash []byte
}

func NewWebServer(config *Config) (*WebServer, error) {
	// Login verifies against a hash so the configured password never sits
	// in request-handling code paths.
	hash, err := bcrypt.GenerateFromPassword([]byte(config.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &WebServer{config: config, passwordHash: hash}, nil
}

// Load fetches the live topology of the configured broker.
func (ws *WebServer) Load(ctx context.Context) (*source.Source, error) {
	base, err := mgmt.Resolve(ctx, ws.config.BrokerAddr)
	if err != nil {
		metrics.BrokerLoads.WithLabelValues("error").Inc()
		return nil, err
	}
	src, err := source.LoadBroker(ctx, base, ws.creds(), ws.config.VHost)
	if err != nil {
		metrics.BrokerLoads.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.BrokerLoads.WithLabelValues("ok").Inc()
	return src, nil
}

// Overview fetches the broker overview document.
func (ws *WebServer) Overview(ctx context.Context) (topology.Record, error) {
	base, err := mgmt.Resolve(ctx, ws.config.BrokerAddr)
	if err != nil {
		return nil, err
	}
	return mgmt.NewClient(base, ws.creds()).Overview(ctx)
}

func (ws *WebServer) creds() mgmt.Credentials {
	return mgmt.Credentials{Username: ws.config.Username, Password: ws.config.Password}
}

func (ws *WebServer) SetupApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "topomq",
		DisableStartupMessage: true,
	})

	app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		metrics.HTTPRequests.WithLabelValues(
			c.Route().Path, strconv.Itoa(c.Response().StatusCode())).Inc()
		return err
	})

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	app.Post("/api/login", api_admin.Login(ws.config.JwtKey, ws.config.Username, ws.passwordHash))

	jwt := middleware.JwtMiddleware(ws.config.JwtKey)
	app.Get("/api/overview", jwt, func(c *fiber.Ctx) error {
		return api.GetOverview(c, ws, ws.config.Version)
	})
	app.Get("/api/topology", jwt, func(c *fiber.Ctx) error {
		return api.GetTopology(c, ws)
	})
	app.Get("/api/check", jwt, func(c *fiber.Ctx) error {
		return api.GetCheck(c, ws)
	})

	return app
}
