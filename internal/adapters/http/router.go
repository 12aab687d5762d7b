package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/lerianstudio/eventledger/internal/authn"
	"github.com/lerianstudio/eventledger/internal/intent"
	"github.com/lerianstudio/eventledger/internal/platform/log"
	"github.com/lerianstudio/eventledger/internal/subscription"
)

// Deps is everything the router needs from a bootstrapped Service.
type Deps struct {
	Registry   *intent.Registry
	Dispatcher *intent.Dispatcher
	Hub        *subscription.Hub
	Authn      *authn.Engine
	JWT        *authn.JWTVerifier
	Gatherer   prometheus.Gatherer
	Logger     log.Logger
}

// NewRouter builds the Fiber app exposing spec.md §6's wire protocol:
// POST /intent for every write and query, GET /subscribe for the
// Subscription Hub's replay-then-live feed, GET /health and GET
// /metrics for operations.
func NewRouter(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "eventledger",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return writeError(c, err)
		},
	})

	app.Use(cors.New())
	app.Use(withCorrelationID())
	app.Use(withLogging(deps.Logger))

	app.Get("/health", handleHealth)
	app.Get("/metrics", adaptPromHandler(deps.Gatherer))

	app.Use(withAuth(deps.Authn, deps.JWT, func() int64 { return time.Now().UnixMilli() }))

	app.Post("/intent", handleIntent(deps.Registry, deps.Dispatcher))

	app.Use("/subscribe", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}

		return fiber.ErrUpgradeRequired
	})
	app.Get("/subscribe", requireAuthenticated(), websocket.New(handleSubscribe(deps.Hub, deps.Logger)))

	return app
}

func adaptPromHandler(gatherer prometheus.Gatherer) fiber.Handler {
	handler := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})

	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())

		return nil
	}
}
