package web

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// PushPath is where Pub/Sub push subscriptions deliver.
const PushPath = "/pubsub/push"

type Server struct {
	handlers *Handlers
	logger   *slog.Logger
}

func NewServer(handlers *Handlers, logger *slog.Logger) *Server {
	return &Server{
		handlers: handlers,
		logger:   logger,
	}
}

// App builds the Fiber application. ctx bounds the CloudEvents receiver.
func (s *Server) App(ctx context.Context) (*fiber.App, error) {
	receiver, err := s.handlers.CloudEventsHandler(ctx)
	if err != nil {
		return nil, err
	}

	app := fiber.New()
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("camrelay")
	})
	app.Post("/", adaptor.HTTPHandler(receiver))
	app.Post(PushPath, s.handlers.PubSubPush)

	return app, nil
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context, port int) error {
	app, err := s.App(ctx)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Starting HTTP server", "port", port)

	return app.Listen(":"+strconv.Itoa(port), fiber.ListenConfig{
		GracefulContext:       ctx,
		DisableStartupMessage: true,
	})
}
