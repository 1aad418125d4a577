// Package main provides the hl7autoct API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/hl7autoct/pkg/metrics"
	"github.com/dukex/hl7autoct/pkg/services"
	"github.com/dukex/hl7autoct/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger   *slog.Logger
	launcher *services.Launcher
	resolver *services.Resolver
	metrics  *metrics.Metrics
	validate *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	launcher *services.Launcher,
	resolver *services.Resolver,
	m *metrics.Metrics,
) *API {
	return &API{
		logger:   logger,
		launcher: launcher,
		resolver: resolver,
		metrics:  m,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.launcher, a.resolver, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("hl7autoct API")
	})

	t := app.Group("/transformations")
	t.Post("/", handlers.LaunchTransformation)
	t.Get("/report", handlers.GetTransformationReport)

	app.Get("/health", handlers.HealthCheck)

	if a.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(a.metrics.Handler()))
	}

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	a.logger.Info("Starting hl7autoct API", "port", port)

	return app.Listen(":" + strconv.Itoa(port))
}
