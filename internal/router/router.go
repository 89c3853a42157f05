package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mathmood/diary-api/internal/config"
	"github.com/mathmood/diary-api/internal/handler"
	"github.com/mathmood/diary-api/internal/middleware"
	"github.com/mathmood/diary-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ProfileHandler *handler.ProfileHandler
	DiaryHandler   *handler.DiaryHandler
	ChatHandler    *handler.ChatHandler
	UploadHandler  *handler.UploadHandler
	MonitorHandler *handler.MonitorHandler
	SeedHandler    *handler.SeedHandler
	JWTMiddleware  fiber.Handler
	OperatorGate   fiber.Handler
	ChatRateLimit  fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	// Use provided middlewares, or no-ops if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	operatorGate := deps.OperatorGate
	if operatorGate == nil {
		operatorGate = func(c *fiber.Ctx) error { return c.Next() }
	}
	chatRateLimit := deps.ChatRateLimit
	if chatRateLimit == nil {
		chatRateLimit = middleware.RateLimit("chat", 20, time.Minute)
	}

	// Student-facing routes
	if deps.ProfileHandler != nil {
		profile := app.Group("/api/profile", jwtMiddleware)
		deps.ProfileHandler.Register(profile)
	}

	if deps.DiaryHandler != nil {
		diary := app.Group("/api/diary", jwtMiddleware)
		deps.DiaryHandler.Register(diary)
	}

	if deps.ChatHandler != nil {
		chat := app.Group("/api/chat", jwtMiddleware, chatRateLimit)
		deps.ChatHandler.Register(chat)
	}

	if deps.UploadHandler != nil {
		uploads := app.Group("/api/uploads", jwtMiddleware)
		deps.UploadHandler.Register(uploads)
	}

	// Teacher monitoring routes, operator gated
	if deps.MonitorHandler != nil {
		monitor := app.Group("/api/monitor", jwtMiddleware, operatorGate)
		deps.MonitorHandler.Register(monitor)
	}

	// Development tooling
	if deps.SeedHandler != nil {
		seed := app.Group("/api/seed")
		deps.SeedHandler.Register(seed)
	}
}
