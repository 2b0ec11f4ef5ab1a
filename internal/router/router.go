package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/icar1an/serenity/internal/handler"
	"github.com/icar1an/serenity/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Labeler  *handler.LabelerHandler
	Override *handler.OverrideHandler
	Channel  *handler.ChannelHandler
	Health   *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given
// Fiber app. labelerToken is the static shared secret for the labeler
// endpoints.
func Setup(app *fiber.App, h *Handlers, corsOrigins, labelerToken string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(corsOrigins))

	// Probes and metrics (no auth)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	api := app.Group("/api")

	// Labeler surface: token-authenticated, per-voter rate limits
	labeler := api.Group("/labeler", middleware.NewLabelerAuth(labelerToken))
	labeler.Get("/next-candidate", h.Labeler.NextCandidate, middleware.NewQueueRateLimiter().Handler())
	labeler.Post("/submit-vote", h.Labeler.SubmitVote, middleware.NewVoteRateLimiter().Handler())

	readLimit := middleware.NewReadRateLimiter()

	// Classification resolution (fail-open read path)
	api.Get("/classification", h.Channel.Classify, readLimit.Handler())
	api.Get("/channels/blocked", h.Channel.ListBlocked, readLimit.Handler())

	// Manual overrides
	api.Get("/overrides", h.Override.List)
	api.Put("/overrides/:identifier", h.Override.Put)
	api.Delete("/overrides/:identifier", h.Override.Delete)
	api.Delete("/overrides", h.Override.Clear)
}
