package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/config"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	healthHandler *handlers.HealthHandler,
	reportHandler *handlers.ReportHandler,
	penaltyHandler *handlers.PenaltyHandler,
	reputationHandler *handlers.ReputationHandler,
	notificationHandler *handlers.NotificationHandler,
) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Next: func(c *fiber.Ctx) bool {
			// internal callers are trusted and batch their requests
			return middleware.HasServiceToken(c, cfg)
		},
	}))

	api.Get("/health", healthHandler.Check)

	// Reports: 10 submissions/min per IP
	api.Post("/reports", limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}), middleware.JWTProtected(cfg), reportHandler.Submit)

	// Current user
	me := api.Group("/me", middleware.JWTProtected(cfg))
	me.Get("/penalties", penaltyHandler.MyPenalties)
	me.Get("/reputation", reputationHandler.MyAccount)
	me.Get("/reputation/history", reputationHandler.MyHistory)
	me.Get("/notifications", notificationHandler.List)
	me.Post("/notifications/:id/read", notificationHandler.MarkRead)

	// Sanction gate for flows that live in other services
	api.Get("/users/:id/sanctions", middleware.JWTProtected(cfg), penaltyHandler.Sanctions)

	// Service-to-service
	internal := api.Group("/internal", middleware.ServiceTokenRequired(cfg))
	internal.Post("/reputation/earn", reputationHandler.Earn)
	internal.Get("/users/:id/sanctions", penaltyHandler.Sanctions)

	// Admin moderation panel (protected + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/reports", reportHandler.List)
	admin.Get("/reports/:id", reportHandler.Get)
	admin.Post("/reports/:id/review", reportHandler.StartReview)
	admin.Post("/reports/:id/approve", reportHandler.Approve)
	admin.Post("/reports/:id/reject", reportHandler.Reject)

	admin.Post("/penalties", penaltyHandler.Apply)
	admin.Post("/penalties/sweep", penaltyHandler.Sweep)
	admin.Post("/penalties/:id/expire", penaltyHandler.Expire)
	admin.Get("/users/:id/penalties", penaltyHandler.UserPenalties)

	admin.Get("/users/:id/reputation", reputationHandler.UserAccount)
	admin.Post("/users/:id/points/grant", reputationHandler.Grant)
	admin.Post("/users/:id/points/deduct", reputationHandler.Deduct)
}
