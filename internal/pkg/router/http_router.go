package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"github.com/mikaelzzzz/OnboardingKarol/app/controllers"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/middleware"
)

// HttpRouter serves the public surface: health, metrics and the signature
// platform webhook.
type HttpRouter struct {
	deps Deps
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	app.Get("/", controllers.HandleHealth)
	app.Get("/metrics", middleware.APIKeyAuthMiddleware(h.deps.Config.App.APIKey), monitor.New())

	handlers := []fiber.Handler{}
	if limit := h.deps.Config.App.WebhookRateLimit; limit > 0 {
		handlers = append(handlers, limiter.New(limiter.Config{
			Max:        limit,
			Expiration: time.Minute,
			Storage:    h.deps.LimiterStorage,
			LimitReached: func(c *fiber.Ctx) error {
				log.Warnf("[Webhook] Rate limit reached for %s", c.IP())
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate_limited"})
			},
		}))
	}
	handlers = append(handlers, h.deps.Webhook.HandleZapSign)
	app.Post("/webhook/zapsign", handlers...)
}

func NewHttpRouter(deps Deps) *HttpRouter {
	return &HttpRouter{deps: deps}
}
