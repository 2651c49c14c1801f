package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mikaelzzzz/OnboardingKarol/app/controllers"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/config"
)

// Router registers one group of routes.
type Router interface {
	InstallRouter(app *fiber.App)
}

// Deps carries the handlers and settings the routers need.
type Deps struct {
	Config   *config.Config
	Webhook  *controllers.WebhookController
	Schedule *controllers.ScheduleController
	// LimiterStorage backs the webhook rate limiter. Nil keeps the counters
	// in process memory.
	LimiterStorage fiber.Storage
}

func InstallRouter(app *fiber.App, deps Deps) {
	setup(app, NewHttpRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
