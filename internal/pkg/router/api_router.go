package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/middleware"
)

// ApiRouter serves the key-protected contract schedule API.
type ApiRouter struct {
	deps Deps
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	v1 := app.Group("/api/v1", middleware.APIKeyAuthMiddleware(h.deps.Config.App.APIKey))

	v1.Post("/contract-schedules", h.deps.Schedule.HandleCreate)
	v1.Post("/contract-schedules/finalize", h.deps.Schedule.HandleFinalize)
	v1.Get("/contract-end-date", h.deps.Schedule.HandlePreview)
}

func NewApiRouter(deps Deps) *ApiRouter {
	return &ApiRouter{deps: deps}
}
