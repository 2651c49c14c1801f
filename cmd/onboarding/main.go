package main

import (
	"context"
	"log"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/mikaelzzzz/OnboardingKarol/app/controllers"
	"github.com/mikaelzzzz/OnboardingKarol/app/repository"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/archive"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/billing"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/cache"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/config"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/crm"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/database"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/dedup"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/env"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/messaging"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/onboarding"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/router"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/schedule"
)

func main() {
	app, cfg := NewApplication()

	err := app.Listen(cfg.Addr())
	log.Fatal(err)
}

func NewApplication() (*fiber.App, *config.Config) {
	env.SetupEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.SetupDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	repos := repository.NewFactory(db)

	ctx := context.Background()

	if cfg.Cache.Enabled() {
		if _, err := cache.SetupCache(ctx, cfg.Cache); err != nil {
			if cfg.Dedup.Backend == "redis" {
				log.Fatalf("Send dedup backend is redis but the cache is unreachable: %v", err)
			}
			log.Printf("Cache unavailable, continuing without it: %v", err)
		}
	}

	var guard dedup.Guard = dedup.NewMemoryGuard(cfg.Dedup.TTL)
	var limiterStorage fiber.Storage
	if client := cache.GetClient(); client != nil {
		if cfg.Dedup.Backend == "redis" {
			guard = dedup.NewRedisGuard(client, cfg.Dedup.TTL)
		}
		limiterStorage = router.NewLimiterStorage(cfg.Cache)
	}

	var archiver archive.Archiver
	if cfg.Archive.Enabled {
		client, err := archive.NewClient(ctx, cfg.Archive)
		if err != nil {
			log.Printf("Payload archive disabled: %v", err)
		} else {
			archiver = client
		}
	}

	orchestrator := onboarding.NewOrchestrator(
		crm.NewClient(cfg.Notion, cfg.HTTPTimeout),
		messaging.NewClient(cfg.ZAPI, cfg.HTTPTimeout),
		billing.NewService(billing.NewAsaasClient(cfg.Asaas, cfg.HTTPTimeout)),
		guard,
	)

	app := fiber.New(fiber.Config{
		AppName:   "onboarding",
		BodyLimit: 2 * 1024 * 1024,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// SWAGGER / OPENAPI
	if specPath := findOpenAPISpec(); specPath != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: specPath,
			Path:     "v1",
		}))
	} else {
		log.Println("docs/openapi.yml not found, API docs disabled")
	}

	// ROUTER
	router.InstallRouter(app, router.Deps{
		Config:         cfg,
		Webhook:        controllers.NewWebhookController(repos.GetWebhookEventRepository(), orchestrator, archiver),
		Schedule:       controllers.NewScheduleController(schedule.NewService(repos.GetContractScheduleRepository())),
		LimiterStorage: limiterStorage,
	})

	return app, cfg
}

func findOpenAPISpec() string {
	for _, base := range []string{"./", "../../", "../../../"} {
		path := base + "docs/openapi.yml"
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
