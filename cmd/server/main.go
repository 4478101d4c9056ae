package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Abraxas-365/talentdesk/internal/config"
	"github.com/Abraxas-365/talentdesk/pkg/fiberx"
	"github.com/Abraxas-365/talentdesk/pkg/iam/auth"
	"github.com/Abraxas-365/talentdesk/pkg/logx"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate/candidateapi"
	"github.com/Abraxas-365/talentdesk/recruitment/events/eventsapi"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/idempotency"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// 1. Configuration and logger
	cfg, err := config.LoadServer()
	if err != nil {
		logx.Fatalf("Invalid configuration: %v", err)
	}
	logx.SetLevel(logx.ParseLevel(cfg.LogLevel))
	logx.Info("Starting TalentDesk API Server...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Initialize Dependency Container
	container, err := NewContainer(ctx, cfg)
	if err != nil {
		logx.Fatalf("Failed to initialize: %v", err)
	}
	defer container.Close()

	// 3. Create Fiber App with Config
	app := fiber.New(fiber.Config{
		AppName:               "TalentDesk ATS API",
		DisableStartupMessage: true,
		ErrorHandler:          fiberx.ErrorHandler,
		BodyLimit:             80 << 20, // base64 of a 50 MiB resume plus envelope
	})

	// 4. Global Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Idempotency-Key",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH, HEAD",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		// the event stream stays open, its access line is noise
		Next: func(c *fiber.Ctx) bool { return strings.HasPrefix(c.Path(), "/events/") },
	}))
	app.Use(idempotency.New(idempotency.Config{
		Lifetime:  30 * time.Minute,
		KeyHeader: "X-Idempotency-Key",
	}))

	// 5. Health Check
	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{"status": "ok"}
		for name, ok := range container.Ping(c.UserContext()) {
			status[name] = ok
		}
		return c.JSON(status)
	})

	// 6. Register Routes
	registerRoutes(app, container)

	// 7. Background workers
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	container.ResumeWorker.Start(workerCtx)

	// 8. Start Server with Graceful Shutdown
	go func() {
		logx.Infof("Server listening on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logx.Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}
	cancelWorkers()
	container.ResumeWorker.Wait()

	logx.Info("Server exited")
}

func registerRoutes(app *fiber.App, c *Container) {
	mw := c.AuthMiddleware

	// /auth/login, /auth/me, /auth/logout
	auth.RegisterRoutes(app, c.AuthHandlers, mw)

	// /candidates
	candidateapi.RegisterRoutes(app, c.CandidateHandlers, mw)

	// /applications
	c.ApplicationHandlers.RegisterRoutes(app, mw)

	// /clients, /clients/register is public
	c.ClientHandlers.RegisterRoutes(app, mw)

	// /email/ingest, /email/jobs
	c.ResumeHandlers.RegisterRoutes(app, mw)

	// /events/stream
	eventsapi.RegisterRoutes(app, c.EventHandlers, mw)

	// /stats/dashboard
	c.StatsHandlers.RegisterRoutes(app, mw)
}
