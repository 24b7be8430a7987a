package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"dealership/internal/config"
	"dealership/internal/events"
	"dealership/internal/http/handlers"
	applog "dealership/internal/log"
	"dealership/internal/repos"
	"dealership/internal/telemetry"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		log.Fatalf("init tracing: %v", err)
	}

	db, err := repos.OpenDB(cfg.DBDSN, cfg.SeedDemo)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	pub := newPublisher(ctx, cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    1 << 20, // 1 MiB
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	handlers.NewDeps(db, cfg, pub).Register(app)

	go func() {
		<-ctx.Done()
		log.Printf("[shutdown] draining requests")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(sctx); err != nil {
			log.Printf("[shutdown] http: %v", err)
		}
	}()

	log.Printf("[http] listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Printf("[http] %v", err)
	}

	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pub.Close(); err != nil {
		log.Printf("[shutdown] events: %v", err)
	}
	if err := shutdownTracing(sctx); err != nil {
		log.Printf("[shutdown] tracing: %v", err)
	}
}

// newPublisher picks the event sink. The in-memory bus gets an audit-log
// subscriber so events are visible without a broker.
func newPublisher(ctx context.Context, cfg config.Config) events.Publisher {
	if cfg.EventSink == "kafka" {
		log.Printf("[events] kafka brokers=%v topic=%s", cfg.KafkaBrokers, cfg.EventTopic)
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.EventTopic)
	}
	bus := events.NewMemoryBus(cfg.EventTopic)
	go func() {
		if err := events.RunAuditLog(ctx, bus); err != nil {
			applog.Error(nil, "event.audit.stop", err, nil)
		}
	}()
	return bus
}
