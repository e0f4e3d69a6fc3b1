package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"github.com/KirkDiggler/party-generator/internal/clients/partygen"
	"github.com/KirkDiggler/party-generator/internal/config"
	"github.com/KirkDiggler/party-generator/internal/handlers/web"
	"github.com/KirkDiggler/party-generator/internal/orchestrators/party"
	"github.com/KirkDiggler/party-generator/internal/pkg/clock"
	"github.com/KirkDiggler/party-generator/internal/pkg/idgen"
	"github.com/KirkDiggler/party-generator/internal/redis"
	"github.com/KirkDiggler/party-generator/internal/repositories/viewstate"
)

const redisPingTimeout = 5 * time.Second

var (
	port         int
	generatorURL string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the web server",
	Long:  `Start the party generator web server. Settings come from the environment (and .env); flags override them.`,
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().IntVar(&port, "port", 3000, "HTTP port (overrides PORT)")
	serverCmd.Flags().StringVar(&generatorURL, "generator-url", partygen.DefaultBaseURL,
		"generation backend base URL (overrides PARTY_GENERATOR_URL)")
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = port
	}
	if cmd.Flags().Changed("generator-url") {
		cfg.GeneratorURL = generatorURL
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := partygen.New(&partygen.Config{
		BaseURL: cfg.GeneratorURL,
		Timeout: cfg.GeneratorTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create generator client: %w", err)
	}

	repo, closeRepo, err := newViewStateRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	partyService, err := party.NewOrchestrator(&party.Config{
		Client:        client,
		ViewStateRepo: repo,
		IDGenerator:   idgen.NewUUID("page"),
		Clock:         clock.New(),
	})
	if err != nil {
		return fmt.Errorf("failed to create party orchestrator: %w", err)
	}

	handler, err := web.NewHandler(&web.HandlerConfig{
		PartyService: partyService,
		Images:       client,
	})
	if err != nil {
		return fmt.Errorf("failed to create web handler: %w", err)
	}

	app := newApp(cfg, handler)

	errChan := make(chan error, 1)
	go func() {
		slog.Info("party generator starting",
			"port", cfg.Port,
			"generator_url", cfg.GeneratorURL,
			"redis", cfg.RedisAddr != "")
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("received shutdown signal, gracefully stopping")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// stop streams and in-flight requests first so open websockets let go
	if err := partyService.Shutdown(shutdownCtx); err != nil {
		slog.Warn("party orchestrator did not stop cleanly", "error", err)
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Warn("graceful shutdown timeout exceeded", "error", err)
		return nil
	}

	slog.Info("server stopped gracefully")
	return nil
}

// newApp builds the fiber app with middleware and routes
func newApp(cfg *config.Config, handler *web.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "party-generator",
		ErrorHandler:          web.ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(helmet.New(helmet.Config{
		// card images come from the generation backend's origin
		CrossOriginEmbedderPolicy: "unsafe-none",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
	}))

	if cfg.ClassIconsDir != "" {
		app.Static("/class_icons", cfg.ClassIconsDir)
	}

	handler.Register(app)
	return app
}

// newViewStateRepository picks the Redis store when REDIS_ADDR is set and
// the in-memory store otherwise
func newViewStateRepository(ctx context.Context, cfg *config.Config) (viewstate.Repository, func(), error) {
	if cfg.RedisAddr == "" {
		repo, err := viewstate.NewInMemory(&viewstate.InMemoryConfig{
			Clock: clock.New(),
			TTL:   cfg.PageTTL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create view state repository: %w", err)
		}
		slog.Info("using in-memory page store")
		return repo, func() {}, nil
	}

	client, err := redis.NewClient(cfg.RedisAddr, &redis.Options{
		PoolSize:        10,
		MinIdleConns:    2,
		ConnMaxIdleTime: 5 * time.Minute,
		MaxRetries:      3,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	if err := redis.Ping(ctx, client, redisPingTimeout); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
	}

	repo, err := viewstate.NewRedisRepository(&viewstate.RedisConfig{
		Client: client,
		TTL:    cfg.PageTTL,
	})
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to create view state repository: %w", err)
	}

	slog.Info("using redis page store", "addr", cfg.RedisAddr)
	return repo, func() { _ = client.Close() }, nil
}
