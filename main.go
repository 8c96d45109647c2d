package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/postgres/v3"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/rBrown1405/zentry-pos-sub001/internal/access"
	"github.com/rBrown1405/zentry-pos-sub001/internal/api"
	"github.com/rBrown1405/zentry-pos-sub001/internal/auth"
	"github.com/rBrown1405/zentry-pos-sub001/internal/config"
	"github.com/rBrown1405/zentry-pos-sub001/internal/database"
	"github.com/rBrown1405/zentry-pos-sub001/internal/middleware"
	"github.com/rBrown1405/zentry-pos-sub001/internal/openfga"
	"github.com/rBrown1405/zentry-pos-sub001/internal/registration"
	"github.com/rBrown1405/zentry-pos-sub001/internal/registry"
	"github.com/rBrown1405/zentry-pos-sub001/internal/session"
	"github.com/rBrown1405/zentry-pos-sub001/internal/store"
	"github.com/rBrown1405/zentry-pos-sub001/internal/telemetry"
	"github.com/rBrown1405/zentry-pos-sub001/internal/validator"
)

func main() {
	cfg := config.NewConfig()

	tel, err := telemetry.New(cfg.Telemetry)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	logger := tel.Logger()
	slog.SetDefault(logger)

	db, err := database.NewPostgresDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	kv := store.NewRedisKV(redisClient)
	dataStore := buildStore(cfg.Store, db, kv, logger)

	fgaClient, err := openfga.NewClient(cfg.OpenFGA)
	if err != nil {
		log.Fatalf("Failed to initialize OpenFGA client: %v", err)
	}

	idRegistry := registry.New(kv, logger)
	accessService := access.NewService(dataStore, fgaClient, logger)
	authenticator := auth.NewAuthenticator(dataStore, auth.NewRateLimiter(redisClient), logger)
	registrationManager := registration.NewManager(dataStore, idRegistry, validator.New(), fgaClient, logger)

	// Readiness resolves once the store answers a health check. Requests
	// arriving before that wait on it instead of polling.
	ready := session.NewReady()
	go func() {
		for {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := dataStore.HealthCheck(ctx)
			cancel()
			if err == nil {
				ready.Resolve()
				logger.Info("store ready")
				return
			}
			logger.Warn("store not ready yet", "error", err)
			time.Sleep(2 * time.Second)
		}
	}()

	sessionStorage := postgres.New(postgres.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Name,
		Username: cfg.Database.User,
		Password: cfg.Database.Password,
		Table:    "sessions",
		Reset:    false,
	})

	sessionStore := fibersession.New(fibersession.Config{
		Storage:        sessionStorage,
		KeyLookup:      "cookie:" + cfg.Session.CookieName,
		CookiePath:     "/",
		CookieSecure:   cfg.Server.Environment == "production",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		Expiration:     cfg.Session.Expiration,
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	app.Use(middleware.Logger(logger))
	if tel.IsEnabled() {
		app.Use(middleware.Tracing(tel.Tracer("http")))
	}

	// Rate limiting for login and registration endpoints
	loginLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 15 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many attempts, try again later",
			})
		},
	})
	app.Use("/api/login", loginLimiter)
	app.Use("/api/register", loginLimiter)

	handler := api.NewHandler(api.HandlerParam{
		Sessions:     sessionStore,
		Store:        dataStore,
		Auth:         authenticator,
		Registration: registrationManager,
		Access:       accessService,
		Ready:        ready,
		Telemetry:    tel,
		Logger:       logger,
		ReadyTimeout: cfg.Session.ReadyTimeout,
	})
	handler.RegisterRoutes(app)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	logger.Info("starting server", "addr", addr, "store_backend", cfg.Store.Backend)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// buildStore selects the persistence backend. The fallback store keeps
// serving reads from the redis cache when postgres is unreachable.
func buildStore(cfg config.StoreConfig, db database.Database, kv *store.RedisKV, logger *slog.Logger) store.Store {
	switch cfg.Backend {
	case "postgres":
		return store.NewPostgresStore(db)
	case "redis":
		return store.NewKVStore(kv)
	default:
		return store.NewFallbackStore(store.NewPostgresStore(db), store.NewKVStore(kv), logger)
	}
}
