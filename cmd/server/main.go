package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	identityapp "github.com/labstock/backend/internal/application/identity"
	inventoryapp "github.com/labstock/backend/internal/application/inventory"
	"github.com/labstock/backend/internal/application/notification"
	"github.com/labstock/backend/internal/infrastructure/auth"
	"github.com/labstock/backend/internal/infrastructure/config"
	"github.com/labstock/backend/internal/infrastructure/event"
	"github.com/labstock/backend/internal/infrastructure/logger"
	"github.com/labstock/backend/internal/infrastructure/mailer"
	"github.com/labstock/backend/internal/infrastructure/persistence"
	"github.com/labstock/backend/internal/infrastructure/scheduler"
	"github.com/labstock/backend/internal/infrastructure/telemetry"
	"github.com/labstock/backend/internal/interfaces/http/handler"
	"github.com/labstock/backend/internal/interfaces/http/middleware"
	"github.com/labstock/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting lab inventory backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	// Initialize OpenTelemetry tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}

	// Initialize repositories
	itemRepo := persistence.NewGormItemRepository(db.DB)
	trashRepo := persistence.NewGormDeletedItemRepository(db.DB)
	logRepo := persistence.NewGormActivityLogRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// Initialize JWT service and token blacklist
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Enabled {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisBlacklist.Close(); err != nil {
				log.Error("Error closing Redis connection", zap.Error(err))
			}
		}()
		blacklist = redisBlacklist
		log.Info("Token revocation backed by Redis", zap.String("addr", cfg.Redis.Addr()))
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Info("Token revocation backed by in-process store")
	}

	// Initialize application services
	itemService := inventoryapp.NewItemService(itemRepo, trashRepo, logRepo, txManager)
	trashService := inventoryapp.NewTrashService(itemRepo, trashRepo, logRepo, txManager)
	exportService := inventoryapp.NewExportService(itemRepo)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)

	// Initialize event bus and live item feed
	eventBus := event.NewInMemoryEventBus(log)
	liveFeed := inventoryapp.NewLiveItemFeed()
	eventBus.Subscribe(liveFeed, liveFeed.EventTypes()...)
	defer liveFeed.Close()

	itemService.SetEventPublisher(eventBus)
	trashService.SetEventPublisher(eventBus)

	// Initialize the stock/expiry alert notifier (if enabled)
	if cfg.Notifier.Enabled {
		var alertMailer mailer.Mailer
		if cfg.Mail.Enabled {
			alertMailer = mailer.NewSMTPMailer(cfg.Mail)
			log.Info("Alert mail delivery enabled",
				zap.String("host", cfg.Mail.Host),
				zap.Strings("recipients", cfg.Mail.Recipients),
			)
		} else {
			alertMailer = mailer.NoopMailer{}
			log.Info("Alert mail delivery disabled, scans will only log")
		}

		alertService := notification.NewAlertService(itemRepo, alertMailer, log)
		sched := scheduler.NewScheduler(scheduler.Config{
			Enabled:           cfg.Notifier.Enabled,
			MaxConcurrentJobs: cfg.Notifier.MaxConcurrentJobs,
			JobTimeout:        cfg.Notifier.JobTimeout,
			RetryAttempts:     cfg.Notifier.RetryAttempts,
			RetryDelay:        cfg.Notifier.RetryDelay,
		}, alertService, log)
		if err := sched.Start(context.Background()); err != nil {
			log.Fatal("Failed to start alert scheduler", zap.Error(err))
		}
		defer func() {
			if err := sched.Stop(context.Background()); err != nil {
				log.Error("Error stopping alert scheduler", zap.Error(err))
			}
		}()

		trigger := scheduler.NewIntervalTrigger(cfg.Notifier.Interval, sched, log)
		if err := trigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start alert trigger", zap.Error(err))
		}
		defer func() {
			if err := trigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping alert trigger", zap.Error(err))
			}
		}()
		log.Info("Alert notifier started", zap.Duration("interval", cfg.Notifier.Interval))
	}

	// Initialize HTTP handlers
	itemHandler := handler.NewItemHandler(itemService, exportService)
	trashHandler := handler.NewTrashHandler(trashService)
	authHandler := handler.NewAuthHandler(authService)
	streamHandler := handler.NewStreamHandler(liveFeed, log)
	systemHandler := handler.NewSystemHandler(db, cfg.App.Name)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}

	authConfig := middleware.DefaultAuthConfig(jwtService)
	authConfig.Revocation = authService
	authConfig.Logger = log
	engine.Use(middleware.AuthWithConfig(authConfig))

	// Liveness and readiness probes live outside API versioning
	systemHandler.RegisterHealthRoutes(engine)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(authHandler).
		Register(itemHandler).
		Register(trashHandler).
		Register(streamHandler).
		Register(systemHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
