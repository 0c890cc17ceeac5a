package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	identityapp "github.com/coderr/backend/internal/application/identity"
	offerapp "github.com/coderr/backend/internal/application/offer"
	orderapp "github.com/coderr/backend/internal/application/order"
	reviewapp "github.com/coderr/backend/internal/application/review"
	statsapp "github.com/coderr/backend/internal/application/stats"
	"github.com/coderr/backend/internal/domain/identity"
	"github.com/coderr/backend/internal/infrastructure/auth"
	"github.com/coderr/backend/internal/infrastructure/cache"
	"github.com/coderr/backend/internal/infrastructure/config"
	"github.com/coderr/backend/internal/infrastructure/event"
	"github.com/coderr/backend/internal/infrastructure/logger"
	"github.com/coderr/backend/internal/infrastructure/persistence"
	"github.com/coderr/backend/internal/infrastructure/storage"
	"github.com/coderr/backend/internal/infrastructure/telemetry"
	"github.com/coderr/backend/internal/interfaces/http/handler"
	"github.com/coderr/backend/internal/interfaces/http/middleware"
	"github.com/coderr/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/coderr/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Coderr API
//	@version		1.0
//	@description	REST backend of the Coderr freelance marketplace: profiles, offers, orders and reviews.

//	@contact.name	Coderr Team
//	@contact.url	https://github.com/coderr/backend

//	@host		localhost:8000
//	@BasePath	/api

//	@securityDefinitions.apikey	TokenAuth
//	@in							header
//	@name						Authorization
//	@description				Token authentication. Format: "Token {token}" (the "Bearer" scheme is accepted as well)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// OTLP log export needs a logger of its own to report failures, so the
	// application logger is rebuilt once the bridge core exists.
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	if loggerProvider.IsEnabled() {
		if log, err = logger.New(logCfg, loggerProvider.Core()); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Coderr backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter", zap.Error(err))
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeEndpoint,
		ApplicationName: cfg.Telemetry.ServiceName,
		IncludeMemory:   true,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if cfg.Telemetry.ProfilingEnabled && cfg.Telemetry.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
	)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", db.Driver()))

	// postgres schemas are owned by cmd/migrate
	if db.Driver() == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to create sqlite schema", zap.Error(err))
		}
	}

	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to access connection pool", zap.Error(err))
	}
	dbMetrics, err := telemetry.NewDBMetrics(meter, sqlDB, telemetry.DBMetricsConfig{
		Enabled:            cfg.Telemetry.MetricsEnabled,
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize database metrics", zap.Error(err))
	}
	if err := dbMetrics.Register(db.DB); err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}

	// Cache, token blacklist and media storage
	cacheFactory := cache.NewFactory(cfg.Redis, cfg.Cache, cache.WithLogger(log))
	backends, err := cacheFactory.Create(ctx)
	if err != nil {
		log.Fatal("Failed to initialize cache", zap.Error(err))
	}

	objects, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize media storage", zap.Error(err))
	}
	var localMedia handler.ObjectOpener
	if opener, ok := objects.(handler.ObjectOpener); ok {
		localMedia = opener
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	offerRepo := persistence.NewGormOfferRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)

	// Application services
	authService := identityapp.NewAuthService(userRepo, jwtService, backends.Blacklist, log)
	profileService := identityapp.NewProfileService(userRepo, objects, log)
	offerService := offerapp.NewService(offerRepo, userRepo, objects, offerapp.Pagination{
		DefaultPageSize: cfg.Pagination.DefaultPageSize,
		MaxPageSize:     cfg.Pagination.MaxPageSize,
	}, log)
	orderService := orderapp.NewService(orderRepo, offerRepo, userRepo, log)
	reviewService := reviewapp.NewService(reviewRepo, userRepo, log)
	statsService := statsapp.NewService(userRepo, offerRepo, reviewRepo, backends.Cache, cfg.Cache.StatsTTL, log)

	// Domain events
	eventBus := event.NewInMemoryEventBus(log)
	authService.SetEventPublisher(eventBus)
	profileService.SetEventPublisher(eventBus)
	offerService.SetEventPublisher(eventBus)
	orderService.SetEventPublisher(eventBus)
	reviewService.SetEventPublisher(eventBus)

	eventBus.Subscribe(statsapp.NewInvalidationHandler(statsService, log))
	marketplaceMetrics, err := telemetry.NewMarketplaceMetrics(meter, log)
	if err != nil {
		log.Fatal("Failed to initialize marketplace metrics", zap.Error(err))
	}
	eventBus.Subscribe(marketplaceMetrics)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.Env == "production"

	profiling := middleware.DefaultProfilingConfig()
	profiling.Enabled = cfg.Telemetry.ProfilingEnabled

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanEnricher(),
		middleware.HTTPMetrics(meter, log),
		middleware.ProfilingWithConfig(profiling),
		middleware.CORSWithConfig(cors),
		middleware.SecureWithConfig(security),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	var limiters []*middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		limiters = append(limiters, limiter)
		engine.Use(middleware.RateLimit(limiter))
	}

	guards := router.Guards{
		Authenticated: middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: backends.Blacklist,
			Logger:         log,
		}),
		Business: middleware.RequireProfileTypeWithConfig(identity.ProfileTypeBusiness, middleware.ProfileTypeConfig{
			Users:  userRepo,
			Logger: log,
		}),
		Customer: middleware.RequireProfileTypeWithConfig(identity.ProfileTypeCustomer, middleware.ProfileTypeConfig{
			Users:  userRepo,
			Logger: log,
		}),
		Upload: middleware.BodyLimit(cfg.HTTP.MaxUploadSize),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		limiters = append(limiters, limiter)
		guards.Credentials = middleware.RateLimit(limiter)
	}
	if cfg.Swagger.Enabled {
		guards.Swagger = []gin.HandlerFunc{
			middleware.SwaggerProtection(middleware.SwaggerConfig{
				Enabled:    true,
				AllowedIPs: cfg.Swagger.AllowedIPs,
			}),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		}
		log.Info("Swagger UI enabled", zap.String("path", "/swagger/index.html"))
	}

	router.Setup(engine, router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Profile: handler.NewProfileHandler(profileService),
		Offer:   handler.NewOfferHandler(offerService),
		Order:   handler.NewOrderHandler(orderService),
		Review:  handler.NewReviewHandler(reviewService),
		Stats:   handler.NewStatsHandler(statsService),
		System:  handler.NewSystemHandler(db, localMedia, version),
	}, guards)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// in-flight requests are done; drain the subscribers before closing their backends
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not drain", zap.Error(err))
	}
	for _, limiter := range limiters {
		limiter.Stop()
	}
	if err := backends.Close(); err != nil {
		log.Error("Error closing cache", zap.Error(err))
	}
	if err := dbMetrics.Close(); err != nil {
		log.Warn("Error unregistering database metrics", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error flushing metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error flushing traces", zap.Error(err))
	}
	log.Info("Server exited gracefully")
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error flushing logs", zap.Error(err))
	}
}
