package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appconnection "github.com/shipkia/connector/internal/application/connection"
	appsettings "github.com/shipkia/connector/internal/application/settings"
	apptracking "github.com/shipkia/connector/internal/application/tracking"
	"github.com/shipkia/connector/internal/infrastructure/auth"
	"github.com/shipkia/connector/internal/infrastructure/cache"
	"github.com/shipkia/connector/internal/infrastructure/config"
	"github.com/shipkia/connector/internal/infrastructure/logger"
	"github.com/shipkia/connector/internal/infrastructure/persistence"
	"github.com/shipkia/connector/internal/infrastructure/platform"
	"github.com/shipkia/connector/internal/infrastructure/scheduler"
	"github.com/shipkia/connector/internal/infrastructure/telemetry"
	"github.com/shipkia/connector/internal/interfaces/http/handler"
	"github.com/shipkia/connector/internal/interfaces/http/middleware"
	"github.com/shipkia/connector/internal/interfaces/http/router"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bootstrap logger, replaced once the OTLP log bridge is known
	bootLog, err := logger.New(logConfig(cfg))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	telCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.Shipkia.PluginVersion,
		Insecure:          cfg.Telemetry.Insecure,
	}

	logProvider, err := telemetry.NewLoggerProvider(ctx, telCfg, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log, err := logger.New(logConfig(cfg), logProvider.Core(zapcore.InfoLevel))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Shipkia connector",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("site", cfg.Site.URL),
		zap.String("plugin_version", cfg.Shipkia.PluginVersion),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer shutdownTelemetry(log, tracerProvider, meterProvider, logProvider)

	db, err := openDatabase(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	transients, err := cache.NewTransientStoreFactory(cfg.Cache, cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!isProduction(cfg)),
	).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create transient store", zap.Error(err))
	}
	defer func() {
		if err := transients.Close(); err != nil {
			log.Error("Error closing transient store", zap.Error(err))
		}
	}()

	options := persistence.NewGormOptionStore(db.DB)
	orderMeta := persistence.NewGormOrderMetaRepository(db.DB)
	consumerSecrets := persistence.NewGormConsumerSecretSource(db.DB, cfg.Site.TablePrefix)

	shipkiaCfg := platform.NewShipkiaConfig(platform.UserAgent(cfg.Shipkia.PluginVersion, cfg.Site.URL))
	shipkiaCfg.TimeoutSeconds = cfg.Shipkia.TimeoutSeconds
	shipkiaCfg.DisconnectTimeoutSeconds = cfg.Shipkia.DisconnectTimeoutSeconds
	shipkiaClient, err := platform.NewShipkiaClient(shipkiaCfg, nil, log)
	if err != nil {
		log.Fatal("Failed to create Shipkia client", zap.Error(err))
	}

	connMetrics, err := telemetry.NewConnectionMetrics(meterProvider.Meter("shipkia-connector/connection"))
	if err != nil {
		log.Fatal("Failed to create connection metrics", zap.Error(err))
	}

	secrets := appconnection.NewSecretProvider(consumerSecrets, options, log)
	connectionService := appconnection.NewService(options, transients, shipkiaClient, secrets,
		appconnection.Config{
			SiteURL:       cfg.Site.URL,
			DefaultAppURL: cfg.Shipkia.AppURL,
			PluginVersion: cfg.Shipkia.PluginVersion,
		},
		log,
		appconnection.WithMetrics(connMetrics),
	)
	settingsService := appsettings.NewService(options, connectionService, log)
	trackingService := apptracking.NewService(orderMeta, options, secrets, log)

	jwtService := auth.NewJWTService(cfg.JWT, auth.WithRevocationStore(transients))

	checkScheduler, err := scheduler.NewConnectionCheckScheduler(connectionService, scheduler.Config{
		Enabled:       cfg.Scheduler.Enabled,
		CheckInterval: cfg.Scheduler.CheckInterval,
		JobTimeout:    cfg.Scheduler.JobTimeout,
		RunOnStart:    true,
	}, log)
	if err != nil {
		log.Fatal("Failed to create connection check scheduler", zap.Error(err))
	}
	if err := checkScheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start connection check scheduler", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := checkScheduler.Stop(stopCtx); err != nil {
			log.Error("Error stopping connection check scheduler", zap.Error(err))
		}
	}()

	publicLimiter := middleware.NewRateLimiter(cfg.HTTP.PublicRateLimit, cfg.HTTP.PublicRateWindow)
	go publicLimiter.Run(ctx)

	if isProduction(cfg) {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := newEngine(cfg, log, meterProvider)
	engine.GET("/health", healthHandler(db, transients))

	handlers := router.Handlers{
		System:     handler.NewSystemHandler(cfg.App.Name, cfg.Shipkia.PluginVersion),
		Auth:       handler.NewAuthHandler(jwtService),
		Connection: handler.NewConnectionHandler(connectionService),
		Settings:   handler.NewSettingsHandler(settingsService),
		Tracking:   handler.NewTrackingHandler(trackingService),
	}
	guards := router.Guards{
		Admin:  middleware.AdminAuth(jwtService, log),
		Push:   middleware.PushSignature(trackingService, log),
		Public: middleware.RateLimit(publicLimiter),
	}
	api := router.NewAPI(router.NewRouter(engine, router.WithAPIVersion("v1")), handlers, guards)
	api.Setup()
	for _, r := range api.Routes() {
		log.Debug("Route registered",
			zap.String("method", r.Method),
			zap.String("path", r.Path),
			zap.String("group", r.Group),
		)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serveErr:
		log.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}

func logConfig(cfg *config.Config) *logger.Config {
	return &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
}

func isProduction(cfg *config.Config) bool {
	return cfg.App.Env == "production"
}

// openDatabase connects with the zap-backed GORM logger and otelgorm.
// SQLite databases are migrated in place; PostgreSQL uses cmd/migrate.
func openDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
	)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return nil, err
	}

	dbSystem := "postgresql"
	if cfg.Database.Driver == config.DriverSQLite {
		dbSystem = "sqlite"
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	tracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        dbSystem,
	}, log)
	if err := tracing.RegisterOtelGorm(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// newEngine builds the gin engine with the request middleware stack:
// request id, logging, recovery, tracing, metrics, CORS, security headers
// and the body limit.
func newEngine(cfg *config.Config, log *zap.Logger, meters *telemetry.MeterProvider) *gin.Engine {
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.Enabled = cfg.Telemetry.Enabled
	if cfg.Telemetry.ServiceName != "" {
		tracingCfg.ServiceName = cfg.Telemetry.ServiceName
	}

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = isProduction(cfg)

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log, "/health"))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(tracingCfg))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{MeterProvider: meters, Logger: log}))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.SecureWithConfig(security))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	return engine
}

func shutdownTelemetry(log *zap.Logger, tp *telemetry.TracerProvider, mp *telemetry.MeterProvider, lp *telemetry.LoggerProvider) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := tp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := mp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := lp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
}

// healthHandler reports the state of the database and the transient store
func healthHandler(db *persistence.Database, transients cache.ClosableTransientStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		status, code := "healthy", http.StatusOK
		checks := gin.H{"database": "ok", "transients": "ok"}

		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.String("component", "database"), zap.Error(err))
			checks["database"] = "error"
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		if err := transients.Ping(c.Request.Context()); err != nil {
			reqLog.Warn("Health check failed", zap.String("component", "transients"), zap.Error(err))
			checks["transients"] = "error"
			status, code = "unhealthy", http.StatusServiceUnavailable
		}

		checks["status"] = status
		checks["time"] = time.Now().Format(time.RFC3339)
		c.JSON(code, checks)
	}
}
