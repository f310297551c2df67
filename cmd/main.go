package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/seronsenapati/STAYLO/config"
	"github.com/seronsenapati/STAYLO/internal/container"
	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
	"github.com/seronsenapati/STAYLO/internal/infrastructure/events"
	"github.com/seronsenapati/STAYLO/internal/infrastructure/geocode"
	"github.com/seronsenapati/STAYLO/internal/infrastructure/imagestore"
	"github.com/seronsenapati/STAYLO/internal/infrastructure/memory"
	pginfra "github.com/seronsenapati/STAYLO/internal/infrastructure/postgres"
	"github.com/seronsenapati/STAYLO/internal/infrastructure/session"
	handlers "github.com/seronsenapati/STAYLO/internal/interface/http"
	"github.com/seronsenapati/STAYLO/internal/interface/middleware"
	"github.com/seronsenapati/STAYLO/internal/router"
	"github.com/seronsenapati/STAYLO/pkg/helpers"
	"github.com/seronsenapati/STAYLO/pkg/metrics"
	"github.com/seronsenapati/STAYLO/pkg/validation"
)

func main() {
	cfg := config.Load()
	if !cfg.IsProduction() {
		_ = godotenv.Load() // load .env if present
		cfg = config.Load()
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()
	container.SetConfig(cfg)
	container.SetLogger(logger)

	closeStore := initStore(ctx, cfg, logger)
	defer closeStore()

	rdb := initRedis(ctx, cfg, logger)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		container.SetSessions(session.NewRedis(rdb, cfg.SessionTTL))
	} else {
		container.SetSessions(session.NewMemory(cfg.SessionTTL))
	}
	container.SetRedis(rdb)

	container.SetJWT(helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.AccessTTL, cfg.AppName))
	container.SetCookies(helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure))

	closeImages := initImages(ctx, cfg, logger)
	defer closeImages()

	if cfg.GeocodingEnabled() {
		container.SetGeocoder(geocode.NewMapbox(cfg.MapboxBaseURL, cfg.MapToken, cfg.GeocodeTimeout))
	} else {
		logger.Warn("MAP_TOKEN not set; listings will use the fallback point")
	}

	closeEvents := initEvents(cfg, logger)
	defer closeEvents()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	container.SetPromRegistry(reg)
	container.SetMetrics(metrics.New(reg))

	services := router.BuildServices()

	sched := cron.New()
	if err := services.Orphans.Schedule(sched, cfg.OrphanReportSchedule); err != nil {
		logger.Fatalf("invalid ORPHAN_REPORT_SCHEDULE: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Gin engine and global middleware
	r := gin.New()
	r.Use(middleware.Recovery(logger, cfg.IsProduction()))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) > 0 {
		r.Use(cors.New(corsCfg))
	}
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}
	r.Static("/uploads", cfg.UploadDir)
	r.NoRoute(handlers.NotFound)

	registry := router.NewRegistry(r)
	registry.Use(middleware.Session(container.GetSessions(), container.GetJWT(), logger))
	router.InitModules(registry, services)
	registry.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: middleware.MethodOverride(r)}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	helpers.LogInfo(logger, "shutting down server", logrus.Fields{"port": cfg.Port})

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// initStore connects Postgres and runs migrations. Outside production an
// unreachable database degrades to the in-memory store.
func initStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) func() {
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err == nil {
		err = pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger)
		if err != nil {
			pool.Close()
		}
	}
	if err != nil {
		if cfg.IsProduction() {
			logger.Fatalf("failed to initialize postgres: %v", err)
		}
		logger.WithError(err).Warn("postgres unavailable; using in-memory store (data is lost on restart)")
		mem := memory.NewStore()
		container.SetStores(mem.Listings(), mem.Reviews(), mem.Users())
		return func() {}
	}
	container.SetPGPool(pool)
	container.SetStores(pginfra.NewListingRepository(pool), pginfra.NewReviewRepository(pool), pginfra.NewUserRepository(pool))
	return pool.Close
}

// initRedis returns nil when Redis does not answer; sessions and rate
// limits then stay in process.
func initRedis(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *redis.Client {
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		if cfg.IsProduction() {
			logger.Fatalf("failed to reach redis: %v", err)
		}
		logger.WithError(err).Warn("redis unavailable; using in-process sessions")
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// initImages picks Cloudinary, then GCS, then local disk.
func initImages(ctx context.Context, cfg *config.Config, logger *logrus.Logger) func() {
	if cfg.CloudinaryURL != "" {
		cld, err := imagestore.NewCloudinary(cfg.CloudinaryURL, cfg.CloudinaryFolder)
		if err == nil {
			container.SetImages(cld)
			return func() {}
		}
		logger.WithError(err).Warn("cloudinary misconfigured; trying next image store")
	}
	if cfg.GCSBucket != "" {
		client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err == nil {
			container.SetImages(imagestore.NewGCS(client, cfg.GCSBucket))
			return func() { _ = client.Close() }
		}
		logger.WithError(err).Warn("gcs client failed; falling back to local uploads")
	}
	local, err := imagestore.NewLocal(cfg.UploadDir)
	if err != nil {
		logger.Fatalf("failed to prepare upload dir: %v", err)
	}
	container.SetImages(local)
	return func() {}
}

func initEvents(cfg *config.Config, logger *logrus.Logger) func() {
	var pub gateway.EventPublisher = events.NewLog(logger)
	closeFn := func() {}
	if cfg.RabbitMQURL != "" {
		rp, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; events are only logged")
		} else {
			pub = events.NewRabbit(rp)
			closeFn = rp.Close
		}
	}
	container.SetEvents(pub)
	return closeFn
}
