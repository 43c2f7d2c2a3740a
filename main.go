package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"linkly/internal/cache"
	"linkly/internal/clicks"
	"linkly/internal/config"
	"linkly/internal/controllers"
	"linkly/internal/database"
	"linkly/internal/geo"
	"linkly/internal/jwt"
	"linkly/internal/logger"
	"linkly/internal/middleware"
	"linkly/internal/qr"
	"linkly/internal/ratelimit"
	"linkly/internal/repository"
	"linkly/internal/service"
	"linkly/internal/shortcode"
)

const shutdownTimeout = 10 * time.Second

func main() {
	boot := bootLogger(zap.NewProduction)
	cfg := config.Load(boot)

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		boot.Fatal("failed to build logger", zap.Error(err))
	}
	defer log.Sync()

	gin.SetMode(cfg.GinMode)

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
	log.Info("server stopped")
}

// bootLogger covers config loading, before LOG_LEVEL is known.
func bootLogger(build func(...zap.Option) (*zap.Logger, error)) *zap.Logger {
	l, err := build()
	if err != nil || l == nil {
		return zap.NewNop()
	}
	return l
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}

	health := map[string]string{"storage": "memory", "counters": "memory", "geoip": "disabled"}

	// Storage: PostgreSQL when configured, otherwise everything lives in process
	var (
		urlRepo    repository.URLRepository
		userRepo   repository.UserRepository
		clickStore repository.ClickStore
	)
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory stores; data is lost on restart")
		mem := repository.NewMemoryStore()
		urlRepo, userRepo, clickStore = mem, mem.UserStore(), mem.ClickStore()
	} else {
		db, err := database.NewConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.RunMigrations(db); err != nil {
			return err
		}
		log.Info("connected to PostgreSQL, migrations applied")

		urlRepo = repository.NewURLRepository(db)
		userRepo = repository.NewUserRepository(db)
		clickStore = repository.NewClickRepository(db)
		health["storage"] = "postgres"
	}

	g, gctx := errgroup.WithContext(ctx)

	// Redis backs the anonymous quota and the analytics cache (optional)
	var (
		cacheClient cache.Cache
		counters    ratelimit.CounterStore
	)
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("failed to connect to Redis, continuing without cache", zap.Error(err))
		} else {
			defer redisCache.Close()
			cacheClient = redisCache
			counters = redisCache
			health["counters"] = "redis"
			log.Info("connected to Redis")
		}
	}
	if counters == nil {
		memCounters := ratelimit.NewMemoryStore(nil)
		counters = memCounters
		g.Go(func() error { return memCounters.Run(gctx, time.Minute) })
	}

	var locator geo.Locator = geo.NopLocator{}
	if cfg.GeoIPDBPath != "" {
		mm, err := geo.OpenMaxMind(cfg.GeoIPDBPath)
		if err != nil {
			log.Warn("geoip database unavailable, clicks will be recorded without location", zap.Error(err))
		} else {
			defer mm.Close()
			locator = mm
			health["geoip"] = "enabled"
		}
	}

	// Click pipeline. It gets its own context so it can drain after the server stops.
	recorder := clicks.NewRecorder(clickStore, locator, log)
	dispatcher := clicks.NewDispatcher(recorder, clicks.DispatcherConfig{
		Workers:       cfg.ClickWorkers,
		QueueSize:     cfg.ClickQueueSize,
		RecordTimeout: cfg.ClickRecordTimeout,
	}, log)
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()
	g.Go(func() error { return dispatcher.Run(dispatchCtx) })

	jwtService := jwt.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTTTL)*time.Hour)
	encoder := qr.NewEncoder(qr.DefaultSize)
	limiter := ratelimit.NewLimiter(counters, ratelimit.Config{
		Limit:  cfg.AnonRateLimit,
		Window: cfg.AnonRateWindow,
	}, log)

	urlService := service.NewURLService(urlRepo, shortcode.NewGenerator(), limiter, encoder, dispatcher, service.URLServiceConfig{
		BaseURL:     cfg.ShortLinkBase(),
		CodeLength:  cfg.ShortCodeLength,
		MaxAttempts: cfg.MaxCodeAttempts,
	}, log)
	authService := service.NewAuthService(userRepo, jwtService)
	analyticsService := service.NewAnalyticsService(urlRepo, clickStore, cacheClient, cfg.ShortLinkBase(), log)

	limiters := controllers.RateLimiters{
		General:  middleware.NewRateLimiter("general", rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, log),
		Auth:     middleware.NewRateLimiter("auth", rate.Limit(cfg.RateLimitAuthRPS), cfg.RateLimitAuthBurst, log),
		Shorten:  middleware.NewRateLimiter("shorten", rate.Limit(cfg.RateLimitShortenRPS), cfg.RateLimitShortenBurst, log),
		Redirect: middleware.NewRateLimiter("redirect", rate.Limit(cfg.RateLimitRedirectRPS), cfg.RateLimitRedirectBurst, log),
	}
	for _, rl := range []*middleware.RateLimiter{limiters.General, limiters.Auth, limiters.Shorten, limiters.Redirect} {
		g.Go(func() error { return rl.Run(gctx) })
	}

	router := &controllers.Router{
		Shortener:  controllers.NewShortenerController(urlService),
		Auth:       controllers.NewAuthController(authService),
		Analytics:  controllers.NewAnalyticsController(analyticsService),
		QRCode:     controllers.NewQRCodeController(encoder, cfg.ShortLinkBase()),
		JWT:        jwtService,
		Limiters:   limiters,
		Logger:     log,
		HealthFunc: func() map[string]string { return health },

		TrustedProxies: cfg.TrustedProxies,
	}
	engine, err := router.Engine()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.String("base_url", cfg.ShortLinkBase()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		// no handler can dispatch any more; let the workers drain
		stopDispatch()
		return err
	})

	return g.Wait()
}
