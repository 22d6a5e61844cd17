package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/impactreport/impact/backend/go-services/handlers"
	"github.com/impactreport/impact/backend/go-services/internal/config"
	"github.com/impactreport/impact/backend/go-services/internal/content"
	contenthandler "github.com/impactreport/impact/backend/go-services/internal/content/handler"
	"github.com/impactreport/impact/backend/go-services/internal/content/repository"
	"github.com/impactreport/impact/backend/go-services/internal/content/service"
	"github.com/impactreport/impact/backend/go-services/internal/database"
	"github.com/impactreport/impact/backend/go-services/internal/sessions"
	"github.com/impactreport/impact/backend/go-services/internal/storage"
	"github.com/impactreport/impact/backend/go-services/internal/tokens"
	"github.com/impactreport/impact/backend/go-services/internal/users"
	"github.com/impactreport/impact/backend/go-services/pkg/logger"
	"github.com/impactreport/impact/backend/go-services/pkg/metrics"
	"github.com/impactreport/impact/backend/go-services/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v cache_ttl=%s", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Content.CacheTTL)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// Lightweight CORS middleware: the admin UI and the public site are served
	// from other origins.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	ctx := context.Background()

	// Redis is optional: it backs the shared rate limiter, the read cache and
	// token revocation.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err == nil {
			redisClient = client
			logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		} else {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			_ = client.Close()
		}
	}

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Storage: MongoDB when configured, otherwise in-memory (development only).
	var handle *database.Handle
	var store repository.Store
	var userRepo users.UserRepository
	if cfg.MongoDB.URI != "" {
		handle, err = database.NewHandle(cfg.MongoDB.URI, cfg.MongoDB.Database, cfg.MongoDB.Timeout)
		if err != nil {
			logger.Fatalf("invalid MongoDB settings: %v", err)
		}
		defer func() { _ = handle.Close(context.Background()) }()
		// connect eagerly so a bad URI shows up in the logs; requests retry lazily
		if err := handle.Ping(ctx); err != nil {
			logger.Warnf("MongoDB not reachable yet, will retry on first request: %v", err)
		}
		store = repository.NewMongoStore(handle)
		userRepo = users.NewMongoUserRepository(handle, "users")
	} else {
		store = repository.NewMemoryStore()
		userRepo = users.NewMemoryUserRepository()
	}
	if redisClient != nil && cfg.Content.CacheTTL > 0 {
		store = repository.NewCachedStore(store, redisClient, "", cfg.Content.CacheTTL)
		logger.Infof("content read cache enabled (ttl=%s)", cfg.Content.CacheTTL)
	}
	contentSvc := service.New(content.DefaultRegistry(), store, cfg.Content.DefaultSlug)

	userSvc := users.NewService(userRepo)
	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		created, err := userSvc.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.FirstName, cfg.Admin.LastName)
		if err != nil {
			logger.Warnf("failed to seed admin user %s: %v", cfg.Admin.Email, err)
		} else if created {
			logger.Infof("seeded admin user %s", cfg.Admin.Email)
		}
	}

	verifier := tokens.NewVerifier(cfg.JWT.Secret)
	blacklist := sessions.NewBlacklist(redisClient)
	authn := middleware.AuthMiddleware(verifier, blacklist)
	adminOnly := []gin.HandlerFunc{authn, middleware.RequireAdmin()}

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint: return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		if handle != nil {
			pctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			deps["mongodb"] = handle.Ping(pctx) == nil
			cancel()
			ready = ready && deps["mongodb"]
		} else {
			deps["mongodb"] = true
		}

		// Redis is required only when something depends on it
		if cfg.Redis.Host != "" && (cfg.RateLimit.UseRedis || cfg.Content.CacheTTL > 0) {
			deps["redis"] = redisClient != nil && redisClient.Ping(c.Request.Context()).Err() == nil
			ready = ready && deps["redis"]
		} else {
			deps["redis"] = true
		}
		deps["auth"] = cfg.JWT.Secret != ""

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	contenthandler.RegisterContentRoutes(r, contentSvc, adminOnly...)

	loginLimiter := middleware.RateLimitMiddleware(1, 5)
	handlers.NewAuthHandler(userSvc, cfg.JWT.Secret, cfg.JWT.AccessTokenTTL, blacklist).Register(r, authn, loginLimiter)

	// Object storage for images is optional; without it the sign endpoint answers 503.
	var signer handlers.UploadSigner
	if mcfg := storage.LoadMinIOConfig(); mcfg.Configured() {
		ms, err := storage.NewMinIOStorage(mcfg)
		if err != nil {
			logger.Warnf("object storage disabled: %v", err)
		} else {
			bctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := ms.EnsureBucket(bctx); err != nil {
				logger.Warnf("could not ensure bucket %s: %v", mcfg.Bucket, err)
			}
			cancel()
			signer = ms
		}
	}
	handlers.RegisterUploadRoutes(r, signer, adminOnly...)

	handlers.RegisterSwagger(r)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Config summary: mongo=%v redis=%v jwt_secret_set=%v uploads=%v", cfg.MongoDB.URI != "", redisClient != nil, cfg.JWT.Secret != "", signer != nil)
	logger.Infof("Starting impact content service on %s", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server failed: %v", err)
	}
}
