package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonor84/nodeimages/handlers"
	"github.com/jonor84/nodeimages/internal/config"
	"github.com/jonor84/nodeimages/internal/database"
	"github.com/jonor84/nodeimages/internal/favorites/repository"
	favservice "github.com/jonor84/nodeimages/internal/favorites/service"
	"github.com/jonor84/nodeimages/internal/oidc"
	"github.com/jonor84/nodeimages/internal/search"
	"github.com/jonor84/nodeimages/internal/sessions"
	"github.com/jonor84/nodeimages/pkg/logger"
	"github.com/jonor84/nodeimages/pkg/metrics"
	"github.com/jonor84/nodeimages/pkg/middleware"
	"github.com/jonor84/nodeimages/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: auth=%v favorites=%s mongo=%v redis=%v", cfg.Auth.Domain != "", cfg.Favorites.Backend, cfg.MongoDB.URI != "", cfg.Redis.Host != "")

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	ctx := context.Background()

	r := gin.New()
	r.Use(logger.GinMiddleware(), handlers.Recovery())
	r.SetHTMLTemplate(web.Templates())

	// Redis backs sessions, OAuth state and the distributed rate limiter when reachable.
	var redisClient *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" {
		c := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := c.Ping(pctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v; falling back to in-process stores", addr, err)
			_ = c.Close()
		} else {
			redisClient = c
			defer redisClient.Close()
			logger.Infof("connected to Redis at %s", addr)
		}
		cancel()
	}

	var (
		sessionRepo sessions.Repository
		stateStore  sessions.StateStore
	)
	switch {
	case redisClient != nil:
		sessionRepo = sessions.NewRedisRepository(redisClient, "session:")
		stateStore = sessions.NewRedisStateStore(redisClient)
		logger.Infof("using Redis for sessions")
	case cfg.MongoDB.URI != "":
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, time.Second)
		if err != nil {
			logger.Warnf("could not connect to MongoDB for sessions: %v", err)
			break
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		repo := sessions.NewMongoRepository(client.Database(cfg.MongoDB.Database).Collection("sessions"))
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Warnf("session TTL index: %v", err)
		}
		sessionRepo = repo
		logger.Infof("using MongoDB for sessions")
	}
	if sessionRepo == nil {
		sessionRepo = sessions.NewMemoryRepository()
		logger.Warnf("using in-memory sessions; they are lost on restart")
	}
	if stateStore == nil {
		stateStore = sessions.NewMemoryStateStore()
	}
	sessionsSvc := sessions.NewService(sessionRepo, cfg.Session.TTL)

	favRepo, closeFavorites, err := repository.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("favorites storage: %v", err)
	}
	defer closeFavorites()
	favSvc := favservice.New(favRepo)

	gateway, err := search.New(ctx, cfg.Search)
	if err != nil {
		logger.Fatalf("search gateway: %v", err)
	}

	// The login flow needs provider discovery; without it the app still serves
	// the landing page and answers /login with 503.
	var auth handlers.Authenticator
	if cfg.Auth.Domain != "" && cfg.Auth.ClientID != "" {
		if cfg.Auth.AllowInsecureToken {
			logger.Warn("ID token signatures are NOT verified (ALLOW_INSECURE_TOKEN=true)")
		}
		dctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		a, err := oidc.NewAuthenticator(dctx, cfg.Auth)
		cancel()
		if err != nil {
			logger.Warnf("failed to initialize identity provider: %v", err)
		} else {
			auth = a
		}
	}

	var limiter gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			limiter = middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win)
		} else {
			limiter = middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}
		logger.Infof("rate limiter enabled: rps=%.2f burst=%d redis=%v", cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.UseRedis && redisClient != nil)
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// 200 only when the dependencies that were configured are usable
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{"sessions": true, "favorites": true}

		deps["oidc"] = cfg.Auth.Domain == "" || auth != nil
		if !deps["oidc"] {
			ready = false
		}
		if cfg.Redis.Host != "" {
			deps["redis"] = redisClient != nil && redisClient.Ping(c.Request.Context()).Err() == nil
			if !deps["redis"] {
				ready = false
			}
		}
		if _, err := favRepo.List(c.Request.Context(), "readiness-probe"); err != nil {
			deps["favorites"] = false
			ready = false
		}

		status, label := http.StatusOK, "ready"
		if !ready {
			status, label = http.StatusServiceUnavailable, "not_ready"
		}
		c.JSON(status, gin.H{"status": label, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterSwagger(r)

	handlers.Register(r, handlers.Deps{
		Auth:      auth,
		Sessions:  sessionsSvc,
		States:    stateStore,
		Favorites: favSvc,
		Search:    gateway,
		Cookie: middleware.CookieOptions{
			Name:   cfg.Session.CookieName,
			Secret: cfg.Session.Secret,
			Secure: cfg.Session.Secure,
		},
		LogoutReturnURL: cfg.Auth.LogoutReturnURL,
		RateLimit:       limiter,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	serverErrors := make(chan error, 1)
	go func() {
		logger.Infof("starting nodeimages on %s (%s)", srv.Addr, cfg.Server.BaseURL)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("server failed: %v", err)
		}
	case sig := <-quit:
		logger.Infof("shutdown signal received: %s", sig)
		sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			logger.Errorf("graceful shutdown failed: %v", err)
		}
		logger.Infof("server stopped")
	}
}
