package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ccc-bridge/internal/agentfactory"
	"ccc-bridge/internal/audit"
	"ccc-bridge/internal/auth"
	"ccc-bridge/internal/config"
	"ccc-bridge/internal/httpapi"
	"ccc-bridge/internal/middlewareapi"
	"ccc-bridge/internal/settings"
	"ccc-bridge/pkg/logger"
	"ccc-bridge/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var authManager *auth.Manager
	if cfg.Auth.JWTSecret != "" {
		authManager, err = auth.NewManager(auth.ManagerConfig{
			Secret:    cfg.Auth.JWTSecret,
			Issuer:    cfg.Auth.JWTIssuer,
			Audience:  cfg.Auth.JWTAudience,
			AccessTTL: cfg.Auth.AccessTTL,
		})
		if err != nil {
			log.Error("auth init failed", "err", err)
			os.Exit(1)
		}
	} else {
		log.Warn("JWT_SECRET not set, management surface runs open")
	}

	// Settings store: Redis when configured, process memory otherwise.
	var store settings.Store = settings.NewMemoryStore()
	if cfg.Redis.Host != "" {
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		store = settings.NewRedisStore(rdb)
	}

	// Dispatch audit: Postgres when configured, process memory otherwise.
	var auditRepo audit.Repository = audit.NewMemoryRepo()
	if cfg.DB.Host != "" {
		db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			log.Error("postgres init failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		auditRepo = audit.NewPostgresRepo(db)
	}

	egress := utils.NewHTTPClient(utils.HTTPClientConfig{
		Timeout:     cfg.Outbound.Timeout,
		MaxAttempts: cfg.Outbound.MaxAttempts,
	})

	factory := agentfactory.New(store, egress, log)
	mw := middlewareapi.NewClient(middlewareapi.Config{
		URL:   cfg.MiddlewareAPI.URL,
		Token: cfg.MiddlewareAPI.Token,
	}, egress)

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, routeDeps{
		Handlers: httpapi.Handlers{
			Factory:      factory,
			Store:        store,
			Middleware:   mw,
			Auth:         authManager,
			ServiceToken: cfg.Auth.ServiceToken,
		},
		Webhooks: httpapi.WebhookHandlers{
			Factory: factory,
			Audit:   audit.NewService(auditRepo),
		},
		AuthManager: authManager,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
	log.Info("shutdown complete")
}
