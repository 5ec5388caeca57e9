package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apirest "github.com/Regyyyy/gamify-oss-app-sub000/api/rest"
	"github.com/Regyyyy/gamify-oss-app-sub000/audit"
	"github.com/Regyyyy/gamify-oss-app-sub000/cache"
	"github.com/Regyyyy/gamify-oss-app-sub000/config"
	dbadapter "github.com/Regyyyy/gamify-oss-app-sub000/db"
	"github.com/Regyyyy/gamify-oss-app-sub000/game/progression"
	"github.com/Regyyyy/gamify-oss-app-sub000/hook"
	"github.com/Regyyyy/gamify-oss-app-sub000/model"
	"github.com/Regyyyy/gamify-oss-app-sub000/scheduler"
	"github.com/Regyyyy/gamify-oss-app-sub000/store"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// A missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin routes only accept admin sessions")
	}
	if cfg.Security.JWTSecret == "" || cfg.Security.JWTSecret == "change-me" {
		logger.Warn("security.jwt_secret is unset or the placeholder value")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	if cfg.Progression.SeedCatalog {
		if err := model.SeedCatalog(db); err != nil {
			log.Fatalf("db seed: %v", err)
		}
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Audit ----
	auditSvc := audit.New(db, logger)

	// ---- Cache ----
	c, err := cache.NewCache(cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		KeyPrefix:       cfg.Cache.KeyPrefix,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- Progression ----
	engine := progression.New(progression.Deps{
		Store:  store.New(db, cfg.Progression.CatalogCacheSize),
		Cache:  c,
		Audit:  auditSvc,
		Hooks:  hook.NewHookCenter(logger),
		Config: cfg.Progression,
		Logger: logger,
	})

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	// With Redis several instances share the cache; the guard keeps each
	// periodic task to one run per period across all of them.
	sched.AddTicker("leaderboard_refresh", cfg.Progression.RefreshInterval,
		cache.Guard(c, "leaderboard_refresh", lockHold(cfg.Progression.RefreshInterval), engine.Board.Refresh))
	sched.AddTicker("podium_check", cfg.Progression.PodiumCheckPeriod,
		cache.Guard(c, "podium_check", lockHold(cfg.Progression.PodiumCheckPeriod), engine.Board.PodiumCheck))
	sched.AddDelay("leaderboard_warmup", time.Second, engine.Board.Refresh)

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := apirest.NewRouter(apirest.RouterDeps{
		Engine:    engine,
		Cache:     c,
		Scheduler: sched,
		Server:    cfg.Server,
		Security:  cfg.Security,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	sched.Stop()
	auditSvc.Stop(ctx)
}

// lockHold keeps a task lock for most of one period so the next tick can
// take it again.
func lockHold(period time.Duration) time.Duration {
	return period * 9 / 10
}
