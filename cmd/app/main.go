package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gomodule/redigo/redis"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"tinylink/internal/config"
	"tinylink/internal/dashboard"
	"tinylink/internal/handler"
	"tinylink/internal/i18n"
	"tinylink/internal/repository"
	"tinylink/internal/router"
	"tinylink/internal/service"
	"tinylink/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logging.InitLogger(cfg.Log); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = logging.Logger.Sync() }()

	gin.SetMode(cfg.Server.Mode)

	db, err := repository.OpenDB(repository.DBOptions{
		Driver:       cfg.DB.Driver,
		DSN:          cfg.DB.DSN,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		Logger:       logging.Logger,
		LogLevel:     logging.AtomicLevel.Level(),
	})
	if err != nil {
		logging.Logger.Fatal("Failed to open database", zap.Error(err))
	}

	pool := repository.NewRedisPool(repository.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if pool == nil {
		logging.Logger.Info("Redis not configured, daily stats disabled")
	}

	bundle, err := i18n.InitI18n(cfg.I18n.DefaultLang)
	if err != nil {
		logging.Logger.Fatal("Failed to init i18n", zap.Error(err))
	}

	links := repository.NewLinkRepository(db, nil)
	stats := service.NewStatsService(pool, repository.NewStatsRepository(db), links, nil, cfg.Stats.RetentionDays)
	linkService := service.NewLinkService(links, stats)

	web, err := dashboard.NewWeb(dashboard.NewClient(cfg.DashboardBaseURL(), &http.Client{Timeout: cfg.Dashboard.Timeout}))
	if err != nil {
		logging.Logger.Fatal("Failed to load dashboard templates", zap.Error(err))
	}

	r := router.New(router.Options{
		Logger:      logging.Logger,
		Bundle:      bundle,
		CorsOrigins: cfg.Server.CorsOrigins,
		Links:       handler.NewLinkHandler(linkService, stats, links),
		Pages:       web,
	})

	c := cron.New()
	if pool != nil {
		_, err := c.AddFunc(cfg.Stats.FlushCron, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := stats.Flush(ctx); err != nil {
				logging.Logger.Error("Scheduled stats flush failed", zap.Error(err))
			}
		})
		if err != nil {
			logging.Logger.Fatal("Failed to schedule stats flush", zap.String("spec", cfg.Stats.FlushCron), zap.Error(err))
		}
	}
	c.Start()

	startServer(r, cfg.Server.Addr, cfg.Server.ShutdownTimeout)

	// stop scheduling, wait for a running flush, then flush once more
	<-c.Stop().Done()
	flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	if err := stats.Flush(flushCtx); err != nil {
		logging.Logger.Error("Final stats flush failed", zap.Error(err))
	}
	cancel()

	closeRedis(pool)
	if err := repository.CloseDB(db); err != nil {
		logging.Logger.Warn("Database close failed", zap.Error(err))
	}
	logging.Logger.Info("Server exiting")
}

func startServer(r *gin.Engine, addr string, shutdownTimeout time.Duration) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Logger.Info("Server is running on " + addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Error("Server forced to shutdown", zap.Error(err))
	}
}

func closeRedis(pool *redis.Pool) {
	if pool == nil {
		return
	}
	if err := pool.Close(); err != nil {
		logging.Logger.Warn("Redis pool close failed", zap.Error(err))
	}
}
