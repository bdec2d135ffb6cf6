package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/motor-health-dashboard/internal/config"
	"github.com/iliyamo/motor-health-dashboard/internal/database"
	"github.com/iliyamo/motor-health-dashboard/internal/handler"
	"github.com/iliyamo/motor-health-dashboard/internal/observability"
	"github.com/iliyamo/motor-health-dashboard/internal/repository"
	"github.com/iliyamo/motor-health-dashboard/internal/router"
	"github.com/iliyamo/motor-health-dashboard/internal/service"
	"github.com/iliyamo/motor-health-dashboard/internal/upstream"
)

func main() {
	// .env is optional; containerized deployments set real env vars.
	_ = godotenv.Load()
	cfg := config.Load()

	if err := observability.Init(cfg.SentryDSN, cfg.Env); err != nil {
		log.Printf("[SENTRY] init failed, continuing without: %v", err)
	}
	defer observability.Flush()

	// MySQL holds user credentials only.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("[DB] connect failed: %v", err)
	}
	defer db.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("[DB] schema setup failed: %v", err)
	}
	cancel()

	// Redis is the primary cache store; the service cannot run without it.
	rdb, err := config.NewRedisClient()
	if err != nil {
		log.Fatalf("[REDIS] connect failed: %v", err)
	}
	defer rdb.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(rdb)
	batches := repository.NewBatchCacheRepo(rdb)
	lists := repository.NewUserBatchesCacheRepo(rdb)

	client := upstream.New(cfg.AIServiceURL, cfg.MotorAPIBase, cfg.PipelineAPIBase)
	refresher := service.NewCacheRefresher(client, batches, lists,
		time.Duration(cfg.BatchCacheTTLMin)*time.Minute,
		time.Duration(cfg.UserBatchesTTLMin)*time.Minute,
		cfg.RabbitURL)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Cfg:       cfg,
		Redis:     rdb,
		Auth:      handler.NewAuthHandler(cfg, users, tokens),
		Dashboard: handler.NewDashboardHandler(lists, batches, refresher),
		Batch:     handler.NewBatchHandler(batches, refresher),
		Window:    handler.NewWindowHandler(batches),
		CacheAdm:  handler.NewCacheAdminHandler(batches, refresher),
		Proxy:     handler.NewProxyHandler(client),
		Report:    handler.NewReportHandler(lists, batches),
	})

	addr := cfg.Host + ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
