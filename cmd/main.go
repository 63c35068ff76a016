package main

import (
	"context"
	"errors"
	"flag"
	"github.com/hellofresh/health-go/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/yakoovad/volunteer-board/internal/api"
	"github.com/yakoovad/volunteer-board/internal/auth"
	"github.com/yakoovad/volunteer-board/internal/config"
	"github.com/yakoovad/volunteer-board/internal/db"
	"github.com/yakoovad/volunteer-board/internal/repository"
	"github.com/yakoovad/volunteer-board/internal/service"
	"github.com/yakoovad/volunteer-board/pkg/logger"
	"go.uber.org/zap"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(cfg.Server.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("starting application", zap.Bool("production", cfg.Server.Production))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err = pool.Ping(ctx); err != nil {
		log.Fatal("failed to ping database", zap.Error(err))
	}

	log.Info("database connection established")

	if cfg.Database.AutoMigrate {
		if err = db.Migrate(ctx, pool, log); err != nil {
			log.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	transactor := db.NewPgxTransactor(pool)

	postRepo := repository.NewPgxPostRepository(pool)
	requestRepo := repository.NewPgxRequestRepository(pool)

	posts := service.NewPostService(transactor).WithPostRepo(postRepo)
	requests := service.NewRequestService(transactor).WithPostRepo(postRepo).WithRequestRepo(requestRepo)

	healthChecker, err := api.NewHealthChecker(version, health.Config{
		Name:    "postgres",
		Timeout: 2 * time.Second,
		Check:   pool.Ping,
	})
	if err != nil {
		log.Fatal("failed to create health checker", zap.Error(err))
	}

	tokens := auth.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)

	e := echo.New()
	e.HideBanner = true

	api.NewHandler(log, tokens).
		WithHealthChecker(healthChecker).
		WithPostService(posts).
		WithRequestService(requests).
		WithAllowedOrigins(cfg.Server.AllowedOrigins).
		WithRequestTimeout(cfg.Server.RequestTimeout).
		WithProduction(cfg.Server.Production).
		RegisterRoutes(e)

	addr := ":" + strconv.Itoa(cfg.Server.Port)

	go func() {
		log.Info("server starting", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err = e.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shut down server", zap.Error(err))
	}
}
