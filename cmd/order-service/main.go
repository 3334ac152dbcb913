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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/LavaJover/festival-order-service/internal/app/background"
	"github.com/LavaJover/festival-order-service/internal/app/setup"
	"github.com/LavaJover/festival-order-service/internal/config"
	httpapi "github.com/LavaJover/festival-order-service/internal/delivery/http"
	"github.com/LavaJover/festival-order-service/internal/delivery/http/handlers"
	"github.com/LavaJover/festival-order-service/internal/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	logger := logging.Init("festival-order-service", cfg.LogConfig)

	if err := run(cfg); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.OrderConfig) error {
	logger := logging.Base()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setup.InitializeDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init dependencies: %w", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Warn("closing dependencies", "error", err)
		}
	}()

	ucs, err := setup.InitializeUseCases(deps)
	if err != nil {
		return fmt.Errorf("init usecases: %w", err)
	}

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Admin.Password == "" {
		logger.Warn("admin password not set; admin routes will reject every request")
	}

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Orders:        handlers.NewOrderHandler(ucs.OrderUsecase),
		Payments:      handlers.NewPaymentHandler(ucs.PaymentUsecase),
		Games:         handlers.NewGameHandler(ucs.GameUsecase),
		AdminPassword: cfg.Admin.Password,
		Metrics:       deps.Metrics,
		Gatherer:      deps.Registry,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	tasks := background.NewBackgroundTasks(
		ucs.OrderUsecase,
		ucs.PaymentUsecase,
		cfg.Scheduler.AutoCheckInterval,
		cfg.Scheduler.ExpiryInterval,
		logger.With("component", "background"),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return tasks.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
