// Package server boots the application: configuration, Mongo, Redis,
// storage, background workers and the HTTP listener.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/shashiranjanraj/tomato/app/controllers"
	"github.com/shashiranjanraj/tomato/app/jobs"
	"github.com/shashiranjanraj/tomato/app/repositories"
	"github.com/shashiranjanraj/tomato/app/routes"
	"github.com/shashiranjanraj/tomato/app/services"
	"github.com/shashiranjanraj/tomato/config"
	"github.com/shashiranjanraj/tomato/pkg/cache"
	"github.com/shashiranjanraj/tomato/pkg/database"
	"github.com/shashiranjanraj/tomato/pkg/event"
	"github.com/shashiranjanraj/tomato/pkg/logger"
	"github.com/shashiranjanraj/tomato/pkg/metrics"
	"github.com/shashiranjanraj/tomato/pkg/middleware"
	"github.com/shashiranjanraj/tomato/pkg/notification"
	"github.com/shashiranjanraj/tomato/pkg/payment"
	"github.com/shashiranjanraj/tomato/pkg/queue"
	"github.com/shashiranjanraj/tomato/pkg/reqid"
	"github.com/shashiranjanraj/tomato/pkg/router"
	"github.com/shashiranjanraj/tomato/pkg/schedule"
	"github.com/shashiranjanraj/tomato/pkg/storage"
	"github.com/shashiranjanraj/tomato/pkg/workerpool"
)

// failedOrderMaxAge is how long a "Payment Failed" order is kept before the
// hourly sweeper removes it.
const failedOrderMaxAge = 24 * time.Hour

// Start boots everything and blocks until SIGINT/SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}
	cfg := config.App()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Copy application logs into Mongo when asked to.
	if config.Get("LOG_MONGO", "") == "true" {
		if h, err := logger.NewMongoHandler(cfg.MongoURI, cfg.MongoDB, "logs"); err != nil {
			logger.Warn("server: mongo log sink disabled", "error", err)
		} else {
			logger.SetHandler(logger.NewMultiHandler(logger.L.Handler(), h))
			defer h.Close()
		}
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	db, err := database.Connect(connectCtx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return fmt.Errorf("server: mongo: %w", err)
	}
	defer db.Close(context.Background())

	if err := cache.Connect(); err != nil {
		logger.Warn("server: redis unavailable, caching disabled", "error", err)
	}
	storage.Connect()

	if hook := config.Get("SLACK_WEBHOOK_URL", ""); hook != "" {
		notification.SetSlackWebhook(hook)
	}

	handler, cleanup := buildHandler(ctx, cfg, db)
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}

// buildHandler assembles repositories, services, controllers, background
// workers and the middleware stack. The returned cleanup stops the worker
// pool.
func buildHandler(ctx context.Context, cfg config.Config, db *database.DB) (http.Handler, func()) {
	userRepo := repositories.NewUserRepository(db)
	foodRepo := repositories.NewFoodRepository(db)
	orderRepo := repositories.NewOrderRepository(db)

	gateway := payment.New(cfg)

	authSvc := services.NewAuthService(userRepo)
	cartSvc := services.NewCartService(userRepo)
	catalogSvc := services.NewCatalogService(foodRepo)
	orderSvc := services.NewOrderService(orderRepo, userRepo, foodRepo, gateway,
		cfg.DeliveryFee, cfg.PaymentWebhookSecret)

	// Bounded fan-out for async event listeners.
	pool := workerpool.New(32)
	event.UsePool(pool)

	// Background jobs: Redis-backed queue when available, otherwise in-memory.
	if cache.RDB != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}
	queue.UseCollection(db.Collection(database.FailedJobsCollection))
	jobs.Register()
	workers, _ := strconv.Atoi(config.Get("QUEUE_WORKERS", "4"))
	queue.StartWorkers(ctx, workers)

	// Hourly sweep of stale failed orders.
	schedule.Hourly().Name("orders:sweep-failed").WithoutOverlapping().Run(func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := orderSvc.SweepFailedOrders(sweepCtx, failedOrderMaxAge); err != nil {
			logger.Error("server: sweep failed orders", "error", err)
		}
	})
	schedule.Start(ctx)

	ctrl := &routes.Controllers{
		Users:  controllers.NewUserController(authSvc),
		Foods:  controllers.NewFoodController(catalogSvc),
		Cart:   controllers.NewCartController(cartSvc),
		Orders: controllers.NewOrderController(orderSvc),
		Health: controllers.NewHealthController(),
		Feed:   controllers.NewOrderFeed(),
	}
	if gqlCtrl, err := controllers.NewAdminGraphQLController(catalogSvc, orderSvc); err != nil {
		logger.Warn("server: graphql disabled", "error", err)
	} else {
		ctrl.GraphQL = gqlCtrl
	}

	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics — outermost for accurate total latency
	//  2. Recovery          — catches panics before they kill the goroutine
	//  3. Request ID        — inject unique ID before anything logs
	//  4. Logger            — logs request_id from context
	//  5. CORS              — set CORS headers
	//  6. Rate limiter      — reject abusers early
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(200, time.Minute))

	// Prometheus endpoint and uploaded images bypass auth.
	r.HandleFunc("/metrics", metrics.Handler())
	r.Static("/images", config.Get("STORAGE_LOCAL_ROOT", "uploads"))

	routes.RegisterAPI(r, ctrl)

	return r.Handler(), func() {
		pool.Shutdown()
	}
}
