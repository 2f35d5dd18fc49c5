package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-picker/config"
	"catalog-picker/internal/api"
	"catalog-picker/internal/broker"
	"catalog-picker/internal/catalog"
	"catalog-picker/internal/redisclient"
	"catalog-picker/internal/service"
	"catalog-picker/internal/store"
	"catalog-picker/internal/util"
	"catalog-picker/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting catalog picker")

	tp, err := util.InitTracer("catalog-picker", cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Migrate(context.Background()); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicHostResults)
	defer producer.Close()
	logger.Info("Kafka producer initialized", zap.String("topic", cfg.Kafka.TopicHostResults))

	catalogClient := catalog.NewHTTPClient(
		cfg.Catalog.BaseURL,
		cfg.Catalog.APIKey,
		time.Duration(cfg.Catalog.TimeoutSeconds)*time.Second,
	)

	sessions := service.NewManager(service.SessionDeps{
		Client:             catalogClient,
		Pricing:            redisClient,
		Host:               broker.NewHostPublisher(producer),
		Recorder:           db,
		PageSize:           cfg.Catalog.PageSize,
		SearchDebounce:     time.Duration(cfg.Session.SearchDebounceMillis) * time.Millisecond,
		DefaultDistributor: cfg.Session.DefaultDistributor,
	})
	defer sessions.CloseAll()

	hostEvents := service.NewHostEventHandler(sessions, db)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	hostConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicHostEvents, cfg.Kafka.ConsumerGroup)
	hostWorker := worker.NewHostWorker(hostConsumer, hostEvents)
	go func() {
		if err := hostWorker.Start(workerCtx); err != nil && err != context.Canceled {
			logger.Error("Host worker error", zap.Error(err))
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(sessions, map[string]api.Pinger{
		"postgres": db,
		"redis":    redisClient,
	})
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if err := hostWorker.Stop(); err != nil {
		logger.Error("Error stopping host worker", zap.Error(err))
	}

	logger.Info("Server exited")
}
