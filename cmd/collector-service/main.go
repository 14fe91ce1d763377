package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/framefest/platform/pkg/collector"
	"github.com/framefest/platform/pkg/common/config"
	"github.com/framefest/platform/pkg/common/database"
	"github.com/framefest/platform/pkg/common/kafka"
	"github.com/framefest/platform/pkg/common/logger"
	"github.com/framefest/platform/pkg/common/middleware"
	"github.com/framefest/platform/pkg/common/models"
	"github.com/framefest/platform/pkg/contest"
	"github.com/framefest/platform/pkg/entry"
	"github.com/framefest/platform/pkg/observability/metrics"
	"github.com/framefest/platform/pkg/screening"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	contestRepo := contest.NewRepository(db)
	entryRepo := entry.NewRepository(db)
	logRepo := collector.NewRepository(db)
	for _, migrate := range []func() error{
		contestRepo.AutoMigrate,
		entryRepo.AutoMigrate,
		logRepo.AutoMigrate,
	} {
		if err := migrate(); err != nil {
			logger.Log.WithError(err).Fatal("failed to migrate tables")
		}
	}

	rules, err := screening.LoadRules(cfg.ScreeningRulesPath)
	if err != nil {
		logger.Log.WithError(err).Warn("falling back to default screening rules")
	}
	screener, err := screening.NewScreener(rules)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to compile screening rules")
	}

	producer := kafka.NewProducer(cfg.ContestEventsTopic)
	defer producer.Close()

	client := collector.NewClient(cfg)
	svc := collector.NewService(client, contestRepo, entryRepo, logRepo, screener, producer)
	handler := collector.NewHandler(svc)

	router := mux.NewRouter()
	router.Use(middleware.Recovery, middleware.Logging)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.AdminAuth(cfg.AdminKeyHash))
	handler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Collector Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	// Recurring collection sweep
	go func() {
		ticker := time.NewTicker(cfg.CollectorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := svc.CollectAll(context.Background()); err != nil {
					logger.Log.WithError(err).Warn("scheduled collection run failed")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// On-demand runs requested by the contest-service
	consumer := kafka.NewConsumer(cfg.CollectRequestTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	go func() {
		err := consumer.Consume(ctx, func(ctx context.Context, event models.Event) error {
			if event.Type != "collect.requested" {
				return nil
			}
			raw, _ := event.Data["contest_id"].(string)
			contestID, err := uuid.Parse(raw)
			if err != nil {
				logger.Log.WithField("contest_id", raw).Warn("ignoring collect request with invalid contest id")
				return nil
			}
			_, err = svc.CollectForContest(ctx, contestID)
			return err
		})
		if err != nil && ctx.Err() == nil {
			logger.Log.WithError(err).Error("collect request consumer stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Collector Service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	database.ClosePostgres()

	logger.Log.Info("Collector Service stopped")
}
