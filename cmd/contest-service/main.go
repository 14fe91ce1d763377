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
	"github.com/framefest/platform/pkg/contest"
	"github.com/framefest/platform/pkg/entry"
	"github.com/framefest/platform/pkg/observability/metrics"
	"github.com/framefest/platform/pkg/vote"
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
	voteRepo := vote.NewRepository(db)
	for _, migrate := range []func() error{
		contestRepo.AutoMigrate,
		entryRepo.AutoMigrate,
		voteRepo.AutoMigrate,
	} {
		if err := migrate(); err != nil {
			logger.Log.WithError(err).Fatal("failed to migrate tables")
		}
	}

	eventProducer := kafka.NewProducer(cfg.ContestEventsTopic)
	defer eventProducer.Close()
	collectProducer := kafka.NewProducer(cfg.CollectRequestTopic)
	defer collectProducer.Close()

	contestSvc := contest.NewService(contestRepo)
	entrySvc := entry.NewService(entryRepo, eventProducer)
	voteCache := vote.NewCountCache(database.GetRedis(), cfg.VoteCountCacheTTL)
	voteSvc := vote.NewService(voteRepo, entryRepo, voteCache, eventProducer)

	contestHandler := contest.NewHandler(contestSvc)
	entryHandler := entry.NewHandler(entrySvc, contestSvc)
	voteHandler := vote.NewHandler(voteSvc, entrySvc, contestSvc)
	triggerHandler := collector.NewTriggerHandler(collectProducer)

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
	api.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	contestHandler.Register(api)
	entryHandler.Register(api)
	voteHandler.Register(api)

	admin := router.PathPrefix("/api/v1/admin").Subrouter()
	admin.Use(middleware.AdminAuth(cfg.AdminKeyHash))
	contestHandler.RegisterAdmin(admin)
	entryHandler.RegisterAdmin(admin)
	voteHandler.RegisterAdmin(admin)
	triggerHandler.Register(admin)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Contest Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Contest Service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	database.CloseRedis()
	database.ClosePostgres()

	logger.Log.Info("Contest Service stopped")
}
