package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/milltrack/internal/config"
	"github.com/mamadbah2/milltrack/internal/repository/mongodb"
	"github.com/mamadbah2/milltrack/internal/repository/sheets"
	"github.com/mamadbah2/milltrack/internal/scheduler"
	"github.com/mamadbah2/milltrack/internal/server/handlers"
	"github.com/mamadbah2/milltrack/internal/server/router"
	summarysvc "github.com/mamadbah2/milltrack/internal/service/summary"
	"github.com/mamadbah2/milltrack/internal/store"
	"github.com/mamadbah2/milltrack/pkg/clients/anthropic"
	"github.com/mamadbah2/milltrack/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoRepo, err := mongodb.New(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	appStore := store.New(context.Background(), mongoRepo, baseLogger.Named("svc.store"))

	var aiClient anthropic.Client
	if cfg.AI.AnthropicKey != "" {
		aiClient = anthropic.NewClient(cfg.AI.AnthropicKey)
		baseLogger.Info("anthropic ai client enabled")
	} else {
		baseLogger.Warn("anthropic api key missing, monthly summaries disabled")
	}
	summarySvc := summarysvc.NewService(aiClient, appStore.Notify, baseLogger.Named("svc.summary"))

	var sheetsRepo sheets.Repository
	if cfg.SheetsEnabled() {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
	} else {
		baseLogger.Info("google sheets sync disabled")
	}

	handlerSet := handlers.NewSet(appStore, summarySvc, baseLogger)
	engine := router.New(handlerSet, cfg.Server.CORSAllowOrigins, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Backup, appStore, sheetsRepo, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
