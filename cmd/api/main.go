package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/clubfunds/clubfunds-backend/internal/config"
	"github.com/clubfunds/clubfunds-backend/internal/handler"
	"github.com/clubfunds/clubfunds-backend/internal/logging"
	"github.com/clubfunds/clubfunds-backend/internal/middleware"
	"github.com/clubfunds/clubfunds-backend/internal/repository"
	"github.com/clubfunds/clubfunds-backend/internal/service/finance"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("clubfunds-api", cfg.LogLevel, cfg.AppEnv)

	db, err := connectDB(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	svc := finance.NewService(
		repository.NewEntryRepository(db),
		repository.NewCampaignRepository(db),
		repository.NewEventRepository(db),
		repository.NewClubRepository(db),
		cfg,
	)

	entryHandler := handler.NewEntryHandler(svc)
	clubHandler := handler.NewClubHandler(svc, cfg.DisplayCurrency)
	campaignHandler := handler.NewCampaignHandler(svc, cfg.DisplayCurrency)
	eventHandler := handler.NewEventHandler(svc, cfg.DisplayCurrency)
	exportHandler := handler.NewExportHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handler.Health)

	mux.HandleFunc("POST /api/v1/clubs/{clubID}/entries", entryHandler.Create)
	mux.HandleFunc("GET /api/v1/clubs/{clubID}/entries", entryHandler.List)
	mux.HandleFunc("GET /api/v1/clubs/{clubID}/entries/export", exportHandler.Entries)
	mux.HandleFunc("PATCH /api/v1/entries/{entryID}", entryHandler.Update)
	mux.HandleFunc("DELETE /api/v1/entries/{entryID}", entryHandler.Delete)

	mux.HandleFunc("GET /api/v1/clubs/{clubID}/summary", clubHandler.Summary)
	mux.HandleFunc("GET /api/v1/clubs/{clubID}/allocations", clubHandler.ListAllocations)
	mux.HandleFunc("GET /api/v1/clubs/{clubID}/allocations/check", clubHandler.CheckAllocation)
	mux.HandleFunc("POST /api/v1/clubs/{clubID}/allocations", clubHandler.Allocate)

	mux.HandleFunc("GET /api/v1/campaigns/{campaignID}/summary", campaignHandler.Summary)
	mux.HandleFunc("POST /api/v1/campaigns/{campaignID}/recalculate", campaignHandler.Recalculate)
	mux.HandleFunc("GET /api/v1/events/{eventID}/summary", eventHandler.Summary)
	mux.HandleFunc("POST /api/v1/events/{eventID}/recalculate", eventHandler.Recalculate)

	root := middleware.RequestID(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func connectDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connectDB: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeS) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeS) * time.Second)

	for i := range 30 {
		if err = db.Ping(); err == nil {
			return db, nil
		}
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}

	db.Close()
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", err)
}
