package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
	"github.com/gin-gonic/gin"

	"github.com/jengzang/venue-risk-backend-go/internal/analysis"
	"github.com/jengzang/venue-risk-backend-go/internal/api"
	"github.com/jengzang/venue-risk-backend-go/internal/config"
	"github.com/jengzang/venue-risk-backend-go/internal/database"
	"github.com/jengzang/venue-risk-backend-go/internal/repository"
	"github.com/jengzang/venue-risk-backend-go/internal/service"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg)

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	engine, err := analysis.NewEngine(cfg.Engine())
	if err != nil {
		log.WithError(err).Fatal("Failed to configure analysis engine")
	}

	refreshService := service.NewRefreshService(engine,
		repository.NewIncidentRepository(db),
		repository.NewVenueRepository(db))
	analysisService := service.NewAnalysisService(engine, cfg.DefaultRadiusKm)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := refreshService.Refresh(ctx); err != nil {
		log.WithError(err).Warn("Initial load failed, serving an empty snapshot")
	}
	go refreshService.Run(ctx, cfg.RefreshInterval)

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           api.SetupRouter(cfg, analysisService, refreshService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
}

func setupLogging(cfg *config.Config) {
	if cfg.LogFormat == "json" {
		log.SetHandler(json.New(os.Stderr))
	} else {
		log.SetHandler(text.New(os.Stderr))
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
