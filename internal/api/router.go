package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/venue-risk-backend-go/internal/config"
	"github.com/jengzang/venue-risk-backend-go/internal/handler"
	"github.com/jengzang/venue-risk-backend-go/internal/middleware"
	"github.com/jengzang/venue-risk-backend-go/internal/service"
)

// SetupRouter wires every route onto a new gin engine
func SetupRouter(cfg *config.Config, analysis *service.AnalysisService, refresh *service.RefreshService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		snap := analysis.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"status":           "ok",
			"message":          "Venue Risk API is running",
			"snapshot_version": snap.Version,
		})
	})

	venueHandler := handler.NewVenueHandler(analysis)
	incidentHandler := handler.NewIncidentHandler(analysis)
	riskHandler := handler.NewRiskHandler(analysis)
	vizHandler := handler.NewVisualizationHandler(analysis)
	adminHandler := handler.NewAdminHandler(refresh, analysis)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(cfg.RateLimit, time.Minute))
	{
		venues := api.Group("/venues")
		{
			venues.GET("", venueHandler.ListVenues)
			venues.GET("/:id/risk", venueHandler.GetVenueRisk)
			venues.GET("/:id/nearby", venueHandler.GetNearbyIncidents)
		}

		api.GET("/incidents", incidentHandler.ListIncidents)
		api.GET("/risk", riskHandler.RankVenues)
		api.GET("/summary", riskHandler.GetSummary)

		api.GET("/hotspots", vizHandler.GetHotspots)
		api.GET("/heatmap", vizHandler.GetHeatmap)
		api.GET("/trends", vizHandler.GetTrends)

		admin := api.Group("/admin")
		{
			admin.POST("/load", adminHandler.Load)
			admin.POST("/refresh", adminHandler.Refresh)
			admin.GET("/snapshot", adminHandler.GetSnapshot)
		}
	}

	return r
}
