package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/venue-risk-backend-go/internal/models"
	"github.com/jengzang/venue-risk-backend-go/internal/service"
	"github.com/jengzang/venue-risk-backend-go/pkg/response"
)

// VisualizationHandler handles hotspot, heatmap and trend requests
type VisualizationHandler struct {
	service *service.AnalysisService
}

// NewVisualizationHandler creates a new visualization handler
func NewVisualizationHandler(service *service.AnalysisService) *VisualizationHandler {
	return &VisualizationHandler{service: service}
}

// GetHotspots handles GET /api/v1/hotspots
func (h *VisualizationHandler) GetHotspots(c *gin.Context) {
	var filter models.HotspotFilter
	if !bindQuery(c, &filter) {
		return
	}

	result, err := h.service.Hotspots(c.Request.Context(), filter)
	if err != nil {
		writeError(c, "detect hotspots", err)
		return
	}
	response.Success(c, result)
}

// GetHeatmap handles GET /api/v1/heatmap
func (h *VisualizationHandler) GetHeatmap(c *gin.Context) {
	var filter models.HeatmapFilter
	if !bindQuery(c, &filter) {
		return
	}

	heatmap, err := h.service.Heatmap(filter)
	if err != nil {
		writeError(c, "build heatmap", err)
		return
	}
	response.Success(c, heatmap)
}

// GetTrends handles GET /api/v1/trends
func (h *VisualizationHandler) GetTrends(c *gin.Context) {
	var filter models.TrendFilter
	if !bindQuery(c, &filter) {
		return
	}

	series, err := h.service.Trends(filter)
	if err != nil {
		writeError(c, "aggregate trends", err)
		return
	}
	response.Success(c, series)
}
