package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/venue-risk-backend-go/internal/models"
	"github.com/jengzang/venue-risk-backend-go/internal/service"
	"github.com/jengzang/venue-risk-backend-go/pkg/response"
)

// VenueHandler handles HTTP requests for single venues
type VenueHandler struct {
	service *service.AnalysisService
}

// NewVenueHandler creates a new venue handler
func NewVenueHandler(service *service.AnalysisService) *VenueHandler {
	return &VenueHandler{service: service}
}

// ListVenues handles GET /api/v1/venues
func (h *VenueHandler) ListVenues(c *gin.Context) {
	venues := h.service.ListVenues()
	response.Success(c, gin.H{
		"venues": venues,
		"count":  len(venues),
	})
}

// GetVenueRisk handles GET /api/v1/venues/:id/risk
func (h *VenueHandler) GetVenueRisk(c *gin.Context) {
	var filter models.RiskFilter
	if !bindQuery(c, &filter) {
		return
	}

	assessment, err := h.service.VenueRisk(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		writeError(c, "assess venue", err)
		return
	}
	response.Success(c, assessment)
}

// GetNearbyIncidents handles GET /api/v1/venues/:id/nearby
func (h *VenueHandler) GetNearbyIncidents(c *gin.Context) {
	var filter models.NearbyFilter
	if !bindQuery(c, &filter) {
		return
	}

	incidents, err := h.service.NearbyIncidents(c.Param("id"), filter)
	if err != nil {
		writeError(c, "find nearby incidents", err)
		return
	}
	response.Success(c, gin.H{
		"incidents": incidents,
		"count":     len(incidents),
	})
}
