package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/venue-risk-backend-go/internal/models"
	"github.com/jengzang/venue-risk-backend-go/internal/service"
	"github.com/jengzang/venue-risk-backend-go/pkg/response"
)

// IncidentHandler handles HTTP requests for raw incident listings
type IncidentHandler struct {
	service *service.AnalysisService
}

// NewIncidentHandler creates a new incident handler
func NewIncidentHandler(service *service.AnalysisService) *IncidentHandler {
	return &IncidentHandler{service: service}
}

// ListIncidents handles GET /api/v1/incidents
// Query params: minLat, minLon, maxLat, maxLon, start, end, category, limit
func (h *IncidentHandler) ListIncidents(c *gin.Context) {
	var filter models.IncidentFilter
	if !bindQuery(c, &filter) {
		return
	}

	list, err := h.service.Incidents(filter)
	if err != nil {
		writeError(c, "list incidents", err)
		return
	}
	response.Success(c, list)
}
