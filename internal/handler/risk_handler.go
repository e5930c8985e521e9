package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/venue-risk-backend-go/internal/models"
	"github.com/jengzang/venue-risk-backend-go/internal/service"
	"github.com/jengzang/venue-risk-backend-go/pkg/response"
)

// RiskHandler handles HTTP requests for batch risk rankings
type RiskHandler struct {
	service *service.AnalysisService
}

// NewRiskHandler creates a new risk handler
func NewRiskHandler(service *service.AnalysisService) *RiskHandler {
	return &RiskHandler{service: service}
}

// RankVenues handles GET /api/v1/risk
func (h *RiskHandler) RankVenues(c *gin.Context) {
	var filter models.RiskFilter
	if !bindQuery(c, &filter) {
		return
	}

	assessments, err := h.service.RankVenues(c.Request.Context(), filter)
	if err != nil {
		writeError(c, "rank venues", err)
		return
	}
	response.Success(c, gin.H{
		"assessments": assessments,
		"count":       len(assessments),
	})
}

// GetSummary handles GET /api/v1/summary
func (h *RiskHandler) GetSummary(c *gin.Context) {
	var filter models.RiskFilter
	if !bindQuery(c, &filter) {
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), filter)
	if err != nil {
		writeError(c, "build summary", err)
		return
	}
	response.Success(c, summary)
}
