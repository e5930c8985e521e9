package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/venue-risk-backend-go/internal/models"
	"github.com/jengzang/venue-risk-backend-go/internal/service"
	"github.com/jengzang/venue-risk-backend-go/pkg/response"
)

// AdminHandler handles data loading and snapshot inspection
type AdminHandler struct {
	refresh  *service.RefreshService
	analysis *service.AnalysisService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(refresh *service.RefreshService, analysis *service.AnalysisService) *AdminHandler {
	return &AdminHandler{refresh: refresh, analysis: analysis}
}

// Load handles POST /api/v1/admin/load. With ?persist=true the records are
// stored before the snapshot is rebuilt from storage.
func (h *AdminHandler) Load(c *gin.Context) {
	var req models.LoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	report, err := h.refresh.Ingest(c.Request.Context(), req, c.Query("persist") == "true")
	if err != nil {
		writeError(c, "load records", err)
		return
	}
	response.Success(c, report)
}

// Refresh handles POST /api/v1/admin/refresh
func (h *AdminHandler) Refresh(c *gin.Context) {
	report, err := h.refresh.Refresh(c.Request.Context())
	if err != nil {
		writeError(c, "refresh snapshot", err)
		return
	}
	response.Success(c, report)
}

// GetSnapshot handles GET /api/v1/admin/snapshot
func (h *AdminHandler) GetSnapshot(c *gin.Context) {
	stored, err := h.refresh.StoredIncidents(c.Request.Context())
	if err != nil {
		writeError(c, "count stored incidents", err)
		return
	}

	data := gin.H{
		"snapshot":         h.analysis.Snapshot(),
		"stored_incidents": stored,
	}
	if last, ok := h.refresh.LastReport(); ok {
		data["last_report"] = last
	}
	response.Success(c, data)
}
