package handler

import (
	"errors"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/jengzang/venue-risk-backend-go/internal/models"
	"github.com/jengzang/venue-risk-backend-go/pkg/response"
)

// writeError maps service errors onto HTTP statuses: unknown venues are
// 404, other caller mistakes 400, everything else 500.
func writeError(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, models.ErrVenueNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, models.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	default:
		_ = c.Error(err)
		log.WithError(err).WithField("action", action).Error("request failed")
		response.InternalError(c, "Failed to "+action)
	}
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters: "+err.Error())
		return false
	}
	return true
}
