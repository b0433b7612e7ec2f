package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "focusflow/backend/internal/errors"
	"focusflow/backend/internal/middleware"
	"focusflow/backend/internal/service"
)

type InsightsHandler struct {
	insightsService *service.InsightsService
}

func NewInsightsHandler(insightsService *service.InsightsService) *InsightsHandler {
	return &InsightsHandler{insightsService: insightsService}
}

func (h *InsightsHandler) Focus(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(c, apperrors.BadRequest("invalid_days", "days must be between 1 and 30"))
			return
		}
		days = parsed
	}

	insights, apiErr := h.insightsService.Focus(c.Request.Context(), middleware.UserID(c), days)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, insights)
}
