package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"focusflow/backend/internal/middleware"
	"focusflow/backend/internal/service"
)

type SummaryHandler struct {
	summaryService *service.SummaryService
}

func NewSummaryHandler(summaryService *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

func (h *SummaryHandler) Get(c *gin.Context) {
	result, apiErr := h.summaryService.GetToday(c.Request.Context(), middleware.UserID(c), c.Param("period"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SummaryHandler) Generate(c *gin.Context) {
	req, ok := bindGenerateRequest(c)
	if !ok {
		return
	}

	result, apiErr := h.summaryService.Generate(c.Request.Context(), middleware.UserID(c), c.Param("period"), req.Force)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, result)
}
