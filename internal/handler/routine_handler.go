package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"focusflow/backend/internal/middleware"
	"focusflow/backend/internal/service"
)

type RoutineHandler struct {
	routineService *service.RoutineService
}

type generateRequest struct {
	Force bool `json:"force"`
}

func NewRoutineHandler(routineService *service.RoutineService) *RoutineHandler {
	return &RoutineHandler{routineService: routineService}
}

func (h *RoutineHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		writeUnauthorized(c)
		return
	}

	result, apiErr := h.routineService.GetToday(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *RoutineHandler) Generate(c *gin.Context) {
	req, ok := bindGenerateRequest(c)
	if !ok {
		return
	}

	result, apiErr := h.routineService.Generate(c.Request.Context(), middleware.UserID(c), req.Force)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

// bindGenerateRequest accepts an empty body as {"force": false}.
func bindGenerateRequest(c *gin.Context) (generateRequest, bool) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		writeInvalidBody(c)
		return req, false
	}
	return req, true
}
