package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "focusflow/backend/internal/errors"
	"focusflow/backend/internal/middleware"
	"focusflow/backend/internal/service"
)

type ActivityHandler struct {
	activityService *service.ActivityService
}

type createActivityRequest struct {
	Activity     string     `json:"activity"`
	CategoryName string     `json:"categoryName"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime"`
}

func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) Create(c *gin.Context) {
	var req createActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidBody(c)
		return
	}

	record, apiErr := h.activityService.Create(c.Request.Context(), middleware.UserID(c), service.CreateActivityInput{
		Activity:     req.Activity,
		CategoryName: req.CategoryName,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"activity": record})
}

func (h *ActivityHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		writeUnauthorized(c)
		return
	}

	from, ok := parseTimeQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseTimeQuery(c, "to")
	if !ok {
		return
	}

	records, apiErr := h.activityService.List(c.Request.Context(), userID, from, to)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": records})
}

func (h *ActivityHandler) Stop(c *gin.Context) {
	record, apiErr := h.activityService.Stop(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": record})
}

func (h *ActivityHandler) Delete(c *gin.Context) {
	if apiErr := h.activityService.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseTimeQuery reads an optional RFC3339 query parameter. It writes the error
// response itself and returns false when the value is malformed.
func parseTimeQuery(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, true
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeError(c, apperrors.BadRequest("invalid_"+key, key+" must be an RFC3339 timestamp"))
		return time.Time{}, false
	}
	return parsed, true
}
