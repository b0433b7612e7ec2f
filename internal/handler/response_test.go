package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "focusflow/backend/internal/errors"
)

func TestWriteErrorRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	writeError(c, apperrors.TooManyRequests("rate_limited", "slow down", 90*time.Second+time.Millisecond))

	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	assert.Equal(t, "91", recorder.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":{"code":"rate_limited","message":"slow down","details":{"retryAfterSeconds":91}}}`, recorder.Body.String())

	recorder = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(recorder)
	writeError(c, apperrors.NotFound("activity_not_found", "activity not found"))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Empty(t, recorder.Header().Get("Retry-After"))
}
