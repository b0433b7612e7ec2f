package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "focusflow/backend/internal/errors"
)

type staticParser map[string]string

func (p staticParser) ParseToken(token string) (string, *apperrors.APIError) {
	if userID, ok := p[token]; ok {
		return userID, nil
	}
	return "", apperrors.Unauthorized("invalid token")
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})
	engine.GET("/private", handlers...)
	engine.OPTIONS("/private", handlers...)
	return engine
}

func TestAuthHeaders(t *testing.T) {
	engine := newEngine(Auth(staticParser{"good": "user-1"}))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "valid", header: "Bearer good", status: http.StatusOK, body: "user-1"},
		{name: "lowercase scheme", header: "bearer good", status: http.StatusOK, body: "user-1"},
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", status: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer   ", status: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer bad", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()
			engine.ServeHTTP(recorder, req)

			assert.Equal(t, tt.status, recorder.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, recorder.Body.String())
			} else {
				assert.Contains(t, recorder.Body.String(), `"code":"unauthorized"`)
			}
		})
	}
}

func TestCORSOrigins(t *testing.T) {
	engine := newEngine(CORS([]string{"http://localhost:5173/", " https://app.example.com "}))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	assert.Equal(t, "http://localhost:5173", recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Retry-After", recorder.Header().Get("Access-Control-Expose-Headers"))

	req = httptest.NewRequest(http.MethodOptions, "/private", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	recorder = httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}
