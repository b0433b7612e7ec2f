package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"focusflow/backend/internal/handler"
	"focusflow/backend/internal/middleware"
	"focusflow/backend/internal/service"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Activity *handler.ActivityHandler
	Routine  *handler.RoutineHandler
	Summary  *handler.SummaryHandler
	Insights *handler.InsightsHandler
}

func New(authService *service.AuthService, handlers Handlers, corsOrigins []string) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", handlers.Auth.Register)
	auth.POST("/login", handlers.Auth.Login)
	auth.GET("/me", middleware.Auth(authService), handlers.Auth.Me)

	protected := api.Group("")
	protected.Use(middleware.Auth(authService))

	activities := protected.Group("/activities")
	activities.POST("", handlers.Activity.Create)
	activities.GET("", handlers.Activity.List)
	activities.POST("/:id/stop", handlers.Activity.Stop)
	activities.DELETE("/:id", handlers.Activity.Delete)

	protected.GET("/routine", handlers.Routine.Get)
	protected.POST("/routine", handlers.Routine.Generate)

	protected.GET("/summaries/:period", handlers.Summary.Get)
	protected.POST("/summaries/:period", handlers.Summary.Generate)

	protected.GET("/insights/focus", handlers.Insights.Focus)

	return engine
}
