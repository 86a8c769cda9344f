package handlers

import (
	"github.com/gin-gonic/gin"

	"stationwatch/internal/logger"
	"stationwatch/internal/service"
)

// Handler wires the HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	auth := router.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}

	// Versioned API endpoints (protected)
	api := router.Group("/api/v1", h.userIdMiddleware)
	{
		poll := api.Group("/poll")
		{
			poll.POST("/run", h.runPoll)
			poll.GET("/last", h.lastRun)
		}
		api.GET("/logs", h.getLogs)
	}

	// Live transition stream (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
