package handlers

import (
	"campus_parking/internal/gateway"
	"campus_parking/internal/logger"
	"campus_parking/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to services, the remote gateway and logging.
// The gateway is held directly because the login flow talks to it before a
// session exists.
type Handler struct {
	services *service.Service
	gateway  gateway.Gateway
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, gw gateway.Gateway, log *logger.Logger) *Handler {
	return &Handler{services: services, gateway: gw, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Session lifecycle (login → schedule → dashboard → logout)
	h.registerSessionRoutes(router)

	// Admin account endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints
	h.registerAPIRoutes(router)

	// WebSocket board stream (HTTP upgrade) — same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerSessionRoutes(r *gin.Engine) {
	session := r.Group("/session")
	{
		session.POST("/login", h.login)
		session.POST("/schedule", h.schedule)
		session.POST("/logout", h.logout)
	}
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerBoardRoutes(api)
		h.registerAdminRoutes(api)
	}
}

func (h *Handler) registerBoardRoutes(api *gin.RouterGroup) {
	board := api.Group("/board")
	{
		board.GET("", h.getBoard)
		// Query example: ?date=2026-08-31
		board.GET("/spots/:id/slots", h.getSpotSlots)
		board.POST("/spots/:id/reserve", h.reserveSpot)
	}
}

// registerAdminRoutes mounts the operator console endpoints behind the JWT
// middleware.
func (h *Handler) registerAdminRoutes(api *gin.RouterGroup) {
	admin := api.Group("", h.adminIdentity)
	{
		admin.GET("/admin/stats", h.adminStats)
		admin.GET("/logs", h.getLogs)
	}
}
