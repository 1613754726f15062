package handlers

import (
	"github.com/encetamasb/TheSpaghettiDetective/internal/logger"
	"github.com/encetamasb/TheSpaghettiDetective/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
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

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Device-facing ingestion endpoint (printer auth token)
	h.registerDeviceRoutes(router)

	// Versioned API endpoints (operator JWT)
	h.registerAPIRoutes(router)

	// WebSocket live view (HTTP upgrade on the same port)
	router.GET("/ws/printers/:id", h.wsPrinterStatus)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerDeviceRoutes(r *gin.Engine) {
	dev := r.Group("/api/v1/device", h.deviceAuthMiddleware)
	{
		// Body: raw agent/moonraker status report
		dev.POST("/report/:format", h.report)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerPrinterRoutes(api)
	}
}

func (h *Handler) registerPrinterRoutes(api *gin.RouterGroup) {
	printers := api.Group("/printers")
	{
		printers.POST("/", h.registerPrinter)
		printers.GET("/:id/status", h.getPrinterStatus)
		printers.GET("/:id/print", h.getCurrentPrint)
		printers.GET("/:id/settings", h.getPrinterSettings)
	}
	prints := api.Group("/prints")
	{
		prints.GET("/:id/events", h.getPrintEvents)
	}
}
