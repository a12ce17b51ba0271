package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/appointpass/backend-pass/config"
	"github.com/appointpass/backend-pass/handlers"
	"github.com/appointpass/backend-pass/middleware"
	"github.com/appointpass/backend-pass/models"
	"github.com/appointpass/backend-pass/pass"
	"github.com/appointpass/backend-pass/services"
)

// SetupRoutes wires all handlers. Specific routes are registered before the
// catch-all so they always win over it.
func SetupRoutes(router *gin.Engine, cfg *config.Config, log *zap.Logger, assembler *pass.Assembler, registry services.RegistrationRegistry, sender services.PushSender) {
	passHandler := handlers.NewPassHandler(cfg, log, assembler)
	registrationHandler := handlers.NewRegistrationHandler(log, registry)
	pushHandler := handlers.NewPushHandler(log, sender)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Server is running",
		})
	})

	router.POST("/generate-pass", passHandler.GeneratePass)
	router.GET("/passes/:file", passHandler.GetPass)
	router.GET("/test-push-token", registrationHandler.TestPushToken)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/passes/v1/devices/:deviceLibraryIdentifier/registrations/:passTypeIdentifier/:serialNumber",
			middleware.ApplePassAuth(), registrationHandler.Register)
		v1.POST("/push-update", pushHandler.PushUpdate)
	}

	router.NoRoute(func(c *gin.Context) {
		log.Info("unmatched route",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusNotFound, models.Response{
			Success: false,
			Error:   "Not found",
		})
	})
}
