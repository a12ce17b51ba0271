package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/appointpass/backend-pass/config"
	"github.com/appointpass/backend-pass/logger"
	"github.com/appointpass/backend-pass/middleware"
	"github.com/appointpass/backend-pass/pass"
	"github.com/appointpass/backend-pass/routes"
	"github.com/appointpass/backend-pass/services"
)

const maxBodyBytes = 50 << 20

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg := config.NewConfig()
	zlog := logger.New(cfg.Environment)
	defer zlog.Sync()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	signer, err := services.NewPassSigner(cfg.PassCertPath, cfg.PassCertPassword, cfg.WWDRCertPath)
	if err != nil {
		zlog.Fatal("failed to load signing material", zap.Error(err))
	}

	apns, err := services.NewAPNsClient(cfg)
	if err != nil {
		zlog.Fatal("failed to initialize push client", zap.Error(err))
	}

	assembler, err := pass.NewAssembler(cfg, zlog, services.NewImaging(), signer)
	if err != nil {
		zlog.Fatal("failed to initialize pass assembler", zap.Error(err))
	}

	registry := services.NewSheetWebhookClient(cfg.WebhookURL, cfg.WebhookSecret)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(zlog))
	router.Use(config.CORSMiddleware())
	router.Use(middleware.BodyLimit(maxBodyBytes))

	routes.SetupRoutes(router, cfg, zlog, assembler, registry, apns)

	zlog.Info("server starting", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}
