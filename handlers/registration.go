package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/appointpass/backend-pass/models"
	"github.com/appointpass/backend-pass/services"
)

type RegistrationHandler struct {
	log      *zap.Logger
	registry services.RegistrationRegistry
}

func NewRegistrationHandler(log *zap.Logger, registry services.RegistrationRegistry) *RegistrationHandler {
	return &RegistrationHandler{
		log:      log,
		registry: registry,
	}
}

// Register handles the wallet device-registration callback and forwards the
// normalized record to the registration registry. Auth is checked by the
// ApplePass middleware before this runs.
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req models.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PushToken == "" {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "Missing pushToken",
		})
		return
	}

	reg := models.DeviceRegistration{
		SerialNumber:            c.Param("serialNumber"),
		DeviceLibraryIdentifier: c.Param("deviceLibraryIdentifier"),
		PushToken:               req.PushToken,
	}

	if err := h.registry.RegisterDevice(c.Request.Context(), reg); err != nil {
		var statusErr *services.WebhookStatusError
		if errors.As(err, &statusErr) {
			h.log.Error("registration webhook rejected record",
				zap.Int("status", statusErr.StatusCode),
				zap.String("serial", reg.SerialNumber))
			c.JSON(http.StatusBadGateway, models.Response{
				Success: false,
				Error:   "Registration webhook failed",
			})
			return
		}
		h.log.Error("registration webhook unreachable", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "Failed to register device",
		})
		return
	}

	h.log.Info("device registered",
		zap.String("serial", reg.SerialNumber),
		zap.String("device", reg.DeviceLibraryIdentifier))
	c.Status(http.StatusCreated)
}

// TestPushToken posts a canned record to the registration webhook and echoes
// its status and body. Manual smoke test only.
func (h *RegistrationHandler) TestPushToken(c *gin.Context) {
	status, body, err := h.registry.Ping(c.Request.Context())
	if err != nil {
		h.log.Error("webhook smoke test failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "Webhook unreachable",
		})
		return
	}
	c.Data(status, "application/json", body)
}
