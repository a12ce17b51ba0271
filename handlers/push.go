package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/appointpass/backend-pass/models"
	"github.com/appointpass/backend-pass/services"
)

type PushHandler struct {
	log    *zap.Logger
	sender services.PushSender
}

func NewPushHandler(log *zap.Logger, sender services.PushSender) *PushHandler {
	return &PushHandler{
		log:    log,
		sender: sender,
	}
}

// PushUpdate asks the push gateway to notify one device that its pass
// changed.
func (h *PushHandler) PushUpdate(c *gin.Context) {
	var req models.PushUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Error:   "Missing pushToken",
		})
		return
	}

	if err := h.sender.Push(c.Request.Context(), req.PushToken); err != nil {
		var statusErr *services.GatewayStatusError
		if errors.As(err, &statusErr) {
			h.log.Error("push gateway rejected request",
				zap.Int("status", statusErr.StatusCode))
			c.JSON(http.StatusBadGateway, models.Response{
				Success: false,
				Error:   "Push gateway failed",
			})
			return
		}
		h.log.Error("push delivery failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "Failed to send push",
		})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true})
}
