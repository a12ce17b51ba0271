package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/appointpass/backend-pass/config"
	"github.com/appointpass/backend-pass/models"
	"github.com/appointpass/backend-pass/pass"
)

type PassHandler struct {
	config    *config.Config
	log       *zap.Logger
	assembler *pass.Assembler
}

func NewPassHandler(cfg *config.Config, log *zap.Logger, assembler *pass.Assembler) *PassHandler {
	return &PassHandler{
		config:    cfg,
		log:       log,
		assembler: assembler,
	}
}

// GeneratePass builds a signed pass bundle from the appointment payload and
// responds with the URL it is served from.
func (h *PassHandler) GeneratePass(c *gin.Context) {
	var req models.GeneratePassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	result, err := h.assembler.Generate(&req)
	if err != nil {
		h.log.Error("pass generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to generate pass",
			Details: err.Error(),
		})
		return
	}

	resp := models.GeneratePassResponse{
		Success:             true,
		PassURL:             result.PassURL,
		PassID:              result.Serial,
		AuthenticationToken: result.AuthToken,
		PassTypeIdentifier:  h.config.PassTypeIdentifier,
		SerialNumber:        result.Serial,
		WebServiceURL:       h.config.BaseURL + "/api/v1/passes",
		UpdatedAt:           time.Now().Format(time.RFC3339),
	}
	if result.HasReminder {
		resp.NotificationTime = result.ReminderAt.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}

// GetPass serves a previously generated bundle by file name.
func (h *PassHandler) GetPass(c *gin.Context) {
	file := c.Param("file")
	if file == "" || strings.ContainsAny(file, `/\`) || strings.Contains(file, "..") {
		c.JSON(http.StatusNotFound, models.Response{Success: false, Error: "Pass not found"})
		return
	}

	path := filepath.Join(h.config.OutputDir, file)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, models.Response{Success: false, Error: "Pass not found"})
		return
	}

	c.Header("Content-Type", "application/vnd.apple.pkpass")
	c.File(path)
}
