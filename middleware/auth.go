package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/appointpass/backend-pass/models"
)

const applePassScheme = "ApplePass"

// ApplePassAuth validates the wallet callback authorization header, which
// carries the pass's authentication token under the "ApplePass" scheme. The
// request is rejected before the body is read.
func ApplePassAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.Response{
				Success: false,
				Error:   "Authorization required",
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != applePassScheme || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.Response{
				Success: false,
				Error:   "Invalid authorization header format",
			})
			return
		}

		c.Set("authenticationToken", strings.TrimSpace(parts[1]))
		c.Next()
	}
}
