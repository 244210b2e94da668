package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minigolfeveryday/mged-site/internal/common"
)

// RequireAdmin checks that the authenticated user is an admin
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetIsAdmin(c) {
			common.ErrorResponse(c, http.StatusForbidden, "Admin privileges required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
