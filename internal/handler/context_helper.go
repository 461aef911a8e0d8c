package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/perum-adp-api/internal/middleware"
	"github.com/noah-isme/perum-adp-api/internal/models"
)

// claimsFromContext returns the authenticated user stored by the JWT
// middleware, or nil when the request never passed through it.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.JWTClaims)
	return claims
}
