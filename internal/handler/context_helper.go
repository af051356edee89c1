package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/coronacion-creator/colegio-api/internal/middleware"
	"github.com/coronacion-creator/colegio-api/internal/models"
)

// claimsFromContext returns the authenticated user's token claims, or nil
// on public routes where the JWT middleware did not run.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	if value, ok := c.Get(middleware.ContextUserKey); ok {
		if claims, ok := value.(*models.JWTClaims); ok {
			return claims
		}
	}
	return nil
}
