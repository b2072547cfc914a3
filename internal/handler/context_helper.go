package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-lesson-grid-api/internal/middleware"
	"github.com/noah-isme/sma-lesson-grid-api/internal/models"
)

// actorID returns the authenticated user id, or "" on unauthenticated routes.
func actorID(c *gin.Context) string {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return ""
	}
	if claims, ok := value.(*models.JWTClaims); ok && claims != nil {
		return claims.UserID
	}
	return ""
}
