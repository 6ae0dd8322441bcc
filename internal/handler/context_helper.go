package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/vqdung71104/student-management-sub000/internal/middleware"
	"github.com/vqdung71104/student-management-sub000/internal/models"
)

// claimsFromContext returns the authenticated student's claims, or nil on
// routes reached without the JWT middleware.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	claims, _ := value.(*models.JWTClaims)
	return claims
}
