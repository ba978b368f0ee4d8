package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ojt-records-api/internal/middleware"
	"github.com/noah-isme/ojt-records-api/pkg/security"
)

func claimsFromContext(c *gin.Context) *security.Claims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*security.Claims)
	if !ok {
		return nil
	}
	return claims
}
