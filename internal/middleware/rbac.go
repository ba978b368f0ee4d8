package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ojt-records-api/internal/models"
	appErrors "github.com/noah-isme/ojt-records-api/pkg/errors"
	"github.com/noah-isme/ojt-records-api/pkg/response"
	"github.com/noah-isme/ojt-records-api/pkg/security"
)

// RequireRoles admits only callers whose token carries one of roles.
// It must run after JWT.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[string(r)] = struct{}{}
	}
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		claims, ok := value.(*security.Claims)
		if !exists || !ok {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}

		if _, ok := allowed[claims.Role]; !ok {
			response.Abort(c, appErrors.ErrForbidden)
			return
		}
		c.Next()
	}
}
