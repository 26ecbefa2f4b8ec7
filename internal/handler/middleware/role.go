package middleware

import (
	"github.com/gin-gonic/gin"

	jwtpkg "biliticket/admission/pkg/jwt"
	"biliticket/admission/pkg/response"
)

// RequireRole admits only principals holding one of roles.
// Must be used after Identity middleware.
func RequireRole(roles ...jwtpkg.Role) gin.HandlerFunc {
	allowed := make(map[jwtpkg.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			response.Unauthorized(c, "missing authentication")
			c.Abort()
			return
		}
		if _, permitted := allowed[p.Role]; !permitted {
			response.Forbidden(c, "staff access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
