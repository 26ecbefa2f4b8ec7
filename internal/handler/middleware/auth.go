package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	jwtpkg "biliticket/admission/pkg/jwt"
	"biliticket/admission/pkg/response"
)

const ContextKeyPrincipal = "principal"

// Principal is the caller identity asserted by the identity service.
type Principal struct {
	Email string
	Role  jwtpkg.Role
}

// Identity validates the bearer token and stores the caller's Principal in
// the gin context. Credentials are never checked here; the token is the
// identity service's word.
func Identity(jwtManager *jwtpkg.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization format")
			c.Abort()
			return
		}

		claims, err := jwtManager.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		role := claims.Role
		if role == "" {
			role = jwtpkg.RoleAttendee
		}
		c.Set(ContextKeyPrincipal, &Principal{
			Email: strings.ToLower(strings.TrimSpace(claims.Subject)),
			Role:  role,
		})
		c.Next()
	}
}

// PrincipalFrom returns the Principal stored by Identity.
func PrincipalFrom(c *gin.Context) (*Principal, bool) {
	v, exists := c.Get(ContextKeyPrincipal)
	if !exists {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok
}
