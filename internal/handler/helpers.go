package handler

import (
	"github.com/gin-gonic/gin"

	"biliticket/admission/internal/handler/middleware"
	"biliticket/admission/pkg/response"
)

// principal returns the authenticated caller, writing a 401 when absent.
func principal(c *gin.Context) (*middleware.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok || p.Email == "" {
		response.Unauthorized(c, "invalid user context")
		return nil, false
	}
	return p, true
}
