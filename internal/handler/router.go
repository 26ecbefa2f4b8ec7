package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"biliticket/admission/internal/config"
	"biliticket/admission/internal/handler/middleware"
	"biliticket/admission/internal/metrics"
	jwtpkg "biliticket/admission/pkg/jwt"
)

// Handlers groups the route handlers mounted by SetupRouter.
type Handlers struct {
	Team    *TeamHandler
	Booking *BookingHandler
	Entry   *EntryHandler
}

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtManager *jwtpkg.Manager,
	m *metrics.Metrics,
	h Handlers,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	var observer middleware.RequestObserver
	if m != nil {
		observer = m
	}
	r.Use(middleware.RequestLogger(logger, observer))
	r.Use(middleware.CORS(cfg.CORS))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	api := r.Group("/api/v1")
	api.Use(middleware.Identity(jwtManager))
	{
		api.POST("/teams", h.Team.Create)
		api.POST("/teams/join", h.Team.Join)
		api.DELETE("/teams/:id", h.Team.Remove)
		api.GET("/teams/mine", h.Team.Mine)

		api.POST("/bookings", h.Booking.Create)
		api.POST("/bookings/cancel", h.Booking.Cancel)
		api.GET("/bookings/mine", h.Booking.Mine)
		api.POST("/bookings/generate-qr", h.Booking.GenerateQR)

		api.POST("/verify-qr",
			middleware.RequireRole(jwtpkg.RoleStaff, jwtpkg.RoleAdmin),
			h.Entry.VerifyQR)
	}

	return r
}
