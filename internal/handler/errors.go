package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"biliticket/admission/internal/service"
	"biliticket/admission/pkg/response"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrInvalidEmail, http.StatusBadRequest},
	{service.ErrInvalidEventID, http.StatusBadRequest},
	{service.ErrInvalidTeamName, http.StatusBadRequest},
	{service.ErrMalformedCode, http.StatusBadRequest},
	{service.ErrMissingToken, http.StatusBadRequest},
	{service.ErrOperatorRequired, http.StatusBadRequest},
	{service.ErrCreatorCannotLeave, http.StatusBadRequest},

	{service.ErrNotCreator, http.StatusForbidden},
	{service.ErrBookingNotOwned, http.StatusForbidden},

	{service.ErrEventNotFound, http.StatusNotFound},
	{service.ErrInvalidCode, http.StatusNotFound},
	{service.ErrTeamNotFound, http.StatusNotFound},
	{service.ErrNotMember, http.StatusNotFound},
	{service.ErrBookingNotFound, http.StatusNotFound},

	{service.ErrDuplicateMembership, http.StatusConflict},
	{service.ErrAlreadyMember, http.StatusConflict},
	{service.ErrTeamFull, http.StatusConflict},
	{service.ErrNotTeamEvent, http.StatusConflict},
	{service.ErrTeamRequired, http.StatusConflict},
	{service.ErrTeamMismatch, http.StatusConflict},
	{service.ErrTeamTooSmall, http.StatusConflict},
	{service.ErrBookingCancelled, http.StatusConflict},

	{service.ErrTooManyAttempts, http.StatusTooManyRequests},
	{service.ErrTransient, http.StatusServiceUnavailable},
}

// writeServiceError maps a service error onto a status and its stable
// message. Anything unrecognised is logged and reported as a bare 500.
func writeServiceError(c *gin.Context, logger *zap.Logger, err error, op string) {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			response.Error(c, m.status, m.err.Error())
			return
		}
	}
	logger.Error(op+" failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path))
	_ = c.Error(err)
	response.InternalError(c, op+" failed")
}
