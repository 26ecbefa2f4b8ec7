package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"biliticket/admission/internal/service"
	"biliticket/admission/pkg/response"
)

type EntryHandler struct {
	entryService service.EntryService
	logger       *zap.Logger
}

func NewEntryHandler(entryService service.EntryService, logger *zap.Logger) *EntryHandler {
	return &EntryHandler{entryService: entryService, logger: logger}
}

type VerifyQRRequest struct {
	QRCodeToken string `json:"qrCodeToken" binding:"required"`
}

// VerifyQR checks an admission token at the door. Unknown tokens are a
// normal verdict, not an error.
func (h *EntryHandler) VerifyQR(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req VerifyQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.entryService.Verify(c.Request.Context(), req.QRCodeToken, p.Email)
	if err != nil {
		writeServiceError(c, h.logger, err, "verify qr")
		return
	}
	response.Success(c, result)
}
