package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"biliticket/admission/internal/service"
	"biliticket/admission/pkg/response"
)

type BookingHandler struct {
	bookingService service.BookingService
	ticketService  service.TicketService
	logger         *zap.Logger
}

func NewBookingHandler(bookingService service.BookingService, ticketService service.TicketService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		ticketService:  ticketService,
		logger:         logger,
	}
}

type CreateBookingRequest struct {
	EventID string `json:"eventId" binding:"required"`
	TeamID  string `json:"teamId"`
}

type CancelBookingRequest struct {
	EventID string `json:"eventId" binding:"required"`
}

type GenerateQRRequest struct {
	BookingID string `json:"bookingId" binding:"required"`
}

type GenerateQRResponse struct {
	QRCodeToken   string `json:"qrCodeToken"`
	AlreadyExists bool   `json:"alreadyExists"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	var teamID *uuid.UUID
	if req.TeamID != "" {
		id, err := uuid.Parse(req.TeamID)
		if err != nil {
			response.BadRequest(c, "invalid team id")
			return
		}
		teamID = &id
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), req.EventID, p.Email, teamID)
	if err != nil {
		writeServiceError(c, h.logger, err, "create booking")
		return
	}
	response.Success(c, booking)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.bookingService.CancelBooking(c.Request.Context(), req.EventID, p.Email); err != nil {
		writeServiceError(c, h.logger, err, "cancel booking")
		return
	}
	response.Success(c, nil)
}

// Mine returns the caller's active booking for an event, or null.
func (h *BookingHandler) Mine(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), c.Query("eventId"), p.Email)
	if err != nil {
		writeServiceError(c, h.logger, err, "get booking")
		return
	}
	if booking == nil {
		response.Success(c, nil)
		return
	}
	response.Success(c, booking)
}

func (h *BookingHandler) GenerateQR(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req GenerateQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}

	token, existed, err := h.ticketService.IssueToken(c.Request.Context(), bookingID, p.Email)
	if err != nil {
		writeServiceError(c, h.logger, err, "generate qr")
		return
	}
	response.Success(c, GenerateQRResponse{QRCodeToken: token, AlreadyExists: existed})
}
