package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"biliticket/admission/internal/model"
)

type TicketRepository interface {
	// CreateIfAbsent inserts the ticket unless its booking already has one.
	// created is false when another ticket won; a token collision with a
	// different booking yields ErrDuplicate.
	CreateIfAbsent(ctx context.Context, ticket *model.Ticket) (created bool, err error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Ticket, error)
	GetByToken(ctx context.Context, token string) (*model.Ticket, error)
	// MarkScanned records the scan only if the ticket was never scanned.
	// fresh is false when an earlier scan is already recorded.
	MarkScanned(ctx context.Context, token string, at time.Time, operator string) (fresh bool, err error)
}
