package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"biliticket/admission/internal/model"
)

type BookingRepository interface {
	// Create inserts a booking; ErrDuplicate when an active booking for the
	// same event and user already exists.
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	FindActive(ctx context.Context, eventID, email string) (*model.Booking, error)
	// CancelActive moves the active booking to cancelled; ErrNotFound when
	// there is none.
	CancelActive(ctx context.Context, eventID, email string, at time.Time) error
}
