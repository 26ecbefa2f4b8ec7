package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"biliticket/admission/internal/model"
)

type memoryBookingRepository struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*model.Booking
	// active indexes the single non-cancelled booking per event and user.
	active map[memberKey]uuid.UUID
}

func NewMemoryBookingRepository() BookingRepository {
	return &memoryBookingRepository{
		bookings: make(map[uuid.UUID]*model.Booking),
		active:   make(map[memberKey]uuid.UUID),
	}
}

func (r *memoryBookingRepository) Create(_ context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := memberKey{booking.EventID, booking.UserEmail}
	if booking.IsActive() {
		if _, taken := r.active[key]; taken {
			return ErrDuplicate
		}
	}
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	stored := *booking
	r.bookings[booking.ID] = &stored
	if booking.IsActive() {
		r.active[key] = booking.ID
	}
	return nil
}

func (r *memoryBookingRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *b
	return &c, nil
}

func (r *memoryBookingRepository) FindActive(_ context.Context, eventID, email string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.active[memberKey{eventID, email}]
	if !ok {
		return nil, ErrNotFound
	}
	c := *r.bookings[id]
	return &c, nil
}

func (r *memoryBookingRepository) CancelActive(_ context.Context, eventID, email string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := memberKey{eventID, email}
	id, ok := r.active[key]
	if !ok {
		return ErrNotFound
	}
	b := r.bookings[id]
	b.Status = model.BookingStatusCancelled
	b.UpdatedAt = at
	delete(r.active, key)
	return nil
}
