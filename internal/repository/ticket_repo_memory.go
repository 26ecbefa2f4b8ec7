package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"biliticket/admission/internal/model"
)

type memoryTicketRepository struct {
	mu        sync.Mutex
	byBooking map[uuid.UUID]*model.Ticket
	byToken   map[string]*model.Ticket
}

func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{
		byBooking: make(map[uuid.UUID]*model.Ticket),
		byToken:   make(map[string]*model.Ticket),
	}
}

func (r *memoryTicketRepository) CreateIfAbsent(_ context.Context, ticket *model.Ticket) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byBooking[ticket.BookingID]; exists {
		return false, nil
	}
	if _, taken := r.byToken[ticket.Token]; taken {
		return false, ErrDuplicate
	}
	stored := *ticket
	r.byBooking[ticket.BookingID] = &stored
	r.byToken[ticket.Token] = &stored
	return true, nil
}

func (r *memoryTicketRepository) GetByBookingID(_ context.Context, bookingID uuid.UUID) (*model.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byBooking[bookingID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneTicket(t), nil
}

func (r *memoryTicketRepository) GetByToken(_ context.Context, token string) (*model.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byToken[token]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneTicket(t), nil
}

func (r *memoryTicketRepository) MarkScanned(_ context.Context, token string, at time.Time, operator string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byToken[token]
	if !ok || t.ScanRecord.Scanned() {
		return false, nil
	}
	scannedAt := at
	scannedBy := operator
	t.ScanRecord = model.ScanRecord{ScannedAt: &scannedAt, ScannedBy: &scannedBy}
	return true, nil
}

func cloneTicket(t *model.Ticket) *model.Ticket {
	c := *t
	if t.ScanRecord.ScannedAt != nil {
		at := *t.ScanRecord.ScannedAt
		c.ScanRecord.ScannedAt = &at
	}
	if t.ScanRecord.ScannedBy != nil {
		by := *t.ScanRecord.ScannedBy
		c.ScanRecord.ScannedBy = &by
	}
	return &c
}
