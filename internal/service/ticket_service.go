package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"biliticket/admission/internal/clock"
	"biliticket/admission/internal/model"
	"biliticket/admission/internal/repository"
	"biliticket/admission/pkg/crypto"
)

type TicketService interface {
	// IssueToken returns the booking's admission token, creating it on first
	// use. alreadyExists reports whether the token predates this call.
	IssueToken(ctx context.Context, bookingID uuid.UUID, requesterEmail string) (token string, alreadyExists bool, err error)
	// GetToken returns "" when no token was issued yet.
	GetToken(ctx context.Context, bookingID uuid.UUID) (string, error)
}

type ticketService struct {
	ticketRepo repository.TicketRepository
	bookings   BookingService
	clock      clock.Clock
	logger     *zap.Logger
	newToken   func(c clock.Clock) (string, error)
}

type TicketServiceOption func(*ticketService)

// WithTokenGenerator replaces the random admission token source.
func WithTokenGenerator(gen func(c clock.Clock) (string, error)) TicketServiceOption {
	return func(s *ticketService) {
		if gen != nil {
			s.newToken = gen
		}
	}
}

func NewTicketService(
	ticketRepo repository.TicketRepository,
	bookings BookingService,
	clk clock.Clock,
	logger *zap.Logger,
	opts ...TicketServiceOption,
) TicketService {
	s := &ticketService{
		ticketRepo: ticketRepo,
		bookings:   bookings,
		clock:      clk,
		logger:     logger,
		newToken: func(c clock.Clock) (string, error) {
			return crypto.GenerateAdmissionToken(c.Now())
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ticketService) IssueToken(ctx context.Context, bookingID uuid.UUID, requesterEmail string) (string, bool, error) {
	requesterEmail, err := normalizeEmail(requesterEmail)
	if err != nil {
		return "", false, err
	}
	booking, err := s.bookings.GetBookingByID(ctx, bookingID)
	if err != nil {
		return "", false, err
	}
	if booking.UserEmail != requesterEmail {
		return "", false, ErrBookingNotOwned
	}
	if !booking.IsActive() {
		return "", false, ErrBookingCancelled
	}

	if token, err := s.GetToken(ctx, bookingID); err != nil {
		return "", false, err
	} else if token != "" {
		return token, true, nil
	}

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		token, err := s.newToken(s.clock)
		if err != nil {
			return "", false, err
		}
		ticket := &model.Ticket{
			BookingID: bookingID,
			Token:     token,
			IssuedAt:  s.clock.Now(),
		}

		created, err := s.ticketRepo.CreateIfAbsent(ctx, ticket)
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			s.logger.Warn("admission token collision, regenerating", zap.Int("attempt", attempt+1))
			continue
		case err != nil:
			return "", false, fmt.Errorf("create ticket: %w", err)
		case created:
			s.logger.Info("admission token issued", zap.String("booking_id", bookingID.String()))
			return token, false, nil
		}

		// A concurrent request issued first; converge on its token.
		winner, err := s.GetToken(ctx, bookingID)
		if err != nil {
			return "", false, err
		}
		if winner != "" {
			return winner, true, nil
		}
	}
	return "", false, ErrTransient
}

func (s *ticketService) GetToken(ctx context.Context, bookingID uuid.UUID) (string, error) {
	ticket, err := s.ticketRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("get ticket: %w", err)
	}
	return ticket.Token, nil
}

var _ TicketService = (*ticketService)(nil)
