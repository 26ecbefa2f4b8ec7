package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"biliticket/admission/internal/clock"
	"biliticket/admission/internal/directory"
	"biliticket/admission/internal/model"
	"biliticket/admission/internal/repository"
)

type BookingService interface {
	// CreateBooking is idempotent: while an active booking exists for the
	// event and user it is returned unchanged.
	CreateBooking(ctx context.Context, eventID, userEmail string, teamID *uuid.UUID) (*model.Booking, error)
	// CancelBooking is a no-op when there is no active booking.
	CancelBooking(ctx context.Context, eventID, userEmail string) error
	// GetBooking returns nil, nil when the user has no active booking.
	GetBooking(ctx context.Context, eventID, userEmail string) (*model.Booking, error)
	GetBookingByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	teams       TeamService
	events      directory.EventCatalog
	clock       clock.Clock
	logger      *zap.Logger
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	teams TeamService,
	events directory.EventCatalog,
	clk clock.Clock,
	logger *zap.Logger,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		teams:       teams,
		events:      events,
		clock:       clk,
		logger:      logger,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, eventID, userEmail string, teamID *uuid.UUID) (*model.Booking, error) {
	eventID, err := normalizeEventID(eventID)
	if err != nil {
		return nil, err
	}
	userEmail, err = normalizeEmail(userEmail)
	if err != nil {
		return nil, err
	}

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, directory.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("lookup event: %w", err)
	}

	if existing, err := s.findActive(ctx, eventID, userEmail); err != nil || existing != nil {
		return existing, err
	}

	var bookingTeam *uuid.UUID
	if event.TeamBased {
		team, err := s.teams.GetTeamForUser(ctx, eventID, userEmail)
		if err != nil {
			return nil, err
		}
		if team == nil {
			return nil, ErrTeamRequired
		}
		if teamID != nil && *teamID != team.ID {
			return nil, ErrTeamMismatch
		}
		if team.MemberCount < event.MinTeamSize {
			return nil, ErrTeamTooSmall
		}
		id := team.ID
		bookingTeam = &id
	}

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		now := s.clock.Now()
		booking := &model.Booking{
			ID:        uuid.New(),
			EventID:   eventID,
			UserEmail: userEmail,
			TeamID:    bookingTeam,
			// No payment gate: pending moves straight to confirmed.
			Status:    model.BookingStatusConfirmed,
			CreatedAt: now,
			UpdatedAt: now,
		}

		err := s.bookingRepo.Create(ctx, booking)
		if err == nil {
			s.logger.Info("booking confirmed",
				zap.String("booking_id", booking.ID.String()),
				zap.String("event_id", eventID),
				zap.String("user", userEmail))
			return booking, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("create booking: %w", err)
		}

		// Lost the race to a concurrent request: return the winner. If the
		// winner was cancelled in between, try inserting again.
		existing, err := s.findActive(ctx, eventID, userEmail)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}
	return nil, ErrTransient
}

func (s *bookingService) CancelBooking(ctx context.Context, eventID, userEmail string) error {
	eventID, err := normalizeEventID(eventID)
	if err != nil {
		return err
	}
	userEmail, err = normalizeEmail(userEmail)
	if err != nil {
		return err
	}

	err = s.bookingRepo.CancelActive(ctx, eventID, userEmail, s.clock.Now())
	switch {
	case err == nil:
		s.logger.Info("booking cancelled",
			zap.String("event_id", eventID),
			zap.String("user", userEmail))
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("cancel booking: %w", err)
	}
}

func (s *bookingService) GetBooking(ctx context.Context, eventID, userEmail string) (*model.Booking, error) {
	eventID, err := normalizeEventID(eventID)
	if err != nil {
		return nil, err
	}
	userEmail, err = normalizeEmail(userEmail)
	if err != nil {
		return nil, err
	}
	return s.findActive(ctx, eventID, userEmail)
}

func (s *bookingService) GetBookingByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return booking, nil
}

func (s *bookingService) findActive(ctx context.Context, eventID, userEmail string) (*model.Booking, error) {
	booking, err := s.bookingRepo.FindActive(ctx, eventID, userEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return booking, nil
}

var _ BookingService = (*bookingService)(nil)
