package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"biliticket/admission/internal/clock"
	"biliticket/admission/internal/directory"
	"biliticket/admission/internal/model"
	"biliticket/admission/internal/repository"
)

// Verification outcomes as reported to the VerificationRecorder.
const (
	OutcomeFresh     = "fresh"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"
	OutcomeCancelled = "cancelled"
)

// VerificationRecorder observes every verification verdict.
type VerificationRecorder interface {
	RecordVerification(outcome string)
}

// VerificationResult is the verdict shown to the door operator. A duplicate
// scan is still Verified and Genuine; AlreadyScanned flags it for a human
// decision.
type VerificationResult struct {
	Verified       bool            `json:"verified"`
	Genuine        bool            `json:"genuine"`
	AlreadyScanned bool            `json:"alreadyScanned"`
	BookingSummary *BookingSummary `json:"bookingSummary,omitempty"`
}

type BookingSummary struct {
	BookingID     string              `json:"bookingId"`
	Status        model.BookingStatus `json:"status"`
	EventID       string              `json:"eventId"`
	EventName     string              `json:"eventName,omitempty"`
	Venue         string              `json:"venue,omitempty"`
	StartsAt      *time.Time          `json:"startsAt,omitempty"`
	AttendeeEmail string              `json:"attendeeEmail"`
	AttendeeName  string              `json:"attendeeName"`
	TeamName      string              `json:"teamName,omitempty"`
	ScannedAt     *time.Time          `json:"scannedAt,omitempty"`
	ScannedBy     string              `json:"scannedBy,omitempty"`
}

type EntryService interface {
	Verify(ctx context.Context, token, operator string) (*VerificationResult, error)
}

type entryService struct {
	ticketRepo repository.TicketRepository
	bookings   BookingService
	teams      TeamService
	events     directory.EventCatalog
	users      directory.UserDirectory
	limiter    *RateLimiter
	recorder   VerificationRecorder
	clock      clock.Clock
	logger     *zap.Logger
}

type EntryServiceOption func(*entryService)

// WithVerifyLimiter rate limits verifications per operator.
func WithVerifyLimiter(l *RateLimiter) EntryServiceOption {
	return func(s *entryService) {
		s.limiter = l
	}
}

func WithVerificationRecorder(r VerificationRecorder) EntryServiceOption {
	return func(s *entryService) {
		s.recorder = r
	}
}

func NewEntryService(
	ticketRepo repository.TicketRepository,
	bookings BookingService,
	teams TeamService,
	events directory.EventCatalog,
	users directory.UserDirectory,
	clk clock.Clock,
	logger *zap.Logger,
	opts ...EntryServiceOption,
) EntryService {
	s := &entryService{
		ticketRepo: ticketRepo,
		bookings:   bookings,
		teams:      teams,
		events:     events,
		users:      users,
		clock:      clk,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *entryService) Verify(ctx context.Context, token, operator string) (*VerificationResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	operator = strings.ToLower(strings.TrimSpace(operator))
	if operator == "" {
		return nil, ErrOperatorRequired
	}
	if err := s.limiter.Allow(ctx, operator); err != nil {
		return nil, err
	}

	ticket, err := s.ticketRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.record(OutcomeInvalid)
			s.logger.Info("admission token rejected", zap.String("operator", operator))
			return &VerificationResult{}, nil
		}
		return nil, fmt.Errorf("lookup token: %w", err)
	}

	booking, err := s.bookings.GetBookingByID(ctx, ticket.BookingID)
	if err != nil {
		return nil, fmt.Errorf("lookup booking for token: %w", err)
	}

	if !booking.IsActive() {
		s.record(OutcomeCancelled)
		s.logger.Info("admission token for cancelled booking",
			zap.String("booking_id", booking.ID.String()),
			zap.String("operator", operator))
		return &VerificationResult{
			Genuine:        true,
			BookingSummary: s.summarize(ctx, booking, ticket.ScanRecord),
		}, nil
	}

	fresh, err := s.ticketRepo.MarkScanned(ctx, token, s.clock.Now(), operator)
	if err != nil {
		return nil, fmt.Errorf("record scan: %w", err)
	}

	// Re-read so both verdicts report the stored, first scan.
	scanned, err := s.ticketRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("reload ticket: %w", err)
	}

	if fresh {
		s.record(OutcomeFresh)
		s.logger.Info("admission granted",
			zap.String("booking_id", booking.ID.String()),
			zap.String("operator", operator))
	} else {
		s.record(OutcomeDuplicate)
		s.logger.Warn("admission token scanned again",
			zap.String("booking_id", booking.ID.String()),
			zap.String("operator", operator),
			zap.Timep("first_scanned_at", scanned.ScanRecord.ScannedAt))
	}

	return &VerificationResult{
		Verified:       true,
		Genuine:        true,
		AlreadyScanned: !fresh,
		BookingSummary: s.summarize(ctx, booking, scanned.ScanRecord),
	}, nil
}

// summarize joins the booking with its team and the external event and user
// views. Lookup failures leave fields empty rather than failing the scan.
func (s *entryService) summarize(ctx context.Context, booking *model.Booking, scan model.ScanRecord) *BookingSummary {
	summary := &BookingSummary{
		BookingID:     booking.ID.String(),
		Status:        booking.Status,
		EventID:       booking.EventID,
		AttendeeEmail: booking.UserEmail,
		ScannedAt:     scan.ScannedAt,
	}
	if scan.ScannedBy != nil {
		summary.ScannedBy = *scan.ScannedBy
	}

	if event, err := s.events.GetEvent(ctx, booking.EventID); err == nil {
		summary.EventName = event.Name
		summary.Venue = event.Venue
		if !event.StartsAt.IsZero() {
			startsAt := event.StartsAt
			summary.StartsAt = &startsAt
		}
	} else {
		s.logger.Debug("event lookup failed", zap.String("event_id", booking.EventID), zap.Error(err))
	}

	if name, err := s.users.DisplayName(ctx, booking.UserEmail); err == nil {
		summary.AttendeeName = name
	}

	if booking.TeamID != nil {
		if team, err := s.teams.GetTeam(ctx, *booking.TeamID); err == nil {
			summary.TeamName = team.Name
		}
	}
	return summary
}

func (s *entryService) record(outcome string) {
	if s.recorder != nil {
		s.recorder.RecordVerification(outcome)
	}
}

var _ EntryService = (*entryService)(nil)
