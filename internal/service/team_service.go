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
	"biliticket/admission/pkg/crypto"
)

type TeamService interface {
	CreateTeam(ctx context.Context, eventID, creatorEmail, name string) (*model.Team, error)
	JoinTeam(ctx context.Context, code, userEmail string) (*model.Team, error)
	LeaveTeam(ctx context.Context, teamID uuid.UUID, userEmail string) error
	DeleteTeam(ctx context.Context, teamID uuid.UUID, requesterEmail string) error
	// GetTeamForUser returns nil, nil when the user is in no team for the event.
	GetTeamForUser(ctx context.Context, eventID, userEmail string) (*model.Team, error)
	GetTeam(ctx context.Context, teamID uuid.UUID) (*model.Team, error)
}

type teamService struct {
	teamRepo    repository.TeamRepository
	events      directory.EventCatalog
	joinLimiter *RateLimiter
	clock       clock.Clock
	logger      *zap.Logger
	newCode     func() (string, error)
}

type TeamServiceOption func(*teamService)

// WithCodeGenerator replaces the random join code source.
func WithCodeGenerator(gen func() (string, error)) TeamServiceOption {
	return func(s *teamService) {
		if gen != nil {
			s.newCode = gen
		}
	}
}

// WithJoinLimiter rate limits join attempts per user to slow down code guessing.
func WithJoinLimiter(l *RateLimiter) TeamServiceOption {
	return func(s *teamService) {
		s.joinLimiter = l
	}
}

func NewTeamService(
	teamRepo repository.TeamRepository,
	events directory.EventCatalog,
	clk clock.Clock,
	logger *zap.Logger,
	opts ...TeamServiceOption,
) TeamService {
	s := &teamService{
		teamRepo: teamRepo,
		events:   events,
		clock:    clk,
		logger:   logger,
		newCode:  crypto.GenerateJoinCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *teamService) CreateTeam(ctx context.Context, eventID, creatorEmail, name string) (*model.Team, error) {
	eventID, err := normalizeEventID(eventID)
	if err != nil {
		return nil, err
	}
	creatorEmail, err = normalizeEmail(creatorEmail)
	if err != nil {
		return nil, err
	}
	name, err = normalizeTeamName(name)
	if err != nil {
		return nil, err
	}

	event, err := s.lookupEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.TeamBased {
		return nil, ErrNotTeamEvent
	}

	// Pre-check for a friendlier error; the unique index is the real guard.
	if _, err := s.teamRepo.GetByMember(ctx, eventID, creatorEmail); err == nil {
		return nil, ErrDuplicateMembership
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check membership: %w", err)
	}

	now := s.clock.Now()
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, err
		}

		team := &model.Team{
			ID:           uuid.New(),
			EventID:      eventID,
			Name:         name,
			Code:         code,
			CreatorEmail: creatorEmail,
			CreatedAt:    now,
			UpdatedAt:    now,
			Members: []model.TeamMember{
				{EventID: eventID, Email: creatorEmail, JoinedAt: now},
			},
		}

		err = s.teamRepo.Create(ctx, team)
		switch {
		case err == nil:
			s.logger.Info("team created",
				zap.String("team_id", team.ID.String()),
				zap.String("event_id", eventID),
				zap.String("creator", creatorEmail))
			return team, nil
		case errors.Is(err, repository.ErrDuplicateCode):
			s.logger.Debug("team code collision, regenerating", zap.Int("attempt", attempt+1))
			continue
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDuplicateMembership
		default:
			return nil, fmt.Errorf("create team: %w", err)
		}
	}
	return nil, ErrTransient
}

func (s *teamService) JoinTeam(ctx context.Context, code, userEmail string) (*model.Team, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	userEmail, err = normalizeEmail(userEmail)
	if err != nil {
		return nil, err
	}
	if err := s.joinLimiter.Allow(ctx, userEmail); err != nil {
		return nil, err
	}

	team, err := s.teamRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("find team by code: %w", err)
	}
	if team.HasMember(userEmail) {
		return nil, ErrAlreadyMember
	}
	if _, err := s.teamRepo.GetByMember(ctx, team.EventID, userEmail); err == nil {
		return nil, ErrDuplicateMembership
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check membership: %w", err)
	}

	event, err := s.lookupEvent(ctx, team.EventID)
	if err != nil {
		return nil, err
	}

	member := &model.TeamMember{EventID: team.EventID, Email: userEmail, JoinedAt: s.clock.Now()}
	err = s.teamRepo.AddMember(ctx, team.ID, member, event.MaxTeamSize)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrCapacityReached):
		return nil, ErrTeamFull
	case errors.Is(err, repository.ErrNotFound):
		// Deleted between lookup and join.
		return nil, ErrInvalidCode
	case errors.Is(err, repository.ErrDuplicate):
		return nil, s.classifyDuplicateJoin(ctx, team, userEmail)
	default:
		return nil, fmt.Errorf("add team member: %w", err)
	}

	s.logger.Info("team joined",
		zap.String("team_id", team.ID.String()),
		zap.String("member", userEmail))

	joined, err := s.teamRepo.GetByID(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("reload team: %w", err)
	}
	return joined, nil
}

// classifyDuplicateJoin tells a concurrent double-join of the same team apart
// from a race with joining another team of the event.
func (s *teamService) classifyDuplicateJoin(ctx context.Context, team *model.Team, userEmail string) error {
	current, err := s.teamRepo.GetByMember(ctx, team.EventID, userEmail)
	if err == nil && current.ID == team.ID {
		return ErrAlreadyMember
	}
	return ErrDuplicateMembership
}

func (s *teamService) LeaveTeam(ctx context.Context, teamID uuid.UUID, userEmail string) error {
	userEmail, err := normalizeEmail(userEmail)
	if err != nil {
		return err
	}
	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team.CreatorEmail == userEmail {
		return ErrCreatorCannotLeave
	}

	if err := s.teamRepo.RemoveMember(ctx, teamID, userEmail, s.clock.Now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotMember
		}
		return fmt.Errorf("remove team member: %w", err)
	}
	s.logger.Info("team left",
		zap.String("team_id", teamID.String()),
		zap.String("member", userEmail))
	return nil
}

func (s *teamService) DeleteTeam(ctx context.Context, teamID uuid.UUID, requesterEmail string) error {
	requesterEmail, err := normalizeEmail(requesterEmail)
	if err != nil {
		return err
	}
	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team.CreatorEmail != requesterEmail {
		return ErrNotCreator
	}

	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("delete team: %w", err)
	}
	s.logger.Info("team deleted",
		zap.String("team_id", teamID.String()),
		zap.Int("members", team.MemberCount))
	return nil
}

func (s *teamService) GetTeamForUser(ctx context.Context, eventID, userEmail string) (*model.Team, error) {
	eventID, err := normalizeEventID(eventID)
	if err != nil {
		return nil, err
	}
	userEmail, err = normalizeEmail(userEmail)
	if err != nil {
		return nil, err
	}
	team, err := s.teamRepo.GetByMember(ctx, eventID, userEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find team for user: %w", err)
	}
	return team, nil
}

func (s *teamService) GetTeam(ctx context.Context, teamID uuid.UUID) (*model.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	return team, nil
}

func (s *teamService) lookupEvent(ctx context.Context, eventID string) (*directory.Event, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, directory.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("lookup event: %w", err)
	}
	return event, nil
}

var _ TeamService = (*teamService)(nil)
