package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"biliticket/admission/internal/model"
)

// TeamRepository stores teams and their members. Every mutating method is a
// single atomic storage operation.
type TeamRepository interface {
	// Create inserts the team together with its initial members. A code
	// collision yields ErrDuplicateCode, a member already in another team of
	// the event yields ErrDuplicate.
	Create(ctx context.Context, team *model.Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Team, error)
	// GetByCode matches the stored uppercase code exactly; callers normalise.
	GetByCode(ctx context.Context, code string) (*model.Team, error)
	GetByMember(ctx context.Context, eventID, email string) (*model.Team, error)
	// AddMember appends member only while the team has fewer than maxSize
	// members, otherwise ErrCapacityReached.
	AddMember(ctx context.Context, teamID uuid.UUID, member *model.TeamMember, maxSize int) error
	// RemoveMember drops email from the team and stamps updated_at with at.
	RemoveMember(ctx context.Context, teamID uuid.UUID, email string, at time.Time) error
	Delete(ctx context.Context, teamID uuid.UUID) error
}
