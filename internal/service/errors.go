package service

import "errors"

// Validation errors: rejected before storage is touched.
var (
	ErrInvalidEmail     = errors.New("a valid email address is required")
	ErrInvalidEventID   = errors.New("event id is required")
	ErrInvalidTeamName  = errors.New("team name must be between 1 and 64 characters")
	ErrMalformedCode    = errors.New("team code must be 6 letters or digits")
	ErrMissingToken     = errors.New("admission token is required")
	ErrOperatorRequired = errors.New("operator identity is required")
)

// Not-found errors.
var (
	ErrEventNotFound   = errors.New("event not found")
	ErrInvalidCode     = errors.New("no team matches this code")
	ErrTeamNotFound    = errors.New("team not found")
	ErrNotMember       = errors.New("you are not a member of this team")
	ErrBookingNotFound = errors.New("booking not found")
)

// Conflict errors: legitimate business states the caller can act on.
var (
	ErrDuplicateMembership = errors.New("you already belong to a team for this event")
	ErrAlreadyMember       = errors.New("you are already a member of this team")
	ErrTeamFull            = errors.New("team is full")
	ErrNotCreator          = errors.New("only the team creator can delete the team")
	ErrCreatorCannotLeave  = errors.New("the team creator cannot leave the team, delete it instead")
	ErrNotTeamEvent        = errors.New("this event does not use teams")
	ErrTeamRequired        = errors.New("this event requires a team, create or join one first")
	ErrTeamMismatch        = errors.New("booking team does not match your team")
	ErrTeamTooSmall        = errors.New("team does not have enough members yet")
	ErrBookingNotOwned     = errors.New("booking does not belong to you")
	ErrBookingCancelled    = errors.New("booking has been cancelled")
	ErrTooManyAttempts     = errors.New("too many attempts, try again later")
)

// ErrTransient is returned once bounded retries on generated-key collisions
// are exhausted.
var ErrTransient = errors.New("temporary storage contention, please retry")
