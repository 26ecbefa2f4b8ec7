// Package directory exposes read-only views of collaborators the admission
// core does not own: event settings and attendee profiles.
package directory

import (
	"context"
	"errors"
	"time"
)

var ErrEventNotFound = errors.New("event not found")

// Event is the slice of event content the admission core needs.
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Venue       string    `json:"venue"`
	StartsAt    time.Time `json:"starts_at"`
	TeamBased   bool      `json:"team_based"`
	MinTeamSize int       `json:"min_team_size"`
	MaxTeamSize int       `json:"max_team_size"`
}

type EventCatalog interface {
	GetEvent(ctx context.Context, eventID string) (*Event, error)
}

type UserDirectory interface {
	// DisplayName never fails for unknown users; it falls back to a name
	// derived from the address.
	DisplayName(ctx context.Context, email string) (string, error)
}
