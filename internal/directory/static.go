package directory

import (
	"context"
	"strings"

	"biliticket/admission/internal/config"
)

type staticEventCatalog struct {
	events map[string]Event
}

// NewStaticEventCatalog serves events declared in configuration. Team size
// bounds left at zero inherit the configured defaults.
func NewStaticEventCatalog(events []config.EventConfig, defaults config.TeamsConfig) EventCatalog {
	c := &staticEventCatalog{events: make(map[string]Event, len(events))}
	for _, e := range events {
		ev := Event{
			ID:          e.ID,
			Name:        e.Name,
			Venue:       e.Venue,
			StartsAt:    e.StartsAt,
			TeamBased:   e.TeamBased,
			MinTeamSize: e.MinTeamSize,
			MaxTeamSize: e.MaxTeamSize,
		}
		if ev.MinTeamSize <= 0 {
			ev.MinTeamSize = defaults.DefaultMinSize
		}
		if ev.MinTeamSize <= 0 {
			ev.MinTeamSize = 1
		}
		if ev.MaxTeamSize <= 0 {
			ev.MaxTeamSize = defaults.DefaultMaxSize
		}
		if ev.MaxTeamSize < ev.MinTeamSize {
			ev.MaxTeamSize = ev.MinTeamSize
		}
		c.events[e.ID] = ev
	}
	return c
}

func (c *staticEventCatalog) GetEvent(_ context.Context, eventID string) (*Event, error) {
	ev, ok := c.events[eventID]
	if !ok {
		return nil, ErrEventNotFound
	}
	return &ev, nil
}

type staticUserDirectory struct {
	names map[string]string
}

func NewStaticUserDirectory(users []config.UserConfig) UserDirectory {
	d := &staticUserDirectory{names: make(map[string]string, len(users))}
	for _, u := range users {
		d.names[strings.ToLower(strings.TrimSpace(u.Email))] = u.Name
	}
	return d
}

func (d *staticUserDirectory) DisplayName(_ context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if name, ok := d.names[email]; ok && name != "" {
		return name, nil
	}
	local, _, _ := strings.Cut(email, "@")
	return local, nil
}
