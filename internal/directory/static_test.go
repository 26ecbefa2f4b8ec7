package directory

import (
	"context"
	"errors"
	"testing"

	"biliticket/admission/internal/config"
)

func TestStaticEventCatalog(t *testing.T) {
	ctx := context.Background()
	catalog := NewStaticEventCatalog([]config.EventConfig{
		{ID: "E1", Name: "Hackathon", TeamBased: true, MinTeamSize: 2, MaxTeamSize: 3},
		{ID: "E2", Name: "Defaults", TeamBased: true},
		{ID: "E3", Name: "Inverted", TeamBased: true, MinTeamSize: 5, MaxTeamSize: 2},
	}, config.TeamsConfig{DefaultMinSize: 1, DefaultMaxSize: 4})

	tests := []struct {
		id       string
		min, max int
	}{
		{"E1", 2, 3},
		{"E2", 1, 4},
		{"E3", 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			ev, err := catalog.GetEvent(ctx, tt.id)
			if err != nil {
				t.Fatalf("GetEvent: %v", err)
			}
			if ev.MinTeamSize != tt.min || ev.MaxTeamSize != tt.max {
				t.Fatalf("expected bounds [%d,%d], got [%d,%d]", tt.min, tt.max, ev.MinTeamSize, ev.MaxTeamSize)
			}
		})
	}

	if _, err := catalog.GetEvent(ctx, "missing"); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestStaticUserDirectory(t *testing.T) {
	ctx := context.Background()
	users := NewStaticUserDirectory([]config.UserConfig{
		{Email: " Alice@Example.com ", Name: "Alice Wong"},
		{Email: "nameless@example.com"},
	})

	tests := []struct {
		email string
		want  string
	}{
		{"alice@example.com", "Alice Wong"},
		{"ALICE@example.com", "Alice Wong"},
		{"nameless@example.com", "nameless"},
		{"carol@example.com", "carol"},
	}
	for _, tt := range tests {
		got, err := users.DisplayName(ctx, tt.email)
		if err != nil {
			t.Fatalf("DisplayName(%s): %v", tt.email, err)
		}
		if got != tt.want {
			t.Fatalf("DisplayName(%s) = %q, want %q", tt.email, got, tt.want)
		}
	}
}
