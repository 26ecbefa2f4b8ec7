package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"biliticket/admission/internal/clock"
	"biliticket/admission/internal/model"
)

func fixedTokens(tokens ...string) func(clock.Clock) (string, error) {
	codes := fixedCodes(tokens...)
	return func(clock.Clock) (string, error) { return codes() }
}

func book(t *testing.T, f *fixture, email string) *model.Booking {
	t.Helper()
	b, err := f.bookingSvc.CreateBooking(context.Background(), "C1", email, nil)
	if err != nil {
		t.Fatalf("CreateBooking(%s): %v", email, err)
	}
	return b
}

func TestTicketService_IssueToken(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent per booking", func(t *testing.T) {
		f := newFixture(t, fixtureOptions{})
		b := book(t, f, "a@example.com")

		if token, err := f.ticketSvc.GetToken(ctx, b.ID); err != nil || token != "" {
			t.Fatalf("expected no token yet, got %q, %v", token, err)
		}

		first, existed, err := f.ticketSvc.IssueToken(ctx, b.ID, "a@example.com")
		if err != nil {
			t.Fatalf("IssueToken: %v", err)
		}
		if existed {
			t.Fatalf("expected alreadyExists=false on first issue")
		}
		second, existed, err := f.ticketSvc.IssueToken(ctx, b.ID, "A@example.com")
		if err != nil {
			t.Fatalf("IssueToken again: %v", err)
		}
		if !existed || second != first {
			t.Fatalf("expected the same token with alreadyExists=true, got %q (%v)", second, existed)
		}
		if got, _ := f.ticketSvc.GetToken(ctx, b.ID); got != first {
			t.Fatalf("GetToken returned %q, expected %q", got, first)
		}
	})

	t.Run("distinct bookings get distinct tokens", func(t *testing.T) {
		f := newFixture(t, fixtureOptions{})
		seen := make(map[string]bool)
		for _, email := range []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com"} {
			b := book(t, f, email)
			token, _, err := f.ticketSvc.IssueToken(ctx, b.ID, email)
			if err != nil {
				t.Fatalf("IssueToken: %v", err)
			}
			if seen[token] {
				t.Fatalf("token %q issued twice", token)
			}
			seen[token] = true
		}
	})

	t.Run("concurrent issue converges", func(t *testing.T) {
		f := newFixture(t, fixtureOptions{})
		b := book(t, f, "a@example.com")

		const n = 16
		tokens := make([]string, n)
		existed := make([]bool, n)
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				tokens[i], existed[i], errs[i] = f.ticketSvc.IssueToken(ctx, b.ID, "a@example.com")
			}(i)
		}
		wg.Wait()

		fresh := 0
		for i := 0; i < n; i++ {
			if errs[i] != nil {
				t.Fatalf("call %d: %v", i, errs[i])
			}
			if tokens[i] != tokens[0] {
				t.Fatalf("call %d got %q, expected %q", i, tokens[i], tokens[0])
			}
			if !existed[i] {
				fresh++
			}
		}
		if fresh != 1 {
			t.Fatalf("expected exactly one fresh issue, got %d", fresh)
		}
	})

	t.Run("ownership and status", func(t *testing.T) {
		f := newFixture(t, fixtureOptions{})
		b := book(t, f, "a@example.com")

		if _, _, err := f.ticketSvc.IssueToken(ctx, b.ID, "mallory@example.com"); !errors.Is(err, ErrBookingNotOwned) {
			t.Fatalf("expected ErrBookingNotOwned, got %v", err)
		}
		if _, _, err := f.ticketSvc.IssueToken(ctx, uuid.New(), "a@example.com"); !errors.Is(err, ErrBookingNotFound) {
			t.Fatalf("expected ErrBookingNotFound, got %v", err)
		}
		if err := f.bookingSvc.CancelBooking(ctx, "C1", "a@example.com"); err != nil {
			t.Fatalf("CancelBooking: %v", err)
		}
		if _, _, err := f.ticketSvc.IssueToken(ctx, b.ID, "a@example.com"); !errors.Is(err, ErrBookingCancelled) {
			t.Fatalf("expected ErrBookingCancelled, got %v", err)
		}
	})

	t.Run("token collision regenerates", func(t *testing.T) {
		f := newFixture(t, fixtureOptions{ticketOpts: []TicketServiceOption{
			WithTokenGenerator(fixedTokens("tok-1", "tok-1", "tok-2")),
		}})
		first := book(t, f, "a@example.com")
		second := book(t, f, "b@example.com")

		t1, _, err := f.ticketSvc.IssueToken(ctx, first.ID, "a@example.com")
		if err != nil {
			t.Fatalf("IssueToken: %v", err)
		}
		t2, existed, err := f.ticketSvc.IssueToken(ctx, second.ID, "b@example.com")
		if err != nil {
			t.Fatalf("IssueToken after collision: %v", err)
		}
		if t1 != "tok-1" || t2 != "tok-2" || existed {
			t.Fatalf("expected tok-1 then fresh tok-2, got %q then %q (existed=%v)", t1, t2, existed)
		}
	})

	t.Run("exhausted collisions are transient", func(t *testing.T) {
		f := newFixture(t, fixtureOptions{ticketOpts: []TicketServiceOption{
			WithTokenGenerator(fixedTokens("same")),
		}})
		first := book(t, f, "a@example.com")
		second := book(t, f, "b@example.com")

		if _, _, err := f.ticketSvc.IssueToken(ctx, first.ID, "a@example.com"); err != nil {
			t.Fatalf("IssueToken: %v", err)
		}
		if _, _, err := f.ticketSvc.IssueToken(ctx, second.ID, "b@example.com"); !errors.Is(err, ErrTransient) {
			t.Fatalf("expected ErrTransient, got %v", err)
		}
		if token, _ := f.ticketSvc.GetToken(ctx, second.ID); token != "" {
			t.Fatalf("expected no token stored, got %q", token)
		}
	})
}
