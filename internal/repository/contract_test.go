package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"biliticket/admission/internal/model"
	"biliticket/admission/internal/testutil"
)

var repoNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type repos struct {
	teams    TeamRepository
	bookings BookingRepository
	tickets  TicketRepository
}

// eachBackend runs fn against the in-memory store and, when reachable, Postgres.
func eachBackend(t *testing.T, fn func(t *testing.T, r repos)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, repos{
			teams:    NewMemoryTeamRepository(),
			bookings: NewMemoryBookingRepository(),
			tickets:  NewMemoryTicketRepository(),
		})
	})
	t.Run("postgres", func(t *testing.T) {
		db := testutil.NewTestDB(t)
		fn(t, repos{
			teams:    NewPGTeamRepository(db),
			bookings: NewPGBookingRepository(db),
			tickets:  NewPGTicketRepository(db),
		})
	})
}

func newTeam(eventID, code, creator string) *model.Team {
	return &model.Team{
		ID:           uuid.New(),
		EventID:      eventID,
		Name:         "Team " + code,
		Code:         code,
		CreatorEmail: creator,
		CreatedAt:    repoNow,
		UpdatedAt:    repoNow,
		Members:      []model.TeamMember{{EventID: eventID, Email: creator, JoinedAt: repoNow}},
	}
}

func TestTeamRepository(t *testing.T) {
	ctx := context.Background()

	eachBackend(t, func(t *testing.T, r repos) {
		team := newTeam("E1", "ABC123", "a@example.com")
		if err := r.teams.Create(ctx, team); err != nil {
			t.Fatalf("Create: %v", err)
		}

		t.Run("lookups", func(t *testing.T) {
			byCode, err := r.teams.GetByCode(ctx, "ABC123")
			if err != nil {
				t.Fatalf("GetByCode: %v", err)
			}
			if byCode.ID != team.ID || byCode.MemberCount != 1 || len(byCode.Members) != 1 {
				t.Fatalf("unexpected team: %+v", byCode)
			}
			byMember, err := r.teams.GetByMember(ctx, "E1", "a@example.com")
			if err != nil || byMember.ID != team.ID {
				t.Fatalf("GetByMember: %v, %+v", err, byMember)
			}
			if _, err := r.teams.GetByMember(ctx, "E2", "a@example.com"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound for other event, got %v", err)
			}
			if _, err := r.teams.GetByID(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})

		t.Run("duplicate code", func(t *testing.T) {
			err := r.teams.Create(ctx, newTeam("E1", "ABC123", "z@example.com"))
			if !errors.Is(err, ErrDuplicateCode) {
				t.Fatalf("expected ErrDuplicateCode, got %v", err)
			}
		})

		t.Run("duplicate membership on create", func(t *testing.T) {
			err := r.teams.Create(ctx, newTeam("E1", "QWE123", "a@example.com"))
			if !errors.Is(err, ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate, got %v", err)
			}
			if _, err := r.teams.GetByCode(ctx, "QWE123"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("failed create must not persist the team, got %v", err)
			}
		})

		t.Run("add member respects capacity", func(t *testing.T) {
			add := func(email string) error {
				return r.teams.AddMember(ctx, team.ID, &model.TeamMember{EventID: "E1", Email: email, JoinedAt: repoNow}, 2)
			}
			if err := add("b@example.com"); err != nil {
				t.Fatalf("AddMember: %v", err)
			}
			if err := add("c@example.com"); !errors.Is(err, ErrCapacityReached) {
				t.Fatalf("expected ErrCapacityReached, got %v", err)
			}
			err := r.teams.AddMember(ctx, uuid.New(), &model.TeamMember{EventID: "E1", Email: "c@example.com", JoinedAt: repoNow}, 5)
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound for missing team, got %v", err)
			}
		})

		t.Run("remove member", func(t *testing.T) {
			leftAt := repoNow.Add(90 * time.Minute)
			if err := r.teams.RemoveMember(ctx, team.ID, "b@example.com", leftAt); err != nil {
				t.Fatalf("RemoveMember: %v", err)
			}
			if err := r.teams.RemoveMember(ctx, team.ID, "b@example.com", leftAt); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			got, err := r.teams.GetByID(ctx, team.ID)
			if err != nil {
				t.Fatalf("GetByID: %v", err)
			}
			if got.MemberCount != 1 || got.HasMember("b@example.com") {
				t.Fatalf("expected b removed, got %+v", got)
			}
			if !got.UpdatedAt.Equal(leftAt) {
				t.Fatalf("expected updated_at %v, got %v", leftAt, got.UpdatedAt)
			}
		})

		t.Run("delete", func(t *testing.T) {
			if err := r.teams.Delete(ctx, team.ID); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := r.teams.GetByMember(ctx, "E1", "a@example.com"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected membership gone, got %v", err)
			}
			if err := r.teams.Delete(ctx, team.ID); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	})
}

func TestTeamRepository_ConcurrentAddMember(t *testing.T) {
	ctx := context.Background()

	eachBackend(t, func(t *testing.T, r repos) {
		team := newTeam("E9", "RACE99", "owner@example.com")
		if err := r.teams.Create(ctx, team); err != nil {
			t.Fatalf("Create: %v", err)
		}

		const maxSize, joiners = 3, 8
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			ok, full int
		)
		for i := 0; i < joiners; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				member := &model.TeamMember{EventID: "E9", Email: fmt.Sprintf("u%d@example.com", i), JoinedAt: repoNow}
				err := r.teams.AddMember(ctx, team.ID, member, maxSize)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case errors.Is(err, ErrCapacityReached):
					full++
				default:
					t.Errorf("AddMember: %v", err)
				}
			}(i)
		}
		wg.Wait()

		if ok != maxSize-1 || full != joiners-(maxSize-1) {
			t.Fatalf("expected %d adds, got %d adds and %d full", maxSize-1, ok, full)
		}
		got, err := r.teams.GetByID(ctx, team.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.MemberCount != maxSize || len(got.Members) != maxSize {
			t.Fatalf("expected %d members, got count=%d len=%d", maxSize, got.MemberCount, len(got.Members))
		}
	})
}

func TestBookingRepository(t *testing.T) {
	ctx := context.Background()

	eachBackend(t, func(t *testing.T, r repos) {
		newBooking := func() *model.Booking {
			return &model.Booking{
				ID:        uuid.New(),
				EventID:   "C1",
				UserEmail: "a@example.com",
				Status:    model.BookingStatusConfirmed,
				CreatedAt: repoNow,
				UpdatedAt: repoNow,
			}
		}

		first := newBooking()
		if err := r.bookings.Create(ctx, first); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := r.bookings.Create(ctx, newBooking()); !errors.Is(err, ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate for second active booking, got %v", err)
		}

		active, err := r.bookings.FindActive(ctx, "C1", "a@example.com")
		if err != nil || active.ID != first.ID {
			t.Fatalf("FindActive: %v, %+v", err, active)
		}

		if err := r.bookings.CancelActive(ctx, "C1", "a@example.com", repoNow.Add(time.Hour)); err != nil {
			t.Fatalf("CancelActive: %v", err)
		}
		if err := r.bookings.CancelActive(ctx, "C1", "a@example.com", repoNow); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second cancel, got %v", err)
		}
		if _, err := r.bookings.FindActive(ctx, "C1", "a@example.com"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected no active booking, got %v", err)
		}

		cancelled, err := r.bookings.GetByID(ctx, first.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if cancelled.Status != model.BookingStatusCancelled {
			t.Fatalf("expected cancelled, got %s", cancelled.Status)
		}

		if err := r.bookings.Create(ctx, newBooking()); err != nil {
			t.Fatalf("rebooking after cancel: %v", err)
		}
	})
}

func TestTicketRepository(t *testing.T) {
	ctx := context.Background()

	eachBackend(t, func(t *testing.T, r repos) {
		bookingID := uuid.New()
		ticket := &model.Ticket{BookingID: bookingID, Token: "tok-a", IssuedAt: repoNow}

		created, err := r.tickets.CreateIfAbsent(ctx, ticket)
		if err != nil || !created {
			t.Fatalf("CreateIfAbsent: created=%v err=%v", created, err)
		}

		t.Run("second insert for booking is a no-op", func(t *testing.T) {
			created, err := r.tickets.CreateIfAbsent(ctx, &model.Ticket{BookingID: bookingID, Token: "tok-b", IssuedAt: repoNow})
			if err != nil || created {
				t.Fatalf("expected no-op, got created=%v err=%v", created, err)
			}
			got, err := r.tickets.GetByBookingID(ctx, bookingID)
			if err != nil || got.Token != "tok-a" {
				t.Fatalf("expected original token, got %+v, %v", got, err)
			}
		})

		t.Run("token collision", func(t *testing.T) {
			_, err := r.tickets.CreateIfAbsent(ctx, &model.Ticket{BookingID: uuid.New(), Token: "tok-a", IssuedAt: repoNow})
			if !errors.Is(err, ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate, got %v", err)
			}
		})

		t.Run("scan is recorded once", func(t *testing.T) {
			fresh, err := r.tickets.MarkScanned(ctx, "tok-a", repoNow, "door1")
			if err != nil || !fresh {
				t.Fatalf("first MarkScanned: fresh=%v err=%v", fresh, err)
			}
			fresh, err = r.tickets.MarkScanned(ctx, "tok-a", repoNow.Add(time.Minute), "door2")
			if err != nil || fresh {
				t.Fatalf("second MarkScanned: fresh=%v err=%v", fresh, err)
			}
			got, err := r.tickets.GetByToken(ctx, "tok-a")
			if err != nil {
				t.Fatalf("GetByToken: %v", err)
			}
			if !got.ScanRecord.ScannedAt.Equal(repoNow) || *got.ScanRecord.ScannedBy != "door1" {
				t.Fatalf("scan record changed: %v by %v", got.ScanRecord.ScannedAt, *got.ScanRecord.ScannedBy)
			}
		})

		t.Run("unknown token", func(t *testing.T) {
			if _, err := r.tickets.GetByToken(ctx, "nope"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			fresh, err := r.tickets.MarkScanned(ctx, "nope", repoNow, "door1")
			if err != nil || fresh {
				t.Fatalf("expected no-op scan, got fresh=%v err=%v", fresh, err)
			}
		})
	})
}

func TestTicketRepository_ConcurrentScan(t *testing.T) {
	ctx := context.Background()

	eachBackend(t, func(t *testing.T, r repos) {
		if _, err := r.tickets.CreateIfAbsent(ctx, &model.Ticket{BookingID: uuid.New(), Token: "tok-race", IssuedAt: repoNow}); err != nil {
			t.Fatalf("CreateIfAbsent: %v", err)
		}

		const scanners = 12
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			fresh int
		)
		for i := 0; i < scanners; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ok, err := r.tickets.MarkScanned(ctx, "tok-race", repoNow, fmt.Sprintf("door%d", i))
				if err != nil {
					t.Errorf("MarkScanned: %v", err)
					return
				}
				if ok {
					mu.Lock()
					fresh++
					mu.Unlock()
				}
			}(i)
		}
		wg.Wait()

		if fresh != 1 {
			t.Fatalf("expected exactly one fresh scan, got %d", fresh)
		}
	})
}
