package service

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"biliticket/admission/internal/clock"
	"biliticket/admission/internal/config"
	"biliticket/admission/internal/directory"
	"biliticket/admission/internal/repository"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

var testEvents = []config.EventConfig{
	{ID: "E1", Name: "Campus Hackathon", Venue: "Main Hall", StartsAt: testNow.Add(72 * time.Hour), TeamBased: true, MinTeamSize: 1, MaxTeamSize: 3},
	{ID: "E2", Name: "Robotics Cup", Venue: "Gym", TeamBased: true, MinTeamSize: 2, MaxTeamSize: 4},
	{ID: "C1", Name: "Spring Concert", Venue: "Auditorium", StartsAt: testNow.Add(24 * time.Hour)},
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) RecordVerification(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[string]int)
	}
	r.counts[outcome]++
}

func (r *countingRecorder) count(outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[outcome]
}

type fixture struct {
	clock    *clock.Manual
	teamRepo repository.TeamRepository
	tickets  repository.TicketRepository
	recorder *countingRecorder

	teamSvc    TeamService
	bookingSvc BookingService
	ticketSvc  TicketService
	entrySvc   EntryService
}

type fixtureOptions struct {
	teamOpts   []TeamServiceOption
	ticketOpts []TicketServiceOption
	entryOpts  []EntryServiceOption
}

func newFixture(t *testing.T, opts fixtureOptions) *fixture {
	t.Helper()

	logger := zap.NewNop()
	clk := clock.NewManual(testNow)
	events := directory.NewStaticEventCatalog(testEvents, config.TeamsConfig{DefaultMinSize: 1, DefaultMaxSize: 4})
	users := directory.NewStaticUserDirectory([]config.UserConfig{{Email: "alice@example.com", Name: "Alice Wong"}})

	f := &fixture{
		clock:    clk,
		teamRepo: repository.NewMemoryTeamRepository(),
		tickets:  repository.NewMemoryTicketRepository(),
		recorder: &countingRecorder{},
	}
	f.teamSvc = NewTeamService(f.teamRepo, events, clk, logger, opts.teamOpts...)
	f.bookingSvc = NewBookingService(repository.NewMemoryBookingRepository(), f.teamSvc, events, clk, logger)
	f.ticketSvc = NewTicketService(f.tickets, f.bookingSvc, clk, logger, opts.ticketOpts...)
	entryOpts := append([]EntryServiceOption{WithVerificationRecorder(f.recorder)}, opts.entryOpts...)
	f.entrySvc = NewEntryService(f.tickets, f.bookingSvc, f.teamSvc, events, users, clk, logger, entryOpts...)
	return f
}

// fixedCodes yields codes in order, repeating the last one.
func fixedCodes(codes ...string) func() (string, error) {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		c := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return c, nil
	}
}
