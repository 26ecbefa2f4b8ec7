package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"biliticket/admission/internal/model"
)

type memberKey struct {
	eventID string
	email   string
}

// memoryTeamRepository keeps teams in process. Each method runs under one
// mutex, so the conditional writes are as atomic as their SQL counterparts.
type memoryTeamRepository struct {
	mu      sync.Mutex
	teams   map[uuid.UUID]*model.Team
	codes   map[string]uuid.UUID
	members map[memberKey]uuid.UUID
}

func NewMemoryTeamRepository() TeamRepository {
	return &memoryTeamRepository{
		teams:   make(map[uuid.UUID]*model.Team),
		codes:   make(map[string]uuid.UUID),
		members: make(map[memberKey]uuid.UUID),
	}
}

func (r *memoryTeamRepository) Create(_ context.Context, team *model.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.codes[team.Code]; taken {
		return ErrDuplicateCode
	}
	for _, m := range team.Members {
		if _, taken := r.members[memberKey{team.EventID, m.Email}]; taken {
			return ErrDuplicate
		}
	}

	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}
	team.MemberCount = len(team.Members)
	for i := range team.Members {
		team.Members[i].TeamID = team.ID
		team.Members[i].EventID = team.EventID
		r.members[memberKey{team.EventID, team.Members[i].Email}] = team.ID
	}
	r.codes[team.Code] = team.ID
	r.teams[team.ID] = cloneTeam(team)
	return nil
}

func (r *memoryTeamRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *memoryTeamRepository) GetByCode(_ context.Context, code string) (*model.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.codes[code]
	if !ok {
		return nil, ErrNotFound
	}
	return r.get(id)
}

func (r *memoryTeamRepository) GetByMember(_ context.Context, eventID, email string) (*model.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.members[memberKey{eventID, email}]
	if !ok {
		return nil, ErrNotFound
	}
	return r.get(id)
}

func (r *memoryTeamRepository) AddMember(_ context.Context, teamID uuid.UUID, member *model.TeamMember, maxSize int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	team, ok := r.teams[teamID]
	if !ok {
		return ErrNotFound
	}
	if team.MemberCount >= maxSize {
		return ErrCapacityReached
	}
	key := memberKey{team.EventID, member.Email}
	if _, taken := r.members[key]; taken {
		return ErrDuplicate
	}

	member.TeamID = teamID
	member.EventID = team.EventID
	team.Members = append(team.Members, *member)
	team.MemberCount++
	team.UpdatedAt = member.JoinedAt
	r.members[key] = teamID
	return nil
}

func (r *memoryTeamRepository) RemoveMember(_ context.Context, teamID uuid.UUID, email string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	team, ok := r.teams[teamID]
	if !ok {
		return ErrNotFound
	}
	for i, m := range team.Members {
		if m.Email != email {
			continue
		}
		team.Members = append(team.Members[:i], team.Members[i+1:]...)
		team.MemberCount--
		team.UpdatedAt = at
		delete(r.members, memberKey{team.EventID, email})
		return nil
	}
	return ErrNotFound
}

func (r *memoryTeamRepository) Delete(_ context.Context, teamID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	team, ok := r.teams[teamID]
	if !ok {
		return ErrNotFound
	}
	for _, m := range team.Members {
		delete(r.members, memberKey{team.EventID, m.Email})
	}
	delete(r.codes, team.Code)
	delete(r.teams, teamID)
	return nil
}

func (r *memoryTeamRepository) get(id uuid.UUID) (*model.Team, error) {
	team, ok := r.teams[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneTeam(team), nil
}

func cloneTeam(t *model.Team) *model.Team {
	c := *t
	c.Members = append([]model.TeamMember(nil), t.Members...)
	return &c
}
