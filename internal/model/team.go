package model

import (
	"time"

	"github.com/google/uuid"
)

// Team is a group of attendees registering together for a team-based event.
// MemberCount mirrors len(Members) and is what the capacity guard updates.
type Team struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EventID      string       `gorm:"type:varchar(128);not null;index" json:"eventId"`
	Name         string       `gorm:"type:varchar(64);not null" json:"name"`
	Code         string       `gorm:"type:char(6);uniqueIndex;not null" json:"code"`
	CreatorEmail string       `gorm:"type:varchar(320);not null" json:"creatorEmail"`
	MemberCount  int          `gorm:"not null;default:0" json:"memberCount"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	Members      []TeamMember `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"members"`
}

func (Team) TableName() string { return "teams" }

// HasMember reports whether email is in the loaded member list.
func (t *Team) HasMember(email string) bool {
	for _, m := range t.Members {
		if m.Email == email {
			return true
		}
	}
	return false
}

// TeamMember is one seat in a team. (EventID, Email) is unique, so a user
// belongs to at most one team per event.
type TeamMember struct {
	ID       uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	TeamID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	EventID  string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_team_members_event_email" json:"-"`
	Email    string    `gorm:"type:varchar(320);not null;uniqueIndex:idx_team_members_event_email" json:"email"`
	JoinedAt time.Time `gorm:"not null" json:"joinedAt"`
}

func (TeamMember) TableName() string { return "team_members" }
