package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is one user's claim on one event. At most one non-cancelled booking
// exists per (EventID, UserEmail); see AutoMigrate for the partial index.
type Booking struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EventID   string        `gorm:"type:varchar(128);not null;index" json:"eventId"`
	UserEmail string        `gorm:"type:varchar(320);not null;index" json:"userEmail"`
	TeamID    *uuid.UUID    `gorm:"type:uuid" json:"teamId,omitempty"`
	Status    BookingStatus `gorm:"type:varchar(16);not null" json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (Booking) TableName() string { return "bookings" }

func (b *Booking) IsActive() bool {
	return b.Status != BookingStatusCancelled
}
