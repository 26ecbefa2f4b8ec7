package model

import (
	"time"

	"github.com/google/uuid"
)

// ScanRecord is the entry audit state of a ticket. Once ScannedAt is set it
// is never overwritten.
type ScanRecord struct {
	ScannedAt *time.Time `json:"scannedAt,omitempty"`
	ScannedBy *string    `gorm:"type:varchar(320)" json:"scannedBy,omitempty"`
}

func (s ScanRecord) Scanned() bool { return s.ScannedAt != nil }

// Ticket maps an admission token to exactly one booking.
type Ticket struct {
	BookingID  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"bookingId"`
	Token      string     `gorm:"type:varchar(128);uniqueIndex;not null" json:"token"`
	IssuedAt   time.Time  `gorm:"not null" json:"issuedAt"`
	ScanRecord ScanRecord `gorm:"embedded" json:"scan"`
}

func (Ticket) TableName() string { return "tickets" }
