package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration for all models and creates custom indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Team{},
		&TeamMember{},
		&Booking{},
		&Ticket{},
	); err != nil {
		return err
	}

	// One live booking per user per event; cancelled rows do not count.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_event_user_active " +
			"ON bookings (event_id, user_email) WHERE status <> 'cancelled'",
	).Error; err != nil {
		return err
	}

	if err := db.Exec("ALTER TABLE teams DROP CONSTRAINT IF EXISTS chk_teams_member_count").Error; err != nil {
		return err
	}
	return db.Exec("ALTER TABLE teams ADD CONSTRAINT chk_teams_member_count CHECK (member_count >= 0)").Error
}
