package database

import (
	"fmt"

	"stagepass/internal/bookings"
	"stagepass/internal/events"
	"stagepass/internal/seats"
	"stagepass/internal/users"
	"stagepass/internal/venues"
)

// Migrate creates or updates the schema for every domain model.
func (d *Database) Migrate() error {
	// uuid_generate_v4 defaults need the extension present
	if err := d.postgres.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid extension: %w", err)
	}

	err := d.postgres.AutoMigrate(
		&users.User{},
		&venues.Venue{},
		&events.Event{},
		&seats.Seat{},
		&bookings.Booking{},
		&bookings.Payment{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
