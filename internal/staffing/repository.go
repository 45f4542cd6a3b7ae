// Package staffing manages per-event staff placement: which division a user
// works under and whether they are actively assigned (available) for the
// event. The listing staff counts read these tables.
package staffing

import (
	"context"

	"github.com/google/uuid"

	"github.com/crowdpulse/backend/pkg/database"
)

// Repository provides staffing persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates a staffing repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// PlaceInDivision records that a user works under a division for the event.
func (r *Repository) PlaceInDivision(ctx context.Context, eventID, userID, divisionID uuid.UUID) error {
	const q = `INSERT INTO user_incident_divisions (event_id, user_id, incident_division_id)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`
	_, err := r.db.Exec(ctx, q, eventID, userID, divisionID)
	return err
}

// RemoveFromDivision undoes a division placement.
func (r *Repository) RemoveFromDivision(ctx context.Context, eventID, userID, divisionID uuid.UUID) error {
	const q = `DELETE FROM user_incident_divisions
		WHERE event_id = $1 AND user_id = $2 AND incident_division_id = $3`
	_, err := r.db.Exec(ctx, q, eventID, userID, divisionID)
	return err
}

// SetAssignment upserts the user's availability flag for the event. An active
// assignment makes the user count as available staff.
func (r *Repository) SetAssignment(ctx context.Context, eventID, userID uuid.UUID, active bool) error {
	const q = `INSERT INTO event_assignments (event_id, user_id, active)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id, user_id) DO UPDATE SET active = EXCLUDED.active`
	_, err := r.db.Exec(ctx, q, eventID, userID, active)
	return err
}
