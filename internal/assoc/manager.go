// Package assoc manages links between events and the taxonomy entities
// (incident divisions, incident types, departments). Every mutating operation
// runs inside a single transaction and is idempotent with respect to
// duplicate link requests.
package assoc

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/crowdpulse/backend/pkg/apperrors"
	"github.com/crowdpulse/backend/pkg/database"
)

// Manager performs association CRUD for all three entity kinds.
type Manager struct {
	db     database.DB
	logger *zap.Logger
}

// NewManager creates an association manager.
func NewManager(db database.DB, logger *zap.Logger) *Manager {
	return &Manager{db: db, logger: logger}
}

// UnlinkResult reports which of the requested entities were unlinked and
// which were kept because live incidents still reference them.
type UnlinkResult struct {
	Removed  []uuid.UUID `json:"removed"`
	Retained []uuid.UUID `json:"retained"`
}

// Partial reports whether some requested entities could not be unlinked.
func (r UnlinkResult) Partial() bool {
	return len(r.Retained) > 0
}

// Link attaches the given entities to the event. Already-linked entities are
// skipped silently; the returned slice contains only the newly created links.
func (m *Manager) Link(ctx context.Context, kind Kind, eventID uuid.UUID, entityIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(entityIDs) == 0 {
		return nil, nil
	}
	q := fmt.Sprintf(`INSERT INTO %s (event_id, %s)
		SELECT $1, entity_id FROM unnest($2::uuid[]) AS entity_id
		ON CONFLICT DO NOTHING
		RETURNING %s`, kind.AssocTable(), kind.AssocColumn(), kind.AssocColumn())

	var created []uuid.UUID
	err := database.WithinTx(ctx, m.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, q, eventID, entityIDs)
		if err != nil {
			return fmt.Errorf("link %s: %w", kind, err)
		}
		created, err = scanIDs(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Unlink detaches the given entities from the event, except those still
// referenced by live incidents of the event, which are retained. Entities
// that were never linked count as removed no-ops and are not reported.
func (m *Manager) Unlink(ctx context.Context, kind Kind, eventID uuid.UUID, entityIDs []uuid.UUID) (UnlinkResult, error) {
	result := UnlinkResult{Removed: []uuid.UUID{}, Retained: []uuid.UUID{}}
	if len(entityIDs) == 0 {
		return result, nil
	}
	deleteQ := fmt.Sprintf(`DELETE FROM %s WHERE event_id = $1 AND %s = ANY($2::uuid[])`,
		kind.AssocTable(), kind.AssocColumn())

	err := database.WithinTx(ctx, m.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, kind.referencedInEventSQL(), eventID, entityIDs)
		if err != nil {
			return fmt.Errorf("unlink %s: referenced lookup: %w", kind, err)
		}
		retained, err := scanIDs(rows)
		if err != nil {
			return err
		}
		retainedSet := make(map[uuid.UUID]struct{}, len(retained))
		for _, id := range retained {
			retainedSet[id] = struct{}{}
		}

		removable := make([]uuid.UUID, 0, len(entityIDs))
		for _, id := range entityIDs {
			if _, ok := retainedSet[id]; ok {
				result.Retained = append(result.Retained, id)
				continue
			}
			removable = append(removable, id)
		}
		if len(removable) > 0 {
			if _, err := tx.Exec(ctx, deleteQ, eventID, removable); err != nil {
				return fmt.Errorf("unlink %s: %w", kind, err)
			}
			result.Removed = removable
		}
		return nil
	})
	if err != nil {
		return UnlinkResult{}, err
	}
	if result.Partial() {
		m.logger.Info("partial unlink, some entities retained",
			zap.String("kind", kind.String()),
			zap.String("event_id", eventID.String()),
			zap.Int("retained", len(result.Retained)))
	}
	return result, nil
}

// Clone copies every association of the source event onto the destination
// event, skipping links the destination already has. Returns the newly
// created entity ids. A source with no associations yields NotFound.
func (m *Manager) Clone(ctx context.Context, kind Kind, sourceEventID, destEventID uuid.UUID) ([]uuid.UUID, error) {
	selectQ := fmt.Sprintf(`SELECT %s FROM %s WHERE event_id = $1`,
		kind.AssocColumn(), kind.AssocTable())
	insertQ := fmt.Sprintf(`INSERT INTO %s (event_id, %s)
		SELECT $1, entity_id FROM unnest($2::uuid[]) AS entity_id
		ON CONFLICT DO NOTHING
		RETURNING %s`, kind.AssocTable(), kind.AssocColumn(), kind.AssocColumn())

	var created []uuid.UUID
	err := database.WithinTx(ctx, m.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQ, sourceEventID)
		if err != nil {
			return fmt.Errorf("clone %s: source lookup: %w", kind, err)
		}
		sourceIDs, err := scanIDs(rows)
		if err != nil {
			return err
		}
		if len(sourceIDs) == 0 {
			return apperrors.NotFound("source event associations")
		}
		rows, err = tx.Query(ctx, insertQ, destEventID, sourceIDs)
		if err != nil {
			return fmt.Errorf("clone %s: %w", kind, err)
		}
		created, err = scanIDs(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Delete removes an entity row entirely. The delete is refused while any
// event association or any live incident still references the entity.
func (m *Manager) Delete(ctx context.Context, kind Kind, entityID uuid.UUID) error {
	assocCountQ := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`,
		kind.AssocTable(), kind.AssocColumn())
	deleteQ := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, kind.EntityTable())

	return database.WithinTx(ctx, m.db, func(tx pgx.Tx) error {
		var assocCount int
		if err := tx.QueryRow(ctx, assocCountQ, entityID).Scan(&assocCount); err != nil {
			return fmt.Errorf("delete %s: association count: %w", kind, err)
		}
		if assocCount > 0 {
			return &apperrors.ConflictError{
				Reason: apperrors.ReasonEvents,
				Detail: fmt.Sprintf("%s is associated with %d event(s)", kind, assocCount),
			}
		}
		var incidentCount int
		if err := tx.QueryRow(ctx, kind.incidentRefCountSQL(), entityID).Scan(&incidentCount); err != nil {
			return fmt.Errorf("delete %s: incident count: %w", kind, err)
		}
		if incidentCount > 0 {
			return &apperrors.ConflictError{
				Reason: apperrors.ReasonIncidents,
				Detail: fmt.Sprintf("%s is referenced by %d incident(s)", kind, incidentCount),
			}
		}
		tag, err := tx.Exec(ctx, deleteQ, entityID)
		if err != nil {
			return fmt.Errorf("delete %s: %w", kind, err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound(kind.String())
		}
		return nil
	})
}

func scanIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
