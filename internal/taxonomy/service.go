// Package taxonomy implements the shared behavior of the three event
// taxonomies (incident divisions, incident types, departments): scoped
// listings with batched aggregates, link/unlink/clone of event associations,
// and guarded deletes. The per-entity packages own creation and any
// entity-specific behavior.
package taxonomy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/crowdpulse/backend/internal/aggregate"
	"github.com/crowdpulse/backend/internal/assoc"
	"github.com/crowdpulse/backend/internal/notify"
	"github.com/crowdpulse/backend/internal/roles"
	"github.com/crowdpulse/backend/internal/scope"
	"github.com/crowdpulse/backend/internal/viewer"
	"github.com/crowdpulse/backend/pkg/apperrors"
	"github.com/crowdpulse/backend/pkg/database"
)

// UncategorizedName labels the pseudo-entity for incidents with no division.
const UncategorizedName = "Uncategorized"

// Announcer publishes entity-change messages to realtime rooms. Satisfied by
// notify.Notifier.
type Announcer interface {
	EntityChanged(roomID uuid.UUID, entityType, status string, newEntry bool, data interface{})
	BulkChanged(roomID uuid.UUID, entityType, status string, items []interface{})
}

// Service runs the kind-generic taxonomy operations.
type Service struct {
	db       database.DB
	resolver *scope.Resolver
	assoc    *assoc.Manager
	engine   *aggregate.Engine
	notifier Announcer
	logger   *zap.Logger
}

// NewService creates a taxonomy service.
func NewService(db database.DB, resolver *scope.Resolver, manager *assoc.Manager, engine *aggregate.Engine, notifier Announcer, logger *zap.Logger) *Service {
	return &Service{db: db, resolver: resolver, assoc: manager, engine: engine, notifier: notifier, logger: logger}
}

// NotifyType maps an association kind to its realtime message type.
func NotifyType(kind assoc.Kind) string {
	switch kind {
	case assoc.KindDivision:
		return notify.TypeIncidentDivision
	case assoc.KindIncidentType:
		return notify.TypeIncidentType
	default:
		return notify.TypeDepartment
	}
}

// List returns the shaped listing page for the event plus the total row
// count after filtering. Aggregates are fetched in a fixed number of batched
// queries regardless of entity count.
func (s *Service) List(ctx context.Context, v viewer.Viewer, kind assoc.Kind, eventID uuid.UUID, opts aggregate.ListOptions) ([]aggregate.Row, int, error) {
	companyID, err := s.resolver.ResolveEvent(ctx, v, eventID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.listEntities(ctx, kind, companyID, eventID)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}

	staff, err := s.engine.StaffCounts(ctx, kind, eventID, ids, roles.ExcludedRoles(v.Role))
	if err != nil {
		return nil, 0, err
	}
	incidents, err := s.engine.IncidentCounts(ctx, kind, eventID, ids)
	if err != nil {
		return nil, 0, err
	}
	avgs, err := s.engine.ResolvedAvgSeconds(ctx, kind, eventID, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range rows {
		c := staff[rows[i].ID]
		rows[i].StaffCount = c.Total
		rows[i].AvailableStaffCount = c.Available
		rows[i].UnavailableStaffCount = c.Unavailable()
		rows[i].IncidentsCount = incidents[rows[i].ID]
		rows[i].ResolvedAvgTimeSec = avgs[rows[i].ID]
	}

	if kind == assoc.KindDivision && opts.IncludeUncategorized {
		count, err := s.engine.UncategorizedIncidentCount(ctx, eventID)
		if err != nil {
			return nil, 0, err
		}
		if count > 0 {
			rows = append(rows, aggregate.Row{
				ID:                 aggregate.UncategorizedID,
				Name:               UncategorizedName,
				IncidentsCount:     count,
				ResolvedAvgTimeSec: avgs[aggregate.UncategorizedID],
			})
		}
	}

	page, total := aggregate.Prepare(rows, opts)
	return page, total, nil
}

// Link attaches entities to the event and announces the new associations.
func (s *Service) Link(ctx context.Context, v viewer.Viewer, kind assoc.Kind, eventID uuid.UUID, entityIDs []uuid.UUID) ([]uuid.UUID, error) {
	if _, err := s.resolver.ResolveEvent(ctx, v, eventID); err != nil {
		return nil, err
	}
	created, err := s.assoc.Link(ctx, kind, eventID, entityIDs)
	if err != nil {
		return nil, err
	}
	if len(created) > 0 {
		s.notifier.BulkChanged(eventID, NotifyType(kind), notify.StatusNew, notify.IDList(created))
	}
	return created, nil
}

// Unlink detaches entities from the event, retaining those still referenced
// by live incidents, and announces the removals.
func (s *Service) Unlink(ctx context.Context, v viewer.Viewer, kind assoc.Kind, eventID uuid.UUID, entityIDs []uuid.UUID) (assoc.UnlinkResult, error) {
	if _, err := s.resolver.ResolveEvent(ctx, v, eventID); err != nil {
		return assoc.UnlinkResult{}, err
	}
	result, err := s.assoc.Unlink(ctx, kind, eventID, entityIDs)
	if err != nil {
		return assoc.UnlinkResult{}, err
	}
	if len(result.Removed) > 0 {
		s.notifier.BulkChanged(eventID, NotifyType(kind), notify.StatusDelete, notify.IDList(result.Removed))
	}
	return result, nil
}

// Clone copies the source event's associations onto the destination event.
// Both events must be in scope.
func (s *Service) Clone(ctx context.Context, v viewer.Viewer, kind assoc.Kind, sourceEventID, destEventID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := s.resolver.ResolveEvent(ctx, v, sourceEventID); err != nil {
		return nil, err
	}
	if _, err := s.resolver.ResolveEvent(ctx, v, destEventID); err != nil {
		return nil, err
	}
	created, err := s.assoc.Clone(ctx, kind, sourceEventID, destEventID)
	if err != nil {
		return nil, err
	}
	if len(created) > 0 {
		s.notifier.BulkChanged(destEventID, NotifyType(kind), notify.StatusClone, notify.IDList(created))
	}
	return created, nil
}

// Delete removes an entity after the scope check and the reference guards.
func (s *Service) Delete(ctx context.Context, v viewer.Viewer, kind assoc.Kind, entityID uuid.UUID) error {
	companyID, err := s.entityCompany(ctx, kind, entityID)
	if err != nil {
		return err
	}
	if _, err := s.resolver.ResolveCompany(ctx, v, companyID); err != nil {
		return err
	}
	if err := s.assoc.Delete(ctx, kind, entityID); err != nil {
		return err
	}
	// The delete guards guarantee no event still links the entity, so the
	// company room is the only audience left.
	s.notifier.EntityChanged(companyID, NotifyType(kind), notify.StatusDelete, false, entityID)
	return nil
}

// AnnounceEntity publishes an entity mutation to the entity's company room
// and to the room of every event the entity is linked to, so listing
// subscribers see creates and pin changes without re-fetching.
func (s *Service) AnnounceEntity(ctx context.Context, kind assoc.Kind, companyID, entityID uuid.UUID, status string, data interface{}) {
	newEntry := status == notify.StatusNew
	s.notifier.EntityChanged(companyID, NotifyType(kind), status, newEntry, data)
	eventIDs, err := s.associatedEvents(ctx, kind, entityID)
	if err != nil {
		s.logger.Warn("announce: associated events lookup failed",
			zap.String("kind", kind.String()),
			zap.String("entity_id", entityID.String()),
			zap.Error(err))
		return
	}
	for _, eventID := range eventIDs {
		s.notifier.EntityChanged(eventID, NotifyType(kind), status, newEntry, data)
	}
}

func (s *Service) associatedEvents(ctx context.Context, kind assoc.Kind, entityID uuid.UUID) ([]uuid.UUID, error) {
	q := fmt.Sprintf(`SELECT event_id FROM %s WHERE %s = $1`, kind.AssocTable(), kind.AssocColumn())
	rows, err := s.db.Query(ctx, q, entityID)
	if err != nil {
		return nil, err
	}
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

// listEntities loads the company's entities with their event-assignment flag.
// Departments carry no pinned column, so the query substitutes false.
func (s *Service) listEntities(ctx context.Context, kind assoc.Kind, companyID, eventID uuid.UUID) ([]aggregate.Row, error) {
	pinnedExpr := "e.pinned"
	if kind == assoc.KindDepartment {
		pinnedExpr = "false"
	}
	q := fmt.Sprintf(`SELECT e.id, e.name, %s, (a.%s IS NOT NULL) AS is_assigned
		FROM %s e
		LEFT JOIN %s a ON a.%s = e.id AND a.event_id = $2
		WHERE e.company_id = $1`,
		pinnedExpr, kind.AssocColumn(), kind.EntityTable(), kind.AssocTable(), kind.AssocColumn())

	dbRows, err := s.db.Query(ctx, q, companyID, eventID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	defer dbRows.Close()
	rows := []aggregate.Row{}
	for dbRows.Next() {
		var r aggregate.Row
		if err := dbRows.Scan(&r.ID, &r.Name, &r.Pinned, &r.IsAssigned); err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, dbRows.Err()
}

func (s *Service) entityCompany(ctx context.Context, kind assoc.Kind, entityID uuid.UUID) (uuid.UUID, error) {
	q := fmt.Sprintf(`SELECT company_id FROM %s WHERE id = $1`, kind.EntityTable())
	var companyID uuid.UUID
	err := s.db.QueryRow(ctx, q, entityID).Scan(&companyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, apperrors.NotFound(kind.String())
	}
	if err != nil {
		return uuid.Nil, err
	}
	return companyID, nil
}
