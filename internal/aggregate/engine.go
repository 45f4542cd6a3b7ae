// Package aggregate computes per-entity statistics for event listings. Every
// computation is batched over the full candidate id set so a listing costs a
// fixed number of queries regardless of how many entities it shows.
package aggregate

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/crowdpulse/backend/internal/assoc"
	"github.com/crowdpulse/backend/internal/roles"
	"github.com/crowdpulse/backend/pkg/database"
)

// UncategorizedID keys the pseudo-entity aggregating incidents that carry no
// division at all.
var UncategorizedID = uuid.Nil

// Engine runs the batched aggregation queries.
type Engine struct {
	db database.Querier
}

// NewEngine creates an aggregation engine.
func NewEngine(db database.Querier) *Engine {
	return &Engine{db: db}
}

// StaffCount holds the member tallies for one entity.
type StaffCount struct {
	Total     int
	Available int
}

// Unavailable is always Total minus Available.
func (s StaffCount) Unavailable() int {
	return s.Total - s.Available
}

// Division staff only counts users who belong to a department linked to the
// event; a division placement alone is not enough.
const divisionStaffSQL = `SELECT uid.incident_division_id,
	COUNT(DISTINCT u.id) AS total,
	COUNT(DISTINCT u.id) FILTER (WHERE ea.user_id IS NOT NULL) AS available
FROM user_incident_divisions uid
JOIN users u ON u.id = uid.user_id
JOIN department_users du ON du.user_id = u.id
JOIN event_departments ed ON ed.department_id = du.department_id AND ed.event_id = $1
JOIN user_company_roles ucr ON ucr.user_id = u.id AND NOT (ucr.role_id = ANY($3::int[]))
LEFT JOIN event_assignments ea ON ea.user_id = u.id AND ea.event_id = $1 AND ea.active
WHERE uid.event_id = $1 AND uid.incident_division_id = ANY($2::uuid[])
GROUP BY uid.incident_division_id`

const departmentStaffSQL = `SELECT ed.department_id,
	COUNT(DISTINCT u.id) AS total,
	COUNT(DISTINCT u.id) FILTER (WHERE ea.user_id IS NOT NULL) AS available
FROM event_departments ed
JOIN department_users du ON du.department_id = ed.department_id
JOIN users u ON u.id = du.user_id
JOIN user_company_roles ucr ON ucr.user_id = u.id AND NOT (ucr.role_id = ANY($3::int[]))
LEFT JOIN event_assignments ea ON ea.user_id = u.id AND ea.event_id = $1 AND ea.active
WHERE ed.event_id = $1 AND ed.department_id = ANY($2::uuid[])
GROUP BY ed.department_id`

// StaffCounts returns the member tallies for every entity id in the set,
// excluding users whose company role is hidden from the viewer. Entities
// with no members are absent from the map; incident types carry no staff
// and always yield an empty map.
func (e *Engine) StaffCounts(ctx context.Context, kind assoc.Kind, eventID uuid.UUID, entityIDs []uuid.UUID, excluded roles.RoleSet) (map[uuid.UUID]StaffCount, error) {
	counts := make(map[uuid.UUID]StaffCount, len(entityIDs))
	if len(entityIDs) == 0 || kind == assoc.KindIncidentType {
		return counts, nil
	}
	var q string
	switch kind {
	case assoc.KindDivision:
		q = divisionStaffSQL
	case assoc.KindDepartment:
		q = departmentStaffSQL
	default:
		return nil, fmt.Errorf("aggregate: staff counts unsupported for %s", kind)
	}
	rows, err := e.db.Query(ctx, q, eventID, entityIDs, excluded.Ints())
	if err != nil {
		return nil, fmt.Errorf("staff counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		var c StaffCount
		if err := rows.Scan(&id, &c.Total, &c.Available); err != nil {
			return nil, err
		}
		counts[id] = c
	}
	return counts, rows.Err()
}

const divisionIncidentCountSQL = `SELECT imd.incident_division_id, COUNT(DISTINCT i.id)
FROM incident_multiple_divisions imd
JOIN incidents i ON i.id = imd.incident_id
WHERE i.event_id = $1 AND i.deleted_at IS NULL
  AND (i.request_status IS NULL OR i.request_status = 'approved')
  AND imd.incident_division_id = ANY($2::uuid[])
GROUP BY imd.incident_division_id`

const incidentCountByColumnSQL = `SELECT i.%[1]s, COUNT(*)
FROM incidents i
WHERE i.event_id = $1 AND i.deleted_at IS NULL
  AND (i.request_status IS NULL OR i.request_status = 'approved')
  AND i.%[1]s = ANY($2::uuid[])
GROUP BY i.%[1]s`

// IncidentCounts returns the live, approved incident tally per entity.
func (e *Engine) IncidentCounts(ctx context.Context, kind assoc.Kind, eventID uuid.UUID, entityIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(entityIDs))
	if len(entityIDs) == 0 {
		return counts, nil
	}
	q := divisionIncidentCountSQL
	if kind != assoc.KindDivision {
		q = fmt.Sprintf(incidentCountByColumnSQL, kind.AssocColumn())
	}
	rows, err := e.db.Query(ctx, q, eventID, entityIDs)
	if err != nil {
		return nil, fmt.Errorf("incident counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

const divisionResolvedAvgSQL = `SELECT COALESCE(imd.incident_division_id, '00000000-0000-0000-0000-000000000000'::uuid),
	AVG(EXTRACT(EPOCH FROM (i.resolved_at - i.created_at)))
FROM incidents i
LEFT JOIN incident_multiple_divisions imd ON imd.incident_id = i.id
WHERE i.event_id = $1 AND i.deleted_at IS NULL AND i.resolved_at IS NOT NULL
  AND (imd.incident_division_id = ANY($2::uuid[]) OR imd.incident_division_id IS NULL)
GROUP BY 1`

const resolvedAvgByColumnSQL = `SELECT i.%[1]s,
	AVG(EXTRACT(EPOCH FROM (i.resolved_at - i.created_at)))
FROM incidents i
WHERE i.event_id = $1 AND i.deleted_at IS NULL AND i.resolved_at IS NOT NULL
  AND i.%[1]s = ANY($2::uuid[])
GROUP BY i.%[1]s`

// ResolvedAvgSeconds returns the mean open-to-resolved duration in seconds
// per entity, computed in one pass. For divisions the same pass also yields
// the uncategorized pseudo-entity keyed by UncategorizedID.
func (e *Engine) ResolvedAvgSeconds(ctx context.Context, kind assoc.Kind, eventID uuid.UUID, entityIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	avgs := make(map[uuid.UUID]float64, len(entityIDs))
	if len(entityIDs) == 0 && kind != assoc.KindDivision {
		return avgs, nil
	}
	q := divisionResolvedAvgSQL
	if kind != assoc.KindDivision {
		q = fmt.Sprintf(resolvedAvgByColumnSQL, kind.AssocColumn())
	}
	rows, err := e.db.Query(ctx, q, eventID, entityIDs)
	if err != nil {
		return nil, fmt.Errorf("resolved averages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		var avg float64
		if err := rows.Scan(&id, &avg); err != nil {
			return nil, err
		}
		avgs[id] = avg
	}
	return avgs, rows.Err()
}

const uncategorizedCountSQL = `SELECT COUNT(*)
FROM incidents i
WHERE i.event_id = $1 AND i.deleted_at IS NULL
  AND (i.request_status IS NULL OR i.request_status = 'approved')
  AND NOT EXISTS (
	SELECT 1 FROM incident_multiple_divisions imd WHERE imd.incident_id = i.id
  )`

// UncategorizedIncidentCount tallies live incidents of the event that carry
// no division at all.
func (e *Engine) UncategorizedIncidentCount(ctx context.Context, eventID uuid.UUID) (int, error) {
	var n int
	if err := e.db.QueryRow(ctx, uncategorizedCountSQL, eventID).Scan(&n); err != nil {
		return 0, fmt.Errorf("uncategorized count: %w", err)
	}
	return n, nil
}
