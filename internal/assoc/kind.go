package assoc

import "fmt"

// Kind selects which entity family an association operation works on. All
// three families share the same join-table shape, so the manager only needs
// the table and column names that differ.
type Kind int

const (
	KindDivision Kind = iota
	KindIncidentType
	KindDepartment
)

func (k Kind) String() string {
	switch k {
	case KindDivision:
		return "incident_division"
	case KindIncidentType:
		return "incident_type"
	case KindDepartment:
		return "department"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// EntityTable is the table holding the entity rows themselves.
func (k Kind) EntityTable() string {
	switch k {
	case KindDivision:
		return "incident_divisions"
	case KindIncidentType:
		return "incident_types"
	case KindDepartment:
		return "departments"
	default:
		panic("assoc: unknown kind")
	}
}

// AssocTable is the event join table for the kind.
func (k Kind) AssocTable() string {
	switch k {
	case KindDivision:
		return "event_incident_divisions"
	case KindIncidentType:
		return "event_incident_types"
	case KindDepartment:
		return "event_departments"
	default:
		panic("assoc: unknown kind")
	}
}

// AssocColumn is the entity-id column inside the join table.
func (k Kind) AssocColumn() string {
	switch k {
	case KindDivision:
		return "incident_division_id"
	case KindIncidentType:
		return "incident_type_id"
	case KindDepartment:
		return "department_id"
	default:
		panic("assoc: unknown kind")
	}
}

// referencedInEventSQL returns the query yielding entity ids (from the given
// candidate set) that live incidents of the event still reference. Divisions
// are referenced through the incident/division join table; types and
// departments are referenced directly on the incident row.
func (k Kind) referencedInEventSQL() string {
	switch k {
	case KindDivision:
		return `SELECT DISTINCT imd.incident_division_id
			FROM incident_multiple_divisions imd
			JOIN incidents i ON i.id = imd.incident_id
			WHERE i.event_id = $1 AND i.deleted_at IS NULL
			  AND imd.incident_division_id = ANY($2::uuid[])`
	case KindIncidentType:
		return `SELECT DISTINCT i.incident_type_id
			FROM incidents i
			WHERE i.event_id = $1 AND i.deleted_at IS NULL
			  AND i.incident_type_id = ANY($2::uuid[])`
	case KindDepartment:
		return `SELECT DISTINCT i.department_id
			FROM incidents i
			WHERE i.event_id = $1 AND i.deleted_at IS NULL
			  AND i.department_id = ANY($2::uuid[])`
	default:
		panic("assoc: unknown kind")
	}
}

// incidentRefCountSQL returns the query counting live incidents anywhere that
// reference a single entity id. Used by the delete guard.
func (k Kind) incidentRefCountSQL() string {
	switch k {
	case KindDivision:
		return `SELECT COUNT(*)
			FROM incident_multiple_divisions imd
			JOIN incidents i ON i.id = imd.incident_id
			WHERE imd.incident_division_id = $1 AND i.deleted_at IS NULL`
	case KindIncidentType:
		return `SELECT COUNT(*) FROM incidents WHERE incident_type_id = $1 AND deleted_at IS NULL`
	case KindDepartment:
		return `SELECT COUNT(*) FROM incidents WHERE department_id = $1 AND deleted_at IS NULL`
	default:
		panic("assoc: unknown kind")
	}
}
