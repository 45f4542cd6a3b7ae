package aggregate

import (
	"context"
	"testing"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdpulse/backend/internal/assoc"
	"github.com/crowdpulse/backend/internal/roles"
)

func newEngine(t *testing.T) (*Engine, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewEngine(mock), mock
}

func TestStaffCountsBatchesDivisions(t *testing.T) {
	e, mock := newEngine(t)
	eventID := uuid.New()
	d1, d2 := uuid.New(), uuid.New()
	excluded := roles.ExcludedRoles(roles.RoleOperationsManager)

	mock.ExpectQuery(`SELECT uid.incident_division_id`).
		WithArgs(eventID, []uuid.UUID{d1, d2}, excluded.Ints()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "total", "available"}).
			AddRow(d1, 5, 2).
			AddRow(d2, 3, 3))

	counts, err := e.StaffCounts(context.Background(), assoc.KindDivision, eventID, []uuid.UUID{d1, d2}, excluded)
	require.NoError(t, err)
	assert.Equal(t, StaffCount{Total: 5, Available: 2}, counts[d1])
	assert.Equal(t, 3, counts[d1].Unavailable())
	assert.Equal(t, 0, counts[d2].Unavailable())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDivisionStaffCountsRequireEventDepartmentMembership(t *testing.T) {
	e, mock := newEngine(t)
	eventID := uuid.New()
	division := uuid.New()
	excluded := roles.ExcludedRoles(roles.RoleAdmin)

	// A user placed in a division without belonging to an event-linked
	// department must not be counted; the query has to join the department
	// roster against the event's departments.
	mock.ExpectQuery(`JOIN department_users du ON du.user_id = u.id\s+`+
		`JOIN event_departments ed ON ed.department_id = du.department_id AND ed.event_id = \$1`).
		WithArgs(eventID, []uuid.UUID{division}, excluded.Ints()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "total", "available"}))

	counts, err := e.StaffCounts(context.Background(), assoc.KindDivision, eventID, []uuid.UUID{division}, excluded)
	require.NoError(t, err)
	assert.Empty(t, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffCountsIncidentTypesHaveNoStaff(t *testing.T) {
	e, mock := newEngine(t)
	counts, err := e.StaffCounts(context.Background(), assoc.KindIncidentType, uuid.New(),
		[]uuid.UUID{uuid.New()}, roles.ExcludedRoles(roles.RoleAdmin))
	require.NoError(t, err)
	assert.Empty(t, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncidentCountsByDepartment(t *testing.T) {
	e, mock := newEngine(t)
	eventID := uuid.New()
	dept := uuid.New()

	mock.ExpectQuery(`SELECT i.department_id, COUNT\(\*\)`).
		WithArgs(eventID, []uuid.UUID{dept}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "count"}).AddRow(dept, 4))

	counts, err := e.IncidentCounts(context.Background(), assoc.KindDepartment, eventID, []uuid.UUID{dept})
	require.NoError(t, err)
	assert.Equal(t, 4, counts[dept])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolvedAvgSecondsIncludesUncategorizedDivisions(t *testing.T) {
	e, mock := newEngine(t)
	eventID := uuid.New()
	d1 := uuid.New()

	mock.ExpectQuery(`SELECT COALESCE\(imd.incident_division_id`).
		WithArgs(eventID, []uuid.UUID{d1}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "avg"}).
			AddRow(d1, 120.5).
			AddRow(UncategorizedID, 60.0))

	avgs, err := e.ResolvedAvgSeconds(context.Background(), assoc.KindDivision, eventID, []uuid.UUID{d1})
	require.NoError(t, err)
	assert.InDelta(t, 120.5, avgs[d1], 0.001)
	assert.InDelta(t, 60.0, avgs[UncategorizedID], 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUncategorizedIncidentCount(t *testing.T) {
	e, mock := newEngine(t)
	eventID := uuid.New()

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(eventID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	n, err := e.UncategorizedIncidentCount(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
