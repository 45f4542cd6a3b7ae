package assoc

import (
	"context"
	"testing"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crowdpulse/backend/pkg/apperrors"
)

func newManager(t *testing.T) (*Manager, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewManager(mock, zap.NewNop()), mock
}

func idRows(ids ...uuid.UUID) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id"})
	for _, id := range ids {
		rows.AddRow(id)
	}
	return rows
}

func TestLinkReturnsOnlyNewAssociations(t *testing.T) {
	m, mock := newManager(t)
	eventID := uuid.New()
	existing := uuid.New()
	fresh := uuid.New()

	mock.ExpectBegin()
	// existing is swallowed by ON CONFLICT DO NOTHING, only fresh comes back
	mock.ExpectQuery(`INSERT INTO event_incident_divisions`).
		WithArgs(eventID, []uuid.UUID{existing, fresh}).
		WillReturnRows(idRows(fresh))
	mock.ExpectCommit()

	created, err := m.Link(context.Background(), KindDivision, eventID, []uuid.UUID{existing, fresh})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{fresh}, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkEmptyInputIsNoop(t *testing.T) {
	m, mock := newManager(t)
	created, err := m.Link(context.Background(), KindDepartment, uuid.New(), nil)
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnlinkRetainsEntitiesReferencedByIncidents(t *testing.T) {
	m, mock := newManager(t)
	eventID := uuid.New()
	referenced := uuid.New()
	free := uuid.New()
	requested := []uuid.UUID{referenced, free}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT DISTINCT imd.incident_division_id`).
		WithArgs(eventID, requested).
		WillReturnRows(idRows(referenced))
	mock.ExpectExec(`DELETE FROM event_incident_divisions`).
		WithArgs(eventID, []uuid.UUID{free}).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	result, err := m.Unlink(context.Background(), KindDivision, eventID, requested)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{free}, result.Removed)
	assert.Equal(t, []uuid.UUID{referenced}, result.Retained)
	assert.True(t, result.Partial())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnlinkAllReferencedDeletesNothing(t *testing.T) {
	m, mock := newManager(t)
	eventID := uuid.New()
	typeID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT DISTINCT i.incident_type_id`).
		WithArgs(eventID, []uuid.UUID{typeID}).
		WillReturnRows(idRows(typeID))
	mock.ExpectCommit()

	result, err := m.Unlink(context.Background(), KindIncidentType, eventID, []uuid.UUID{typeID})
	require.NoError(t, err)
	assert.Empty(t, result.Removed)
	assert.Equal(t, []uuid.UUID{typeID}, result.Retained)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloneCopiesSourceAssociations(t *testing.T) {
	m, mock := newManager(t)
	source := uuid.New()
	dest := uuid.New()
	a, b := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT department_id FROM event_departments`).
		WithArgs(source).
		WillReturnRows(idRows(a, b))
	mock.ExpectQuery(`INSERT INTO event_departments`).
		WithArgs(dest, []uuid.UUID{a, b}).
		WillReturnRows(idRows(a, b))
	mock.ExpectCommit()

	created, err := m.Clone(context.Background(), KindDepartment, source, dest)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloneEmptySourceIsNotFound(t *testing.T) {
	m, mock := newManager(t)
	source := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT incident_type_id FROM event_incident_types`).
		WithArgs(source).
		WillReturnRows(idRows())
	mock.ExpectRollback()

	_, err := m.Clone(context.Background(), KindIncidentType, source, uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRefusedWhileAssociatedWithEvents(t *testing.T) {
	m, mock := newManager(t)
	entityID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM event_incident_divisions`).
		WithArgs(entityID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	err := m.Delete(context.Background(), KindDivision, entityID)
	conflict, ok := apperrors.AsConflict(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ReasonEvents, conflict.Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRefusedWhileReferencedByIncidents(t *testing.T) {
	m, mock := newManager(t)
	entityID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM event_departments`).
		WithArgs(entityID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM incidents WHERE department_id`).
		WithArgs(entityID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	err := m.Delete(context.Background(), KindDepartment, entityID)
	conflict, ok := apperrors.AsConflict(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ReasonIncidents, conflict.Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUnreferencedEntitySucceeds(t *testing.T) {
	m, mock := newManager(t)
	entityID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM event_incident_types`).
		WithArgs(entityID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM incidents WHERE incident_type_id`).
		WithArgs(entityID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`DELETE FROM incident_types`).
		WithArgs(entityID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	require.NoError(t, m.Delete(context.Background(), KindIncidentType, entityID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
