package taxonomy

import (
	"context"
	"testing"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crowdpulse/backend/internal/aggregate"
	"github.com/crowdpulse/backend/internal/assoc"
	"github.com/crowdpulse/backend/internal/notify"
	"github.com/crowdpulse/backend/internal/roles"
	"github.com/crowdpulse/backend/internal/scope"
	"github.com/crowdpulse/backend/internal/viewer"
)

type announcement struct {
	roomID   uuid.UUID
	typ      string
	status   string
	newEntry bool
}

type recordingAnnouncer struct {
	entity []announcement
	bulk   []announcement
}

func (r *recordingAnnouncer) EntityChanged(roomID uuid.UUID, entityType, status string, newEntry bool, data interface{}) {
	r.entity = append(r.entity, announcement{roomID: roomID, typ: entityType, status: status, newEntry: newEntry})
}

func (r *recordingAnnouncer) BulkChanged(roomID uuid.UUID, entityType, status string, items []interface{}) {
	r.bulk = append(r.bulk, announcement{roomID: roomID, typ: entityType, status: status})
}

func newService(t *testing.T) (*Service, pgxmock.PgxPoolIface, *recordingAnnouncer) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	announcer := &recordingAnnouncer{}
	svc := NewService(mock, scope.NewResolver(mock), assoc.NewManager(mock, zap.NewNop()),
		aggregate.NewEngine(mock), announcer, zap.NewNop())
	return svc, mock, announcer
}

func TestAnnounceEntityReachesCompanyAndLinkedEventRooms(t *testing.T) {
	svc, mock, announcer := newService(t)
	companyID := uuid.New()
	divisionID := uuid.New()
	e1, e2 := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT event_id FROM event_incident_divisions WHERE incident_division_id = \$1`).
		WithArgs(divisionID).
		WillReturnRows(pgxmock.NewRows([]string{"event_id"}).AddRow(e1).AddRow(e2))

	svc.AnnounceEntity(context.Background(), assoc.KindDivision, companyID, divisionID,
		notify.StatusUpdate, map[string]bool{"pinned": true})

	require.Len(t, announcer.entity, 3)
	assert.Equal(t, companyID, announcer.entity[0].roomID)
	assert.Equal(t, e1, announcer.entity[1].roomID)
	assert.Equal(t, e2, announcer.entity[2].roomID)
	for _, a := range announcer.entity {
		assert.Equal(t, notify.TypeIncidentDivision, a.typ)
		assert.Equal(t, notify.StatusUpdate, a.status)
		assert.False(t, a.newEntry)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnounceEntityMarksCreatesAsNewEntries(t *testing.T) {
	svc, mock, announcer := newService(t)
	companyID := uuid.New()
	typeID := uuid.New()

	mock.ExpectQuery(`SELECT event_id FROM event_incident_types WHERE incident_type_id = \$1`).
		WithArgs(typeID).
		WillReturnRows(pgxmock.NewRows([]string{"event_id"}))

	svc.AnnounceEntity(context.Background(), assoc.KindIncidentType, companyID, typeID,
		notify.StatusNew, nil)

	require.Len(t, announcer.entity, 1)
	assert.Equal(t, companyID, announcer.entity[0].roomID)
	assert.Equal(t, notify.TypeIncidentType, announcer.entity[0].typ)
	assert.True(t, announcer.entity[0].newEntry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePublishesToCompanyRoom(t *testing.T) {
	svc, mock, announcer := newService(t)
	companyID := uuid.New()
	divisionID := uuid.New()
	v := viewer.Viewer{UserID: uuid.New(), Role: roles.RoleSuperAdmin, CompanyID: companyID}

	mock.ExpectQuery(`SELECT company_id FROM incident_divisions WHERE id = \$1`).
		WithArgs(divisionID).
		WillReturnRows(pgxmock.NewRows([]string{"company_id"}).AddRow(companyID))
	mock.ExpectQuery(`SELECT parent_id FROM companies WHERE id = \$1`).
		WithArgs(companyID).
		WillReturnRows(pgxmock.NewRows([]string{"parent_id"}).AddRow(nil))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM event_incident_divisions`).
		WithArgs(divisionID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM incident_multiple_divisions imd`).
		WithArgs(divisionID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`DELETE FROM incident_divisions WHERE id = \$1`).
		WithArgs(divisionID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	require.NoError(t, svc.Delete(context.Background(), v, assoc.KindDivision, divisionID))

	require.Len(t, announcer.entity, 1)
	assert.Equal(t, companyID, announcer.entity[0].roomID)
	assert.Equal(t, notify.StatusDelete, announcer.entity[0].status)
	assert.Equal(t, notify.TypeIncidentDivision, announcer.entity[0].typ)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDoesNotPublishWhenGuardRefuses(t *testing.T) {
	svc, mock, announcer := newService(t)
	companyID := uuid.New()
	divisionID := uuid.New()
	v := viewer.Viewer{UserID: uuid.New(), Role: roles.RoleSuperAdmin, CompanyID: companyID}

	mock.ExpectQuery(`SELECT company_id FROM incident_divisions WHERE id = \$1`).
		WithArgs(divisionID).
		WillReturnRows(pgxmock.NewRows([]string{"company_id"}).AddRow(companyID))
	mock.ExpectQuery(`SELECT parent_id FROM companies WHERE id = \$1`).
		WithArgs(companyID).
		WillReturnRows(pgxmock.NewRows([]string{"parent_id"}).AddRow(nil))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM event_incident_divisions`).
		WithArgs(divisionID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	err := svc.Delete(context.Background(), v, assoc.KindDivision, divisionID)
	require.Error(t, err)
	assert.Empty(t, announcer.entity)
	assert.NoError(t, mock.ExpectationsWereMet())
}
