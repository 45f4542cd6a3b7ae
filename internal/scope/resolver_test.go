package scope

import (
	"context"
	"testing"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdpulse/backend/internal/roles"
	"github.com/crowdpulse/backend/internal/viewer"
	"github.com/crowdpulse/backend/pkg/apperrors"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func expectCompanyLookup(mock pgxmock.PgxPoolIface, companyID uuid.UUID, parentID *uuid.UUID) {
	mock.ExpectQuery(`SELECT parent_id FROM companies WHERE id = $1`).
		WithArgs(companyID).
		WillReturnRows(pgxmock.NewRows([]string{"parent_id"}).AddRow(parentID))
}

func TestResolveCompanyPlatformRoleReachesAnyCompany(t *testing.T) {
	mock := newMock(t)
	target := uuid.New()
	expectCompanyLookup(mock, target, nil)

	v := viewer.Viewer{UserID: uuid.New(), Role: roles.RoleSuperAdmin, CompanyID: uuid.New()}
	got, err := NewResolver(mock).ResolveCompany(context.Background(), v, target)
	require.NoError(t, err)
	assert.Equal(t, target, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveCompanyGlobalRoleReachesDirectSubCompany(t *testing.T) {
	mock := newMock(t)
	own := uuid.New()
	sub := uuid.New()
	expectCompanyLookup(mock, sub, &own)

	v := viewer.Viewer{UserID: uuid.New(), Role: roles.RoleGlobalAdmin, CompanyID: own}
	got, err := NewResolver(mock).ResolveCompany(context.Background(), v, sub)
	require.NoError(t, err)
	assert.Equal(t, sub, got)
}

func TestResolveCompanyGlobalRoleRejectsGrandchild(t *testing.T) {
	mock := newMock(t)
	own := uuid.New()
	child := uuid.New()
	grandchild := uuid.New()
	expectCompanyLookup(mock, grandchild, &child)

	v := viewer.Viewer{UserID: uuid.New(), Role: roles.RoleGlobalManager, CompanyID: own}
	_, err := NewResolver(mock).ResolveCompany(context.Background(), v, grandchild)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestResolveCompanyLocalRoleRejectsSibling(t *testing.T) {
	mock := newMock(t)
	other := uuid.New()
	expectCompanyLookup(mock, other, nil)

	v := viewer.Viewer{UserID: uuid.New(), Role: roles.RoleAdmin, CompanyID: uuid.New()}
	_, err := NewResolver(mock).ResolveCompany(context.Background(), v, other)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestResolveCompanyMissingCompanyIsNotFound(t *testing.T) {
	mock := newMock(t)
	target := uuid.New()
	mock.ExpectQuery(`SELECT parent_id FROM companies WHERE id = $1`).
		WithArgs(target).
		WillReturnRows(pgxmock.NewRows([]string{"parent_id"}))

	v := viewer.Viewer{UserID: uuid.New(), Role: roles.RoleSuperAdmin, CompanyID: uuid.New()}
	_, err := NewResolver(mock).ResolveCompany(context.Background(), v, target)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestResolveEventFollowsOwningCompany(t *testing.T) {
	mock := newMock(t)
	company := uuid.New()
	eventID := uuid.New()
	mock.ExpectQuery(`SELECT company_id FROM events WHERE id = $1 AND deleted_at IS NULL`).
		WithArgs(eventID).
		WillReturnRows(pgxmock.NewRows([]string{"company_id"}).AddRow(company))
	expectCompanyLookup(mock, company, nil)

	v := viewer.Viewer{UserID: uuid.New(), Role: roles.RoleOperationsManager, CompanyID: company}
	got, err := NewResolver(mock).ResolveEvent(context.Background(), v, eventID)
	require.NoError(t, err)
	assert.Equal(t, company, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveEventSoftDeletedIsNotFound(t *testing.T) {
	mock := newMock(t)
	eventID := uuid.New()
	mock.ExpectQuery(`SELECT company_id FROM events WHERE id = $1 AND deleted_at IS NULL`).
		WithArgs(eventID).
		WillReturnRows(pgxmock.NewRows([]string{"company_id"}))

	v := viewer.Viewer{UserID: uuid.New(), Role: roles.RoleAdmin, CompanyID: uuid.New()}
	_, err := NewResolver(mock).ResolveEvent(context.Background(), v, eventID)
	assert.True(t, apperrors.IsNotFound(err))
}
