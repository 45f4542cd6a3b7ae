// Package scope resolves which company a viewer may act within. Platform
// roles reach any company, global/regional roles reach their company plus its
// direct sub-companies, local roles reach exactly their own company.
package scope

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/crowdpulse/backend/internal/roles"
	"github.com/crowdpulse/backend/internal/viewer"
	"github.com/crowdpulse/backend/pkg/apperrors"
	"github.com/crowdpulse/backend/pkg/database"
)

// Resolver answers scope questions with pure reads; it never mutates.
type Resolver struct {
	db database.DB
}

// NewResolver creates a scope resolver.
func NewResolver(db database.DB) *Resolver {
	return &Resolver{db: db}
}

// ResolveCompany returns companyID when the viewer may act within it.
// Missing companies yield NotFound; out-of-scope targets yield Forbidden.
func (r *Resolver) ResolveCompany(ctx context.Context, v viewer.Viewer, companyID uuid.UUID) (uuid.UUID, error) {
	const q = `SELECT parent_id FROM companies WHERE id = $1`
	var parentID *uuid.UUID
	err := r.db.QueryRow(ctx, q, companyID).Scan(&parentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, apperrors.NotFound("company")
	}
	if err != nil {
		return uuid.Nil, err
	}

	switch roles.TierOf(v.Role) {
	case roles.TierPlatform:
		return companyID, nil
	case roles.TierGlobal:
		if companyID == v.CompanyID || (parentID != nil && *parentID == v.CompanyID) {
			return companyID, nil
		}
		return uuid.Nil, apperrors.Forbidden("company outside viewer scope")
	default:
		if companyID == v.CompanyID {
			return companyID, nil
		}
		return uuid.Nil, apperrors.Forbidden("company outside viewer scope")
	}
}

// ResolveEvent returns the owning company id of a live (not soft-deleted)
// event when the viewer may act within it.
func (r *Resolver) ResolveEvent(ctx context.Context, v viewer.Viewer, eventID uuid.UUID) (uuid.UUID, error) {
	const q = `SELECT company_id FROM events WHERE id = $1 AND deleted_at IS NULL`
	var companyID uuid.UUID
	err := r.db.QueryRow(ctx, q, eventID).Scan(&companyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, apperrors.NotFound("event")
	}
	if err != nil {
		return uuid.Nil, err
	}
	return r.ResolveCompany(ctx, v, companyID)
}
