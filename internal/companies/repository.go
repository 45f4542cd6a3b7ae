package companies

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/crowdpulse/backend/internal/models"
	"github.com/crowdpulse/backend/pkg/apperrors"
	"github.com/crowdpulse/backend/pkg/database"
)

// Repository provides company persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates a companies repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

const companyColumns = `id, name, parent_id, category, region_id, demo_company, created_at, updated_at`

// Create inserts a company. Root companies are forced to the STANDARD
// category regardless of what the caller asked for.
func (r *Repository) Create(ctx context.Context, company *models.Company) error {
	if company.ParentID == nil {
		company.Category = models.CategoryStandard
	}
	const q = `INSERT INTO companies (name, parent_id, category, region_id, demo_company)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, q,
		company.Name, company.ParentID, company.Category, company.RegionID, company.DemoCompany,
	).Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
	if err != nil {
		return apperrors.TranslateUnique(err, "a company with this name already exists")
	}
	return nil
}

// GetByID loads one company.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	const q = `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	var company models.Company
	err := r.db.QueryRow(ctx, q, id).Scan(
		&company.ID, &company.Name, &company.ParentID, &company.Category,
		&company.RegionID, &company.DemoCompany, &company.CreatedAt, &company.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("company")
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// ListSubCompanies returns the direct sub-companies of a root company.
func (r *Repository) ListSubCompanies(ctx context.Context, parentID uuid.UUID) ([]models.Company, error) {
	const q = `SELECT ` + companyColumns + ` FROM companies WHERE parent_id = $1 ORDER BY name`
	rows, err := r.db.Query(ctx, q, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	companies := []models.Company{}
	for rows.Next() {
		var company models.Company
		if err := rows.Scan(
			&company.ID, &company.Name, &company.ParentID, &company.Category,
			&company.RegionID, &company.DemoCompany, &company.CreatedAt, &company.UpdatedAt,
		); err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

// Update renames or recategorizes a company.
func (r *Repository) Update(ctx context.Context, company *models.Company) error {
	const q = `UPDATE companies SET name = $2, category = $3, region_id = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.db.QueryRow(ctx, q, company.ID, company.Name, company.Category, company.RegionID).
		Scan(&company.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFound("company")
	}
	if err != nil {
		return apperrors.TranslateUnique(err, "a company with this name already exists")
	}
	return nil
}
