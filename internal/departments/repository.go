// Package departments manages staffing departments and their member rosters.
package departments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/crowdpulse/backend/internal/models"
	"github.com/crowdpulse/backend/pkg/apperrors"
	"github.com/crowdpulse/backend/pkg/database"
)

// Repository provides department persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates a departments repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a department.
func (r *Repository) Create(ctx context.Context, department *models.Department) error {
	const q = `INSERT INTO departments (company_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, q, department.CompanyID, department.Name).
		Scan(&department.ID, &department.CreatedAt, &department.UpdatedAt)
	if err != nil {
		return apperrors.TranslateUnique(err, "a department with this name already exists")
	}
	return nil
}

// GetByID loads one department.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Department, error) {
	const q = `SELECT id, company_id, name, created_at, updated_at
		FROM departments WHERE id = $1`
	var department models.Department
	err := r.db.QueryRow(ctx, q, id).Scan(
		&department.ID, &department.CompanyID, &department.Name,
		&department.CreatedAt, &department.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("department")
	}
	if err != nil {
		return nil, err
	}
	return &department, nil
}

// AddUser puts a user on the department roster; already-rostered users are a
// no-op.
func (r *Repository) AddUser(ctx context.Context, departmentID, userID uuid.UUID) error {
	const q = `INSERT INTO department_users (department_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	_, err := r.db.Exec(ctx, q, departmentID, userID)
	return err
}

// RemoveUser takes a user off the department roster.
func (r *Repository) RemoveUser(ctx context.Context, departmentID, userID uuid.UUID) error {
	const q = `DELETE FROM department_users WHERE department_id = $1 AND user_id = $2`
	_, err := r.db.Exec(ctx, q, departmentID, userID)
	return err
}
