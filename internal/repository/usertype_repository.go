package repository

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/kestrelhq/kestrel/internal/models"
)

// UserTypeWriteRepository handles all state-mutating operations for user
// types against the PostgreSQL write store.
type UserTypeWriteRepository struct {
	db *sql.DB
}

func NewUserTypeWriteRepository(db *sql.DB) *UserTypeWriteRepository {
	return &UserTypeWriteRepository{db: db}
}

func (r *UserTypeWriteRepository) Create(ut *models.UserType) error {
	query := `
		INSERT INTO user_types (id, organization_id, name, description, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(query,
		ut.ID, ut.OrganizationID, ut.Name, nullString(ut.Description),
		ut.IsDefault, ut.CreatedAt, ut.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrUserTypeNameExists
		}
		return fmt.Errorf("failed to create user type: %w", err)
	}
	return nil
}

// GetByID fetches the write model, scoped to one organization.
func (r *UserTypeWriteRepository) GetByID(organizationID, id string) (*models.UserType, error) {
	query := selectUserType + ` WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL`
	return scanUserType(r.db.QueryRow(query, id, organizationID))
}

// GetByName resolves a user type by its per-organization unique name.
func (r *UserTypeWriteRepository) GetByName(organizationID, name string) (*models.UserType, error) {
	query := selectUserType + ` WHERE organization_id = $1 AND name = $2 AND deleted_at IS NULL`
	return scanUserType(r.db.QueryRow(query, organizationID, name))
}

func (r *UserTypeWriteRepository) Update(ut *models.UserType) error {
	query := `
		UPDATE user_types
		SET name = $3, description = $4, updated_at = $5
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.Exec(query,
		ut.ID, ut.OrganizationID, ut.Name, nullString(ut.Description), ut.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrUserTypeNameExists
		}
		return fmt.Errorf("failed to update user type: %w", err)
	}
	return checkAffected(result, ErrUserTypeNotFound)
}

func (r *UserTypeWriteRepository) Delete(organizationID, id string) error {
	query := `
		UPDATE user_types SET deleted_at = NOW()
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.Exec(query, id, organizationID)
	if err != nil {
		return fmt.Errorf("failed to delete user type: %w", err)
	}
	return checkAffected(result, ErrUserTypeNotFound)
}

const selectUserType = `
	SELECT id, organization_id, name, description, is_default, created_at, updated_at
	FROM user_types`

func scanUserType(row *sql.Row) (*models.UserType, error) {
	var ut models.UserType
	var description sql.NullString

	err := row.Scan(
		&ut.ID, &ut.OrganizationID, &ut.Name, &description, &ut.IsDefault,
		&ut.CreatedAt, &ut.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserTypeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user type: %w", err)
	}

	if description.Valid {
		ut.Description = description.String
	}
	return &ut, nil
}
