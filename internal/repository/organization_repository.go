package repository

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/kestrelhq/kestrel/internal/models"
)

// OrganizationWriteRepository handles all state-mutating operations for
// organizations against the PostgreSQL write store.
type OrganizationWriteRepository struct {
	db *sql.DB
}

func NewOrganizationWriteRepository(db *sql.DB) *OrganizationWriteRepository {
	return &OrganizationWriteRepository{db: db}
}

func (r *OrganizationWriteRepository) Create(org *models.Organization) error {
	query := `
		INSERT INTO organizations (id, name, slug, email, phone_number, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(query,
		org.ID, org.Name, org.Slug, org.Email, nullString(org.PhoneNumber),
		org.Active, org.CreatedAt, org.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrSlugExists
		}
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

// GetByID fetches the full write model for internal operations.
func (r *OrganizationWriteRepository) GetByID(id string) (*models.Organization, error) {
	query := `
		SELECT id, name, slug, email, phone_number, active, created_at, updated_at
		FROM organizations
		WHERE id = $1 AND deleted_at IS NULL
	`
	var org models.Organization
	var phone sql.NullString

	err := r.db.QueryRow(query, id).Scan(
		&org.ID, &org.Name, &org.Slug, &org.Email, &phone,
		&org.Active, &org.CreatedAt, &org.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	if phone.Valid {
		org.PhoneNumber = phone.String
	}
	return &org, nil
}

func (r *OrganizationWriteRepository) Update(org *models.Organization) error {
	query := `
		UPDATE organizations
		SET name = $2, email = $3, phone_number = $4, active = $5, updated_at = $6
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.Exec(query,
		org.ID, org.Name, org.Email, nullString(org.PhoneNumber),
		org.Active, org.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	return checkAffected(result, ErrOrganizationNotFound)
}

func (r *OrganizationWriteRepository) Delete(id string) error {
	query := `UPDATE organizations SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	return checkAffected(result, ErrOrganizationNotFound)
}
