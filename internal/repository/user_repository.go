package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/kestrelhq/kestrel/internal/models"
)

// UserWriteRepository handles all state-mutating operations for users.
// It operates exclusively against the PostgreSQL write store (source of truth).
type UserWriteRepository struct {
	db *sql.DB
}

func NewUserWriteRepository(db *sql.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

func (r *UserWriteRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (id, organization_id, user_type_id, name, email, password_hash,
			phone_number, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(query,
		user.ID, user.OrganizationID, user.UserTypeID, user.Name, user.Email,
		user.PasswordHash, nullString(user.PhoneNumber), user.Active,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID fetches the full write model (including PasswordHash) for internal operations.
func (r *UserWriteRepository) GetByID(id string) (*models.User, error) {
	query := selectUser + ` WHERE id = $1 AND deleted_at IS NULL`
	return r.scanUser(r.db.QueryRow(query, id))
}

// GetByEmail fetches the write model for credential checks during login.
func (r *UserWriteRepository) GetByEmail(email string) (*models.User, error) {
	query := selectUser + ` WHERE email = $1 AND deleted_at IS NULL`
	return r.scanUser(r.db.QueryRow(query, email))
}

// GetByResetTokenHash resolves the user a password-reset token belongs to.
func (r *UserWriteRepository) GetByResetTokenHash(hash string) (*models.User, error) {
	query := selectUser + ` WHERE reset_token_hash = $1 AND deleted_at IS NULL`
	return r.scanUser(r.db.QueryRow(query, hash))
}

func (r *UserWriteRepository) Update(user *models.User) error {
	query := `
		UPDATE users
		SET user_type_id = $2, name = $3, phone_number = $4, active = $5,
			password_hash = $6, updated_at = $7
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.Exec(query,
		user.ID, user.UserTypeID, user.Name, nullString(user.PhoneNumber),
		user.Active, user.PasswordHash, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return checkAffected(result, ErrUserNotFound)
}

func (r *UserWriteRepository) Delete(id string) error {
	query := `UPDATE users SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return checkAffected(result, ErrUserNotFound)
}

// UpdateLastLogin stamps a successful login.
func (r *UserWriteRepository) UpdateLastLogin(id string, at time.Time) error {
	query := `UPDATE users SET last_login_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	if _, err := r.db.Exec(query, id, at); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// SetResetToken stores the hash and expiry of a freshly issued reset token.
func (r *UserWriteRepository) SetResetToken(id, hash string, expiresAt time.Time) error {
	query := `
		UPDATE users SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.Exec(query, id, hash, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	return checkAffected(result, ErrUserNotFound)
}

// UpdatePassword sets a new password hash and clears any outstanding reset token.
func (r *UserWriteRepository) UpdatePassword(id, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2, reset_token_hash = NULL, reset_token_expires_at = NULL,
			updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.Exec(query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return checkAffected(result, ErrUserNotFound)
}

// CountByUserType counts live users holding the given type. Used for the
// type-in-use and last-admin guards.
func (r *UserWriteRepository) CountByUserType(organizationID, userTypeID string) (int64, error) {
	query := `
		SELECT COUNT(*) FROM users
		WHERE organization_id = $1 AND user_type_id = $2 AND deleted_at IS NULL
	`
	var count int64
	if err := r.db.QueryRow(query, organizationID, userTypeID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

const selectUser = `
	SELECT id, organization_id, user_type_id, name, email, password_hash, phone_number,
		   active, last_login_at, reset_token_hash, reset_token_expires_at,
		   created_at, updated_at
	FROM users`

func (r *UserWriteRepository) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var phone, resetHash sql.NullString
	var lastLogin, resetExpires sql.NullTime

	err := row.Scan(
		&user.ID, &user.OrganizationID, &user.UserTypeID, &user.Name, &user.Email,
		&user.PasswordHash, &phone, &user.Active, &lastLogin, &resetHash, &resetExpires,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if phone.Valid {
		user.PhoneNumber = phone.String
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLoginAt = &t
	}
	if resetHash.Valid {
		user.ResetTokenHash = resetHash.String
	}
	if resetExpires.Valid {
		t := resetExpires.Time
		user.ResetTokenExpiresAt = &t
	}
	return &user, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func checkAffected(result sql.Result, missing error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return missing
	}
	return nil
}
