package repository

import (
	"context"
	"database/sql"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kestrelhq/kestrel/internal/models"
	"github.com/kestrelhq/kestrel/internal/pagination"
	sharedredis "github.com/kestrelhq/kestrel/internal/redis"
)

const userTypeViewKeyPrefix = "usertype:view:"

// UserTypeReadRepository handles all read operations for user types.
type UserTypeReadRepository struct {
	db    *sql.DB
	cache *sharedredis.ViewCache[models.UserTypeView]
}

func NewUserTypeReadRepository(db *sql.DB, redisClient *goredis.Client) *UserTypeReadRepository {
	return &UserTypeReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[models.UserTypeView](redisClient, 0),
	}
}

// GetByID returns a UserTypeView from Redis first, then PostgreSQL.
func (r *UserTypeReadRepository) GetByID(ctx context.Context, organizationID, id string) (*models.UserTypeView, error) {
	cacheKey := userTypeViewKeyPrefix + id

	if view, ok := r.cache.Get(ctx, cacheKey); ok {
		if view.OrganizationID != organizationID {
			return nil, ErrUserTypeNotFound
		}
		return view, nil
	}

	// Fallback: PostgreSQL
	query := `
		SELECT id, organization_id, name, description, is_default, created_at, updated_at
		FROM user_types
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`
	view, err := scanUserTypeView(r.db.QueryRow(query, id, organizationID))
	if err != nil {
		return nil, err
	}

	// Warm the cache
	r.CacheUserTypeView(ctx, view)
	return view, nil
}

// List returns one page of an organization's user types, oldest first so the
// seeded types stay at the top.
func (r *UserTypeReadRepository) List(organizationID string, params pagination.Params) ([]models.UserTypeView, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM user_types WHERE organization_id = $1 AND deleted_at IS NULL`
	if err := r.db.QueryRow(countQuery, organizationID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count user types: %w", err)
	}

	query := `
		SELECT id, organization_id, name, description, is_default, created_at, updated_at
		FROM user_types
		WHERE organization_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(query, organizationID, params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list user types: %w", err)
	}
	defer rows.Close()

	views := []models.UserTypeView{}
	for rows.Next() {
		view, err := scanUserTypeView(rows)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list user types: %w", err)
	}
	return views, total, nil
}

// CacheUserTypeView stores or refreshes the Redis read model for a user type.
func (r *UserTypeReadRepository) CacheUserTypeView(ctx context.Context, view *models.UserTypeView) {
	r.cache.Set(ctx, userTypeViewKeyPrefix+view.ID, view)
}

// InvalidateUserTypeView removes the Redis read model entry for a deleted user type.
func (r *UserTypeReadRepository) InvalidateUserTypeView(ctx context.Context, userTypeID string) {
	r.cache.Delete(ctx, userTypeViewKeyPrefix+userTypeID)
}

func scanUserTypeView(row rowScanner) (*models.UserTypeView, error) {
	var view models.UserTypeView
	var description sql.NullString

	err := row.Scan(
		&view.ID, &view.OrganizationID, &view.Name, &description, &view.IsDefault,
		&view.CreatedAt, &view.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserTypeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user type: %w", err)
	}

	if description.Valid {
		view.Description = description.String
	}
	return &view, nil
}
