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

const userViewKeyPrefix = "user:view:"

// UserReadRepository handles all read operations for users.
// It uses Redis as the primary read store, falling back to PostgreSQL on a miss.
type UserReadRepository struct {
	db    *sql.DB
	cache *sharedredis.ViewCache[models.UserView]
}

func NewUserReadRepository(db *sql.DB, redisClient *goredis.Client) *UserReadRepository {
	return &UserReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[models.UserView](redisClient, 0),
	}
}

// GetByID returns a UserView from Redis first, then PostgreSQL.
// The organization filter keeps lookups tenant-scoped.
func (r *UserReadRepository) GetByID(ctx context.Context, organizationID, id string) (*models.UserView, error) {
	cacheKey := userViewKeyPrefix + id

	if view, ok := r.cache.Get(ctx, cacheKey); ok {
		if view.OrganizationID != organizationID {
			return nil, ErrUserNotFound
		}
		return view, nil
	}

	// Fallback: PostgreSQL
	query := selectUserView + `
		WHERE u.id = $1 AND u.organization_id = $2 AND u.deleted_at IS NULL
	`
	view, err := scanUserView(r.db.QueryRow(query, id, organizationID))
	if err != nil {
		return nil, err
	}

	// Warm the cache
	r.CacheUserView(ctx, view)
	return view, nil
}

// List returns one page of an organization's users, newest first.
// search matches name or email; userTypeID narrows to a single type.
func (r *UserReadRepository) List(organizationID string, params pagination.Params, search, userTypeID string) ([]models.UserView, int64, error) {
	filter := `
		WHERE u.organization_id = $1 AND u.deleted_at IS NULL
		  AND ($2 = '' OR u.name ILIKE '%' || $2 || '%' OR u.email ILIKE '%' || $2 || '%')
		  AND ($3 = '' OR u.user_type_id = $3)
	`

	var total int64
	countQuery := `SELECT COUNT(*) FROM users u` + filter
	if err := r.db.QueryRow(countQuery, organizationID, search, userTypeID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := selectUserView + filter + `
		ORDER BY u.created_at DESC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.db.Query(query, organizationID, search, userTypeID, params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	views := []models.UserView{}
	for rows.Next() {
		view, err := scanUserView(rows)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return views, total, nil
}

// CacheUserView stores or refreshes the Redis read model for a user.
// Called by the command service after every mutation.
func (r *UserReadRepository) CacheUserView(ctx context.Context, view *models.UserView) {
	r.cache.Set(ctx, userViewKeyPrefix+view.ID, view)
}

// InvalidateUserView removes the Redis read model entry for a deleted user.
func (r *UserReadRepository) InvalidateUserView(ctx context.Context, userID string) {
	r.cache.Delete(ctx, userViewKeyPrefix+userID)
}

const selectUserView = `
	SELECT u.id, u.organization_id, u.user_type_id, ut.name, u.name, u.email,
		   u.phone_number, u.active, u.last_login_at, u.created_at, u.updated_at
	FROM users u
	JOIN user_types ut ON ut.id = u.user_type_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserView(row rowScanner) (*models.UserView, error) {
	var view models.UserView
	var phone sql.NullString
	var lastLogin sql.NullTime

	err := row.Scan(
		&view.ID, &view.OrganizationID, &view.UserTypeID, &view.Role, &view.Name,
		&view.Email, &phone, &view.Active, &lastLogin, &view.CreatedAt, &view.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if phone.Valid {
		view.PhoneNumber = phone.String
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		view.LastLoginAt = &t
	}
	return &view, nil
}
