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

const orgViewKeyPrefix = "org:view:"

// OrganizationReadRepository handles all read operations for organizations.
// Single views come from Redis first; lists always hit PostgreSQL.
type OrganizationReadRepository struct {
	db    *sql.DB
	cache *sharedredis.ViewCache[models.OrganizationView]
}

func NewOrganizationReadRepository(db *sql.DB, redisClient *goredis.Client) *OrganizationReadRepository {
	return &OrganizationReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[models.OrganizationView](redisClient, 0),
	}
}

// GetByID returns an OrganizationView from Redis first, then PostgreSQL.
func (r *OrganizationReadRepository) GetByID(ctx context.Context, id string) (*models.OrganizationView, error) {
	cacheKey := orgViewKeyPrefix + id

	if view, ok := r.cache.Get(ctx, cacheKey); ok {
		return view, nil
	}

	// Fallback: PostgreSQL
	query := `
		SELECT id, name, slug, email, phone_number, active, created_at, updated_at
		FROM organizations
		WHERE id = $1 AND deleted_at IS NULL
	`
	view, err := scanOrganizationView(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}

	// Warm the cache
	r.CacheOrganizationView(ctx, view)
	return view, nil
}

// List returns one page of all live organizations, newest first.
// Platform-level; reachable only from the operations CLI.
func (r *OrganizationReadRepository) List(params pagination.Params) ([]models.OrganizationView, int64, error) {
	var total int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM organizations WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count organizations: %w", err)
	}

	query := `
		SELECT id, name, slug, email, phone_number, active, created_at, updated_at
		FROM organizations
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(query, params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	views := []models.OrganizationView{}
	for rows.Next() {
		view, err := scanOrganizationView(rows)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list organizations: %w", err)
	}
	return views, total, nil
}

// CacheOrganizationView stores or refreshes the Redis read model for an organization.
func (r *OrganizationReadRepository) CacheOrganizationView(ctx context.Context, view *models.OrganizationView) {
	r.cache.Set(ctx, orgViewKeyPrefix+view.ID, view)
}

// InvalidateOrganizationView removes the Redis read model entry for a deleted organization.
func (r *OrganizationReadRepository) InvalidateOrganizationView(ctx context.Context, orgID string) {
	r.cache.Delete(ctx, orgViewKeyPrefix+orgID)
}

func scanOrganizationView(row rowScanner) (*models.OrganizationView, error) {
	var view models.OrganizationView
	var phone sql.NullString

	err := row.Scan(
		&view.ID, &view.Name, &view.Slug, &view.Email, &phone,
		&view.Active, &view.CreatedAt, &view.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	if phone.Valid {
		view.PhoneNumber = phone.String
	}
	return &view, nil
}
