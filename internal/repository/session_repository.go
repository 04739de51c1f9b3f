package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kestrelhq/kestrel/internal/models"
	sharedredis "github.com/kestrelhq/kestrel/internal/redis"
)

const sessionStateKeyPrefix = "session:state:"

// SessionRepository persists one row per active login and answers the
// revocation check made on every authenticated request. Revocation state is
// cached in Redis with a short TTL so the hot path stays off PostgreSQL.
type SessionRepository struct {
	db    *sql.DB
	state *sharedredis.ViewCache[models.SessionState]
}

func NewSessionRepository(db *sql.DB, redisClient *goredis.Client, stateTTL time.Duration) *SessionRepository {
	return &SessionRepository{
		db:    db,
		state: sharedredis.NewViewCache[models.SessionState](redisClient, stateTTL),
	}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, organization_id, token_hash, user_agent, ip_address,
			expires_at, last_used_at, revoked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.OrganizationID, session.TokenHash,
		nullString(session.UserAgent), nullString(session.IPAddress),
		session.ExpiresAt, session.LastUsedAt, session.Revoked, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	r.cacheState(ctx, session.ID, session.Revoked, session.ExpiresAt)
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	query := selectSession + ` WHERE id = $1`
	return scanSession(r.db.QueryRowContext(ctx, query, id))
}

// GetByTokenHash resolves a refresh token (by its hash) to its session.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	query := selectSession + ` WHERE token_hash = $1`
	return scanSession(r.db.QueryRowContext(ctx, query, tokenHash))
}

// Rotate swaps in a new refresh-token hash and extends the session. Fails if
// the session is revoked or already expired.
func (r *SessionRepository) Rotate(ctx context.Context, id, newTokenHash string, expiresAt time.Time) error {
	query := `
		UPDATE sessions
		SET token_hash = $2, expires_at = $3, last_used_at = NOW()
		WHERE id = $1 AND NOT revoked AND expires_at > NOW()
	`
	result, err := r.db.ExecContext(ctx, query, id, newTokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to rotate session: %w", err)
	}
	if err := checkAffected(result, ErrSessionNotFound); err != nil {
		return err
	}

	r.cacheState(ctx, id, false, expiresAt)
	return nil
}

// Revoke flips the revoked flag. The row stays behind for auditing until the
// purge job removes it after expiry.
func (r *SessionRepository) Revoke(ctx context.Context, id string) error {
	query := `UPDATE sessions SET revoked = TRUE WHERE id = $1 AND NOT revoked`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if err := checkAffected(result, ErrSessionNotFound); err != nil {
		return err
	}

	r.cacheState(ctx, id, true, time.Time{})
	return nil
}

// RevokeAllForUser revokes every active session a user holds.
func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	return r.revokeWhere(ctx, `user_id = $1`, userID)
}

// RevokeAllForOrganization revokes every active session in an organization.
func (r *SessionRepository) RevokeAllForOrganization(ctx context.Context, organizationID string) (int64, error) {
	return r.revokeWhere(ctx, `organization_id = $1`, organizationID)
}

func (r *SessionRepository) revokeWhere(ctx context.Context, cond, arg string) (int64, error) {
	query := `UPDATE sessions SET revoked = TRUE WHERE ` + cond + ` AND NOT revoked RETURNING id`
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions: %w", err)
	}
	defer rows.Close()

	var count int64
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return count, fmt.Errorf("failed to revoke sessions: %w", err)
		}
		r.cacheState(ctx, id, true, time.Time{})
		count++
	}
	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return count, nil
}

// DeleteExpired hard-deletes sessions past their expiry. Run on a schedule.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rows, nil
}

// ListActiveForUser returns a user's live sessions, most recently used first.
func (r *SessionRepository) ListActiveForUser(ctx context.Context, userID string) ([]models.Session, error) {
	query := selectSession + `
		WHERE user_id = $1 AND NOT revoked AND expires_at > NOW()
		ORDER BY last_used_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// State answers the per-request revocation check, Redis first.
func (r *SessionRepository) State(ctx context.Context, id string) (*models.SessionState, error) {
	cacheKey := sessionStateKeyPrefix + id

	if state, ok := r.state.Get(ctx, cacheKey); ok {
		return state, nil
	}

	query := `SELECT id, revoked, expires_at FROM sessions WHERE id = $1`
	var state models.SessionState
	err := r.db.QueryRowContext(ctx, query, id).Scan(&state.ID, &state.Revoked, &state.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session state: %w", err)
	}

	r.state.Set(ctx, cacheKey, &state)
	return &state, nil
}

// cacheState writes revocation state through to Redis so the middleware sees
// changes immediately instead of waiting out a stale entry.
func (r *SessionRepository) cacheState(ctx context.Context, id string, revoked bool, expiresAt time.Time) {
	r.state.Set(ctx, sessionStateKeyPrefix+id, &models.SessionState{
		ID:        id,
		Revoked:   revoked,
		ExpiresAt: expiresAt,
	})
}

const selectSession = `
	SELECT id, user_id, organization_id, token_hash, user_agent, ip_address,
		   expires_at, last_used_at, revoked, created_at
	FROM sessions`

func scanSession(row rowScanner) (*models.Session, error) {
	var session models.Session
	var userAgent, ipAddress sql.NullString

	err := row.Scan(
		&session.ID, &session.UserID, &session.OrganizationID, &session.TokenHash,
		&userAgent, &ipAddress, &session.ExpiresAt, &session.LastUsedAt,
		&session.Revoked, &session.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if userAgent.Valid {
		session.UserAgent = userAgent.String
	}
	if ipAddress.Valid {
		session.IPAddress = ipAddress.String
	}
	return &session, nil
}
