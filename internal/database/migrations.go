package database

import (
	"context"
	"database/sql"
	"fmt"
)

// statements is the ordered schema DDL. Every statement is idempotent so
// Migrate can run on every startup.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS organizations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL,
		email TEXT NOT NULL,
		phone_number TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS organizations_slug_live_idx
		ON organizations (slug) WHERE deleted_at IS NULL`,
	`CREATE TABLE IF NOT EXISTS user_types (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL REFERENCES organizations(id),
		name TEXT NOT NULL,
		description TEXT,
		is_default BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS user_types_org_name_live_idx
		ON user_types (organization_id, name) WHERE deleted_at IS NULL`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL REFERENCES organizations(id),
		user_type_id TEXT NOT NULL REFERENCES user_types(id),
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		phone_number TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		last_login_at TIMESTAMPTZ,
		reset_token_hash TEXT,
		reset_token_expires_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_live_idx
		ON users (email) WHERE deleted_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS users_org_idx ON users (organization_id)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		organization_id TEXT NOT NULL REFERENCES organizations(id),
		token_hash TEXT NOT NULL UNIQUE,
		user_agent TEXT,
		ip_address TEXT,
		expires_at TIMESTAMPTZ NOT NULL,
		last_used_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		revoked BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS sessions_user_idx ON sessions (user_id)`,
	`CREATE INDEX IF NOT EXISTS sessions_expires_idx ON sessions (expires_at)`,
}

// Migrate applies the schema. Statements run in order; the first failure
// aborts the run.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
