package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied statement by statement; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id          UUID PRIMARY KEY,
		position    TEXT NOT NULL,
		company     TEXT NOT NULL,
		location    TEXT NOT NULL DEFAULT '',
		employer_id UUID,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS job_seekers (
		id    UUID PRIMARY KEY,
		name  TEXT NOT NULL DEFAULT '',
		email TEXT,
		phone TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id                  UUID PRIMARY KEY,
		job_id              UUID NOT NULL,
		job_seeker_id       UUID NOT NULL,
		status              TEXT NOT NULL DEFAULT 'applied',
		compatibility_score INTEGER NOT NULL DEFAULT 0 CHECK (compatibility_score BETWEEN 0 AND 100),
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT applications_job_seeker_unique UNIQUE (job_id, job_seeker_id)
	)`,
	// Jobs may live only in the search index, so applications carry no
	// foreign key to the jobs table. Older schemas created one.
	`ALTER TABLE applications DROP CONSTRAINT IF EXISTS applications_job_id_fkey`,
	`CREATE INDEX IF NOT EXISTS applications_seeker_created_idx
		ON applications (job_seeker_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id           UUID PRIMARY KEY,
		recipient_id UUID NOT NULL,
		type         TEXT NOT NULL,
		message      TEXT NOT NULL,
		read         BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_recipient_created_idx
		ON notifications (recipient_id, created_at DESC)`,
}

// Migrate creates the tables used by the workers and the HTTP API.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}
	return nil
}
