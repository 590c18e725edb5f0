package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/eslsoft/shelfd/internal/infrastructure/config"
)

// migrations run in order inside one transaction. Statements are written to
// be re-runnable so `db-init` can be applied to an existing database.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS authors (
		id BIGSERIAL PRIMARY KEY,
		name JSONB NOT NULL DEFAULT '{}'::jsonb,
		bio JSONB NOT NULL DEFAULT '{}'::jsonb,
		name_key TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS authors_name_key_idx ON authors (name_key)`,

	`CREATE TABLE IF NOT EXISTS works (
		id BIGSERIAL PRIMARY KEY,
		author_id BIGINT NOT NULL REFERENCES authors(id),
		title JSONB NOT NULL DEFAULT '{}'::jsonb,
		description JSONB NOT NULL DEFAULT '{}'::jsonb,
		isbn TEXT NOT NULL DEFAULT '',
		cover_url TEXT NOT NULL DEFAULT '',
		page_count INT NOT NULL DEFAULT 0,
		published_date DATE,
		is_main_work BOOLEAN NOT NULL DEFAULT FALSE,
		title_key TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS works_author_title_key_idx ON works (author_id, title_key)`,

	`CREATE TABLE IF NOT EXISTS user_books (
		user_id BIGINT NOT NULL,
		work_id BIGINT NOT NULL REFERENCES works(id),
		read_date DATE,
		rating DOUBLE PRECISION,
		review TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, work_id)
	)`,

	`CREATE TABLE IF NOT EXISTS lists (
		id BIGSERIAL PRIMARY KEY,
		owner_id BIGINT,
		name JSONB NOT NULL DEFAULT '{}'::jsonb,
		description JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS list_entries (
		list_id BIGINT NOT NULL REFERENCES lists(id) ON DELETE CASCADE,
		work_id BIGINT NOT NULL REFERENCES works(id),
		rank INT NOT NULL DEFAULT 0,
		PRIMARY KEY (list_id, work_id)
	)`,
	`CREATE INDEX IF NOT EXISTS list_entries_rank_idx ON list_entries (list_id, rank)`,
}

// RunMigrations applies the schema migrations to the target database.
func RunMigrations(ctx context.Context, cfg *config.Config) error {
	db, err := sql.Open("postgres", cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range migrations {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return tx.Commit()
}
