package db

import (
	"database/sql"
	"fmt"
)

// Migrate applies every schema statement. Statements are idempotent, so it
// is safe to run on every start.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS contact_relationships (
		id                       TEXT PRIMARY KEY,
		contact_id               TEXT NOT NULL UNIQUE,
		current_level            INTEGER NOT NULL DEFAULT 1 CHECK(current_level >= 1),
		current_path_id          TEXT,
		current_step_index       INTEGER CHECK(current_step_index IS NULL OR current_step_index >= 0),
		current_path_instance_id TEXT,
		created_at               TEXT NOT NULL,
		updated_at               TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS level_switches (
		contact_relationship_id TEXT NOT NULL REFERENCES contact_relationships(id) ON DELETE CASCADE,
		seq                     INTEGER NOT NULL,
		from_level              INTEGER NOT NULL CHECK(from_level >= 1),
		to_level                INTEGER NOT NULL CHECK(to_level >= 1),
		switched_at             TEXT NOT NULL,
		PRIMARY KEY (contact_relationship_id, seq)
	)`,

	`CREATE TABLE IF NOT EXISTS path_instances (
		id                      TEXT PRIMARY KEY,
		contact_relationship_id TEXT NOT NULL REFERENCES contact_relationships(id) ON DELETE CASCADE,
		path_id                 TEXT NOT NULL,
		tier                    INTEGER NOT NULL CHECK(tier >= 1),
		status                  TEXT NOT NULL DEFAULT 'active'
		                        CHECK(status IN ('active','ended','skipped')),
		started_at              TEXT NOT NULL,
		ended_at                TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_path_instances_relationship ON path_instances(contact_relationship_id, tier)`,

	// At most one active instance per relationship.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_path_instances_one_active
		ON path_instances(contact_relationship_id) WHERE status = 'active'`,

	`CREATE TABLE IF NOT EXISTS step_instances (
		path_instance_id TEXT NOT NULL REFERENCES path_instances(id) ON DELETE CASCADE,
		step_index       INTEGER NOT NULL CHECK(step_index >= 0),
		step_id          TEXT NOT NULL DEFAULT '',
		completed_at     TEXT,
		PRIMARY KEY (path_instance_id, step_index)
	)`,

	`CREATE TABLE IF NOT EXISTS outreaches (
		id               TEXT PRIMARY KEY,
		contact_id       TEXT NOT NULL,
		title            TEXT NOT NULL,
		due_date         TEXT NOT NULL,
		status           TEXT NOT NULL DEFAULT 'pending'
		                 CHECK(status IN ('pending','completed')),
		path_instance_id TEXT REFERENCES path_instances(id) ON DELETE SET NULL,
		step_index       INTEGER,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_outreaches_contact ON outreaches(contact_id)`,
	`CREATE INDEX IF NOT EXISTS idx_outreaches_path_instance ON outreaches(path_instance_id)`,

	`CREATE TABLE IF NOT EXISTS interactions (
		id           TEXT PRIMARY KEY,
		contact_id   TEXT NOT NULL,
		date         TEXT NOT NULL,
		location     TEXT NOT NULL DEFAULT '',
		topics       TEXT NOT NULL DEFAULT '[]',
		warmth       INTEGER NOT NULL DEFAULT 3 CHECK(warmth BETWEEN 1 AND 5),
		strengthened INTEGER NOT NULL DEFAULT 0,
		note         TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_interactions_contact_date ON interactions(contact_id, date)`,
}
