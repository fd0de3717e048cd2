package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'manager', 'user')),
    active        INTEGER NOT NULL DEFAULT 1,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS persons (
    id         INTEGER PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name  TEXT NOT NULL,
    status     TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS locations (
    id        INTEGER PRIMARY KEY,
    type      TEXT NOT NULL CHECK (type IN ('storage', 'person')),
    name      TEXT NOT NULL,
    person_id INTEGER UNIQUE REFERENCES persons(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS articles (
    id                     TEXT PRIMARY KEY CHECK (id GLOB '[0-9][0-9][0-9][0-9][0-9][0-9][0-9][0-9][0-9]'),
    category               TEXT NOT NULL,
    label                  TEXT NOT NULL,
    size                   TEXT,
    notes                  TEXT,
    expiry_date            TEXT,
    helmet_last_check      TEXT,
    helmet_next_check      TEXT,
    helmet_manufactured_at TEXT,
    location_id            INTEGER NOT NULL REFERENCES locations(id),
    active                 INTEGER NOT NULL DEFAULT 1,
    created_at             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_articles_location_active
    ON articles(location_id) WHERE active = 1;

CREATE TABLE IF NOT EXISTS movements (
    id               INTEGER PRIMARY KEY,
    article_id       TEXT NOT NULL REFERENCES articles(id),
    from_location_id INTEGER REFERENCES locations(id),
    to_location_id   INTEGER REFERENCES locations(id),
    action           TEXT NOT NULL,
    event_type       TEXT NOT NULL,
    old_value        TEXT,
    new_value        TEXT,
    performed_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_movements_article
    ON movements(article_id, performed_at DESC);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// StorageLocationName is the display name of the storage singleton.
const StorageLocationName = "Lager"

// EnsureSchema creates all tables and indexes if they don't already exist
// and seeds the singleton storage location on first run.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	_, err := db.Exec(
		`INSERT INTO locations (type, name)
		 SELECT 'storage', ?
		 WHERE NOT EXISTS (SELECT 1 FROM locations WHERE type = 'storage')`,
		StorageLocationName,
	)
	if err != nil {
		return fmt.Errorf("seeding storage location: %w", err)
	}
	return nil
}
