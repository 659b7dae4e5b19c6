package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

// schemaV1 is the initial schema for the SQLite store.
const schemaV1 = `
-- Nodes
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    dominant_emotion TEXT,
    time_preference TEXT,
    status TEXT NOT NULL DEFAULT 'active',
    registered_at TEXT NOT NULL,
    last_activity_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS item_characteristics (
    item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    characteristic TEXT NOT NULL,
    PRIMARY KEY (item_id, characteristic)
);
CREATE INDEX IF NOT EXISTS idx_item_characteristics ON item_characteristics(characteristic);

CREATE TABLE IF NOT EXISTS emotions (
    name TEXT PRIMARY KEY,
    description TEXT
);

-- Item -> Emotion (curated reference data)
CREATE TABLE IF NOT EXISTS item_resonance (
    item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    emotion TEXT NOT NULL,
    intensity REAL NOT NULL,
    PRIMARY KEY (item_id, emotion)
);
CREATE INDEX IF NOT EXISTS idx_item_resonance_emotion ON item_resonance(emotion, intensity DESC);

-- User -> Emotion, one row per user
CREATE TABLE IF NOT EXISTS emotional_states (
    user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    emotion TEXT NOT NULL,
    intensity REAL NOT NULL,
    provenance TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

-- User -> Emotion, one row per (user, emotion)
CREATE TABLE IF NOT EXISTS user_resonance (
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    emotion TEXT NOT NULL,
    intensity REAL NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (user_id, emotion)
);

-- User -> Item feedback
CREATE TABLE IF NOT EXISTS plays (
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    liked INTEGER NOT NULL,
    rating INTEGER,
    weight REAL NOT NULL,
    played_at TEXT NOT NULL,
    PRIMARY KEY (user_id, item_id)
);
CREATE INDEX IF NOT EXISTS idx_plays_item ON plays(item_id, liked);

-- User -> User
CREATE TABLE IF NOT EXISTS similarities (
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    other_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    score REAL NOT NULL,
    shared_count INTEGER NOT NULL,
    shared_item_ids TEXT,  -- JSON array
    provenance TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (user_id, other_id)
);

-- Schema version
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// InitSchema initializes the database schema.
// It creates all tables and applies migrations as needed.
// Runs integrity validation before migrations on existing databases.
func InitSchema(ctx context.Context, db *sql.DB) error {
	currentVersion, err := getSchemaVersion(ctx, db)
	if err != nil {
		// Schema version table doesn't exist yet, create fresh schema
		if err := createSchema(ctx, db); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		return nil
	}

	if err := ValidateIntegrity(ctx, db); err != nil {
		return fmt.Errorf("database integrity check failed: %w", err)
	}

	if currentVersion > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", currentVersion, SchemaVersion)
	}

	return nil
}

// getSchemaVersion returns the current schema version from the database.
// Returns 0 and an error if the schema_version table doesn't exist.
func getSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// createSchema creates the initial database schema.
func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return tx.Commit()
}

// ValidateIntegrity runs SQLite integrity checks on the database.
// It runs PRAGMA integrity_check and PRAGMA foreign_key_check.
func ValidateIntegrity(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `PRAGMA integrity_check`)
	if err != nil {
		return fmt.Errorf("failed to run integrity_check: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var result string
		if err := rows.Scan(&result); err != nil {
			return fmt.Errorf("failed to scan integrity_check result: %w", err)
		}
		if result != "ok" {
			return fmt.Errorf("integrity_check failed: %s", result)
		}
	}

	fkRows, err := db.QueryContext(ctx, `PRAGMA foreign_key_check`)
	if err != nil {
		return fmt.Errorf("failed to run foreign_key_check: %w", err)
	}
	defer fkRows.Close()

	var fkErrors []string
	for fkRows.Next() {
		var table, rowid, parent, fkid sql.NullString
		if err := fkRows.Scan(&table, &rowid, &parent, &fkid); err != nil {
			return fmt.Errorf("failed to scan foreign_key_check result: %w", err)
		}
		fkErrors = append(fkErrors, fmt.Sprintf("table=%s rowid=%s parent=%s fkid=%s", table.String, rowid.String, parent.String, fkid.String))
	}

	if len(fkErrors) > 0 {
		return fmt.Errorf("foreign_key_check failed: %v", fkErrors)
	}

	return nil
}
