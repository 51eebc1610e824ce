package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SchemaVersion es la última versión de schema que aplica Migrate.
const SchemaVersion = 1

const (
	// timestamps como TEXT de ancho fijo en UTC: el orden lexicográfico es el cronológico
	tsLayout   = "2006-01-02T15:04:05.000000000Z"
	dateLayout = "2006-01-02"
)

// Open abre (o crea) la base SQLite en path con foreign keys activas.
func Open(path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is empty")
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// un único writer evita SQLITE_BUSY entre transacciones concurrentes
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS pets (
		id TEXT PRIMARY KEY,
		owner_user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		species TEXT NOT NULL,
		breed TEXT NOT NULL DEFAULT '',
		sex TEXT NOT NULL DEFAULT 'unknown',
		birth_date TEXT NULL,
		microchip TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_pets_owner ON pets(owner_user_id, created_at);`,

	`CREATE TABLE IF NOT EXISTS pet_vitals (
		id TEXT PRIMARY KEY,
		pet_id TEXT NOT NULL,
		metric_type TEXT NOT NULL,
		value REAL NOT NULL,
		species TEXT NOT NULL DEFAULT '',
		recorded_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY(pet_id) REFERENCES pets(id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_pet_vitals_pet_at ON pet_vitals(pet_id, recorded_at);`,

	`CREATE TABLE IF NOT EXISTS pet_diary (
		id TEXT PRIMARY KEY,
		pet_id TEXT NOT NULL,
		entry_date TEXT NOT NULL,
		mood_score REAL NULL,
		behavioral_tags TEXT NOT NULL DEFAULT '[]',
		weather_condition TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		FOREIGN KEY(pet_id) REFERENCES pets(id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_pet_diary_pet_date ON pet_diary(pet_id, entry_date);`,

	`CREATE TABLE IF NOT EXISTS pet_analyses (
		id TEXT PRIMARY KEY,
		pet_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		primary_emotion TEXT NOT NULL,
		confidence REAL NOT NULL,
		secondary_emotions TEXT NOT NULL DEFAULT '{}',
		analyzed_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY(pet_id) REFERENCES pets(id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_pet_analyses_pet_at ON pet_analyses(pet_id, analyzed_at);`,

	`CREATE TABLE IF NOT EXISTS pet_medications (
		id TEXT PRIMARY KEY,
		pet_id TEXT NOT NULL,
		name TEXT NOT NULL,
		dosage TEXT NOT NULL DEFAULT '',
		dose_unit TEXT NOT NULL DEFAULT '',
		frequency TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL,
		end_date TEXT NULL,
		is_active INTEGER NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		FOREIGN KEY(pet_id) REFERENCES pets(id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_pet_medications_pet_start ON pet_medications(pet_id, start_date);`,

	`CREATE TABLE IF NOT EXISTS pet_series_versions (
		pet_id TEXT PRIMARY KEY,
		version INTEGER NOT NULL
	);`,
}

// Migrate asegura que el schema exista y esté en SchemaVersion.
func Migrate(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("migrate: db is nil")
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY);`); err != nil {
		return fmt.Errorf("migrate: create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations;`).Scan(&current); err != nil {
		return fmt.Errorf("migrate: read current version: %w", err)
	}
	if current >= SchemaVersion {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate: begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: statement %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version) VALUES (?);`, SchemaVersion); err != nil {
		return fmt.Errorf("migrate: record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit transaction: %w", err)
	}
	return nil
}

func formatTS(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

func parseTS(s string) (time.Time, error) {
	return time.Parse(tsLayout, s)
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
