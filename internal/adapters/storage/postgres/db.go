package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// SchemaVersion es la última versión de schema que aplica Migrate.
const SchemaVersion = 1

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

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
		birth_date DATE NULL,
		microchip TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pets_owner ON pets(owner_user_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS pet_vitals (
		id TEXT PRIMARY KEY,
		pet_id TEXT NOT NULL REFERENCES pets(id),
		metric_type TEXT NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		species TEXT NOT NULL DEFAULT '',
		recorded_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pet_vitals_pet_at ON pet_vitals(pet_id, recorded_at)`,

	`CREATE TABLE IF NOT EXISTS pet_diary (
		id TEXT PRIMARY KEY,
		pet_id TEXT NOT NULL REFERENCES pets(id),
		entry_date DATE NOT NULL,
		mood_score DOUBLE PRECISION NULL,
		behavioral_tags JSONB NOT NULL DEFAULT '[]',
		weather_condition TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pet_diary_pet_date ON pet_diary(pet_id, entry_date)`,

	`CREATE TABLE IF NOT EXISTS pet_analyses (
		id TEXT PRIMARY KEY,
		pet_id TEXT NOT NULL REFERENCES pets(id),
		kind TEXT NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		primary_emotion TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		secondary_emotions JSONB NOT NULL DEFAULT '{}',
		analyzed_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pet_analyses_pet_at ON pet_analyses(pet_id, analyzed_at)`,

	`CREATE TABLE IF NOT EXISTS pet_medications (
		id TEXT PRIMARY KEY,
		pet_id TEXT NOT NULL REFERENCES pets(id),
		name TEXT NOT NULL,
		dosage TEXT NOT NULL DEFAULT '',
		dose_unit TEXT NOT NULL DEFAULT '',
		frequency TEXT NOT NULL DEFAULT '',
		start_date DATE NOT NULL,
		end_date DATE NULL,
		is_active BOOLEAN NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pet_medications_pet_start ON pet_medications(pet_id, start_date)`,

	`CREATE TABLE IF NOT EXISTS pet_series_versions (
		pet_id TEXT PRIMARY KEY,
		version BIGINT NOT NULL
	)`,
}

// Migrate crea el schema si hace falta, en una transacción, y registra la versión
// en schema_migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("migrate: db is nil")
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`); err != nil {
		return fmt.Errorf("migrate: create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
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

	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version) VALUES ($1)`, SchemaVersion); err != nil {
		return fmt.Errorf("migrate: record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit transaction: %w", err)
	}
	return nil
}
