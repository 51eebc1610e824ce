package router

import (
	"context"
	"database/sql"
	"fmt"

	memcache "pet-wellness/internal/adapters/cache/memory"
	rediscache "pet-wellness/internal/adapters/cache/redis"
	mem "pet-wellness/internal/adapters/storage/memory"
	pg "pet-wellness/internal/adapters/storage/postgres"
	lite "pet-wellness/internal/adapters/storage/sqlite"
	"pet-wellness/internal/config"
	"pet-wellness/internal/domain/pets"
	"pet-wellness/internal/domain/records"
	"pet-wellness/internal/domain/wellness"
	"pet-wellness/internal/platform/logger"
)

// Stores agrupa los repositorios de un backend.
type Stores struct {
	Pets    pets.Repository
	Records records.Repository
	Backend string

	db *sql.DB
}

func (s Stores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func MemoryStores() Stores {
	return Stores{Pets: mem.NewPetRepo(), Records: mem.NewRecordRepo(), Backend: "memory"}
}

// OpenStores elige backend: DB_DSN (Postgres), si no SQLITE_PATH, si no memoria.
// Aplica migraciones antes de devolver.
func OpenStores(ctx context.Context, cfg config.Config, log logger.Logger) (Stores, error) {
	switch {
	case cfg.DBDSN != "":
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return Stores{}, fmt.Errorf("open postgres: %w", err)
		}
		if err := pg.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return Stores{}, err
		}
		log.Info("store ready", map[string]any{"backend": "postgres", "schema_version": pg.SchemaVersion})
		return Stores{Pets: pg.NewPetsRepo(db), Records: pg.NewRecordsRepo(db), Backend: "postgres", db: db}, nil

	case cfg.SQLitePath != "":
		db, err := lite.Open(cfg.SQLitePath)
		if err != nil {
			return Stores{}, fmt.Errorf("open sqlite: %w", err)
		}
		if err := lite.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return Stores{}, err
		}
		log.Info("store ready", map[string]any{"backend": "sqlite", "path": cfg.SQLitePath, "schema_version": lite.SchemaVersion})
		return Stores{Pets: lite.NewPetsRepo(db), Records: lite.NewRecordsRepo(db), Backend: "sqlite", db: db}, nil
	}

	log.Warn("no database configured, using in-memory store", nil)
	return MemoryStores(), nil
}

// OpenCache usa Redis si REDIS_ADDR está definido; si no, cache en memoria.
func OpenCache(ctx context.Context, cfg config.Config, log logger.Logger) (wellness.Cache, func() error, error) {
	if cfg.RedisAddr == "" {
		return memcache.NewReportCache(cfg.CacheTTL), func() error { return nil }, nil
	}

	c, err := rediscache.New(ctx, rediscache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info("report cache ready", map[string]any{"backend": "redis", "addr": cfg.RedisAddr, "ttl": cfg.CacheTTL.String()})
	return c, c.Close, nil
}
