package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pet-wellness/internal/domain/wellness"

	goredis "github.com/redis/go-redis/v9"
)

// KeyPrefix agrupa las claves de reportes en Redis.
const KeyPrefix = "pet-wellness:report:"

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// ReportCache guarda reportes serializados como JSON en Redis.
type ReportCache struct {
	client *goredis.Client
	ttl    time.Duration
}

var _ wellness.Cache = (*ReportCache)(nil)

// New conecta y verifica con PING.
func New(ctx context.Context, cfg Config) (*ReportCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewWithClient(client, cfg.TTL), nil
}

func NewWithClient(client *goredis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

func (c *ReportCache) Get(ctx context.Context, key string) (wellness.Report, bool, error) {
	raw, err := c.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return wellness.Report{}, false, nil
	}
	if err != nil {
		return wellness.Report{}, false, err
	}

	var r wellness.Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return wellness.Report{}, false, fmt.Errorf("decode cached report: %w", err)
	}
	return r, true, nil
}

func (c *ReportCache) Set(ctx context.Context, key string, r wellness.Report) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, KeyPrefix+key, raw, c.ttl).Err()
}

func (c *ReportCache) Close() error {
	return c.client.Close()
}
