package memory

import (
	"context"
	"sync"
	"time"

	"pet-wellness/internal/domain/wellness"
)

type entry struct {
	report    wellness.Report
	expiresAt time.Time
}

// ReportCache guarda reportes en memoria con TTL. Las entradas vencidas se
// descartan al leerlas.
type ReportCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]entry
	now   func() time.Time
}

var _ wellness.Cache = (*ReportCache)(nil)

// NewReportCache crea un cache; ttl <= 0 significa sin vencimiento.
func NewReportCache(ttl time.Duration) *ReportCache {
	return &ReportCache{
		ttl:   ttl,
		items: make(map[string]entry),
		now:   time.Now,
	}
}

func (c *ReportCache) Get(_ context.Context, key string) (wellness.Report, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return wellness.Report{}, false, nil
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		delete(c.items, key)
		return wellness.Report{}, false, nil
	}
	return e.report, true, nil
}

func (c *ReportCache) Set(_ context.Context, key string, r wellness.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{report: r}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}
	c.items[key] = e
	return nil
}

func (c *ReportCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
