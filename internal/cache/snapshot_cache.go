package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/indoor-nav/internal/building"
	"github.com/annel0/indoor-nav/internal/logging"
	"github.com/annel0/indoor-nav/internal/storage"
)

// DefaultTTL время жизни декодированного снимка в кеше
const DefaultTTL = 5 * time.Minute

type cacheEntry struct {
	snapshot *building.Snapshot
	expires  time.Time
}

// SnapshotCache держит декодированные снимки в памяти перед холодным хранилищем.
// Реализует storage.SnapshotRepo: Save и Delete пишут в холодное хранилище,
// сбрасывают локальную запись и рассылают инвалидацию остальным узлам.
type SnapshotCache struct {
	cold        storage.SnapshotRepo
	invalidator Invalidator
	ttl         time.Duration
	now         func() time.Time
	logger      *logging.Logger

	mu      sync.RWMutex
	entries map[string]cacheEntry
	gens    map[string]uint64 // растет при каждом сбросе карты

	hits          int64
	misses        int64
	invalidations int64
}

// NewSnapshotCache оборачивает cold. invalidator может быть nil; ttl <= 0 заменяется DefaultTTL.
func NewSnapshotCache(cold storage.SnapshotRepo, invalidator Invalidator, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SnapshotCache{
		cold:        cold,
		invalidator: invalidator,
		ttl:         ttl,
		now:         time.Now,
		logger:      logging.GetComponentLogger("cache"),
		entries:     make(map[string]cacheEntry),
		gens:        make(map[string]uint64),
	}
}

// Listen подписывает кеш на инвалидации других узлов.
func (c *SnapshotCache) Listen(ctx context.Context) error {
	if c.invalidator == nil {
		return nil
	}
	return c.invalidator.SubscribeInvalidations(ctx, func(mapID string) error {
		c.Evict(mapID)
		return nil
	})
}

// Load возвращает снимок из кеша или загружает его из холодного хранилища.
func (c *SnapshotCache) Load(ctx context.Context, mapID string) (*building.Snapshot, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[mapID]
	gen := c.gens[mapID]
	c.mu.RUnlock()

	if ok && c.now().Before(e.expires) {
		atomic.AddInt64(&c.hits, 1)
		return e.snapshot, true, nil
	}

	atomic.AddInt64(&c.misses, 1)
	s, found, err := c.cold.Load(ctx, mapID)
	if err != nil || !found {
		if ok {
			c.Evict(mapID)
		}
		return s, found, err
	}

	// карта сброшена во время чтения: не кешируем возможно устаревший снимок
	c.mu.Lock()
	if c.gens[mapID] == gen {
		c.entries[mapID] = cacheEntry{snapshot: s, expires: c.now().Add(c.ttl)}
	}
	c.mu.Unlock()
	return s, true, nil
}

// Save сохраняет снимок в холодное хранилище и сбрасывает кеш карты.
func (c *SnapshotCache) Save(ctx context.Context, mapID string, s *building.Snapshot) error {
	if err := c.cold.Save(ctx, mapID, s); err != nil {
		return err
	}
	c.invalidate(ctx, mapID)
	return nil
}

// Delete удаляет снимок из холодного хранилища и из кеша.
func (c *SnapshotCache) Delete(ctx context.Context, mapID string) error {
	if err := c.cold.Delete(ctx, mapID); err != nil {
		return err
	}
	c.invalidate(ctx, mapID)
	return nil
}

// List всегда обращается к холодному хранилищу.
func (c *SnapshotCache) List(ctx context.Context) ([]string, error) {
	return c.cold.List(ctx)
}

// Evict удаляет локальную запись карты.
func (c *SnapshotCache) Evict(mapID string) {
	c.mu.Lock()
	c.gens[mapID]++
	if _, ok := c.entries[mapID]; ok {
		delete(c.entries, mapID)
		atomic.AddInt64(&c.invalidations, 1)
	}
	c.mu.Unlock()
}

// Metrics снимок счетчиков кеша.
func (c *SnapshotCache) Metrics() Metrics {
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)

	c.mu.RLock()
	keys := len(c.entries)
	c.mu.RUnlock()

	m := Metrics{
		TotalRequests: hits + misses,
		CacheHits:     hits,
		CacheMisses:   misses,
		TotalKeys:     keys,
		Invalidations: atomic.LoadInt64(&c.invalidations),
		LastUpdate:    c.now(),
	}
	if m.TotalRequests > 0 {
		m.HitRatio = float64(hits) / float64(m.TotalRequests)
	}
	return m
}

// Close закрывает invalidator и холодное хранилище.
func (c *SnapshotCache) Close() error {
	if c.invalidator != nil {
		if err := c.invalidator.Close(); err != nil {
			c.logger.Warn("⚠️ ошибка закрытия invalidator: %v", err)
		}
	}
	return c.cold.Close()
}

func (c *SnapshotCache) invalidate(ctx context.Context, mapID string) {
	c.Evict(mapID)
	if c.invalidator == nil {
		return
	}
	if err := c.invalidator.PublishInvalidation(ctx, mapID); err != nil {
		c.logger.Warn("⚠️ инвалидация карты %s не разослана: %v", mapID, err)
	}
}
