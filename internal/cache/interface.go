package cache

import (
	"context"
	"time"
)

// Invalidator рассылает и принимает уведомления об изменении карт,
// чтобы узлы кластера сбрасывали устаревшие снимки.
type Invalidator interface {
	// PublishInvalidation отправляет уведомление об изменении карты.
	PublishInvalidation(ctx context.Context, mapID string) error

	// SubscribeInvalidations подписывается на уведомления других узлов.
	SubscribeInvalidations(ctx context.Context, handler InvalidationHandler) error

	// Close закрывает соединение.
	Close() error
}

// InvalidationHandler обрабатывает уведомление об изменении карты.
type InvalidationHandler func(mapID string) error

// Metrics метрики кеша снимков.
type Metrics struct {
	TotalRequests int64     `json:"total_requests"`
	CacheHits     int64     `json:"cache_hits"`
	CacheMisses   int64     `json:"cache_misses"`
	HitRatio      float64   `json:"hit_ratio"`
	TotalKeys     int       `json:"total_keys"`
	Invalidations int64     `json:"invalidations"`
	LastUpdate    time.Time `json:"last_update"`
}
