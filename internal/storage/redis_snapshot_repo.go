package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/annel0/indoor-nav/internal/building"
	"github.com/annel0/indoor-nav/internal/logging"
	"github.com/go-redis/redis/v8"
)

// RedisSnapshotRepo хранит сжатые снимки в Redis, общий горячий слой для нескольких инстансов
type RedisSnapshotRepo struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string        // Адрес Redis сервера
	Password  string        // Пароль (пустой если не требуется)
	DB        int           // Номер базы данных
	KeyPrefix string        // Префикс для ключей
	TTL       time.Duration // Время жизни записей; 0 - без истечения
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		DB:        0,
		KeyPrefix: "nav:snapshot:",
	}
}

// NewRedisSnapshotRepo подключается к Redis и проверяет соединение
func NewRedisSnapshotRepo(config *RedisConfig) (*RedisSnapshotRepo, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultRedisConfig().KeyPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetStorageLogger().Info("🔴 Connected to Redis at %s", config.Addr)
	return &RedisSnapshotRepo{
		client:    client,
		keyPrefix: config.KeyPrefix,
		ttl:       config.TTL,
	}, nil
}

// Save сохраняет снимок с TTL из конфигурации
func (r *RedisSnapshotRepo) Save(ctx context.Context, mapID string, s *building.Snapshot) error {
	if err := validateSave(mapID, s); err != nil {
		return err
	}

	data, err := EncodeSnapshot(s)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.keyPrefix+mapID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", mapID, err)
	}
	return nil
}

// Load загружает снимок
func (r *RedisSnapshotRepo) Load(ctx context.Context, mapID string) (*building.Snapshot, bool, error) {
	data, err := r.client.Get(ctx, r.keyPrefix+mapID).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("failed to get snapshot %s: %w", mapID, err)
	}

	s, err := DecodeSnapshot(data)
	if err != nil {
		return nil, false, fmt.Errorf("карта %s: %w", mapID, err)
	}
	return s, true, nil
}

// Delete удаляет снимок
func (r *RedisSnapshotRepo) Delete(ctx context.Context, mapID string) error {
	n, err := r.client.Del(ctx, r.keyPrefix+mapID).Result()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", mapID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, mapID)
	}
	return nil
}

// List сканирует ключи с префиксом
func (r *RedisSnapshotRepo) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0)
	iter := r.client.Scan(ctx, 0, r.keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, iter.Val()[len(r.keyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan snapshots: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close закрывает клиент Redis
func (r *RedisSnapshotRepo) Close() error {
	return r.client.Close()
}
