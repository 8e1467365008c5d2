package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/annel0/indoor-nav/internal/building"
	"github.com/annel0/indoor-nav/internal/config"
	"github.com/annel0/indoor-nav/internal/logging"
)

// NewSnapshotRepo создает хранилище по конфигурации; пустой backend - память
func NewSnapshotRepo(cfg config.StorageConfig) (SnapshotRepo, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemorySnapshotRepo(), nil
	case "badger":
		path := cfg.BadgerPath
		if path == "" {
			path = filepath.Join("data", "snapshots")
		}
		return NewBadgerSnapshotStore(path)
	case "redis":
		rc := DefaultRedisConfig()
		if cfg.RedisAddr != "" {
			rc.Addr = cfg.RedisAddr
		}
		rc.DB = cfg.RedisDB
		rc.TTL = cfg.RedisTTLDuration()
		return NewRedisSnapshotRepo(rc)
	case "maria", "mariadb", "mysql":
		if cfg.MariaDSN == "" {
			return nil, fmt.Errorf("для backend %q требуется maria_dsn", cfg.Backend)
		}
		return NewMariaSnapshotRepo(cfg.MariaDSN)
	}
	return nil, fmt.Errorf("неизвестный backend хранилища: %q", cfg.Backend)
}

// ImportDir загружает все *.json карты каталога в хранилище.
// ID карты - имя файла без расширения. Возвращает число импортированных карт.
func ImportDir(ctx context.Context, repo SnapshotRepo, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("чтение каталога карт %s: %w", dir, err)
	}

	logger := logging.GetStorageLogger()
	imported := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return imported, fmt.Errorf("чтение карты %s: %w", path, err)
		}

		s, err := building.DecodeDocument(data)
		if err != nil {
			return imported, fmt.Errorf("карта %s: %w", path, err)
		}
		if err := s.Validate(); err != nil {
			logger.Warn("⚠️ карта %s пропущена: %v", path, err)
			continue
		}

		mapID := strings.TrimSuffix(entry.Name(), ".json")
		if s.Name == "" {
			s.Name = mapID
		}
		if err := repo.Save(ctx, mapID, s); err != nil {
			return imported, err
		}
		imported++
	}

	logger.Info("🗺️ импортировано карт: %d из %s", imported, dir)
	return imported, nil
}
