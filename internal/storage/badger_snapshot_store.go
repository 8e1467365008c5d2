package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/annel0/indoor-nav/internal/building"
	"github.com/dgraph-io/badger/v3"
)

const snapshotKeyPrefix = "snapshot:"

// BadgerSnapshotStore хранит сжатые снимки во встроенной BadgerDB
type BadgerSnapshotStore struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool
}

// NewBadgerSnapshotStore открывает (или создает) базу в каталоге dbPath
func NewBadgerSnapshotStore(dbPath string) (*BadgerSnapshotStore, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	return &BadgerSnapshotStore{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
	}, nil
}

// Close закрывает хранилище данных
func (bs *BadgerSnapshotStore) Close() error {
	bs.mutex.Lock()
	defer bs.mutex.Unlock()

	if !bs.isReady {
		return nil
	}

	bs.isReady = false
	return bs.db.Close()
}

func snapshotKey(mapID string) []byte {
	return []byte(snapshotKeyPrefix + mapID)
}

// Save сохраняет снимок
func (bs *BadgerSnapshotStore) Save(ctx context.Context, mapID string, s *building.Snapshot) error {
	if err := validateSave(mapID, s); err != nil {
		return err
	}
	if err := checkContext(ctx); err != nil {
		return err
	}

	bs.mutex.RLock()
	defer bs.mutex.RUnlock()

	if !bs.isReady {
		return fmt.Errorf("хранилище не готово")
	}

	data, err := EncodeSnapshot(s)
	if err != nil {
		return err
	}

	err = bs.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey(mapID), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

// Load загружает снимок; каждый вызов возвращает новый экземпляр
func (bs *BadgerSnapshotStore) Load(ctx context.Context, mapID string) (*building.Snapshot, bool, error) {
	if err := checkContext(ctx); err != nil {
		return nil, false, err
	}

	bs.mutex.RLock()
	defer bs.mutex.RUnlock()

	if !bs.isReady {
		return nil, false, fmt.Errorf("хранилище не готово")
	}

	var data []byte
	err := bs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(mapID))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})

	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	s, err := DecodeSnapshot(data)
	if err != nil {
		return nil, false, fmt.Errorf("карта %s: %w", mapID, err)
	}
	return s, true, nil
}

// Delete удаляет снимок
func (bs *BadgerSnapshotStore) Delete(ctx context.Context, mapID string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	bs.mutex.RLock()
	defer bs.mutex.RUnlock()

	if !bs.isReady {
		return fmt.Errorf("хранилище не готово")
	}

	return bs.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(snapshotKey(mapID)); err != nil {
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("%w: %s", ErrSnapshotNotFound, mapID)
			}
			return err
		}
		return txn.Delete(snapshotKey(mapID))
	})
}

// List перебирает ключи с префиксом snapshot: без чтения значений
func (bs *BadgerSnapshotStore) List(ctx context.Context) ([]string, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	bs.mutex.RLock()
	defer bs.mutex.RUnlock()

	if !bs.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	ids := make([]string, 0)
	err := bs.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(snapshotKeyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			ids = append(ids, key[len(snapshotKeyPrefix):])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}
	return ids, nil
}
