package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/annel0/indoor-nav/internal/building"
)

// MemorySnapshotRepo реализует SnapshotRepo в памяти.
// Используется как fallback без внешних хранилищ и в тестах.
// ВНИМАНИЕ: Данные теряются при перезапуске сервера!
type MemorySnapshotRepo struct {
	mu   sync.RWMutex
	data map[string]*building.Snapshot
}

// NewMemorySnapshotRepo создает новый репозиторий снимков в памяти.
func NewMemorySnapshotRepo() *MemorySnapshotRepo {
	return &MemorySnapshotRepo{
		data: make(map[string]*building.Snapshot),
	}
}

// Save сохраняет снимок. Снимок не копируется.
func (r *MemorySnapshotRepo) Save(ctx context.Context, mapID string, s *building.Snapshot) error {
	if err := validateSave(mapID, s); err != nil {
		return err
	}
	if err := checkContext(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[mapID] = s
	return nil
}

// Load возвращает сохраненный экземпляр снимка
func (r *MemorySnapshotRepo) Load(ctx context.Context, mapID string) (*building.Snapshot, bool, error) {
	if err := checkContext(ctx); err != nil {
		return nil, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.data[mapID]
	return s, exists, nil
}

// Delete удаляет снимок из памяти.
func (r *MemorySnapshotRepo) Delete(ctx context.Context, mapID string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[mapID]; !exists {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, mapID)
	}

	delete(r.data, mapID)
	return nil
}

// List возвращает ID карт по возрастанию
func (r *MemorySnapshotRepo) List(ctx context.Context) ([]string, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.data))
	for id := range r.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Count возвращает количество сохраненных снимков (для отладки).
func (r *MemorySnapshotRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

// Close ничего не освобождает
func (r *MemorySnapshotRepo) Close() error {
	return nil
}
