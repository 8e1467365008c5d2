package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/annel0/indoor-nav/internal/building"
)

// ErrSnapshotNotFound снимок с таким ID отсутствует
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepo определяет интерфейс хранилища снимков зданий.
// Возвращаемый Load снимок может разделяться между вызовами:
// вызывающий, которому нужно изменять снимок, обязан его скопировать.
type SnapshotRepo interface {
	// Save сохраняет снимок под ID карты, заменяя предыдущий.
	// Параметры:
	//   ctx - контекст для отмены операции
	//   mapID - идентификатор карты
	//   s - снимок здания
	Save(ctx context.Context, mapID string, s *building.Snapshot) error

	// Load загружает снимок.
	// Возвращает:
	//   *building.Snapshot - снимок здания
	//   bool - false если карты с таким ID нет
	//   error - ошибка хранилища или повреждённые данные
	Load(ctx context.Context, mapID string) (*building.Snapshot, bool, error)

	// Delete удаляет снимок; ErrSnapshotNotFound если его нет.
	Delete(ctx context.Context, mapID string) error

	// List возвращает ID всех карт по возрастанию.
	List(ctx context.Context) ([]string, error)

	// Close освобождает соединения и файлы хранилища.
	Close() error
}

func validateSave(mapID string, s *building.Snapshot) error {
	if mapID == "" {
		return fmt.Errorf("пустой ID карты")
	}
	if s == nil {
		return fmt.Errorf("пустой снимок для карты %s", mapID)
	}
	return nil
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
