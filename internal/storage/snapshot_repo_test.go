package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/annel0/indoor-nav/internal/building"
	"github.com/annel0/indoor-nav/internal/vec"
)

func sampleSnapshot(t *testing.T) *building.Snapshot {
	t.Helper()
	s := building.NewSnapshot("sample")
	s.AddFloor(building.NewFloor(1, 4, 3))
	s.AddFloor(building.NewFloor(2, 4, 3))
	s.Floors[1].SetCell(1, 1, building.CellObstacle)
	if err := s.Floors[1].SetEntrance(0, 0); err != nil {
		t.Fatal(err)
	}
	if err := s.Floors[2].AddRoom("201", "Office", 3, 2); err != nil {
		t.Fatal(err)
	}
	s.AddLink(building.NewVerticalLink("lift", building.LinkElevator, vec.Vec3{X: 3, Y: 0, Z: 1}, vec.Vec3{X: 3, Y: 0, Z: 2}))
	s.MainEntrance = &vec.Vec3{X: 0, Y: 0, Z: 1}
	return s
}

// exerciseRepo общий сценарий для всех реализаций SnapshotRepo
func exerciseRepo(t *testing.T, repo SnapshotRepo) {
	ctx := context.Background()

	t.Run("Save and Load", func(t *testing.T) {
		if err := repo.Save(ctx, "campus", sampleSnapshot(t)); err != nil {
			t.Fatalf("Ошибка сохранения снимка: %v", err)
		}

		s, found, err := repo.Load(ctx, "campus")
		if err != nil {
			t.Fatalf("Ошибка загрузки снимка: %v", err)
		}
		if !found {
			t.Fatal("Снимок не найден")
		}
		if len(s.Floors) != 2 || len(s.Links) != 1 {
			t.Errorf("Снимок загружен неполностью: %d этажей, %d связей", len(s.Floors), len(s.Links))
		}
		if kind, _ := s.Floors[1].Cell(1, 1); kind != building.CellObstacle {
			t.Errorf("Препятствие потеряно, код %d", kind)
		}
		if _, ok := s.FindRoom("201"); !ok {
			t.Error("Комната 201 потеряна")
		}
		if err := s.Validate(); err != nil {
			t.Errorf("Загруженный снимок некорректен: %v", err)
		}
	})

	t.Run("Load Non-Existent Map", func(t *testing.T) {
		s, found, err := repo.Load(ctx, "missing")
		if err != nil {
			t.Fatalf("Ошибка при загрузке несуществующей карты: %v", err)
		}
		if found || s != nil {
			t.Error("Снимок найден для несуществующей карты")
		}
	})

	t.Run("List", func(t *testing.T) {
		if err := repo.Save(ctx, "annex", sampleSnapshot(t)); err != nil {
			t.Fatalf("Ошибка сохранения снимка: %v", err)
		}
		ids, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("Ошибка получения списка: %v", err)
		}
		if len(ids) != 2 || ids[0] != "annex" || ids[1] != "campus" {
			t.Errorf("Ожидался список [annex campus], получено %v", ids)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := repo.Delete(ctx, "annex"); err != nil {
			t.Fatalf("Ошибка удаления: %v", err)
		}
		if _, found, _ := repo.Load(ctx, "annex"); found {
			t.Error("Снимок найден после удаления")
		}
		if err := repo.Delete(ctx, "annex"); !errors.Is(err, ErrSnapshotNotFound) {
			t.Errorf("Ожидалась ErrSnapshotNotFound, получено %v", err)
		}
	})

	t.Run("Invalid Input", func(t *testing.T) {
		if err := repo.Save(ctx, "", sampleSnapshot(t)); err == nil {
			t.Error("Ожидалась ошибка для пустого ID")
		}
		if err := repo.Save(ctx, "nil", nil); err == nil {
			t.Error("Ожидалась ошибка для пустого снимка")
		}
	})
}

func TestMemorySnapshotRepo(t *testing.T) {
	repo := NewMemorySnapshotRepo()
	defer repo.Close()
	exerciseRepo(t, repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := repo.Load(ctx, "campus"); !errors.Is(err, context.Canceled) {
		t.Errorf("Ожидалась отмена контекста, получено %v", err)
	}
}

func TestBadgerSnapshotStore(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "snapshot-store-test")
	if err != nil {
		t.Fatalf("Не удалось создать временную директорию: %v", err)
	}
	defer os.RemoveAll(tempDir)

	store, err := NewBadgerSnapshotStore(filepath.Join(tempDir, "db"))
	if err != nil {
		t.Fatalf("Не удалось создать хранилище: %v", err)
	}
	exerciseRepo(t, store)

	if err := store.Close(); err != nil {
		t.Fatalf("Ошибка закрытия: %v", err)
	}
	if _, _, err := store.Load(context.Background(), "campus"); err == nil {
		t.Error("Закрытое хранилище должно возвращать ошибку")
	}

	reopened, err := NewBadgerSnapshotStore(filepath.Join(tempDir, "db"))
	if err != nil {
		t.Fatalf("Не удалось переоткрыть хранилище: %v", err)
	}
	defer reopened.Close()
	if _, found, err := reopened.Load(context.Background(), "campus"); err != nil || !found {
		t.Errorf("Снимок должен пережить переоткрытие: found=%v err=%v", found, err)
	}
}

func TestCodecRejectsGarbage(t *testing.T) {
	if _, err := DecodeSnapshot([]byte("not zstd")); !errors.Is(err, building.ErrMalformedSnapshot) {
		t.Errorf("Ожидалась ErrMalformedSnapshot, получено %v", err)
	}

	data, err := EncodeSnapshot(sampleSnapshot(t))
	if err != nil {
		t.Fatalf("Ошибка кодирования: %v", err)
	}
	s, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("Ошибка декодирования: %v", err)
	}
	if s.MainEntrance == nil || *s.MainEntrance != (vec.Vec3{X: 0, Y: 0, Z: 1}) {
		t.Errorf("Главный вход потерян: %v", s.MainEntrance)
	}
}

func TestImportDir(t *testing.T) {
	dir := t.TempDir()
	data, err := building.EncodeSnapshot(sampleSnapshot(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "hall.json"), data, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0644); err != nil {
		t.Fatal(err)
	}

	repo := NewMemorySnapshotRepo()
	n, err := ImportDir(context.Background(), repo, dir)
	if err != nil {
		t.Fatalf("Ошибка импорта: %v", err)
	}
	if n != 1 || repo.Count() != 1 {
		t.Errorf("Ожидалась одна импортированная карта, получено %d", n)
	}
	if _, found, _ := repo.Load(context.Background(), "hall"); !found {
		t.Error("Карта hall не найдена после импорта")
	}
}
