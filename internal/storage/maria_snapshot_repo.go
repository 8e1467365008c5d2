package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/annel0/indoor-nav/internal/building"
	_ "github.com/go-sql-driver/mysql"
)

// MariaSnapshotRepo реализует SnapshotRepo для базы данных MariaDB/MySQL.
// Использует таблицу building_snapshots; документ хранится сжатым.
type MariaSnapshotRepo struct {
	db *sql.DB
}

// NewMariaSnapshotRepo создает новый репозиторий снимков для MariaDB.
// Автоматически создает таблицу, если она не существует.
//
// Параметры:
//
//	dsn - строка подключения к базе данных (user:pass@tcp(host:port)/dbname)
func NewMariaSnapshotRepo(dsn string) (*MariaSnapshotRepo, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MariaDB: %w", err)
	}

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с MariaDB: %w", err)
	}

	repo := &MariaSnapshotRepo{db: db}

	if err := repo.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать таблицу: %w", err)
	}

	return repo, nil
}

// createTable создает таблицу building_snapshots, если она не существует.
func (r *MariaSnapshotRepo) createTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS building_snapshots (
			map_id     VARCHAR(128) PRIMARY KEY,
			name       VARCHAR(255) NOT NULL DEFAULT '',
			floors     INT          NOT NULL DEFAULT 0,
			document   LONGBLOB     NOT NULL,
			updated_at TIMESTAMP    DEFAULT CURRENT_TIMESTAMP
			           ON UPDATE    CURRENT_TIMESTAMP,
			INDEX idx_updated_at (updated_at)
		) ENGINE=InnoDB
	`

	_, err := r.db.Exec(query)
	if err != nil {
		return fmt.Errorf("ошибка создания таблицы building_snapshots: %w", err)
	}

	return nil
}

// Save сохраняет снимок.
// Использует INSERT ... ON DUPLICATE KEY UPDATE для обновления существующих записей.
func (r *MariaSnapshotRepo) Save(ctx context.Context, mapID string, s *building.Snapshot) error {
	if err := validateSave(mapID, s); err != nil {
		return err
	}

	data, err := EncodeSnapshot(s)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO building_snapshots (map_id, name, floors, document)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			floors = VALUES(floors),
			document = VALUES(document),
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := r.db.ExecContext(ctx, query, mapID, s.Name, len(s.Floors), data); err != nil {
		return fmt.Errorf("ошибка сохранения карты %s: %w", mapID, err)
	}
	return nil
}

// Load загружает снимок
func (r *MariaSnapshotRepo) Load(ctx context.Context, mapID string) (*building.Snapshot, bool, error) {
	query := `SELECT document FROM building_snapshots WHERE map_id = ?`

	var data []byte
	err := r.db.QueryRowContext(ctx, query, mapID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка загрузки карты %s: %w", mapID, err)
	}

	s, err := DecodeSnapshot(data)
	if err != nil {
		return nil, false, fmt.Errorf("карта %s: %w", mapID, err)
	}
	return s, true, nil
}

// Delete удаляет снимок
func (r *MariaSnapshotRepo) Delete(ctx context.Context, mapID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM building_snapshots WHERE map_id = ?`, mapID)
	if err != nil {
		return fmt.Errorf("ошибка удаления карты %s: %w", mapID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка проверки удаления карты %s: %w", mapID, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, mapID)
	}
	return nil
}

// List возвращает ID карт по возрастанию
func (r *MariaSnapshotRepo) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT map_id FROM building_snapshots ORDER BY map_id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения списка карт: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка чтения списка карт: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close закрывает соединение с базой данных
func (r *MariaSnapshotRepo) Close() error {
	return r.db.Close()
}
