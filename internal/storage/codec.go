package storage

import (
	"fmt"
	"sync"

	"github.com/annel0/indoor-nav/internal/building"
	"github.com/klauspost/compress/zstd"
)

// Снимки хранятся как документ карты в JSON, сжатый zstd.
// EncodeAll/DecodeAll безопасны для конкурентного использования.
var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	codecErr  error
)

func initCodec() {
	codecOnce.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if codecErr != nil {
			return
		}
		decoder, codecErr = zstd.NewReader(nil)
	})
}

// EncodeSnapshot сериализует снимок в сжатый документ карты
func EncodeSnapshot(s *building.Snapshot) ([]byte, error) {
	initCodec()
	if codecErr != nil {
		return nil, fmt.Errorf("инициализация zstd: %w", codecErr)
	}

	raw, err := building.EncodeSnapshot(s)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации снимка: %w", err)
	}
	return encoder.EncodeAll(raw, make([]byte, 0, len(raw)/4)), nil
}

// DecodeSnapshot восстанавливает снимок из сжатого документа
func DecodeSnapshot(data []byte) (*building.Snapshot, error) {
	initCodec()
	if codecErr != nil {
		return nil, fmt.Errorf("инициализация zstd: %w", codecErr)
	}

	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", building.ErrMalformedSnapshot, err)
	}
	return building.DecodeDocument(raw)
}
