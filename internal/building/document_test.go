package building

import (
	"errors"
	"testing"

	"github.com/annel0/indoor-nav/internal/vec"
)

const twoFloorDoc = `{
  "name": "Main",
  "is_3d": true,
  "entrance": {"x": 0, "y": 0, "floor": 1},
  "floors": {
    "1": {
      "id": 1, "name": "Ground", "width": 3, "height_grid": 2,
      "grid": [[2, 0, 4], [0, 1, 0]],
      "rooms": [{"id": "101", "name": "Lab", "x": 2, "y": 1, "floor": 1}],
      "entrance": {"x": 0, "y": 0}
    },
    "2": {
      "id": 2, "name": "First", "width": 3, "height_grid": 2,
      "grid": [[0, 0, 4], [3, 0, 0]],
      "rooms": [{"id": "201", "name": "Office", "x": 0, "y": 1, "floor": 2}]
    }
  },
  "vertical_connections": [
    {"id": "s1", "type": "stair", "start_floor": 1, "end_floor": 2,
     "start_pos": {"x": 2, "y": 0}, "end_pos": {"x": 2, "y": 0}}
  ]
}`

func TestDecodeDocumentMultiFloor(t *testing.T) {
	s, err := DecodeDocument([]byte(twoFloorDoc))
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}

	if len(s.Floors) != 2 {
		t.Fatalf("Ожидалось 2 этажа, получено %d", len(s.Floors))
	}
	if kind, _ := s.Floors[1].Cell(1, 1); kind != CellObstacle {
		t.Errorf("Клетка (1,1) должна быть препятствием, получен код %d", kind)
	}
	if s.MainEntrance == nil || *s.MainEntrance != (vec.Vec3{Z: 1}) {
		t.Errorf("Главный вход прочитан неверно: %v", s.MainEntrance)
	}
	if len(s.Links) != 1 || s.Links[0].Steps != 15 {
		t.Errorf("Связь должна получить 15 ступеней по умолчанию: %+v", s.Links)
	}
	if room, ok := s.FindRoom("201"); !ok || room.Floor != 2 {
		t.Errorf("Комната 201 прочитана неверно: %+v", room)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Прочитанное здание не прошло проверку: %v", err)
	}
}

func TestDecodeDocumentFlat(t *testing.T) {
	doc := `{"name": "flat", "grid": [[0, 0], [1, 0]], "entrance": {"x": 0, "y": 0},
	         "rooms": [{"id": "R", "name": "R", "x": 1, "y": 1}]}`
	s, err := DecodeDocument([]byte(doc))
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if s.IsMultiFloor() {
		t.Error("Плоская карта не должна считаться многоэтажной")
	}
	f, ok := s.Floor(1)
	if !ok || f.Width != 2 || f.Height != 2 {
		t.Fatalf("Ожидался этаж 1 размером 2x2, получено %+v", f)
	}
	if room, ok := s.FindRoom("R"); !ok || room.Floor != 1 {
		t.Errorf("Комната плоской карты должна лежать на этаже 1: %+v", room)
	}
	if s.MainEntrance == nil || s.MainEntrance.Z != 1 {
		t.Errorf("Вход плоской карты должен лежать на этаже 1: %v", s.MainEntrance)
	}
}

func TestDecodeDocumentRejectsBadGrid(t *testing.T) {
	docs := map[string]string{
		"неровная строка": `{"grid": [[0, 0], [0]]}`,
		"неизвестный код": `{"grid": [[0, 9]]}`,
		"ключ этажа":      `{"floors": {"first": {"width": 1, "height_grid": 1, "grid": [[0]]}}}`,
		"пустая сетка":    `{"grid": []}`,
	}
	for name, doc := range docs {
		if _, err := DecodeDocument([]byte(doc)); !errors.Is(err, ErrMalformedSnapshot) {
			t.Errorf("%s: ожидалась ErrMalformedSnapshot, получено %v", name, err)
		}
	}
}

func TestEncodeSnapshotRoundTrip(t *testing.T) {
	s, err := DecodeDocument([]byte(twoFloorDoc))
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	data, err := EncodeSnapshot(s)
	if err != nil {
		t.Fatalf("Ошибка сериализации: %v", err)
	}
	back, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("Ошибка повторного чтения: %v", err)
	}

	if len(back.Rooms()) != 2 || len(back.Links) != 1 {
		t.Errorf("После повторного чтения потеряны данные: %d комнат, %d связей", len(back.Rooms()), len(back.Links))
	}
	if back.Links[0].From != s.Links[0].From || back.Links[0].Duration != s.Links[0].Duration {
		t.Errorf("Связь изменилась: %+v vs %+v", back.Links[0], s.Links[0])
	}
	if *back.MainEntrance != *s.MainEntrance {
		t.Errorf("Главный вход изменился: %v vs %v", back.MainEntrance, s.MainEntrance)
	}
}
