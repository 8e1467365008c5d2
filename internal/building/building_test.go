package building

import (
	"errors"
	"testing"

	"github.com/annel0/indoor-nav/internal/vec"
)

func twoFloorSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	s := NewSnapshot("test")
	s.AddFloor(NewFloor(1, 5, 5))
	s.AddFloor(NewFloor(2, 5, 5))
	return s
}

func TestFloorNeighborsOrder(t *testing.T) {
	f := NewFloor(1, 3, 3)
	got := f.Neighbors(1, 1)
	want := []vec.Vec2{{X: 1, Y: 0}, {X: 2, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 1}}
	if len(got) != len(want) {
		t.Fatalf("Ожидалось %d соседей, получено %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Сосед %d: ожидалось %v, получено %v", i, want[i], got[i])
		}
	}
}

func TestFloorNeighborsSkipObstaclesAndBounds(t *testing.T) {
	f := NewFloor(1, 3, 3)
	f.SetCell(1, 0, CellObstacle)

	got := f.Neighbors(0, 0)
	if len(got) != 1 || got[0] != (vec.Vec2{X: 0, Y: 1}) {
		t.Errorf("Ожидался единственный сосед (0,1), получено %v", got)
	}
}

func TestSnapshotWalkability(t *testing.T) {
	s := twoFloorSnapshot(t)
	s.Floors[1].SetCell(2, 2, CellObstacle)

	if s.IsWalkable(2, 2, 1) {
		t.Error("Препятствие не должно быть проходимым")
	}
	if !s.IsWalkable(2, 2, 2) {
		t.Error("Свободная клетка второго этажа должна быть проходимой")
	}
	if s.IsWalkable(0, 0, 7) {
		t.Error("Клетка неизвестного этажа должна быть непроходимой")
	}
	if s.IsWalkable(-1, 0, 1) || s.IsWalkable(5, 0, 1) {
		t.Error("Клетка вне сетки должна быть непроходимой")
	}
	for _, kind := range []CellKind{CellEntrance, CellRoomDoor, CellLinkMarker} {
		s.Floors[1].SetCell(0, 0, kind)
		if !s.IsWalkable(0, 0, 1) {
			t.Errorf("Клетка с кодом %d должна быть проходимой", kind)
		}
	}
}

func TestLinkDefaults(t *testing.T) {
	stair := NewVerticalLink("s", LinkStair, vec.Vec3{Z: 1}, vec.Vec3{Z: 3})
	if stair.Steps != 30 {
		t.Errorf("Ожидалось 30 ступеней, получено %d", stair.Steps)
	}
	if stair.Duration != 36 {
		t.Errorf("Ожидалась длительность 36, получено %f", stair.Duration)
	}

	elevator := NewVerticalLink("e", LinkElevator, vec.Vec3{Z: 3}, vec.Vec3{Z: 1})
	if elevator.Duration != 10 {
		t.Errorf("Ожидалась длительность лифта 10, получено %f", elevator.Duration)
	}
	if elevator.Direction() != DirectionDown {
		t.Errorf("Ожидалось направление down, получено %s", elevator.Direction())
	}

	ramp := NewVerticalLink("r", LinkRamp, vec.Vec3{Z: 1}, vec.Vec3{Z: 2})
	if ramp.Duration != DefaultTransitSeconds {
		t.Errorf("Ожидалась длительность пандуса %f, получено %f", DefaultTransitSeconds, ramp.Duration)
	}
}

func TestAddLinkMarksEndpoints(t *testing.T) {
	s := twoFloorSnapshot(t)
	link := s.AddLink(VerticalLink{Type: LinkStair, From: vec.Vec3{X: 4, Y: 4, Z: 1}, To: vec.Vec3{X: 4, Y: 4, Z: 2}})

	if link.ID == "" {
		t.Error("Связь без ID должна получить сгенерированный ID")
	}
	for _, floor := range []int{1, 2} {
		if kind, _ := s.Floors[floor].Cell(4, 4); kind != CellLinkMarker {
			t.Errorf("Конец связи на этаже %d должен быть помечен, получен код %d", floor, kind)
		}
	}
}

func TestLinkRegistryBothDirections(t *testing.T) {
	s := twoFloorSnapshot(t)
	s.AddLink(NewVerticalLink("b", LinkElevator, vec.Vec3{X: 1, Y: 1, Z: 1}, vec.Vec3{X: 1, Y: 1, Z: 2}))
	s.AddLink(NewVerticalLink("a", LinkStair, vec.Vec3{X: 1, Y: 1, Z: 1}, vec.Vec3{X: 3, Y: 3, Z: 2}))

	reg, err := NewLinkRegistry(s)
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("Ожидалось 2 связи, получено %d", reg.Len())
	}

	up := reg.LinksAt(vec.Vec3{X: 1, Y: 1, Z: 1})
	if len(up) != 2 {
		t.Fatalf("Ожидалось 2 перехода с первого этажа, получено %d", len(up))
	}
	if up[0].Link.ID != "a" || up[1].Link.ID != "b" {
		t.Errorf("Переходы должны быть упорядочены по ID: %s, %s", up[0].Link.ID, up[1].Link.ID)
	}
	if up[0].Direction != DirectionUp {
		t.Errorf("Ожидалось направление up, получено %s", up[0].Direction)
	}

	down := reg.LinksAt(vec.Vec3{X: 3, Y: 3, Z: 2})
	if len(down) != 1 || down[0].To != (vec.Vec3{X: 1, Y: 1, Z: 1}) || down[0].Direction != DirectionDown {
		t.Errorf("Обратный переход по лестнице построен неверно: %+v", down)
	}
}

func TestLinkRegistryRejectsMalformedLinks(t *testing.T) {
	cases := map[string]VerticalLink{
		"отсутствующий этаж": NewVerticalLink("x", LinkStair, vec.Vec3{Z: 1}, vec.Vec3{Z: 9}),
		"вне сетки":          NewVerticalLink("x", LinkStair, vec.Vec3{X: 10, Z: 1}, vec.Vec3{Z: 2}),
		"тот же этаж":        NewVerticalLink("x", LinkStair, vec.Vec3{Z: 1}, vec.Vec3{X: 1, Z: 1}),
		"без типа":           {ID: "x", From: vec.Vec3{Z: 1}, To: vec.Vec3{Z: 2}},
	}

	for name, link := range cases {
		s := twoFloorSnapshot(t)
		s.Links = append(s.Links, link)
		if _, err := NewLinkRegistry(s); !errors.Is(err, ErrMalformedLink) {
			t.Errorf("%s: ожидалась ErrMalformedLink, получено %v", name, err)
		}
	}

	s := twoFloorSnapshot(t)
	s.Floors[2].SetCell(0, 0, CellObstacle)
	s.Links = append(s.Links, NewVerticalLink("x", LinkStair, vec.Vec3{Z: 1}, vec.Vec3{Z: 2}))
	if _, err := NewLinkRegistry(s); !errors.Is(err, ErrMalformedLink) {
		t.Errorf("Конец связи на препятствии: ожидалась ErrMalformedLink, получено %v", err)
	}

	s = twoFloorSnapshot(t)
	s.Links = append(s.Links,
		NewVerticalLink("dup", LinkStair, vec.Vec3{Z: 1}, vec.Vec3{Z: 2}),
		NewVerticalLink("dup", LinkElevator, vec.Vec3{X: 1, Z: 1}, vec.Vec3{X: 1, Z: 2}))
	if _, err := NewLinkRegistry(s); !errors.Is(err, ErrMalformedLink) {
		t.Errorf("Повтор ID: ожидалась ErrMalformedLink, получено %v", err)
	}
}

func TestLinkRegistryAcceptsUnknownType(t *testing.T) {
	s := twoFloorSnapshot(t)
	ladder := s.AddLink(VerticalLink{ID: "ladder-1", Type: "ladder", From: vec.Vec3{Z: 1}, To: vec.Vec3{Z: 2}})
	if ladder.Duration != DefaultTransitSeconds {
		t.Errorf("Ожидалась длительность по умолчанию %v, получено %v", DefaultTransitSeconds, ladder.Duration)
	}

	reg, err := NewLinkRegistry(s)
	if err != nil {
		t.Fatalf("Связь неизвестного типа должна приниматься: %v", err)
	}
	up := reg.LinksAt(vec.Vec3{Z: 1})
	if len(up) != 1 || up[0].Link.Type != "ladder" || up[0].Direction != DirectionUp {
		t.Errorf("Переход по лестнице-стремянке построен неверно: %+v", up)
	}
}

func TestMinCostPerFloor(t *testing.T) {
	s := NewSnapshot("test")
	for id := 1; id <= 3; id++ {
		s.AddFloor(NewFloor(id, 2, 2))
	}
	s.AddLink(NewVerticalLink("e", LinkElevator, vec.Vec3{Z: 1}, vec.Vec3{Z: 3}))
	s.AddLink(NewVerticalLink("s", LinkStair, vec.Vec3{X: 1, Z: 1}, vec.Vec3{X: 1, Z: 2}))

	reg, err := NewLinkRegistry(s)
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	got := reg.MinCostPerFloor(func(l VerticalLink) float64 { return l.Duration })
	if got != 5 {
		t.Errorf("Ожидалось 5 секунд на этаж, получено %f", got)
	}

	empty, _ := NewLinkRegistry(NewSnapshot("empty"))
	if v := empty.MinCostPerFloor(func(VerticalLink) float64 { return 1 }); v != 0 {
		t.Errorf("Для пустого реестра ожидался 0, получено %f", v)
	}
}

func TestRoomsAndValidate(t *testing.T) {
	s := twoFloorSnapshot(t)
	if err := s.Floors[2].AddRoom("B", "Room B", 1, 1); err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if err := s.Floors[1].AddRoom("A", "Room A", 2, 2); err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if err := s.Floors[1].SetEntrance(0, 0); err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}

	rooms := s.Rooms()
	if len(rooms) != 2 || rooms[0].ID != "A" || rooms[1].ID != "B" {
		t.Errorf("Комнаты должны быть отсортированы по ID: %+v", rooms)
	}
	room, ok := s.FindRoom("B")
	if !ok || room.Position() != (vec.Vec3{X: 1, Y: 1, Z: 2}) {
		t.Errorf("Комната B найдена неверно: %+v, %v", room, ok)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Корректное здание не прошло проверку: %v", err)
	}

	s.Floors[1].Rooms = append(s.Floors[1].Rooms, Room{ID: "B", Floor: 1, Anchor: vec.Vec2{X: 3, Y: 3}})
	if err := s.Validate(); !errors.Is(err, ErrMalformedSnapshot) {
		t.Errorf("Повтор комнаты: ожидалась ErrMalformedSnapshot, получено %v", err)
	}

	f := NewFloor(3, 2, 2)
	f.SetCell(0, 0, CellObstacle)
	if err := f.AddRoom("X", "", 0, 0); !errors.Is(err, ErrMalformedSnapshot) {
		t.Errorf("Комната на препятствии: ожидалась ErrMalformedSnapshot, получено %v", err)
	}
}
