package building

import (
	"fmt"
	"sort"

	"github.com/annel0/indoor-nav/internal/vec"
)

// CellKind код клетки сетки этажа. Числовые значения совпадают с кодами
// в файлах карт: 0 - свободно, 1 - препятствие, 2 - вход, 3 - дверь аудитории,
// 4 - точка вертикальной связи.
type CellKind uint8

const (
	CellOpen CellKind = iota
	CellObstacle
	CellEntrance
	CellRoomDoor
	CellLinkMarker
)

// Valid проверяет, что код клетки известен
func (k CellKind) Valid() bool {
	return k <= CellLinkMarker
}

// Room описывает помещение. ID уникален в пределах здания.
type Room struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Floor  int      `json:"floor"`
	Anchor vec.Vec2 `json:"anchor"`
}

// Position возвращает точку привязки комнаты вместе с этажом
func (r Room) Position() vec.Vec3 {
	return vec.FromVec2(r.Anchor, r.Floor)
}

// Floor один уровень здания со своей сеткой и комнатами.
// Cells хранится плоско: индекс y*Width+x.
type Floor struct {
	ID       int        `json:"id"`
	Name     string     `json:"name"`
	Width    int        `json:"width"`
	Height   int        `json:"height"`
	Cells    []CellKind `json:"cells"`
	Rooms    []Room     `json:"rooms"`
	Entrance *vec.Vec2  `json:"entrance,omitempty"`
}

// NewFloor создает этаж, целиком состоящий из свободных клеток
func NewFloor(id, width, height int) *Floor {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Floor{
		ID:     id,
		Name:   fmt.Sprintf("Floor %d", id),
		Width:  width,
		Height: height,
		Cells:  make([]CellKind, width*height),
		Rooms:  make([]Room, 0),
	}
}

// InBounds проверяет попадание клетки в сетку этажа
func (f *Floor) InBounds(x, y int) bool {
	return x >= 0 && x < f.Width && y >= 0 && y < f.Height
}

// Cell возвращает код клетки; false если клетка вне сетки
func (f *Floor) Cell(x, y int) (CellKind, bool) {
	if !f.InBounds(x, y) {
		return CellObstacle, false
	}
	return f.Cells[y*f.Width+x], true
}

// SetCell устанавливает код клетки; false если клетка вне сетки
func (f *Floor) SetCell(x, y int, kind CellKind) bool {
	if !f.InBounds(x, y) {
		return false
	}
	f.Cells[y*f.Width+x] = kind
	return true
}

// FindRoom ищет комнату на этаже по ID
func (f *Floor) FindRoom(id string) (Room, bool) {
	for _, room := range f.Rooms {
		if room.ID == id {
			return room, true
		}
	}
	return Room{}, false
}

// AddRoom добавляет комнату и помечает её клетку как дверь
func (f *Floor) AddRoom(id, name string, x, y int) error {
	if !f.IsWalkable(x, y) {
		return fmt.Errorf("%w: room %s anchor (%d,%d) on floor %d is not walkable", ErrMalformedSnapshot, id, x, y, f.ID)
	}
	if _, exists := f.FindRoom(id); exists {
		return fmt.Errorf("%w: duplicate room id %s", ErrMalformedSnapshot, id)
	}

	f.Rooms = append(f.Rooms, Room{ID: id, Name: name, Floor: f.ID, Anchor: vec.Vec2{X: x, Y: y}})
	f.SetCell(x, y, CellRoomDoor)
	return nil
}

// SetEntrance устанавливает вход этажа. Старая отметка входа стирается.
func (f *Floor) SetEntrance(x, y int) error {
	if !f.IsWalkable(x, y) {
		return fmt.Errorf("%w: entrance (%d,%d) on floor %d is not walkable", ErrMalformedSnapshot, x, y, f.ID)
	}
	if f.Entrance != nil {
		if kind, ok := f.Cell(f.Entrance.X, f.Entrance.Y); ok && kind == CellEntrance {
			f.SetCell(f.Entrance.X, f.Entrance.Y, CellOpen)
		}
	}
	f.Entrance = &vec.Vec2{X: x, Y: y}
	f.SetCell(x, y, CellEntrance)
	return nil
}

// Snapshot полный граф здания для одного запроса. Ядро его не изменяет:
// каждый запрос работает со своей копией.
type Snapshot struct {
	Name         string         `json:"name"`
	Floors       map[int]*Floor `json:"floors"`
	Links        []VerticalLink `json:"links"`
	MainEntrance *vec.Vec3      `json:"main_entrance,omitempty"`
}

// NewSnapshot создает пустое здание
func NewSnapshot(name string) *Snapshot {
	return &Snapshot{
		Name:   name,
		Floors: make(map[int]*Floor),
		Links:  make([]VerticalLink, 0),
	}
}

// AddFloor регистрирует этаж (заменяя этаж с тем же ID)
func (s *Snapshot) AddFloor(f *Floor) {
	if s.Floors == nil {
		s.Floors = make(map[int]*Floor)
	}
	s.Floors[f.ID] = f
}

// Floor возвращает этаж по ID
func (s *Snapshot) Floor(id int) (*Floor, bool) {
	f, ok := s.Floors[id]
	return f, ok
}

// FloorIDs возвращает ID этажей по возрастанию
func (s *Snapshot) FloorIDs() []int {
	ids := make([]int, 0, len(s.Floors))
	for id := range s.Floors {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// IsMultiFloor сообщает, нужен ли объемный поиск: больше одного этажа или есть связи
func (s *Snapshot) IsMultiFloor() bool {
	return len(s.Floors) > 1 || len(s.Links) > 0
}

// FindRoom ищет комнату во всех этажах
func (s *Snapshot) FindRoom(id string) (Room, bool) {
	for _, floorID := range s.FloorIDs() {
		if room, ok := s.Floors[floorID].FindRoom(id); ok {
			return room, true
		}
	}
	return Room{}, false
}

// Rooms возвращает все комнаты здания, отсортированные по ID
func (s *Snapshot) Rooms() []Room {
	rooms := make([]Room, 0)
	for _, floorID := range s.FloorIDs() {
		rooms = append(rooms, s.Floors[floorID].Rooms...)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms
}

// AddLink добавляет вертикальную связь, проставляя значения по умолчанию,
// и помечает её концы на сетках этажей.
func (s *Snapshot) AddLink(link VerticalLink) VerticalLink {
	link.ApplyDefaults()
	if link.ID == "" {
		link.ID = fmt.Sprintf("%s_%d_%d_%d", link.Type, link.From.Z, link.To.Z, len(s.Links))
	}
	for _, end := range []vec.Vec3{link.From, link.To} {
		if f, ok := s.Floors[end.Z]; ok {
			if kind, inside := f.Cell(end.X, end.Y); inside && kind != CellObstacle {
				f.SetCell(end.X, end.Y, CellLinkMarker)
			}
		}
	}
	s.Links = append(s.Links, link)
	return link
}

// Validate проверяет структурную целостность: размеры сеток, коды клеток,
// уникальность и проходимость комнат, входы и вертикальные связи.
func (s *Snapshot) Validate() error {
	seen := make(map[string]int)
	for _, id := range s.FloorIDs() {
		f := s.Floors[id]
		if f.ID != id {
			return fmt.Errorf("%w: floor keyed %d has id %d", ErrMalformedSnapshot, id, f.ID)
		}
		if f.Width <= 0 || f.Height <= 0 || len(f.Cells) != f.Width*f.Height {
			return fmt.Errorf("%w: floor %d grid %dx%d has %d cells", ErrMalformedSnapshot, id, f.Width, f.Height, len(f.Cells))
		}
		for i, c := range f.Cells {
			if !c.Valid() {
				return fmt.Errorf("%w: floor %d cell %d has code %d", ErrMalformedSnapshot, id, i, c)
			}
		}
		for _, room := range f.Rooms {
			if prev, dup := seen[room.ID]; dup {
				return fmt.Errorf("%w: room %s defined on floors %d and %d", ErrMalformedSnapshot, room.ID, prev, id)
			}
			seen[room.ID] = id
			if room.Floor != id {
				return fmt.Errorf("%w: room %s claims floor %d but listed on %d", ErrMalformedSnapshot, room.ID, room.Floor, id)
			}
			if !f.IsWalkable(room.Anchor.X, room.Anchor.Y) {
				return fmt.Errorf("%w: room %s anchor is not walkable", ErrMalformedSnapshot, room.ID)
			}
		}
		if f.Entrance != nil && !f.IsWalkable(f.Entrance.X, f.Entrance.Y) {
			return fmt.Errorf("%w: floor %d entrance is not walkable", ErrMalformedSnapshot, id)
		}
	}

	if s.MainEntrance != nil && !s.IsWalkable(s.MainEntrance.X, s.MainEntrance.Y, s.MainEntrance.Z) {
		return fmt.Errorf("%w: main entrance %+v is not walkable", ErrMalformedSnapshot, *s.MainEntrance)
	}

	_, err := NewLinkRegistry(s)
	return err
}
