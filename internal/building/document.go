package building

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/annel0/indoor-nav/internal/vec"
)

// Document файловое представление карты: этажи по строковым ключам,
// сетки строками grid[y][x], список вертикальных соединений.
// Двумерные карты (без floors) трактуются как единственный этаж 1.
type Document struct {
	ID                  interface{}          `json:"id,omitempty"`
	Name                string               `json:"name"`
	Width               int                  `json:"width,omitempty"`
	Height              int                  `json:"height,omitempty"`
	Grid                [][]int              `json:"grid,omitempty"`
	Entrance            *DocPoint            `json:"entrance,omitempty"`
	Rooms               []DocRoom            `json:"rooms,omitempty"`
	Floors              map[string]*DocFloor `json:"floors,omitempty"`
	VerticalConnections []DocVerticalLink    `json:"vertical_connections,omitempty"`
	Is3D                bool                 `json:"is_3d,omitempty"`
}

// DocPoint точка с необязательным этажом
type DocPoint struct {
	X     int  `json:"x"`
	Y     int  `json:"y"`
	Floor *int `json:"floor,omitempty"`
}

// DocRoom комната в файле карты
type DocRoom struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Floor int    `json:"floor,omitempty"`
}

// DocFloor этаж в файле карты
type DocFloor struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Width      int       `json:"width"`
	HeightGrid int       `json:"height_grid"`
	Grid       [][]int   `json:"grid"`
	Rooms      []DocRoom `json:"rooms"`
	Entrance   *DocPoint `json:"entrance"`
}

// DocVerticalLink вертикальное соединение в файле карты
type DocVerticalLink struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	StartFloor int      `json:"start_floor"`
	EndFloor   int      `json:"end_floor"`
	StartPos   vec.Vec2 `json:"start_pos"`
	EndPos     vec.Vec2 `json:"end_pos"`
	Steps      int      `json:"steps,omitempty"`
	Duration   float64  `json:"duration,omitempty"`
	Direction  string   `json:"direction,omitempty"`
}

// DecodeDocument разбирает JSON карты и строит снимок здания
func DecodeDocument(data []byte) (*Snapshot, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ошибка разбора карты: %w", err)
	}
	return doc.ToSnapshot()
}

// EncodeSnapshot сериализует снимок в формат файла карты
func EncodeSnapshot(s *Snapshot) ([]byte, error) {
	return json.Marshal(FromSnapshot(s))
}

// ToSnapshot строит снимок. Клетки не перекрашиваются: сетка берется как есть.
func (d *Document) ToSnapshot() (*Snapshot, error) {
	s := NewSnapshot(d.Name)

	if len(d.Floors) == 0 {
		f, err := buildFloor(1, d.Name, d.Width, d.Height, d.Grid)
		if err != nil {
			return nil, err
		}
		if err := attachRooms(f, d.Rooms); err != nil {
			return nil, err
		}
		s.AddFloor(f)
		if d.Entrance != nil {
			f.Entrance = &vec.Vec2{X: d.Entrance.X, Y: d.Entrance.Y}
			s.MainEntrance = &vec.Vec3{X: d.Entrance.X, Y: d.Entrance.Y, Z: 1}
		}
		return s, nil
	}

	for key, df := range d.Floors {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: floor key %q is not a number", ErrMalformedSnapshot, key)
		}
		f, err := buildFloor(id, df.Name, df.Width, df.HeightGrid, df.Grid)
		if err != nil {
			return nil, err
		}
		if err := attachRooms(f, df.Rooms); err != nil {
			return nil, err
		}
		if df.Entrance != nil {
			f.Entrance = &vec.Vec2{X: df.Entrance.X, Y: df.Entrance.Y}
		}
		s.AddFloor(f)
	}

	for _, dl := range d.VerticalConnections {
		link := VerticalLink{
			ID:       dl.ID,
			Type:     LinkType(dl.Type),
			From:     vec.FromVec2(dl.StartPos, dl.StartFloor),
			To:       vec.FromVec2(dl.EndPos, dl.EndFloor),
			Steps:    dl.Steps,
			Duration: dl.Duration,
		}
		link.ApplyDefaults()
		s.Links = append(s.Links, link)
	}

	if d.Entrance != nil {
		floor := 1
		if d.Entrance.Floor != nil {
			floor = *d.Entrance.Floor
		}
		s.MainEntrance = &vec.Vec3{X: d.Entrance.X, Y: d.Entrance.Y, Z: floor}
	}

	return s, nil
}

func buildFloor(id int, name string, width, height int, grid [][]int) (*Floor, error) {
	if height == 0 {
		height = len(grid)
	}
	if width == 0 && len(grid) > 0 {
		width = len(grid[0])
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: floor %d has empty grid", ErrMalformedSnapshot, id)
	}
	if len(grid) != height {
		return nil, fmt.Errorf("%w: floor %d grid has %d rows, expected %d", ErrMalformedSnapshot, id, len(grid), height)
	}

	f := NewFloor(id, width, height)
	if name != "" {
		f.Name = name
	}
	for y, row := range grid {
		if len(row) != width {
			return nil, fmt.Errorf("%w: floor %d row %d has %d cells, expected %d", ErrMalformedSnapshot, id, y, len(row), width)
		}
		for x, code := range row {
			kind := CellKind(code)
			if code < 0 || !kind.Valid() {
				return nil, fmt.Errorf("%w: floor %d cell (%d,%d) has code %d", ErrMalformedSnapshot, id, x, y, code)
			}
			f.Cells[y*width+x] = kind
		}
	}
	return f, nil
}

func attachRooms(f *Floor, rooms []DocRoom) error {
	for _, r := range rooms {
		if r.ID == "" {
			return fmt.Errorf("%w: room without id on floor %d", ErrMalformedSnapshot, f.ID)
		}
		f.Rooms = append(f.Rooms, Room{ID: r.ID, Name: r.Name, Floor: f.ID, Anchor: vec.Vec2{X: r.X, Y: r.Y}})
	}
	return nil
}

// FromSnapshot строит документ файла карты из снимка
func FromSnapshot(s *Snapshot) *Document {
	doc := &Document{
		Name:   s.Name,
		Floors: make(map[string]*DocFloor, len(s.Floors)),
		Is3D:   true,
	}

	allRooms := make([]DocRoom, 0)
	for _, id := range s.FloorIDs() {
		f := s.Floors[id]
		df := &DocFloor{
			ID:         f.ID,
			Name:       f.Name,
			Width:      f.Width,
			HeightGrid: f.Height,
			Grid:       make([][]int, f.Height),
			Rooms:      make([]DocRoom, 0, len(f.Rooms)),
		}
		for y := 0; y < f.Height; y++ {
			row := make([]int, f.Width)
			for x := 0; x < f.Width; x++ {
				row[x] = int(f.Cells[y*f.Width+x])
			}
			df.Grid[y] = row
		}
		for _, r := range f.Rooms {
			dr := DocRoom{ID: r.ID, Name: r.Name, X: r.Anchor.X, Y: r.Anchor.Y, Floor: f.ID}
			df.Rooms = append(df.Rooms, dr)
			allRooms = append(allRooms, dr)
		}
		if f.Entrance != nil {
			floor := f.ID
			df.Entrance = &DocPoint{X: f.Entrance.X, Y: f.Entrance.Y, Floor: &floor}
		}
		doc.Floors[strconv.Itoa(id)] = df
		if doc.Width == 0 {
			doc.Width, doc.Height = f.Width, f.Height
		}
	}
	sort.Slice(allRooms, func(i, j int) bool { return allRooms[i].ID < allRooms[j].ID })
	doc.Rooms = allRooms

	for _, l := range s.Links {
		doc.VerticalConnections = append(doc.VerticalConnections, DocVerticalLink{
			ID:         l.ID,
			Type:       string(l.Type),
			StartFloor: l.From.Z,
			EndFloor:   l.To.Z,
			StartPos:   l.From.ToVec2(),
			EndPos:     l.To.ToVec2(),
			Steps:      l.Steps,
			Duration:   l.Duration,
			Direction:  string(l.Direction()),
		})
	}

	if s.MainEntrance != nil {
		floor := s.MainEntrance.Z
		doc.Entrance = &DocPoint{X: s.MainEntrance.X, Y: s.MainEntrance.Y, Floor: &floor}
	}

	return doc
}
