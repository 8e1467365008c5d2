// Package generator строит синтетические здания для нагрузочных прогонов
// и демонстрации: препятствия по шуму Перлина, коридоры, комнаты,
// лестница и лифт между соседними этажами.
package generator

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/annel0/indoor-nav/internal/building"
	"github.com/annel0/indoor-nav/internal/util"
	"github.com/annel0/indoor-nav/internal/vec"
)

// ErrInvalidOptions параметры не позволяют построить здание
var ErrInvalidOptions = errors.New("invalid generator options")

// Пороги генерации
const (
	DefaultObstacleThreshold = 0.58 // Выше - препятствие
	DefaultNoiseScale        = 0.21
	minWidth                 = 8
	minHeight                = 5
)

// Options параметры генерации. Нулевые значения заменяются значениями по умолчанию.
type Options struct {
	Name              string
	Seed              int64
	Floors            int
	Width             int
	Height            int
	RoomsPerFloor     int
	ObstacleThreshold float64
	NoiseScale        float64
	NoElevator        bool
}

func (o *Options) applyDefaults() {
	if o.Name == "" {
		o.Name = fmt.Sprintf("Generated %d", o.Seed)
	}
	if o.Floors == 0 {
		o.Floors = 3
	}
	if o.Width == 0 {
		o.Width = 24
	}
	if o.Height == 0 {
		o.Height = 16
	}
	if o.RoomsPerFloor == 0 {
		o.RoomsPerFloor = 4
	}
	if o.ObstacleThreshold == 0 {
		o.ObstacleThreshold = DefaultObstacleThreshold
	}
	if o.NoiseScale == 0 {
		o.NoiseScale = DefaultNoiseScale
	}
}

// Generator строит здания; результат полностью определяется Options
type Generator struct {
	opts  Options
	noise *util.Noise
}

// New проверяет параметры и создает генератор
func New(opts Options) (*Generator, error) {
	opts.applyDefaults()
	if opts.Floors < 1 {
		return nil, fmt.Errorf("%w: floors %d", ErrInvalidOptions, opts.Floors)
	}
	if opts.Width < minWidth || opts.Height < minHeight {
		return nil, fmt.Errorf("%w: grid %dx%d is smaller than %dx%d",
			ErrInvalidOptions, opts.Width, opts.Height, minWidth, minHeight)
	}
	if opts.RoomsPerFloor < 0 {
		return nil, fmt.Errorf("%w: rooms per floor %d", ErrInvalidOptions, opts.RoomsPerFloor)
	}
	return &Generator{opts: opts, noise: util.NewNoise(opts.Seed)}, nil
}

// Generate строит здание с параметрами по умолчанию для незаданных полей
func Generate(opts Options) (*building.Snapshot, error) {
	g, err := New(opts)
	if err != nil {
		return nil, err
	}
	return g.Build()
}

// Build строит здание. Все свободные клетки каждого этажа связны:
// изолированные карманы заливаются препятствиями.
func (g *Generator) Build() (*building.Snapshot, error) {
	o := g.opts
	s := building.NewSnapshot(o.Name)

	for id := 1; id <= o.Floors; id++ {
		f := building.NewFloor(id, o.Width, o.Height)
		f.Name = fmt.Sprintf("Floor %d", id)
		g.carve(f)
		s.AddFloor(f)
	}

	corridor := o.Height / 2
	entrance := vec.Vec3{X: 1, Y: corridor, Z: 1}
	if err := s.Floors[1].SetEntrance(entrance.X, entrance.Y); err != nil {
		return nil, err
	}
	s.MainEntrance = &entrance

	stairX, liftX := o.Width/2-2, o.Width/2+2
	for id := 1; id < o.Floors; id++ {
		s.AddLink(building.NewVerticalLink(fmt.Sprintf("stair_%d_%d", id, id+1), building.LinkStair,
			vec.Vec3{X: stairX, Y: corridor, Z: id}, vec.Vec3{X: stairX, Y: corridor, Z: id + 1}))
		if !o.NoElevator {
			s.AddLink(building.NewVerticalLink(fmt.Sprintf("elevator_%d_%d", id, id+1), building.LinkElevator,
				vec.Vec3{X: liftX, Y: corridor, Z: id}, vec.Vec3{X: liftX, Y: corridor, Z: id + 1}))
		}
	}

	for id := 1; id <= o.Floors; id++ {
		g.placeRooms(s.Floors[id])
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("generated building is invalid: %w", err)
	}
	return s, nil
}

// carve расставляет стены и препятствия, оставляя крестообразный коридор
func (g *Generator) carve(f *building.Floor) {
	o := g.opts
	midX, midY := f.Width/2, f.Height/2
	// смещение по этажу, чтобы планировки этажей различались
	offset := float64(f.ID) * 17.31

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			border := x == 0 || y == 0 || x == f.Width-1 || y == f.Height-1
			corridor := y == midY || x == midX
			switch {
			case corridor && !border:
				continue
			case border:
				f.SetCell(x, y, building.CellObstacle)
			case g.noise.At(float64(x)*o.NoiseScale+offset, float64(y)*o.NoiseScale) > o.ObstacleThreshold:
				f.SetCell(x, y, building.CellObstacle)
			}
		}
	}
	fillPockets(f, vec.Vec2{X: midX, Y: midY})
}

// fillPockets превращает в препятствия клетки, недостижимые из seed
func fillPockets(f *building.Floor, seed vec.Vec2) {
	reached := make([]bool, f.Width*f.Height)
	reached[seed.Y*f.Width+seed.X] = true
	queue := []vec.Vec2{seed}
	for head := 0; head < len(queue); head++ {
		for _, nb := range f.Neighbors(queue[head].X, queue[head].Y) {
			if idx := nb.Y*f.Width + nb.X; !reached[idx] {
				reached[idx] = true
				queue = append(queue, nb)
			}
		}
	}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			if !reached[y*f.Width+x] && f.IsWalkable(x, y) {
				f.SetCell(x, y, building.CellObstacle)
			}
		}
	}
}

// placeRooms выбирает комнаты среди свободных клеток вне коридоров
func (g *Generator) placeRooms(f *building.Floor) {
	midX, midY := f.Width/2, f.Height/2
	candidates := make([]vec.Vec2, 0)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			if x == midX || y == midY {
				continue
			}
			if kind, _ := f.Cell(x, y); kind == building.CellOpen {
				candidates = append(candidates, vec.Vec2{X: x, Y: y})
			}
		}
	}

	rng := rand.New(rand.NewSource(g.opts.Seed*31 + int64(f.ID)))
	rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

	n := g.opts.RoomsPerFloor
	if n > len(candidates) {
		n = len(candidates)
	}
	for i := 0; i < n; i++ {
		c := candidates[i]
		id := fmt.Sprintf("%d%02d", f.ID, i+1)
		// кандидаты свободны и уникальны, ошибки быть не может
		_ = f.AddRoom(id, "Room "+id, c.X, c.Y)
	}
}
