package building

import (
	"fmt"
	"math"
	"sort"

	"github.com/annel0/indoor-nav/internal/vec"
)

// LinkType тип вертикальной связи
type LinkType string

const (
	LinkStair     LinkType = "stair"
	LinkElevator  LinkType = "elevator"
	LinkEscalator LinkType = "escalator"
	LinkRamp      LinkType = "ramp"
)

// Direction направление движения по вертикали
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Значения по умолчанию для связей без явных атрибутов
const (
	DefaultStepsPerFloor       = 15
	DefaultSecondsPerStep      = 1.2
	DefaultElevatorPerFloorSec = 5.0
	DefaultTransitSeconds      = 30.0
)

// VerticalLink соединяет две точки (этаж, клетка). From.Z/To.Z - номера этажей.
// Steps имеет смысл для лестниц, Duration - заявленное время перехода в секундах.
type VerticalLink struct {
	ID       string   `json:"id"`
	Type     LinkType `json:"type"`
	From     vec.Vec3 `json:"from"`
	To       vec.Vec3 `json:"to"`
	Steps    int      `json:"steps,omitempty"`
	Duration float64  `json:"duration,omitempty"`
}

// NewVerticalLink создает связь и проставляет значения по умолчанию
func NewVerticalLink(id string, linkType LinkType, from, to vec.Vec3) VerticalLink {
	link := VerticalLink{ID: id, Type: linkType, From: from, To: to}
	link.ApplyDefaults()
	return link
}

// Direction вверх, если этаж конца выше этажа начала
func (l VerticalLink) Direction() Direction {
	if l.To.Z > l.From.Z {
		return DirectionUp
	}
	return DirectionDown
}

// FloorSpan количество пересекаемых этажей
func (l VerticalLink) FloorSpan() int {
	return l.From.FloorDelta(l.To)
}

// ApplyDefaults заполняет отсутствующие ступени и длительность
func (l *VerticalLink) ApplyDefaults() {
	span := l.FloorSpan()
	switch l.Type {
	case LinkStair:
		if l.Steps <= 0 {
			l.Steps = span * DefaultStepsPerFloor
		}
		if l.Duration <= 0 {
			l.Duration = float64(l.Steps) * DefaultSecondsPerStep
		}
	case LinkElevator:
		if l.Duration <= 0 {
			l.Duration = float64(span) * DefaultElevatorPerFloorSec
		}
	default:
		if l.Duration <= 0 {
			l.Duration = DefaultTransitSeconds
		}
	}
}

// Traversal проход по связи из конкретного конца в противоположный
type Traversal struct {
	Link      *VerticalLink
	From      vec.Vec3
	To        vec.Vec3
	Direction Direction
}

// LinkRegistry индекс вертикальных связей по их концам.
// Строится один раз на снимок; некорректная связь - ошибка, а не пропуск.
type LinkRegistry struct {
	links      []VerticalLink
	byEndpoint map[vec.Vec3][]Traversal
}

// NewLinkRegistry проверяет все связи снимка и индексирует их концы
func NewLinkRegistry(s *Snapshot) (*LinkRegistry, error) {
	r := &LinkRegistry{
		links:      make([]VerticalLink, len(s.Links)),
		byEndpoint: make(map[vec.Vec3][]Traversal),
	}
	copy(r.links, s.Links)

	ids := make(map[string]struct{}, len(r.links))
	for i := range r.links {
		link := &r.links[i]
		if err := validateLink(s, link); err != nil {
			return nil, err
		}
		if _, dup := ids[link.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate link id %q", ErrMalformedLink, link.ID)
		}
		ids[link.ID] = struct{}{}

		r.byEndpoint[link.From] = append(r.byEndpoint[link.From], Traversal{
			Link: link, From: link.From, To: link.To, Direction: directionOf(link.From, link.To),
		})
		r.byEndpoint[link.To] = append(r.byEndpoint[link.To], Traversal{
			Link: link, From: link.To, To: link.From, Direction: directionOf(link.To, link.From),
		})
	}

	for pos := range r.byEndpoint {
		ts := r.byEndpoint[pos]
		sort.Slice(ts, func(i, j int) bool { return ts[i].Link.ID < ts[j].Link.ID })
	}

	return r, nil
}

func validateLink(s *Snapshot, link *VerticalLink) error {
	if link.ID == "" {
		return fmt.Errorf("%w: link without id", ErrMalformedLink)
	}
	if link.Type == "" {
		return fmt.Errorf("%w: link %s without type", ErrMalformedLink, link.ID)
	}
	if link.From.Z == link.To.Z {
		return fmt.Errorf("%w: link %s connects floor %d to itself", ErrMalformedLink, link.ID, link.From.Z)
	}
	for _, end := range []vec.Vec3{link.From, link.To} {
		f, ok := s.Floors[end.Z]
		if !ok {
			return fmt.Errorf("%w: link %s references missing floor %d", ErrMalformedLink, link.ID, end.Z)
		}
		if !f.IsWalkable(end.X, end.Y) {
			return fmt.Errorf("%w: link %s endpoint (%d,%d) on floor %d is outside the grid or blocked",
				ErrMalformedLink, link.ID, end.X, end.Y, end.Z)
		}
	}
	return nil
}

func directionOf(from, to vec.Vec3) Direction {
	if to.Z > from.Z {
		return DirectionUp
	}
	return DirectionDown
}

// LinksAt переходы, доступные из точки, отсортированные по ID связи
func (r *LinkRegistry) LinksAt(pos vec.Vec3) []Traversal {
	return r.byEndpoint[pos]
}

// Links все связи реестра
func (r *LinkRegistry) Links() []VerticalLink {
	return r.links
}

// Len количество связей
func (r *LinkRegistry) Len() int {
	return len(r.links)
}

// MinCostPerFloor минимальная стоимость одного этажа по всем связям
// для заданной функции стоимости; 0 если связей нет.
func (r *LinkRegistry) MinCostPerFloor(cost func(VerticalLink) float64) float64 {
	best := math.Inf(1)
	for _, link := range r.links {
		span := link.FloorSpan()
		if span == 0 {
			continue
		}
		if per := cost(link) / float64(span); per < best {
			best = per
		}
	}
	if math.IsInf(best, 1) {
		return 0
	}
	return best
}
