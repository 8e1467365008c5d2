package pathfinding

import (
	"fmt"

	"github.com/annel0/indoor-nav/internal/building"
	"github.com/annel0/indoor-nav/internal/logging"
)

// DefaultVolumetricMaxExpansions лимит раскрытых узлов для A*
const DefaultVolumetricMaxExpansions = 10000

// Router общий контракт роутеров
type Router interface {
	FindPath(start, end Position) (Path, bool, error)
}

// searchNode узел арены поиска; parent - индекс в той же арене
type searchNode struct {
	pos    Position
	parent int
	g      float64
	action Action
	link   *building.VerticalLink
	closed bool
}

// VolumetricRouter A* по (x, y, этаж) с переходами по вертикальным связям
type VolumetricRouter struct {
	snapshot      *building.Snapshot
	registry      *building.LinkRegistry
	cost          CostModel
	estimator     estimator
	maxExpansions int
	logger        *logging.Logger
}

// NewVolumetricRouter проверяет связи снимка и создает роутер.
// maxExpansions <= 0 означает лимит по умолчанию.
func NewVolumetricRouter(s *building.Snapshot, cost CostModel, maxExpansions int) (*VolumetricRouter, error) {
	registry, err := building.NewLinkRegistry(s)
	if err != nil {
		return nil, err
	}
	if maxExpansions <= 0 {
		maxExpansions = DefaultVolumetricMaxExpansions
	}
	return &VolumetricRouter{
		snapshot:      s,
		registry:      registry,
		cost:          cost,
		estimator:     cost.estimator(registry),
		maxExpansions: maxExpansions,
		logger:        logging.GetRouterLogger(),
	}, nil
}

// Registry реестр связей, построенный при создании роутера
func (r *VolumetricRouter) Registry() *building.LinkRegistry {
	return r.registry
}

// FindPath ищет путь минимальной стоимости, возможно через несколько этажей
func (r *VolumetricRouter) FindPath(start, end Position) (Path, bool, error) {
	if !r.snapshot.IsWalkable(start.X, start.Y, start.Floor) {
		return nil, false, fmt.Errorf("%w: start %v is not walkable", ErrInvalidEndpoint, start)
	}
	if !r.snapshot.IsWalkable(end.X, end.Y, end.Floor) {
		return nil, false, fmt.Errorf("%w: end %v is not walkable", ErrInvalidEndpoint, end)
	}

	if start == end {
		return Path{{Pos: start, Action: ActionStart}}, true, nil
	}

	arena := make([]searchNode, 0, 256)
	arena = append(arena, searchNode{pos: start, parent: -1, action: ActionStart})
	best := map[Position]int{start: 0}

	open := &openSet{}
	open.push(queueItem{node: 0, pos: start, f: r.estimator.estimate(start, end)})

	relax := func(from int, pos Position, g float64, action Action, link *building.VerticalLink) {
		if idx, seen := best[pos]; seen {
			if g >= arena[idx].g {
				return
			}
			arena[idx].parent = from
			arena[idx].g = g
			arena[idx].action = action
			arena[idx].link = link
			arena[idx].closed = false
			open.push(queueItem{node: idx, pos: pos, f: g + r.estimator.estimate(pos, end), g: g})
			return
		}
		arena = append(arena, searchNode{pos: pos, parent: from, g: g, action: action, link: link})
		idx := len(arena) - 1
		best[pos] = idx
		open.push(queueItem{node: idx, pos: pos, f: g + r.estimator.estimate(pos, end), g: g})
	}

	expanded := 0
	for open.Len() > 0 {
		item := open.pop()
		if arena[item.node].closed || item.g > arena[item.node].g {
			continue
		}
		if expanded >= r.maxExpansions {
			break
		}
		expanded++
		arena[item.node].closed = true

		if item.pos == end {
			logging.LogSearch(r.logger, "astar", start, end, expanded, true)
			return reconstructArena(arena, item.node), true, nil
		}

		cur := item.pos
		g := arena[item.node].g

		for _, nb := range r.snapshot.Neighbors(cur.X, cur.Y, cur.Floor) {
			relax(item.node, Position{X: nb.X, Y: nb.Y, Floor: cur.Floor}, g+r.cost.MoveCost, ActionMove, nil)
		}
		for _, tr := range r.registry.LinksAt(cur.Vec3()) {
			relax(item.node, FromVec3(tr.To), g+r.cost.LinkCost(*tr.Link), VerticalAction(tr.Link.Type, tr.Direction), tr.Link)
		}
	}

	logging.LogSearch(r.logger, "astar", start, end, expanded, false)
	return nil, false, nil
}

func reconstructArena(arena []searchNode, last int) Path {
	length := 0
	for i := last; i != -1; i = arena[i].parent {
		length++
	}

	path := make(Path, length)
	for i, k := last, length-1; i != -1; i, k = arena[i].parent, k-1 {
		n := arena[i]
		path[k] = Node{Pos: n.pos, Action: n.action, Cost: n.g, Link: n.link}
	}
	return path
}

// RouteBetweenRooms путь между точками привязки двух комнат
func (r *VolumetricRouter) RouteBetweenRooms(fromRoom, toRoom string) (Path, bool, error) {
	from, ok := r.snapshot.FindRoom(fromRoom)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownRoom, fromRoom)
	}
	to, ok := r.snapshot.FindRoom(toRoom)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownRoom, toRoom)
	}
	return r.FindPath(FromVec3(from.Position()), FromVec3(to.Position()))
}

// RouteToRoom путь из произвольной точки до комнаты
func (r *VolumetricRouter) RouteToRoom(start Position, roomID string) (Path, bool, error) {
	room, ok := r.snapshot.FindRoom(roomID)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownRoom, roomID)
	}
	return r.FindPath(start, FromVec3(room.Position()))
}

// RouteFromEntrance путь от входа здания до комнаты
func (r *VolumetricRouter) RouteFromEntrance(roomID string) (Path, bool, error) {
	room, ok := r.snapshot.FindRoom(roomID)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownRoom, roomID)
	}
	start, err := EntranceFor(r.snapshot, room.Floor)
	if err != nil {
		return nil, false, err
	}
	return r.FindPath(start, FromVec3(room.Position()))
}

// EntranceFor выбирает стартовый вход: главный вход здания, иначе вход этажа,
// ближайшего к целевому (при равенстве - с меньшим номером).
func EntranceFor(s *building.Snapshot, targetFloor int) (Position, error) {
	if s.MainEntrance != nil {
		return FromVec3(*s.MainEntrance), nil
	}

	found := false
	var best Position
	bestDelta := 0
	for _, id := range s.FloorIDs() {
		f := s.Floors[id]
		if f.Entrance == nil {
			continue
		}
		delta := id - targetFloor
		if delta < 0 {
			delta = -delta
		}
		if !found || delta < bestDelta {
			found = true
			bestDelta = delta
			best = Position{X: f.Entrance.X, Y: f.Entrance.Y, Floor: id}
		}
	}
	if !found {
		return Position{}, fmt.Errorf("%w: building %q", ErrNoEntrance, s.Name)
	}
	return best, nil
}
