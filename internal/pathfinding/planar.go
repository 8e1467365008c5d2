package pathfinding

import (
	"fmt"

	"github.com/annel0/indoor-nav/internal/building"
	"github.com/annel0/indoor-nav/internal/logging"
)

// DefaultPlanarMaxExpansions лимит раскрытых клеток для поиска в ширину
const DefaultPlanarMaxExpansions = 1000

// PlanarRouter поиск в ширину в пределах одного этажа.
// Находит путь с минимальным числом шагов; среди равных выигрывает порядок
// соседей вверх, вправо, вниз, влево.
type PlanarRouter struct {
	snapshot      *building.Snapshot
	maxExpansions int
	logger        *logging.Logger
}

// NewPlanarRouter создает роутер. maxExpansions <= 0 означает лимит по умолчанию.
func NewPlanarRouter(s *building.Snapshot, maxExpansions int) *PlanarRouter {
	if maxExpansions <= 0 {
		maxExpansions = DefaultPlanarMaxExpansions
	}
	return &PlanarRouter{
		snapshot:      s,
		maxExpansions: maxExpansions,
		logger:        logging.GetRouterLogger(),
	}
}

// FindPath ищет кратчайший путь между двумя клетками одного этажа.
// Невалидные концы - ErrInvalidEndpoint без запуска поиска;
// недостижимость или исчерпание лимита - found=false без ошибки.
func (r *PlanarRouter) FindPath(start, end Position) (Path, bool, error) {
	if start.Floor != end.Floor {
		return nil, false, fmt.Errorf("%w: %v and %v are on different floors", ErrInvalidEndpoint, start, end)
	}
	floor, ok := r.snapshot.Floor(start.Floor)
	if !ok {
		return nil, false, fmt.Errorf("%w: floor %d does not exist", ErrInvalidEndpoint, start.Floor)
	}
	if !floor.IsWalkable(start.X, start.Y) {
		return nil, false, fmt.Errorf("%w: start %v is not walkable", ErrInvalidEndpoint, start)
	}
	if !floor.IsWalkable(end.X, end.Y) {
		return nil, false, fmt.Errorf("%w: end %v is not walkable", ErrInvalidEndpoint, end)
	}

	if start == end {
		return Path{{Pos: start, Action: ActionStart}}, true, nil
	}

	width := floor.Width
	startIdx := start.Y*width + start.X
	endIdx := end.Y*width + end.X

	// parent[i] == -1 - клетка не посещена
	parent := make([]int, width*floor.Height)
	for i := range parent {
		parent[i] = -1
	}
	parent[startIdx] = startIdx

	queue := make([]int, 0, 64)
	queue = append(queue, startIdx)
	expanded := 0

	for head := 0; head < len(queue); head++ {
		if expanded >= r.maxExpansions {
			break
		}
		cur := queue[head]
		expanded++

		cx, cy := cur%width, cur/width
		for _, d := range building.PlanarOffsets {
			nx, ny := cx+d.X, cy+d.Y
			if !floor.IsWalkable(nx, ny) {
				continue
			}
			next := ny*width + nx
			if parent[next] != -1 {
				continue
			}
			parent[next] = cur
			if next == endIdx {
				path := r.reconstruct(parent, startIdx, endIdx, width, start.Floor)
				logging.LogSearch(r.logger, "bfs", start, end, expanded, true)
				return path, true, nil
			}
			queue = append(queue, next)
		}
	}

	logging.LogSearch(r.logger, "bfs", start, end, expanded, false)
	return nil, false, nil
}

func (r *PlanarRouter) reconstruct(parent []int, startIdx, endIdx, width, floor int) Path {
	indices := make([]int, 0, 16)
	for cur := endIdx; ; cur = parent[cur] {
		indices = append(indices, cur)
		if cur == startIdx {
			break
		}
	}

	path := make(Path, len(indices))
	for i := range indices {
		idx := indices[len(indices)-1-i]
		action := ActionMove
		if i == 0 {
			action = ActionStart
		}
		path[i] = Node{
			Pos:    Position{X: idx % width, Y: idx / width, Floor: floor},
			Action: action,
			Cost:   float64(i),
		}
	}
	return path
}

// PathToRoom путь от входа этажа комнаты до самой комнаты
func (r *PlanarRouter) PathToRoom(roomID string) (Path, bool, error) {
	room, ok := r.snapshot.FindRoom(roomID)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownRoom, roomID)
	}
	floor, _ := r.snapshot.Floor(room.Floor)
	if floor.Entrance == nil {
		return nil, false, fmt.Errorf("%w: floor %d", ErrNoEntrance, room.Floor)
	}

	start := Position{X: floor.Entrance.X, Y: floor.Entrance.Y, Floor: floor.ID}
	return r.FindPath(start, FromVec3(room.Position()))
}

// EstimateSeconds оценка времени плоского пути: секунда на каждую точку пути
// и секунда на каждый поворот.
func EstimateSeconds(path Path) float64 {
	if len(path) == 0 {
		return 0
	}
	return float64(len(path)) + float64(CountTurns(path))
}

// CountTurns число смен направления между соседними отрезками пути
func CountTurns(path Path) int {
	turns := 0
	for i := 1; i+1 < len(path); i++ {
		a, b, c := path[i-1].Pos, path[i].Pos, path[i+1].Pos
		if a.Floor != b.Floor || b.Floor != c.Floor {
			continue
		}
		if b.X-a.X != c.X-b.X || b.Y-a.Y != c.Y-b.Y {
			turns++
		}
	}
	return turns
}
