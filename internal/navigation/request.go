package navigation

import (
	"fmt"

	"github.com/annel0/indoor-nav/internal/building"
	"github.com/annel0/indoor-nav/internal/narration"
	"github.com/annel0/indoor-nav/internal/pathfinding"
)

// Алгоритмы поиска, которые можно запросить явно
const (
	AlgorithmAuto  = ""
	AlgorithmBFS   = "bfs"
	AlgorithmAStar = "astar"
)

// RouteRequest запрос маршрута. Начало задается ровно одним из Start,
// FromRoom, FromEntrance; конец - ровно одним из End, ToRoom.
type RouteRequest struct {
	Start        *pathfinding.Position `json:"start,omitempty"`
	End          *pathfinding.Position `json:"end,omitempty"`
	FromRoom     string                `json:"from_room,omitempty"`
	ToRoom       string                `json:"to_room,omitempty"`
	FromEntrance bool                  `json:"from_entrance,omitempty"`
	Algorithm    string                `json:"algorithm,omitempty"`
}

// RouteResult найденный и озвученный маршрут
type RouteResult struct {
	PathID       string           `json:"path_id"`
	MapID        string           `json:"map_id"`
	Algorithm    string           `json:"algorithm"`
	From         string           `json:"from"`
	To           string           `json:"to"`
	Path         pathfinding.Path `json:"path"`
	Instructions []string         `json:"instructions"`
	Steps        []narration.Step `json:"steps"`
	Stats        narration.Stats  `json:"stats"`
	Fallback     bool             `json:"fallback,omitempty"`
}

// plan разрешенные концы маршрута
type plan struct {
	start, end pathfinding.Position
	from, to   string
	toRoom     string
	target     string
}

// resolve превращает запрос в пару координат на конкретном снимке
func resolve(s *building.Snapshot, req RouteRequest) (plan, error) {
	var p plan

	origins := 0
	if req.Start != nil {
		origins++
	}
	if req.FromRoom != "" {
		origins++
	}
	if req.FromEntrance {
		origins++
	}
	if origins != 1 {
		return p, fmt.Errorf("%w: exactly one of start, from_room, from_entrance is required", ErrBadRequest)
	}
	if (req.End != nil) == (req.ToRoom != "") {
		return p, fmt.Errorf("%w: exactly one of end, to_room is required", ErrBadRequest)
	}

	switch {
	case req.End != nil:
		p.end = *req.End
		p.to = p.end.String()
	default:
		room, ok := s.FindRoom(req.ToRoom)
		if !ok {
			return p, fmt.Errorf("%w: %s", pathfinding.ErrUnknownRoom, req.ToRoom)
		}
		p.end = pathfinding.FromVec3(room.Position())
		p.to = room.ID
		p.toRoom = room.ID
		p.target = room.Name
		if p.target == "" {
			p.target = room.ID
		}
	}

	switch {
	case req.Start != nil:
		p.start = *req.Start
		p.from = p.start.String()
	case req.FromRoom != "":
		room, ok := s.FindRoom(req.FromRoom)
		if !ok {
			return p, fmt.Errorf("%w: %s", pathfinding.ErrUnknownRoom, req.FromRoom)
		}
		p.start = pathfinding.FromVec3(room.Position())
		p.from = room.ID
	default:
		entrance, err := pathfinding.EntranceFor(s, p.end.Floor)
		if err != nil {
			return p, err
		}
		p.start = entrance
		p.from = "entrance"
	}
	return p, nil
}

// chooseAlgorithm выбирает алгоритм: BFS для одноэтажных карт и явного запроса,
// A* для остальных случаев. BFS не пересекает этажи.
func chooseAlgorithm(s *building.Snapshot, requested string, p plan) (string, error) {
	switch requested {
	case AlgorithmAuto:
		if !s.IsMultiFloor() && p.start.Floor == p.end.Floor {
			return AlgorithmBFS, nil
		}
		return AlgorithmAStar, nil
	case AlgorithmBFS:
		if p.start.Floor != p.end.Floor {
			return "", fmt.Errorf("%w: bfs cannot route between floors %d and %d",
				pathfinding.ErrInvalidEndpoint, p.start.Floor, p.end.Floor)
		}
		return AlgorithmBFS, nil
	case AlgorithmAStar:
		return AlgorithmAStar, nil
	default:
		return "", fmt.Errorf("%w: unknown algorithm %q", ErrBadRequest, requested)
	}
}
