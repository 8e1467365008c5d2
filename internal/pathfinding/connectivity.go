package pathfinding

import (
	"fmt"
	"sort"

	"github.com/annel0/indoor-nav/internal/building"
)

// ConnectivityReport достижимость комнат одного этажа от его входа
type ConnectivityReport struct {
	Floor       int      `json:"floor"`
	Entrance    Position `json:"entrance"`
	Reachable   []string `json:"reachable_rooms"`
	Unreachable []string `json:"unreachable_rooms"`
	Total       int      `json:"total_rooms"`
	Ratio       float64  `json:"connectivity_ratio"`
}

// CheckConnectivity прогоняет поиск от входа этажа до каждой его комнаты.
// Комнаты перебираются по возрастанию ID; при отсутствии комнат Ratio = 0.
func (r *PlanarRouter) CheckConnectivity(floorID int) (ConnectivityReport, error) {
	floor, ok := r.snapshot.Floor(floorID)
	if !ok {
		return ConnectivityReport{}, fmt.Errorf("%w: %d", ErrUnknownFloor, floorID)
	}
	if floor.Entrance == nil {
		return ConnectivityReport{}, fmt.Errorf("%w: floor %d", ErrNoEntrance, floorID)
	}

	report := ConnectivityReport{
		Floor:       floorID,
		Entrance:    Position{X: floor.Entrance.X, Y: floor.Entrance.Y, Floor: floorID},
		Reachable:   make([]string, 0),
		Unreachable: make([]string, 0),
	}

	rooms := make([]building.Room, len(floor.Rooms))
	copy(rooms, floor.Rooms)
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })

	for _, room := range rooms {
		_, found, err := r.FindPath(report.Entrance, FromVec3(room.Position()))
		if err == nil && found {
			report.Reachable = append(report.Reachable, room.ID)
		} else {
			report.Unreachable = append(report.Unreachable, room.ID)
		}
	}

	report.Total = len(rooms)
	report.Ratio = ratio(len(report.Reachable), report.Total)
	r.logger.Debug("connectivity floor %d: %d/%d rooms reachable", floorID, len(report.Reachable), report.Total)
	return report, nil
}

// FloorCoverage достижимость комнат одного этажа в рамках обхода здания
type FloorCoverage struct {
	Floor     int `json:"floor"`
	Rooms     int `json:"rooms"`
	Reachable int `json:"reachable"`
}

// BuildingAudit достижимость всех комнат здания от входа с учетом связей
type BuildingAudit struct {
	Entrance    Position        `json:"entrance"`
	Reachable   []string        `json:"reachable_rooms"`
	Unreachable []string        `json:"unreachable_rooms"`
	Total       int             `json:"total_rooms"`
	Ratio       float64         `json:"connectivity_ratio"`
	Floors      []FloorCoverage `json:"floors"`
	Links       int             `json:"links"`
}

// AuditBuilding заливкой по графу этажей и связей определяет, какие комнаты
// достижимы от входа здания. Лимита раскрытий нет: обход линеен по числу клеток.
func AuditBuilding(s *building.Snapshot) (BuildingAudit, error) {
	registry, err := building.NewLinkRegistry(s)
	if err != nil {
		return BuildingAudit{}, err
	}

	ids := s.FloorIDs()
	if len(ids) == 0 {
		return BuildingAudit{}, fmt.Errorf("%w: building %q has no floors", ErrUnknownFloor, s.Name)
	}
	entrance, err := EntranceFor(s, ids[0])
	if err != nil {
		return BuildingAudit{}, err
	}
	if !s.IsWalkable(entrance.X, entrance.Y, entrance.Floor) {
		return BuildingAudit{}, fmt.Errorf("%w: entrance %v is not walkable", ErrInvalidEndpoint, entrance)
	}

	visited := map[Position]struct{}{entrance: {}}
	queue := []Position{entrance}
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		for _, nb := range s.Neighbors(cur.X, cur.Y, cur.Floor) {
			next := Position{X: nb.X, Y: nb.Y, Floor: cur.Floor}
			if _, ok := visited[next]; !ok {
				visited[next] = struct{}{}
				queue = append(queue, next)
			}
		}
		for _, tr := range registry.LinksAt(cur.Vec3()) {
			next := FromVec3(tr.To)
			if _, ok := visited[next]; !ok {
				visited[next] = struct{}{}
				queue = append(queue, next)
			}
		}
	}

	audit := BuildingAudit{
		Entrance:    entrance,
		Reachable:   make([]string, 0),
		Unreachable: make([]string, 0),
		Floors:      make([]FloorCoverage, 0, len(ids)),
		Links:       registry.Len(),
	}
	coverage := make(map[int]*FloorCoverage, len(ids))
	for _, id := range ids {
		audit.Floors = append(audit.Floors, FloorCoverage{Floor: id})
		coverage[id] = &audit.Floors[len(audit.Floors)-1]
	}

	for _, room := range s.Rooms() {
		fc, ok := coverage[room.Floor]
		if !ok {
			audit.Unreachable = append(audit.Unreachable, room.ID)
			continue
		}
		fc.Rooms++
		if _, ok := visited[FromVec3(room.Position())]; ok {
			audit.Reachable = append(audit.Reachable, room.ID)
			fc.Reachable++
		} else {
			audit.Unreachable = append(audit.Unreachable, room.ID)
		}
	}
	audit.Total = len(audit.Reachable) + len(audit.Unreachable)
	audit.Ratio = ratio(len(audit.Reachable), audit.Total)
	return audit, nil
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
