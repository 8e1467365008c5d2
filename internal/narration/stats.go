package narration

import "github.com/annel0/indoor-nav/internal/pathfinding"

// Stats сводка по маршруту
type Stats struct {
	TotalSteps          int     `json:"total_steps"`
	FloorsVisited       []int   `json:"floors_visited"`
	VerticalTransitions int     `json:"vertical_transitions"`
	TotalCost           float64 `json:"total_cost"`
	EstimatedSeconds    float64 `json:"estimated_time"`
}

// Stats считает сводку: число узлов, этажи в порядке посещения, переходы, стоимость и время
func (n *Narrator) Stats(path pathfinding.Path) Stats {
	stats := Stats{
		TotalSteps:    len(path),
		FloorsVisited: make([]int, 0, 2),
		TotalCost:     path.TotalCost(),
	}

	seen := make(map[int]struct{})
	for _, node := range path {
		if _, ok := seen[node.Pos.Floor]; !ok {
			seen[node.Pos.Floor] = struct{}{}
			stats.FloorsVisited = append(stats.FloorsVisited, node.Pos.Floor)
		}
		if node.Action.IsVertical() {
			stats.VerticalTransitions++
		}
	}

	stats.EstimatedSeconds = n.Estimate(path)
	return stats
}

// PathStats сводка нарратором по умолчанию
func PathStats(path pathfinding.Path) Stats {
	return defaultNarrator.Stats(path)
}
