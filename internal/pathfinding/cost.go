package pathfinding

import (
	"math"

	"github.com/annel0/indoor-nav/internal/building"
)

// CostModel веса для объемного поиска
type CostModel struct {
	MoveCost             float64 `yaml:"move_cost" json:"move_cost"`
	StairCostPerStep     float64 `yaml:"stair_cost_per_step" json:"stair_cost_per_step"`
	ElevatorCostPerFloor float64 `yaml:"elevator_cost_per_floor" json:"elevator_cost_per_floor"`
	FloorChangePenalty   float64 `yaml:"floor_change_penalty" json:"floor_change_penalty"`
	EscalatorFactor      float64 `yaml:"escalator_factor" json:"escalator_factor"`

	// StrictHeuristic оценивает этаж по самой дешевой связи снимка вместо штрафа
	StrictHeuristic bool `yaml:"strict_heuristic" json:"strict_heuristic"`
}

// DefaultCostModel стандартные веса
func DefaultCostModel() CostModel {
	return CostModel{
		MoveCost:             1.0,
		StairCostPerStep:     1.5,
		ElevatorCostPerFloor: 10.0,
		FloorChangePenalty:   20.0,
		EscalatorFactor:      0.5,
		StrictHeuristic:      true,
	}
}

// LinkCost стоимость одного перехода по связи; одинакова вверх и вниз
func (m CostModel) LinkCost(link building.VerticalLink) float64 {
	cost := m.FloorChangePenalty
	switch link.Type {
	case building.LinkStair:
		cost += float64(link.Steps) * m.StairCostPerStep
	case building.LinkElevator:
		cost += float64(link.FloorSpan()) * m.ElevatorCostPerFloor
	case building.LinkEscalator:
		cost += link.Duration * m.EscalatorFactor
	default:
		cost += link.Duration
	}
	return cost
}

// estimator эвристика A* для одного снимка
type estimator struct {
	move      float64
	floorTerm float64
	strict    bool
	detour    float64 // нижняя граница ухода на другой этаж и возврата
}

// estimator строит эвристику. В строгом режиме оценка не превышает
// реальной стоимости: концы связи могут стоять в разных клетках,
// поэтому между этажами плоское расстояние не учитывается.
func (m CostModel) estimator(reg *building.LinkRegistry) estimator {
	e := estimator{move: m.MoveCost, floorTerm: m.FloorChangePenalty, detour: math.Inf(1)}
	if !m.StrictHeuristic {
		return e
	}
	e.strict = true
	e.floorTerm = reg.MinCostPerFloor(m.LinkCost)
	if reg.Len() > 0 {
		e.detour = 2 * e.floorTerm
	}
	return e
}

func (e estimator) estimate(a, b Position) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	planar := e.move * math.Sqrt(dx*dx+dy*dy)
	floors := math.Abs(float64(a.Floor - b.Floor))

	if !e.strict {
		return planar + floors*e.floorTerm
	}
	if floors > 0 {
		return floors * e.floorTerm
	}
	return math.Min(planar, e.detour)
}
