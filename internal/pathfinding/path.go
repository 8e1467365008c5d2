package pathfinding

import (
	"fmt"

	"github.com/annel0/indoor-nav/internal/building"
	"github.com/annel0/indoor-nav/internal/vec"
)

// Position клетка здания: координаты сетки и номер этажа
type Position struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Floor int `json:"floor"`
}

// At создает позицию
func At(x, y, floor int) Position {
	return Position{X: x, Y: y, Floor: floor}
}

// FromVec3 позиция из вектора (Z - этаж)
func FromVec3(v vec.Vec3) Position {
	return Position{X: v.X, Y: v.Y, Floor: v.Z}
}

// Vec3 позиция как вектор (Z - этаж)
func (p Position) Vec3() vec.Vec3 {
	return vec.Vec3{X: p.X, Y: p.Y, Z: p.Floor}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)@%d", p.X, p.Y, p.Floor)
}

// IsPlanarNeighbor true если p и o соседние по стороне клетки одного этажа
func (p Position) IsPlanarNeighbor(o Position) bool {
	if p.Floor != o.Floor {
		return false
	}
	return p.Vec3().ToVec2().ManhattanTo(o.Vec3().ToVec2()) == 1
}

// Action тег действия узла пути: start, move или <тип связи>_<направление>
type Action string

const (
	ActionStart Action = "start"
	ActionMove  Action = "move"
)

// VerticalAction тег перехода по связи, например stair_up или elevator_down
func VerticalAction(t building.LinkType, d building.Direction) Action {
	return Action(string(t) + "_" + string(d))
}

// IsVertical true для переходов между этажами
func (a Action) IsVertical() bool {
	return a != ActionStart && a != ActionMove && a != ""
}

// Node узел пути. Cost - накопленная стоимость от начала.
// Link задан только для узлов, в которые пришли по вертикальной связи.
type Node struct {
	Pos    Position               `json:"position"`
	Action Action                 `json:"action"`
	Cost   float64                `json:"cost"`
	Link   *building.VerticalLink `json:"link,omitempty"`
}

// Path упорядоченная последовательность узлов от начала к цели
type Path []Node

// Start первый узел; false для пустого пути
func (p Path) Start() (Node, bool) {
	if len(p) == 0 {
		return Node{}, false
	}
	return p[0], true
}

// End последний узел; false для пустого пути
func (p Path) End() (Node, bool) {
	if len(p) == 0 {
		return Node{}, false
	}
	return p[len(p)-1], true
}

// Positions клетки пути без служебной информации
func (p Path) Positions() []Position {
	out := make([]Position, len(p))
	for i, n := range p {
		out[i] = n.Pos
	}
	return out
}

// TotalCost накопленная стоимость последнего узла
func (p Path) TotalCost() float64 {
	if len(p) == 0 {
		return 0
	}
	return p[len(p)-1].Cost
}

// CheckContinuity проверяет, что соседние узлы либо соседние клетки одного этажа,
// либо два конца одной вертикальной связи, а стоимость не убывает.
func (p Path) CheckContinuity() error {
	for i := 1; i < len(p); i++ {
		prev, cur := p[i-1], p[i]
		if cur.Cost < prev.Cost {
			return fmt.Errorf("node %d: cost decreases from %.2f to %.2f", i, prev.Cost, cur.Cost)
		}
		if cur.Action.IsVertical() {
			if cur.Link == nil {
				return fmt.Errorf("node %d: vertical step %s without link", i, cur.Action)
			}
			a, b := FromVec3(cur.Link.From), FromVec3(cur.Link.To)
			if !(prev.Pos == a && cur.Pos == b) && !(prev.Pos == b && cur.Pos == a) {
				return fmt.Errorf("node %d: %v -> %v does not match link %s", i, prev.Pos, cur.Pos, cur.Link.ID)
			}
			continue
		}
		if !prev.Pos.IsPlanarNeighbor(cur.Pos) {
			return fmt.Errorf("node %d: %v and %v are not adjacent", i, prev.Pos, cur.Pos)
		}
	}
	return nil
}
