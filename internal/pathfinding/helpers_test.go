package pathfinding

import (
	"testing"

	"github.com/annel0/indoor-nav/internal/building"
	"github.com/annel0/indoor-nav/internal/vec"
)

// openBuilding здание из floors полностью свободных этажей w x h с номерами 1..floors
func openBuilding(t *testing.T, floors, w, h int) *building.Snapshot {
	t.Helper()
	s := building.NewSnapshot("test")
	for id := 1; id <= floors; id++ {
		s.AddFloor(building.NewFloor(id, w, h))
	}
	return s
}

// walledCell окружает клетку препятствиями со всех четырех сторон
func walledCell(f *building.Floor, x, y int) {
	for _, d := range building.PlanarOffsets {
		f.SetCell(x+d.X, y+d.Y, building.CellObstacle)
	}
}

// scenarioB два открытых этажа 5x5 и одна лестница (2,2,1) <-> (2,2,2) на 15 ступеней
func scenarioB(t *testing.T) *building.Snapshot {
	t.Helper()
	s := openBuilding(t, 2, 5, 5)
	link := building.NewVerticalLink("stair-1", building.LinkStair, vec.Vec3{X: 2, Y: 2, Z: 1}, vec.Vec3{X: 2, Y: 2, Z: 2})
	link.Steps = 15
	s.AddLink(link)
	return s
}

func countActions(p Path) (moves, vertical int) {
	for _, n := range p {
		switch {
		case n.Action == ActionMove:
			moves++
		case n.Action.IsVertical():
			vertical++
		}
	}
	return moves, vertical
}
