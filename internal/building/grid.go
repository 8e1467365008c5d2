package building

import "github.com/annel0/indoor-nav/internal/vec"

// PlanarOffsets порядок обхода соседей: вверх, вправо, вниз, влево.
// От этого порядка зависит выбор среди равных по длине путей.
var PlanarOffsets = [4]vec.Vec2{
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
}

// IsWalkable false если клетка вне сетки или препятствие
func (f *Floor) IsWalkable(x, y int) bool {
	kind, ok := f.Cell(x, y)
	return ok && kind != CellObstacle
}

// Neighbors возвращает до четырех проходимых соседей без диагоналей
func (f *Floor) Neighbors(x, y int) []vec.Vec2 {
	neighbors := make([]vec.Vec2, 0, 4)
	for _, d := range PlanarOffsets {
		nx, ny := x+d.X, y+d.Y
		if f.IsWalkable(nx, ny) {
			neighbors = append(neighbors, vec.Vec2{X: nx, Y: ny})
		}
	}
	return neighbors
}

// IsWalkable проверка проходимости с учетом этажа; неизвестный этаж непроходим
func (s *Snapshot) IsWalkable(x, y, floor int) bool {
	f, ok := s.Floors[floor]
	if !ok {
		return false
	}
	return f.IsWalkable(x, y)
}

// Neighbors плоские соседи клетки на этаже; пусто для неизвестного этажа
func (s *Snapshot) Neighbors(x, y, floor int) []vec.Vec2 {
	f, ok := s.Floors[floor]
	if !ok {
		return nil
	}
	return f.Neighbors(x, y)
}
