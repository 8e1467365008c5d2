package vec

import "math"

// Vec2 представляет координаты клетки на сетке этажа
type Vec2 struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub вычитает вектор
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// ManhattanTo возвращает манхэттенское расстояние (число ходов без диагоналей)
func (v Vec2) ManhattanTo(other Vec2) int {
	return abs(v.X-other.X) + abs(v.Y-other.Y)
}

// DistanceTo вычисляет евклидово расстояние до другой точки
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// InBounds проверяет, что точка лежит в прямоугольнике [0,width)×[0,height)
func (v Vec2) InBounds(width, height int) bool {
	return v.X >= 0 && v.X < width && v.Y >= 0 && v.Y < height
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
