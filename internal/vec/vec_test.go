package vec

import (
	"math"
	"testing"
)

func TestVec2Distances(t *testing.T) {
	a := Vec2{X: 0, Y: 0}
	b := Vec2{X: 3, Y: 4}

	if d := a.ManhattanTo(b); d != 7 {
		t.Errorf("Ожидалось манхэттенское расстояние 7, получено %d", d)
	}
	if d := a.DistanceTo(b); math.Abs(d-5) > 1e-9 {
		t.Errorf("Ожидалось евклидово расстояние 5, получено %f", d)
	}
	if !b.InBounds(4, 5) {
		t.Error("Точка (3,4) должна лежать в сетке 4x5")
	}
	if b.InBounds(3, 5) {
		t.Error("Точка (3,4) не должна лежать в сетке 3x5")
	}
}

func TestVec3Floor(t *testing.T) {
	a := FromVec2(Vec2{X: 1, Y: 2}, 1)
	b := Vec3{X: 4, Y: 6, Z: 3}

	if a.FloorDelta(b) != 2 {
		t.Errorf("Ожидалась разница этажей 2, получено %d", a.FloorDelta(b))
	}
	if math.Abs(a.PlanarDistanceTo(b)-5) > 1e-9 {
		t.Errorf("Ожидалось плоское расстояние 5, получено %f", a.PlanarDistanceTo(b))
	}
	if !a.Equals(Vec3{X: 1, Y: 2, Z: 1}) {
		t.Error("FromVec2 должен сохранять координаты и этаж")
	}
}
