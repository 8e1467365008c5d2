package vec

// Vec3 представляет трехмерные целочисленные координаты.
// В модели здания Z - это номер этажа, а не высота.
type Vec3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"floor"`
}

// ToVec2 преобразует Vec3 в Vec2, игнорируя координату Z
func (v Vec3) ToVec2() Vec2 {
	return Vec2{
		X: v.X,
		Y: v.Y,
	}
}

// FromVec2 создает Vec3 из Vec2, используя заданную Z координату
func FromVec2(v Vec2, z int) Vec3 {
	return Vec3{
		X: v.X,
		Y: v.Y,
		Z: z,
	}
}

// PlanarDistanceTo возвращает евклидово расстояние в плоскости XY
func (v Vec3) PlanarDistanceTo(other Vec3) float64 {
	return v.ToVec2().DistanceTo(other.ToVec2())
}

// FloorDelta возвращает модуль разницы этажей
func (v Vec3) FloorDelta(other Vec3) int {
	return abs(v.Z - other.Z)
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}
