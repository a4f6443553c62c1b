package vec

import "math"

// Vec3Float представляет трехмерный вектор с плавающими координатами
// (позиции и размеры размещаемых объектов: X/Z — плоскость, Y — высота)
type Vec3Float struct {
	X float64
	Y float64
	Z float64
}

// XZ возвращает проекцию вектора на плоскость x/z
func (v Vec3Float) XZ() Vec2Float {
	return Vec2Float{X: v.X, Y: v.Z}
}

// Add складывает два вектора
func (v Vec3Float) Add(other Vec3Float) Vec3Float {
	return Vec3Float{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Scale умножает вектор на скаляр
func (v Vec3Float) Scale(s float64) Vec3Float {
	return Vec3Float{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Equals проверяет равенство векторов
func (v Vec3Float) Equals(other Vec3Float) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// DistanceTo возвращает расстояние до другого вектора
func (v Vec3Float) DistanceTo(other Vec3Float) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
