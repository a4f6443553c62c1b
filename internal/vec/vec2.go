package vec

import (
	"fmt"
	"math"
)

// Vec2 представляет целочисленные 2D координаты (для ячеек: X — ось x, Y — ось z)
type Vec2 struct {
	X, Y int
}

// CellOf возвращает координаты ячейки для мировой позиции (x, z).
// Деление с округлением вниз, поэтому отрицательные позиции
// попадают в правильную ячейку (floor(-1/100) = -1, а не 0).
func CellOf(x, z float64, size int) Vec2 {
	return Vec2{
		X: int(math.Floor(x / float64(size))),
		Y: int(math.Floor(z / float64(size))),
	}
}

// CellKey возвращает строковый ключ ячейки вида "cx,cz"
func (v Vec2) CellKey() string {
	return fmt.Sprintf("%d,%d", v.X, v.Y)
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// ChebyshevDistance возвращает расстояние Чебышёва до другой ячейки
// (максимум из |dx| и |dz| — метрика квадратной окрестности стриминга)
func (v Vec2) ChebyshevDistance(other Vec2) int {
	dx := absInt(v.X - other.X)
	dy := absInt(v.Y - other.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// DistanceTo вычисляет евклидово расстояние до другой ячейки
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
