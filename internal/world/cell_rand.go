package world

import (
	"github.com/annel0/worldstream/internal/vec"
)

// mix64 финализатор-смеситель битов в стиле splitmix64.
// Рассеивает младшие биты входа по всему слову.
func mix64(v uint64) uint64 {
	v ^= v >> 30
	v *= 0xbf58476d1ce4e5b9
	v ^= v >> 27
	v *= 0x94d049bb133111eb
	v ^= v >> 31
	return v
}

// cellRand детерминированное число в [0, 1) из координат ячейки и соли.
// Чистая функция (seed, cx, cz, salt) без внешнего состояния:
// один и тот же розыгрыш даёт один и тот же результат в любом порядке вызовов.
func cellRand(seed int64, cell vec.Vec2, salt uint64) float64 {
	h := uint64(seed)
	h = mix64(h ^ uint64(int64(cell.X))*0x9e3779b97f4a7c15)
	h = mix64(h ^ uint64(int64(cell.Y))*0xc2b2ae3d27d4eb4f)
	h = mix64(h ^ salt)

	// Старшие 53 бита дают равномерный float64 в [0, 1)
	return float64(h>>11) / float64(1<<53)
}
