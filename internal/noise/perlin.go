package noise

import (
	"github.com/aquilax/go-perlin"
)

// PerlinSource — вторичный канал шума на основе библиотеки go-perlin.
// В отличие от Field хранится на экземпляр (без глобального состояния):
// каждый потребитель создаёт свой источник со своим сидом.
type PerlinSource struct {
	p *perlin.Perlin
}

// NewPerlinSource создаёт источник шума Перлина с указанным сидом
func NewPerlinSource(seed int64) *PerlinSource {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return &PerlinSource{p: perlin.NewPerlin(alpha, beta, n, seed)}
}

// Noise2D возвращает значение шума Перлина для указанных координат (от -1 до 1)
func (ps *PerlinSource) Noise2D(x, y float64) float64 {
	return ps.p.Noise2D(x, y)
}

// Noise2DNorm возвращает значение шума, приведённое к диапазону от 0 до 1
func (ps *PerlinSource) Noise2DNorm(x, y float64) float64 {
	return (ps.p.Noise2D(x, y) + 1.0) / 2.0
}
