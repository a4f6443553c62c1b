package noise

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestField_Determinism(t *testing.T) {
	// Два поля с одним сидом обязаны давать побитово одинаковый результат
	f1 := NewField(12345)
	f2 := NewField(12345)

	for x := -50; x <= 50; x += 7 {
		for z := -50; z <= 50; z += 7 {
			fx := float64(x) * 0.173
			fz := float64(z) * 0.291
			assert.Equal(t, f1.Sample2D(fx, fz), f2.Sample2D(fx, fz),
				"Поля с одинаковым сидом должны совпадать в точке (%v, %v)", fx, fz)
		}
	}
}

func TestField_DifferentSeeds(t *testing.T) {
	// Разные сиды должны давать разный шум
	f1 := NewField(1)
	f2 := NewField(2)

	diffs := 0
	for i := 0; i < 100; i++ {
		x := float64(i) * 0.37
		z := float64(i) * 0.53
		if f1.Sample2D(x, z) != f2.Sample2D(x, z) {
			diffs++
		}
	}

	assert.Greater(t, diffs, 50, "Поля с разными сидами должны отличаться в большинстве точек")
}

func TestField_SampleRange(t *testing.T) {
	// Значения шума должны лежать в диапазоне [-1, 1]
	f := NewField(42)

	for i := -1000; i < 1000; i += 13 {
		x := float64(i) * 0.111
		z := float64(-i) * 0.077
		v := f.Sample2D(x, z)
		assert.GreaterOrEqual(t, v, -1.0, "Шум не должен быть меньше -1 в точке (%v, %v)", x, z)
		assert.LessOrEqual(t, v, 1.0, "Шум не должен быть больше 1 в точке (%v, %v)", x, z)
	}
}

func TestField_Continuity(t *testing.T) {
	// Малый сдвиг координат должен давать малое изменение значения
	f := NewField(7)

	const eps = 0.001
	for i := 0; i < 200; i++ {
		x := float64(i)*0.31 - 30.0
		z := float64(i)*0.17 - 15.0

		v0 := f.Sample2D(x, z)
		v1 := f.Sample2D(x+eps, z)
		assert.Less(t, math.Abs(v1-v0), 0.1,
			"Шум должен быть непрерывным в точке (%v, %v)", x, z)
	}
}

func TestField_FractalNormalized(t *testing.T) {
	// Фрактальный шум нормируется на суммарную амплитуду
	// и остаётся в [-1, 1] при любом числе октав
	f := NewField(99)

	for octaves := 1; octaves <= 8; octaves++ {
		for i := 0; i < 100; i++ {
			x := float64(i)*0.29 - 14.0
			z := float64(i)*0.41 - 20.0
			v := f.Fractal(x, z, octaves, 2.0, 0.5)
			assert.GreaterOrEqual(t, v, -1.0, "Фрактал с %d октавами вышел за нижнюю границу", octaves)
			assert.LessOrEqual(t, v, 1.0, "Фрактал с %d октавами вышел за верхнюю границу", octaves)
		}
	}
}

func TestField_FractalOctavesClamped(t *testing.T) {
	// Некорректное число октав трактуется как одна октава
	f := NewField(5)

	assert.Equal(t, f.Fractal(3.7, 1.2, 1, 2.0, 0.5), f.Fractal(3.7, 1.2, 0, 2.0, 0.5),
		"Ноль октав должен считаться как одна")
	assert.Equal(t, f.Fractal(3.7, 1.2, 1, 2.0, 0.5), f.Fractal(3.7, 1.2, -3, 2.0, 0.5),
		"Отрицательное число октав должно считаться как одна")
}

func TestField_RidgedRange(t *testing.T) {
	// Гребневый шум лежит в [0, 1]
	f := NewField(2024)

	for i := 0; i < 300; i++ {
		x := float64(i)*0.19 - 28.0
		z := float64(i)*0.23 - 34.0
		v := f.Ridged(x, z, 4)
		assert.GreaterOrEqual(t, v, 0.0, "Гребневый шум не должен быть отрицательным")
		assert.LessOrEqual(t, v, 1.0, "Гребневый шум не должен превышать 1")
	}
}

func TestPerlinSource_Determinism(t *testing.T) {
	// Источники с одним сидом совпадают, с разными — отличаются
	p1 := NewPerlinSource(12345)
	p2 := NewPerlinSource(12345)
	p3 := NewPerlinSource(54321)

	x, y := 1.37, 2.81
	assert.Equal(t, p1.Noise2D(x, y), p2.Noise2D(x, y), "Источники с одним сидом должны совпадать")
	assert.NotEqual(t, p1.Noise2D(x, y), p3.Noise2D(x, y), "Источники с разными сидами должны отличаться")
}

func TestPerlinSource_NormRange(t *testing.T) {
	// Нормированный шум лежит в [0, 1]
	p := NewPerlinSource(77)

	for i := 0; i < 200; i++ {
		x := float64(i)*0.13 + 0.5
		y := float64(i)*0.07 + 0.25
		v := p.Noise2DNorm(x, y)
		assert.GreaterOrEqual(t, v, 0.0, "Нормированный шум не должен быть отрицательным")
		assert.LessOrEqual(t, v, 1.0, "Нормированный шум не должен превышать 1")
	}
}

func BenchmarkField_Sample2D(b *testing.B) {
	f := NewField(12345)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Sample2D(float64(i)*0.01, float64(i)*0.013)
	}
}

func BenchmarkField_Fractal(b *testing.B) {
	f := NewField(12345)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Fractal(float64(i)*0.01, float64(i)*0.013, 4, 2.0, 0.5)
	}
}
