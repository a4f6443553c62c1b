package world

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/annel0/worldstream/internal/noise"
	"github.com/annel0/worldstream/internal/vec"
)

func newTestClassifier(seed int64) *Classifier {
	return NewClassifier(noise.NewField(seed), seed)
}

func TestClassifier_Determinism(t *testing.T) {
	// Два классификатора с одним сидом должны совпадать во всех точках
	c1 := newTestClassifier(12345)
	c2 := newTestClassifier(12345)

	for x := -2000; x <= 2000; x += 170 {
		for z := -2000; z <= 2000; z += 230 {
			wx, wz := float64(x), float64(z)
			assert.Equal(t, c1.Classify(wx, wz), c2.Classify(wx, wz),
				"Биом должен совпадать в точке (%v, %v)", wx, wz)
		}
	}
}

func TestClassifier_RepeatedCalls(t *testing.T) {
	// Повторный вызов с теми же координатами даёт тот же биом
	// независимо от промежуточных вызовов
	c := newTestClassifier(777)

	first := c.Classify(130.0, -270.0)
	for i := 0; i < 50; i++ {
		c.Classify(float64(i)*91.3, float64(-i)*47.7)
	}
	assert.Equal(t, first, c.Classify(130.0, -270.0),
		"Классификатор не должен зависеть от порядка вызовов")
}

func TestClassifier_ValidBiomes(t *testing.T) {
	// Классификатор всегда возвращает один из пяти биомов
	c := newTestClassifier(42)

	for i := 0; i < 500; i++ {
		wx := float64(i*137 - 30000)
		wz := float64(i*211 - 50000)
		b := c.Classify(wx, wz)
		assert.GreaterOrEqual(t, int(b), int(BiomeCity), "Неизвестный биом в точке (%v, %v)", wx, wz)
		assert.LessOrEqual(t, int(b), int(BiomeSnow), "Неизвестный биом в точке (%v, %v)", wx, wz)
	}
}

func TestClassifier_ContiguousRegions(t *testing.T) {
	// Соседние ячейки должны в основном совпадать по биому:
	// регионы сплошные, а не шумовая крошка
	c := newTestClassifier(12345)

	changes := 0
	samples := 400
	prev := c.Classify(0, 0)

	for i := 1; i < samples; i++ {
		// шаг в одну ячейку
		b := c.Classify(float64(i)*100.0, 0)
		if b != prev {
			changes++
		}
		prev = b
	}

	assert.Less(t, changes, samples/3,
		"Биомы должны образовывать сплошные регионы, а не меняться в каждой ячейке")
}

func TestClassifier_CellOrigin(t *testing.T) {
	// Биом ячейки определяется по её мировому началу
	c := newTestClassifier(99)

	cell := vec.Vec2{X: -7, Y: 13}
	assert.Equal(t, c.Classify(-700.0, 1300.0), c.ClassifyCell(cell, 100),
		"ClassifyCell должен сэмплировать мировое начало ячейки")
}

func TestBiomeType_String(t *testing.T) {
	assert.Equal(t, "city", BiomeCity.String())
	assert.Equal(t, "suburban", BiomeSuburban.String())
	assert.Equal(t, "forest", BiomeForest.String())
	assert.Equal(t, "desert", BiomeDesert.String())
	assert.Equal(t, "snow", BiomeSnow.String())
	assert.Equal(t, "unknown", BiomeType(99).String())
}

func TestCellRand_Range(t *testing.T) {
	// Розыгрыши лежат в [0, 1)
	for i := 0; i < 2000; i++ {
		cell := vec.Vec2{X: i*31 - 30000, Y: i*17 - 15000}
		v := cellRand(12345, cell, uint64(i))
		assert.GreaterOrEqual(t, v, 0.0, "Розыгрыш не должен быть отрицательным")
		assert.Less(t, v, 1.0, "Розыгрыш должен быть строго меньше 1")
	}
}

func TestCellRand_Determinism(t *testing.T) {
	cell := vec.Vec2{X: 3, Y: -1}

	assert.Equal(t, cellRand(12345, cell, 7), cellRand(12345, cell, 7),
		"Одинаковые аргументы должны давать одинаковый розыгрыш")
	assert.NotEqual(t, cellRand(12345, cell, 7), cellRand(12345, cell, 8),
		"Разные соли должны давать разные розыгрыши")
	assert.NotEqual(t, cellRand(12345, cell, 7), cellRand(54321, cell, 7),
		"Разные сиды должны давать разные розыгрыши")
	assert.NotEqual(t, cellRand(12345, vec.Vec2{X: 3, Y: 1}, 7), cellRand(12345, vec.Vec2{X: 1, Y: 3}, 7),
		"Перестановка координат должна менять розыгрыш")
}
