package world

import (
	"github.com/annel0/worldstream/internal/noise"
	"github.com/annel0/worldstream/internal/vec"
)

// BiomeType представляет тип биома
type BiomeType int

const (
	BiomeCity BiomeType = iota
	BiomeSuburban
	BiomeForest
	BiomeDesert
	BiomeSnow
)

// String возвращает строковое имя биома
func (b BiomeType) String() string {
	switch b {
	case BiomeCity:
		return "city"
	case BiomeSuburban:
		return "suburban"
	case BiomeForest:
		return "forest"
	case BiomeDesert:
		return "desert"
	case BiomeSnow:
		return "snow"
	default:
		return "unknown"
	}
}

// Масштабы шума классификатора
const (
	MacroScale      = 0.002 // Масштаб макросигнала (крупные регионы ~500 единиц)
	SecondaryFactor = 0.7   // Частота вторичного сигнала относительно макро
	MacroOctaves    = 4     // Октавы фрактального макросигнала
)

// Пороги макросигнала для выбора полосы биомов
const (
	UrbanStart  = 0.30  // Выше - городская застройка (City/Suburban)
	ForestStart = -0.10 // Выше - лес
	TundraStart = -0.50 // Выше - холодная либо засушливая полоса (Snow/Desert)
	// Ниже TundraStart - пустыня
)

// Classifier определяет биом по мировым координатам.
// Два независимых сигнала: макро задаёт полосу, вторичный разводит
// пары внутри полосы. Чистая функция координат: никакого состояния
// после конструирования не изменяется.
type Classifier struct {
	field     *noise.Field        // макросигнал (рельефоподобный)
	secondary *noise.PerlinSource // вторичный сигнал (климатоподобный)
}

// NewClassifier создаёт классификатор над общим шумовым полем
func NewClassifier(field *noise.Field, seed int64) *Classifier {
	return &Classifier{
		field:     field,
		secondary: noise.NewPerlinSource(seed + 42),
	}
}

// Classify возвращает биом для точки мира.
// Повторный вызов с теми же координатами всегда даёт тот же биом.
func (c *Classifier) Classify(worldX, worldZ float64) BiomeType {
	macro := c.field.Fractal(worldX*MacroScale, worldZ*MacroScale, MacroOctaves, 2.0, 0.5)
	secondary := c.secondary.Noise2D(worldX*MacroScale*SecondaryFactor, worldZ*MacroScale*SecondaryFactor)

	return c.getBiomeType(macro, secondary)
}

// ClassifyCell возвращает биом ячейки по её мировому началу
func (c *Classifier) ClassifyCell(cell vec.Vec2, cellSize int) BiomeType {
	return c.Classify(float64(cell.X)*float64(cellSize), float64(cell.Y)*float64(cellSize))
}

// getBiomeType определяет тип биома на основе значений сигналов
func (c *Classifier) getBiomeType(macro, secondary float64) BiomeType {
	// Городская полоса на "возвышенностях" макросигнала
	if macro >= UrbanStart {
		if secondary >= 0 {
			return BiomeCity
		}
		return BiomeSuburban
	}

	// Средняя полоса — лес
	if macro >= ForestStart {
		return BiomeForest
	}

	// Холодная/засушливая полоса
	if macro >= TundraStart {
		if secondary >= 0 {
			return BiomeSnow
		}
		return BiomeDesert
	}

	return BiomeDesert
}
