package world

import (
	"math"

	"github.com/annel0/worldstream/internal/noise"
	"github.com/annel0/worldstream/internal/physics"
	"github.com/annel0/worldstream/internal/scene"
	"github.com/annel0/worldstream/internal/vec"
)

// Параметры дорожной сети и размещения содержимого
const (
	RoadWidth  = 12.0 // Ширина дорожной полосы
	EdgeMargin = 4.0  // Отступ содержимого от границ ячейки
	RoadMargin = 3.0  // Отступ застройки от края дорожной полосы
)

// Соли детерминированных розыгрышей. Соль комбинируется с порядковым
// номером объекта в одно 64-битное слово, поэтому значения могут идти подряд.
const (
	saltStructCount = iota + 1
	saltStructX
	saltStructZ
	saltStructW
	saltStructD
	saltStructH
	saltStructM
	saltTreeCount
	saltTreeX
	saltTreeZ
	saltTreeSize
	saltTreeH
	saltRockCount
	saltRockX
	saltRockZ
	saltRockSize
	saltShrubCount
	saltShrubX
	saltShrubZ
	saltShrubSize
	saltShrubYaw
	saltDriftCount
	saltDriftX
	saltDriftZ
	saltDriftSize
	saltDriftYaw
)

// contentRule правила наполнения ячейки для одного биома.
// Нулевой максимум отключает категорию объектов.
type contentRule struct {
	Structures   [2]int     // мин/макс строений
	StructWidth  [2]float64 // горизонтальный габарит строения
	StructHeight [2]float64 // высота строения
	Trees        [2]int
	Rocks        [2]int
	Shrubs       [2]int // визуальные, без коллизии
	Drifts       [2]int // визуальные, без коллизии
}

// defaultRules возвращает таблицу содержимого по биомам.
// Таблица строится один раз при создании синтезатора и далее только читается.
func defaultRules() map[BiomeType]contentRule {
	return map[BiomeType]contentRule{
		BiomeCity: {
			Structures:   [2]int{4, 8},
			StructWidth:  [2]float64{10, 18},
			StructHeight: [2]float64{20, 60},
		},
		BiomeSuburban: {
			Structures:   [2]int{2, 5},
			StructWidth:  [2]float64{7, 12},
			StructHeight: [2]float64{5, 12},
			Trees:        [2]int{1, 4},
			Shrubs:       [2]int{0, 3},
		},
		BiomeForest: {
			Trees:  [2]int{8, 16},
			Rocks:  [2]int{0, 2},
			Shrubs: [2]int{2, 6},
		},
		BiomeDesert: {
			Rocks:  [2]int{2, 5},
			Shrubs: [2]int{1, 4},
		},
		BiomeSnow: {
			Trees:  [2]int{2, 6},
			Rocks:  [2]int{0, 2},
			Drifts: [2]int{2, 5},
		},
	}
}

// Synthesizer детерминированно наполняет ячейки содержимым.
// Дорожная сеть зависит только от чётности координат ячейки, всё остальное
// определяют салированные розыгрыши cellRand и шумовое поле. Никакого
// состояния после конструирования синтезатор не изменяет.
type Synthesizer struct {
	seed     int64
	cellSize int
	field    *noise.Field
	rules    map[BiomeType]contentRule
}

// NewSynthesizer создаёт синтезатор над общим шумовым полем
func NewSynthesizer(seed int64, cellSize int, field *noise.Field) *Synthesizer {
	return &Synthesizer{
		seed:     seed,
		cellSize: cellSize,
		field:    field,
		rules:    defaultRules(),
	}
}

// Synthesize наполняет поверхность и группу содержимым ячейки и возвращает
// коллизионные объёмы твёрдых объектов. Каждый твёрдый объект получает
// визуальное представление и объём в одном и том же трансформе.
// Повторный синтез той же пары (ячейка, биом) даёт геометрически идентичный
// результат, поэтому выгрузка с последующей перезагрузкой не меняет мир.
func (s *Synthesizer) Synthesize(cell vec.Vec2, biome BiomeType, surface *scene.GroundSurface, group *scene.ObjectGroup) []*physics.BoxVolume {
	length := float64(s.cellSize)

	// Дороги лежат на чётных линиях сетки независимо от шума,
	// поэтому дорожная сеть связна в любом биоме
	surface.Cell = cell
	surface.Size = length
	surface.Biome = biome.String()
	surface.RoadNS = cell.X%2 == 0
	surface.RoadEW = cell.Y%2 == 0
	if surface.RoadNS || surface.RoadEW {
		surface.RoadWidth = RoadWidth
	} else {
		surface.RoadWidth = 0
	}

	group.Cell = cell

	rule := s.rules[biome]
	volumes := make([]*physics.BoxVolume, 0, 8)

	volumes = s.placeStructures(cell, rule, surface, group, volumes)
	volumes = s.placeTrees(cell, rule, surface, group, volumes)
	volumes = s.placeRocks(cell, rule, surface, group, volumes)
	s.placeShrubs(cell, rule, surface, group)
	s.placeDrifts(cell, rule, surface, group)

	return volumes
}

// draw розыгрыш для ячейки с солью и порядковым номером объекта
func (s *Synthesizer) draw(cell vec.Vec2, salt, index int) float64 {
	return cellRand(s.seed, cell, uint64(salt)<<32|uint64(uint32(index)))
}

// placeStructures размещает строения. В ячейках с дорогой строения
// выстраиваются вдоль кромки полосы, в остальных — свободно по внутренней
// области. Строение никогда не пересекает полосу и не выходит за отступы ячейки.
func (s *Synthesizer) placeStructures(cell vec.Vec2, rule contentRule, surface *scene.GroundSurface, group *scene.ObjectGroup, volumes []*physics.BoxVolume) []*physics.BoxVolume {
	if rule.Structures[1] == 0 {
		return volumes
	}

	count := spanCount(rule.Structures, s.draw(cell, saltStructCount, 0))
	origin := surface.Origin()

	xSpans := freeSpans(surface.RoadNS, surface.Size)
	zSpans := freeSpans(surface.RoadEW, surface.Size)

	for i := 0; i < count; i++ {
		w := lerp(rule.StructWidth[0], rule.StructWidth[1], s.draw(cell, saltStructW, i))
		d := lerp(rule.StructWidth[0], rule.StructWidth[1], s.draw(cell, saltStructD, i))
		h := lerp(rule.StructHeight[0], rule.StructHeight[1], s.draw(cell, saltStructH, i))

		xSpan := xSpans[i%len(xSpans)]
		zSpan := zSpans[(i/len(xSpans))%len(zSpans)]

		var lx, lz float64
		switch {
		case surface.RoadNS:
			// Фасадом к вертикальной полосе: прижимаемся к кромке,
			// слоты чередуются по сторонам и тянутся вдоль z
			lx = plotAtRoadEdge(xSpan, w, i%len(xSpans) == 0)
			lz = plotInSpan(zSpan, d, s.draw(cell, saltStructZ, i))
		case surface.RoadEW:
			lx = plotInSpan(xSpan, w, s.draw(cell, saltStructX, i))
			lz = plotAtRoadEdge(zSpan, d, (i/len(xSpans))%len(zSpans) == 0)
		default:
			lx = plotInSpan(xSpan, w, s.draw(cell, saltStructX, i))
			lz = plotInSpan(zSpan, d, s.draw(cell, saltStructZ, i))
		}

		center := vec.Vec3Float{X: origin.X + lx, Y: h / 2, Z: origin.Y + lz}
		size := vec.Vec3Float{X: w, Y: h, Z: d}
		material := int(s.draw(cell, saltStructM, i) * 4)

		group.Add(scene.Item{Kind: scene.ItemBuilding, Position: center, Size: size, Material: material})
		volumes = append(volumes, physics.NewBoxVolume(center, size))
	}

	return volumes
}

// placeTrees размещает деревья: визуальный объект плюс объём ствола
func (s *Synthesizer) placeTrees(cell vec.Vec2, rule contentRule, surface *scene.GroundSurface, group *scene.ObjectGroup, volumes []*physics.BoxVolume) []*physics.BoxVolume {
	if rule.Trees[1] == 0 {
		return volumes
	}

	count := spanCount(rule.Trees, s.draw(cell, saltTreeCount, 0))
	origin := surface.Origin()

	xSpans := freeSpans(surface.RoadNS, surface.Size)
	zSpans := freeSpans(surface.RoadEW, surface.Size)

	for i := 0; i < count; i++ {
		trunk := lerp(0.8, 1.6, s.draw(cell, saltTreeSize, i))
		h := lerp(6.0, 12.0, s.draw(cell, saltTreeH, i))

		lx := plotScattered(xSpans, trunk, s.draw(cell, saltTreeX, i))
		lz := plotScattered(zSpans, trunk, s.draw(cell, saltTreeZ, i))

		center := vec.Vec3Float{X: origin.X + lx, Y: h / 2, Z: origin.Y + lz}
		size := vec.Vec3Float{X: trunk, Y: h, Z: trunk}

		group.Add(scene.Item{Kind: scene.ItemTree, Position: center, Size: size})
		volumes = append(volumes, physics.NewBoxVolume(center, size))
	}

	return volumes
}

// placeRocks размещает камни. Габарит камня дополнительно модулируется
// гребневым шумом, так что скальные выходы тянутся грядами через ячейки.
func (s *Synthesizer) placeRocks(cell vec.Vec2, rule contentRule, surface *scene.GroundSurface, group *scene.ObjectGroup, volumes []*physics.BoxVolume) []*physics.BoxVolume {
	if rule.Rocks[1] == 0 {
		return volumes
	}

	count := spanCount(rule.Rocks, s.draw(cell, saltRockCount, 0))
	origin := surface.Origin()

	xSpans := freeSpans(surface.RoadNS, surface.Size)
	zSpans := freeSpans(surface.RoadEW, surface.Size)

	for i := 0; i < count; i++ {
		base := lerp(1.5, 4.0, s.draw(cell, saltRockSize, i))

		lx := plotScattered(xSpans, base, s.draw(cell, saltRockX, i))
		lz := plotScattered(zSpans, base, s.draw(cell, saltRockZ, i))

		wx := origin.X + lx
		wz := origin.Y + lz

		ridge := s.field.Ridged(wx*0.01, wz*0.01, 3)
		scale := 0.6 + 0.8*ridge
		h := base * scale * 0.8

		center := vec.Vec3Float{X: wx, Y: h / 2, Z: wz}
		size := vec.Vec3Float{X: base * scale, Y: h, Z: base * scale}

		group.Add(scene.Item{Kind: scene.ItemRock, Position: center, Size: size})
		volumes = append(volumes, physics.NewBoxVolume(center, size))
	}

	return volumes
}

// placeShrubs размещает кусты: чисто визуальные, без коллизии
func (s *Synthesizer) placeShrubs(cell vec.Vec2, rule contentRule, surface *scene.GroundSurface, group *scene.ObjectGroup) {
	if rule.Shrubs[1] == 0 {
		return
	}

	count := spanCount(rule.Shrubs, s.draw(cell, saltShrubCount, 0))
	origin := surface.Origin()

	xSpans := freeSpans(surface.RoadNS, surface.Size)
	zSpans := freeSpans(surface.RoadEW, surface.Size)

	for i := 0; i < count; i++ {
		spread := lerp(1.0, 2.5, s.draw(cell, saltShrubSize, i))
		h := spread * 0.6

		lx := plotScattered(xSpans, spread, s.draw(cell, saltShrubX, i))
		lz := plotScattered(zSpans, spread, s.draw(cell, saltShrubZ, i))

		group.Add(scene.Item{
			Kind:     scene.ItemShrub,
			Position: vec.Vec3Float{X: origin.X + lx, Y: h / 2, Z: origin.Y + lz},
			Size:     vec.Vec3Float{X: spread, Y: h, Z: spread},
			Yaw:      s.draw(cell, saltShrubYaw, i) * 2 * math.Pi,
		})
	}
}

// placeDrifts размещает сугробы: чисто визуальные, без коллизии
func (s *Synthesizer) placeDrifts(cell vec.Vec2, rule contentRule, surface *scene.GroundSurface, group *scene.ObjectGroup) {
	if rule.Drifts[1] == 0 {
		return
	}

	count := spanCount(rule.Drifts, s.draw(cell, saltDriftCount, 0))
	origin := surface.Origin()

	xSpans := freeSpans(surface.RoadNS, surface.Size)
	zSpans := freeSpans(surface.RoadEW, surface.Size)

	for i := 0; i < count; i++ {
		spread := lerp(2.0, 5.0, s.draw(cell, saltDriftSize, i))
		h := lerp(0.5, 1.2, s.draw(cell, saltDriftSize, i+1000))

		lx := plotScattered(xSpans, spread, s.draw(cell, saltDriftX, i))
		lz := plotScattered(zSpans, spread, s.draw(cell, saltDriftZ, i))

		group.Add(scene.Item{
			Kind:     scene.ItemSnowdrift,
			Position: vec.Vec3Float{X: origin.X + lx, Y: h / 2, Z: origin.Y + lz},
			Size:     vec.Vec3Float{X: spread, Y: h, Z: spread},
			Yaw:      s.draw(cell, saltDriftYaw, i) * math.Pi,
		})
	}
}

// Вспомогательные функции размещения

// spanCount целое в заданных границах по розыгрышу
func spanCount(bounds [2]int, t float64) int {
	span := bounds[1] - bounds[0] + 1
	n := bounds[0] + int(t*float64(span))
	if n > bounds[1] {
		n = bounds[1]
	}
	return n
}

// lerp линейная интерполяция
func lerp(lo, hi, t float64) float64 {
	return lo + t*(hi-lo)
}

// freeSpans свободные интервалы локальной оси с учётом дорожной полосы.
// Полоса проходит по центру ячейки; отступ RoadMargin входит в запретную зону.
func freeSpans(road bool, length float64) [][2]float64 {
	if !road {
		return [][2]float64{{EdgeMargin, length - EdgeMargin}}
	}

	half := RoadWidth/2 + RoadMargin
	return [][2]float64{
		{EdgeMargin, length/2 - half},
		{length/2 + half, length - EdgeMargin},
	}
}

// plotInSpan позиция центра объекта с габаритом extent внутри интервала
func plotInSpan(span [2]float64, extent float64, t float64) float64 {
	lo := span[0] + extent/2
	hi := span[1] - extent/2
	if hi <= lo {
		return (span[0] + span[1]) / 2 // интервал теснее габарита: центр
	}
	return lo + t*(hi-lo)
}

// plotAtRoadEdge позиция центра объекта вплотную к кромке дорожной полосы.
// Для интервала слева от полосы кромка — его верхний край, справа — нижний.
func plotAtRoadEdge(span [2]float64, extent float64, nearHigh bool) float64 {
	if nearHigh {
		return span[1] - extent/2
	}
	return span[0] + extent/2
}

// plotScattered позиция в одном из свободных интервалов: целая часть
// масштабированного розыгрыша выбирает интервал, дробная — позицию внутри
func plotScattered(spans [][2]float64, extent float64, t float64) float64 {
	scaled := t * float64(len(spans))
	idx := int(scaled)
	if idx >= len(spans) {
		idx = len(spans) - 1
	}
	return plotInSpan(spans[idx], extent, scaled-float64(idx))
}
