package physics

// spatialIndex равномерная сетка для быстрого поиска статических объёмов.
// Объём может занимать несколько ячеек сетки, если пересекает их границы.
// Индекс не имеет собственных блокировок: доступ сериализует CollisionWorld.

type spatialIndex struct {
	cellSize float64
	cells    map[cellKey]map[string]*BoxVolume
	occupied map[string][]cellKey // id объёма -> занятые ячейки сетки
}

// cellKey представляет ключ ячейки в пространственной сетке
type cellKey struct {
	x, z int
}

// volumeBounds представляет горизонтальные границы объёма
type volumeBounds struct {
	minX, minZ float64
	maxX, maxZ float64
}

// newSpatialIndex создаёт пустой индекс с заданным шагом сетки
func newSpatialIndex(cellSize float64) *spatialIndex {
	if cellSize <= 0 {
		cellSize = 32.0 // шаг сетки по умолчанию
	}

	return &spatialIndex{
		cellSize: cellSize,
		cells:    make(map[cellKey]map[string]*BoxVolume),
		occupied: make(map[string][]cellKey),
	}
}

// insert добавляет объём во все ячейки сетки, которые он пересекает
func (si *spatialIndex) insert(v *BoxVolume) {
	keys := si.getCellsForBounds(v.boundsXZ())

	for _, key := range keys {
		cell, exists := si.cells[key]
		if !exists {
			cell = make(map[string]*BoxVolume)
			si.cells[key] = cell
		}
		cell[v.ID] = v
	}

	si.occupied[v.ID] = keys
}

// remove убирает объём из всех занятых им ячеек сетки
func (si *spatialIndex) remove(id string) {
	keys, exists := si.occupied[id]
	if !exists {
		return
	}
	delete(si.occupied, id)

	for _, key := range keys {
		if cell, ok := si.cells[key]; ok {
			delete(cell, id)
			if len(cell) == 0 {
				delete(si.cells, key)
			}
		}
	}
}

// collect возвращает уникальные объёмы из ячеек сетки, пересекающих границы.
// Кандидаты фильтруются вызывающей стороной.
func (si *spatialIndex) collect(bounds volumeBounds) []*BoxVolume {
	keys := si.getCellsForBounds(bounds)

	seen := make(map[string]struct{})
	result := make([]*BoxVolume, 0)

	for _, key := range keys {
		cell, exists := si.cells[key]
		if !exists {
			continue
		}
		for id, v := range cell {
			if _, wasSeen := seen[id]; wasSeen {
				continue
			}
			seen[id] = struct{}{}
			result = append(result, v)
		}
	}

	return result
}

// cellCount возвращает количество активных ячеек сетки
func (si *spatialIndex) cellCount() int {
	return len(si.cells)
}

// maxPerCell возвращает максимальное число объёмов в одной ячейке сетки
func (si *spatialIndex) maxPerCell() int {
	max := 0
	for _, cell := range si.cells {
		if len(cell) > max {
			max = len(cell)
		}
	}
	return max
}

// getCellsForBounds возвращает ключи ячеек, которые пересекаются с границами
func (si *spatialIndex) getCellsForBounds(bounds volumeBounds) []cellKey {
	minCellX := int(bounds.minX / si.cellSize)
	minCellZ := int(bounds.minZ / si.cellSize)
	maxCellX := int(bounds.maxX / si.cellSize)
	maxCellZ := int(bounds.maxZ / si.cellSize)

	// Корректируем для отрицательных координат
	if bounds.minX < 0 && bounds.minX != float64(minCellX)*si.cellSize {
		minCellX--
	}
	if bounds.minZ < 0 && bounds.minZ != float64(minCellZ)*si.cellSize {
		minCellZ--
	}

	cells := make([]cellKey, 0, (maxCellX-minCellX+1)*(maxCellZ-minCellZ+1))

	for x := minCellX; x <= maxCellX; x++ {
		for z := minCellZ; z <= maxCellZ; z++ {
			cells = append(cells, cellKey{x: x, z: z})
		}
	}

	return cells
}
