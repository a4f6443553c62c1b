package world

import (
	"github.com/annel0/worldstream/internal/scene"
	"github.com/annel0/worldstream/internal/vec"
)

// CellState состояние ячейки в жизненном цикле стриминга.
// Легальные переходы: Absent -> QueuedForLoad -> Resident -> QueuedForUnload -> Absent,
// плюс отмена отложенной выгрузки QueuedForUnload -> Resident.
type CellState int

const (
	StateQueuedForLoad CellState = iota
	StateResident
	StateQueuedForUnload
)

// String возвращает строковое имя состояния
func (s CellState) String() string {
	switch s {
	case StateQueuedForLoad:
		return "queued_for_load"
	case StateResident:
		return "resident"
	case StateQueuedForUnload:
		return "queued_for_unload"
	default:
		return "unknown"
	}
}

// CellRecord запись о ячейке, известной менеджеру стриминга.
// Отсутствие записи означает состояние Absent. Запись создаётся при
// постановке в очередь загрузки и заполняется по завершении загрузки.
// Записью владеет только менеджер, никто другой ссылок не держит.
type CellRecord struct {
	Cell    vec.Vec2
	Key     string
	State   CellState
	Biome   BiomeType
	Surface *scene.GroundSurface
	Objects *scene.ObjectGroup
	Volumes []string // идентификаторы коллизионных объёмов ячейки
	Loaded  bool
}

// CellInfo срез состояния ячейки для внешнего наблюдения.
type CellInfo struct {
	Key     string `json:"key"`
	Biome   string `json:"biome"`
	State   string `json:"state"`
	Items   int    `json:"items"`
	Volumes int    `json:"volumes"`
}

// ObserverInfo положение наблюдателя на момент последнего тика.
type ObserverInfo struct {
	X     float64 `json:"x"`
	Z     float64 `json:"z"`
	Cell  string  `json:"cell"`
	Biome string  `json:"biome"`
}
