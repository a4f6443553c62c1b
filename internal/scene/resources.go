package scene

import (
	"github.com/annel0/worldstream/internal/vec"
)

// ItemKind тип визуального объекта в группе.
type ItemKind int

const (
	ItemBuilding ItemKind = iota
	ItemTree
	ItemRock
	ItemShrub
	ItemSnowdrift
)

// String возвращает строковое имя типа объекта
func (k ItemKind) String() string {
	switch k {
	case ItemBuilding:
		return "building"
	case ItemTree:
		return "tree"
	case ItemRock:
		return "rock"
	case ItemShrub:
		return "shrub"
	case ItemSnowdrift:
		return "snowdrift"
	default:
		return "unknown"
	}
}

// Solid сообщает, требует ли объект данного типа коллизионный объём.
// Кусты и сугробы чисто визуальные, сквозь них можно пройти.
func (k ItemKind) Solid() bool {
	switch k {
	case ItemBuilding, ItemTree, ItemRock:
		return true
	default:
		return false
	}
}

// Item один визуальный объект внутри группы.
// Позиция задаёт центр объекта в мировых координатах.
type Item struct {
	Kind     ItemKind
	Position vec.Vec3Float
	Size     vec.Vec3Float
	Yaw      float64 // поворот вокруг вертикальной оси, радианы
	Material int     // номер варианта отделки для рендера
}

// GroundSurface визуальная поверхность земли одной ячейки.
// Дорожные полосы являются частью поверхности, а не отдельными объектами.
type GroundSurface struct {
	ID        string   // уникальный идентификатор для сцены
	Cell      vec.Vec2 // координаты ячейки
	Size      float64  // длина стороны ячейки в мировых единицах
	Biome     string   // метка биома для рендера
	RoadNS    bool     // полоса север-юг по центру ячейки
	RoadEW    bool     // полоса запад-восток по центру ячейки
	RoadWidth float64  // ширина полос, 0 если дорог нет
}

// SceneID возвращает идентификатор поверхности в сцене
func (g *GroundSurface) SceneID() string {
	return g.ID
}

// Origin возвращает мировые координаты юго-западного угла ячейки
func (g *GroundSurface) Origin() vec.Vec2Float {
	return vec.Vec2Float{X: float64(g.Cell.X) * g.Size, Y: float64(g.Cell.Y) * g.Size}
}

// Reset очищает поверхность перед возвратом в пул.
func (g *GroundSurface) Reset() {
	*g = GroundSurface{}
}

// ObjectGroup группа визуальных объектов одной ячейки.
// Прикрепляется к сцене и открепляется как единое целое.
type ObjectGroup struct {
	ID    string   // уникальный идентификатор для сцены
	Cell  vec.Vec2 // координаты ячейки
	Items []Item
}

// SceneID возвращает идентификатор группы в сцене
func (o *ObjectGroup) SceneID() string {
	return o.ID
}

// Add добавляет объект в группу
func (o *ObjectGroup) Add(item Item) {
	o.Items = append(o.Items, item)
}

// Reset очищает группу перед возвратом в пул.
// Ёмкость слайса сохраняется, чтобы не аллоцировать заново.
func (o *ObjectGroup) Reset() {
	o.ID = ""
	o.Cell = vec.Vec2{}
	o.Items = o.Items[:0]
}
