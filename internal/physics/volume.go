package physics

import (
	"github.com/google/uuid"

	"github.com/annel0/worldstream/internal/vec"
)

// BoxVolume статический коллизионный объём: осевой параллелепипед.
// Объёмы не двигаются: их добавляют при загрузке ячейки и удаляют при выгрузке.
type BoxVolume struct {
	ID     string        // уникальный идентификатор объёма
	Center vec.Vec3Float // центр в мировых координатах
	Size   vec.Vec3Float // полные габариты по осям
}

// NewBoxVolume создаёт объём со свежим идентификатором
func NewBoxVolume(center, size vec.Vec3Float) *BoxVolume {
	return &BoxVolume{
		ID:     uuid.NewString(),
		Center: center,
		Size:   size,
	}
}

// Overlaps проверяет пересечение с другим параллелепипедом по всем трём осям
func (b *BoxVolume) Overlaps(center, size vec.Vec3Float) bool {
	halfX1 := b.Size.X / 2.0
	halfY1 := b.Size.Y / 2.0
	halfZ1 := b.Size.Z / 2.0
	halfX2 := size.X / 2.0
	halfY2 := size.Y / 2.0
	halfZ2 := size.Z / 2.0

	return b.Center.X+halfX1 > center.X-halfX2 &&
		b.Center.X-halfX1 < center.X+halfX2 &&
		b.Center.Y+halfY1 > center.Y-halfY2 &&
		b.Center.Y-halfY1 < center.Y+halfY2 &&
		b.Center.Z+halfZ1 > center.Z-halfZ2 &&
		b.Center.Z-halfZ1 < center.Z+halfZ2
}

// OverlapsXZ проверяет пересечение горизонтальных проекций
func (b *BoxVolume) OverlapsXZ(center vec.Vec2Float, sizeX, sizeZ float64) bool {
	halfX1 := b.Size.X / 2.0
	halfZ1 := b.Size.Z / 2.0
	halfX2 := sizeX / 2.0
	halfZ2 := sizeZ / 2.0

	return b.Center.X+halfX1 > center.X-halfX2 &&
		b.Center.X-halfX1 < center.X+halfX2 &&
		b.Center.Z+halfZ1 > center.Y-halfZ2 &&
		b.Center.Z-halfZ1 < center.Y+halfZ2
}

// ContainsXZ проверяет, накрывает ли проекция объёма точку
func (b *BoxVolume) ContainsXZ(point vec.Vec2Float) bool {
	halfX := b.Size.X / 2.0
	halfZ := b.Size.Z / 2.0

	return point.X >= b.Center.X-halfX &&
		point.X < b.Center.X+halfX &&
		point.Y >= b.Center.Z-halfZ &&
		point.Y < b.Center.Z+halfZ
}

// boundsXZ возвращает горизонтальные границы объёма
func (b *BoxVolume) boundsXZ() volumeBounds {
	halfX := b.Size.X / 2.0
	halfZ := b.Size.Z / 2.0

	return volumeBounds{
		minX: b.Center.X - halfX,
		minZ: b.Center.Z - halfZ,
		maxX: b.Center.X + halfX,
		maxZ: b.Center.Z + halfZ,
	}
}
