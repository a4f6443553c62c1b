package physics

import (
	"errors"
	"fmt"
	"sync"

	"github.com/annel0/worldstream/internal/vec"
)

var (
	// ErrVolumeExists объём с таким ID уже зарегистрирован
	ErrVolumeExists = errors.New("коллизионный объём уже зарегистрирован")
	// ErrVolumeUnknown объёма с таким ID нет в мире
	ErrVolumeUnknown = errors.New("коллизионный объём не зарегистрирован")
)

// CollisionWorld реестр статических коллизионных объёмов с пространственным
// индексом. Повторная регистрация и удаление незнакомого объёма считаются
// нарушением протокола и возвращают ошибку.
type CollisionWorld struct {
	mu      sync.RWMutex
	volumes map[string]*BoxVolume
	index   *spatialIndex
}

// NewCollisionWorld создаёт пустой мир коллизий
func NewCollisionWorld() *CollisionWorld {
	return &CollisionWorld{
		volumes: make(map[string]*BoxVolume),
		index:   newSpatialIndex(32.0),
	}
}

// AddVolume регистрирует объём в мире.
func (cw *CollisionWorld) AddVolume(v *BoxVolume) error {
	if v.ID == "" {
		return fmt.Errorf("объём без идентификатора не может быть зарегистрирован")
	}

	cw.mu.Lock()
	defer cw.mu.Unlock()

	if _, exists := cw.volumes[v.ID]; exists {
		return fmt.Errorf("%w: %s", ErrVolumeExists, v.ID)
	}

	cw.volumes[v.ID] = v
	cw.index.insert(v)
	return nil
}

// RemoveVolume удаляет объём из мира по ID.
func (cw *CollisionWorld) RemoveVolume(id string) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if _, exists := cw.volumes[id]; !exists {
		return fmt.Errorf("%w: %s", ErrVolumeUnknown, id)
	}

	delete(cw.volumes, id)
	cw.index.remove(id)
	return nil
}

// Has проверяет присутствие объёма в мире
func (cw *CollisionWorld) Has(id string) bool {
	cw.mu.RLock()
	defer cw.mu.RUnlock()
	_, exists := cw.volumes[id]
	return exists
}

// Count возвращает число зарегистрированных объёмов
func (cw *CollisionWorld) Count() int {
	cw.mu.RLock()
	defer cw.mu.RUnlock()
	return len(cw.volumes)
}

// QueryRange возвращает объёмы, центр которых лежит в радиусе от точки
func (cw *CollisionWorld) QueryRange(center vec.Vec2Float, radius float64) []*BoxVolume {
	bounds := volumeBounds{
		minX: center.X - radius,
		minZ: center.Y - radius,
		maxX: center.X + radius,
		maxZ: center.Y + radius,
	}

	cw.mu.RLock()
	defer cw.mu.RUnlock()

	candidates := cw.index.collect(bounds)
	result := make([]*BoxVolume, 0, len(candidates))

	for _, v := range candidates {
		dx := v.Center.X - center.X
		dz := v.Center.Z - center.Y
		if dx*dx+dz*dz <= radius*radius {
			result = append(result, v)
		}
	}

	return result
}

// QueryRect возвращает объёмы, центр которых лежит в прямоугольнике
func (cw *CollisionWorld) QueryRect(minX, minZ, maxX, maxZ float64) []*BoxVolume {
	bounds := volumeBounds{minX: minX, minZ: minZ, maxX: maxX, maxZ: maxZ}

	cw.mu.RLock()
	defer cw.mu.RUnlock()

	candidates := cw.index.collect(bounds)
	result := make([]*BoxVolume, 0, len(candidates))

	for _, v := range candidates {
		if v.Center.X >= minX && v.Center.X <= maxX &&
			v.Center.Z >= minZ && v.Center.Z <= maxZ {
			result = append(result, v)
		}
	}

	return result
}

// IntersectsBox проверяет, пересекает ли параллелепипед хотя бы один объём
func (cw *CollisionWorld) IntersectsBox(center, size vec.Vec3Float) bool {
	bounds := volumeBounds{
		minX: center.X - size.X/2.0,
		minZ: center.Z - size.Z/2.0,
		maxX: center.X + size.X/2.0,
		maxZ: center.Z + size.Z/2.0,
	}

	cw.mu.RLock()
	defer cw.mu.RUnlock()

	for _, v := range cw.index.collect(bounds) {
		if v.Overlaps(center, size) {
			return true
		}
	}

	return false
}

// CanMoveTo проверяет, может ли объект с горизонтальным габаритом clearance
// переместиться в указанную точку, не задев ни один объём
func (cw *CollisionWorld) CanMoveTo(pos vec.Vec2Float, clearance float64) bool {
	bounds := volumeBounds{
		minX: pos.X - clearance/2.0,
		minZ: pos.Y - clearance/2.0,
		maxX: pos.X + clearance/2.0,
		maxZ: pos.Y + clearance/2.0,
	}

	cw.mu.RLock()
	defer cw.mu.RUnlock()

	for _, v := range cw.index.collect(bounds) {
		if v.OverlapsXZ(pos, clearance, clearance) {
			return false
		}
	}

	return true
}

// GetStats возвращает статистику мира коллизий
func (cw *CollisionWorld) GetStats() string {
	cw.mu.RLock()
	defer cw.mu.RUnlock()

	volumeCount := len(cw.volumes)
	cellCount := cw.index.cellCount()

	avgPerCell := 0.0
	if cellCount > 0 {
		total := 0
		for _, keys := range cw.index.occupied {
			total += len(keys)
		}
		avgPerCell = float64(total) / float64(cellCount)
	}

	return fmt.Sprintf("CollisionWorld Stats: %d volumes, %d cells, avg %.2f volumes/cell, max %d volumes/cell",
		volumeCount, cellCount, avgPerCell, cw.index.maxPerCell())
}
