package world

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/annel0/worldstream/internal/scene"
)

// SurfacePool ограниченный свободный список поверхностей земли.
// Пулом владеет менеджер стриминга: единственный писатель, без блокировок.
// Ресурс в списке никогда не числится ни за одной резидентной ячейкой.
type SurfacePool struct {
	free     []*scene.GroundSurface
	capacity int

	// счётчики атомарные: их читает экспортёр метрик из другой горутины
	reused  atomic.Int64
	created atomic.Int64
}

// NewSurfacePool создаёт пул с заданной ёмкостью свободного списка
func NewSurfacePool(capacity int) *SurfacePool {
	if capacity < 1 {
		capacity = 16
	}
	return &SurfacePool{
		free:     make([]*scene.GroundSurface, 0, capacity),
		capacity: capacity,
	}
}

// Acquire выдаёт чистую поверхность со свежим идентификатором:
// из списка, если он не пуст, иначе новую
func (p *SurfacePool) Acquire() *scene.GroundSurface {
	var s *scene.GroundSurface

	if n := len(p.free); n > 0 {
		s = p.free[n-1]
		p.free = p.free[:n-1]
		p.reused.Add(1)
	} else {
		s = &scene.GroundSurface{}
		p.created.Add(1)
	}

	s.ID = uuid.NewString()
	return s
}

// Release очищает поверхность и возвращает её в список.
// Сверх ёмкости ресурс отбрасывается сборщику мусора.
func (p *SurfacePool) Release(s *scene.GroundSurface) {
	s.Reset()
	if len(p.free) < p.capacity {
		p.free = append(p.free, s)
	}
}

// Len возвращает текущий размер свободного списка
func (p *SurfacePool) Len() int {
	return len(p.free)
}

// Reused возвращает число повторно использованных поверхностей
func (p *SurfacePool) Reused() int64 {
	return p.reused.Load()
}

// Created возвращает число созданных с нуля поверхностей
func (p *SurfacePool) Created() int64 {
	return p.created.Load()
}

// GroupPool ограниченный свободный список групп объектов.
// Устроен так же, как SurfacePool.
type GroupPool struct {
	free     []*scene.ObjectGroup
	capacity int

	reused  atomic.Int64
	created atomic.Int64
}

// NewGroupPool создаёт пул с заданной ёмкостью свободного списка
func NewGroupPool(capacity int) *GroupPool {
	if capacity < 1 {
		capacity = 16
	}
	return &GroupPool{
		free:     make([]*scene.ObjectGroup, 0, capacity),
		capacity: capacity,
	}
}

// Acquire выдаёт чистую группу со свежим идентификатором
func (p *GroupPool) Acquire() *scene.ObjectGroup {
	var g *scene.ObjectGroup

	if n := len(p.free); n > 0 {
		g = p.free[n-1]
		p.free = p.free[:n-1]
		p.reused.Add(1)
	} else {
		g = &scene.ObjectGroup{}
		p.created.Add(1)
	}

	g.ID = uuid.NewString()
	return g
}

// Release очищает группу и возвращает её в список
func (p *GroupPool) Release(g *scene.ObjectGroup) {
	g.Reset()
	if len(p.free) < p.capacity {
		p.free = append(p.free, g)
	}
}

// Len возвращает текущий размер свободного списка
func (p *GroupPool) Len() int {
	return len(p.free)
}

// Reused возвращает число повторно использованных групп
func (p *GroupPool) Reused() int64 {
	return p.reused.Load()
}

// Created возвращает число созданных с нуля групп
func (p *GroupPool) Created() int64 {
	return p.created.Load()
}
