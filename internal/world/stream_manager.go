package world

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/annel0/worldstream/internal/config"
	"github.com/annel0/worldstream/internal/logging"
	"github.com/annel0/worldstream/internal/noise"
	"github.com/annel0/worldstream/internal/physics"
	"github.com/annel0/worldstream/internal/scene"
	"github.com/annel0/worldstream/internal/vec"
)

// SceneGraph коллаборатор визуальной сцены
type SceneGraph interface {
	Attach(node scene.Attachable) error
	Detach(node scene.Attachable) error
}

// VolumeRegistry коллаборатор мира коллизий
type VolumeRegistry interface {
	AddVolume(v *physics.BoxVolume) error
	RemoveVolume(id string) error
}

// StreamStats содержит счётчики менеджера стриминга.
// Поля атомарные: их читают экспортёр метрик и REST-обработчики из других
// горутин, пока цикл управления пишет.
type StreamStats struct {
	ticks            atomic.Int64
	loads            atomic.Int64
	unloads          atomic.Int64
	skippedLoads     atomic.Int64
	cancelledUnloads atomic.Int64
	residentCells    atomic.Int32
	queuedLoads      atomic.Int32
	queuedUnloads    atomic.Int32
	activeVolumes    atomic.Int32
	activeItems      atomic.Int32
	pooledSurfaces   atomic.Int32
	pooledGroups     atomic.Int32
}

// StatsSnapshot мгновенный срез счётчиков для экспорта и REST
type StatsSnapshot struct {
	Ticks            int64 `json:"ticks"`
	Loads            int64 `json:"loads"`
	Unloads          int64 `json:"unloads"`
	SkippedLoads     int64 `json:"skipped_loads"`
	CancelledUnloads int64 `json:"cancelled_unloads"`
	ResidentCells    int32 `json:"resident_cells"`
	QueuedLoads      int32 `json:"queued_loads"`
	QueuedUnloads    int32 `json:"queued_unloads"`
	ActiveVolumes    int32 `json:"active_volumes"`
	ActiveItems      int32 `json:"active_items"`
	PooledSurfaces   int32 `json:"pooled_surfaces"`
	PooledGroups     int32 `json:"pooled_groups"`
	SurfacesReused   int64 `json:"surfaces_reused"`
	SurfacesCreated  int64 `json:"surfaces_created"`
	GroupsReused     int64 `json:"groups_reused"`
	GroupsCreated    int64 `json:"groups_created"`
}

// StreamManager координирует стриминг ячеек вокруг наблюдателя.
// Записями ячеек, очередями и пулами владеет единолично; Update вызывается
// из одного цикла управления, поэтому карта и очереди не защищаются
// блокировками. Наружу уходят только атомарные счётчики и готовые срезы.
type StreamManager struct {
	seed         int64
	cellSize     int // Длина стороны ячейки в мировых единицах
	radius       int // Радиус Чебышёва требуемого квадрата
	loadBudget   int // Максимум реальных загрузок за тик
	unloadBudget int // Максимум реальных выгрузок за тик

	classifier *Classifier  // Биом по координатам
	synth      *Synthesizer // Содержимое ячейки

	graph     SceneGraph     // Коллаборатор сцены
	collision VolumeRegistry // Коллаборатор мира коллизий

	cells       map[string]*CellRecord // Ключ "cx,cz" -> запись
	loadQueue   []string               // Очередь загрузки
	unloadQueue []string               // Очередь выгрузки

	surfaces *SurfacePool // Пул поверхностей земли
	groups   *GroupPool   // Пул групп объектов

	stats    StreamStats
	snapshot atomic.Value // []CellInfo для внешнего наблюдения
	observer atomic.Value // ObserverInfo последнего тика
}

// NewStreamManager создаёт менеджер стриминга поверх внешних коллабораторов.
// Некорректные параметры — фатальная ошибка конструирования, частично
// сконструированный менеджер не возвращается.
func NewStreamManager(cfg *config.WorldConfig, graph SceneGraph, collision VolumeRegistry) (*StreamManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("конфигурация мира не задана")
	}
	if graph == nil || collision == nil {
		return nil, fmt.Errorf("коллабораторы сцены и коллизий обязательны")
	}
	if cfg.CellSize <= 0 {
		return nil, fmt.Errorf("некорректный размер ячейки: %d", cfg.CellSize)
	}
	if cfg.Radius < 1 {
		return nil, fmt.Errorf("некорректный радиус загрузки: %d", cfg.Radius)
	}
	if cfg.LoadBudget < 1 || cfg.UnloadBudget < 1 {
		return nil, fmt.Errorf("бюджеты тика должны быть не меньше 1, получены %d/%d",
			cfg.LoadBudget, cfg.UnloadBudget)
	}

	seed := cfg.GetSeed()
	field := noise.NewField(seed)

	// Ёмкость пулов: полный квадрат загрузки с запасом на попятное движение
	poolCap := (2*cfg.Radius + 3) * (2*cfg.Radius + 3)

	sm := &StreamManager{
		seed:         seed,
		cellSize:     cfg.CellSize,
		radius:       cfg.Radius,
		loadBudget:   cfg.LoadBudget,
		unloadBudget: cfg.UnloadBudget,
		classifier:   NewClassifier(field, seed),
		synth:        NewSynthesizer(seed, cfg.CellSize, field),
		graph:        graph,
		collision:    collision,
		cells:        make(map[string]*CellRecord),
		loadQueue:    make([]string, 0, 64),
		unloadQueue:  make([]string, 0, 64),
		surfaces:     NewSurfacePool(poolCap),
		groups:       NewGroupPool(poolCap),
	}
	sm.snapshot.Store([]CellInfo{})
	sm.observer.Store(ObserverInfo{})

	logging.Info("Менеджер стриминга создан: seed=%d, ячейка=%d, радиус=%d, бюджет=%d/%d",
		seed, cfg.CellSize, cfg.Radius, cfg.LoadBudget, cfg.UnloadBudget)

	return sm, nil
}

// Update один тик стриминга: пересчитывает требуемое множество ячеек вокруг
// наблюдателя, обновляет очереди и дренирует бюджеты загрузки и выгрузки.
// Единственный вход — мировая позиция наблюдателя. Вызывается из одного
// цикла управления. Ошибка означает нарушение контракта коллабораторов
// и не подлежит повтору.
func (sm *StreamManager) Update(observer vec.Vec2Float) error {
	sm.stats.ticks.Add(1)

	center := observer.ToCell(sm.cellSize)
	sm.observer.Store(ObserverInfo{
		X:     observer.X,
		Z:     observer.Y,
		Cell:  center.CellKey(),
		Biome: sm.classifier.Classify(observer.X, observer.Y).String(),
	})

	// Требуемое множество: квадрат (2R+1)x(2R+1) вокруг ячейки наблюдателя
	needed := make(map[string]struct{}, (2*sm.radius+1)*(2*sm.radius+1))

	for dz := -sm.radius; dz <= sm.radius; dz++ {
		for dx := -sm.radius; dx <= sm.radius; dx++ {
			cell := vec.Vec2{X: center.X + dx, Y: center.Y + dz}
			key := cell.CellKey()
			needed[key] = struct{}{}

			rec, exists := sm.cells[key]
			if !exists {
				// Absent -> QueuedForLoad
				sm.cells[key] = &CellRecord{Cell: cell, Key: key, State: StateQueuedForLoad}
				sm.loadQueue = append(sm.loadQueue, key)
				continue
			}

			// Отмена отложенной выгрузки: ресурсы ячейки не отсоединялись,
			// поэтому достаточно вернуть Resident и снять ключ с очереди
			if rec.State == StateQueuedForUnload {
				rec.State = StateResident
				sm.unloadQueue = removeKey(sm.unloadQueue, key)
				sm.stats.cancelledUnloads.Add(1)
			}
		}
	}

	// Резидентные ячейки вне требуемого множества — в очередь выгрузки
	for key, rec := range sm.cells {
		if rec.State != StateResident {
			continue
		}
		if _, ok := needed[key]; ok {
			continue
		}
		rec.State = StateQueuedForUnload
		sm.unloadQueue = append(sm.unloadQueue, key)
	}

	if err := sm.drainLoads(needed); err != nil {
		return err
	}
	if err := sm.drainUnloads(); err != nil {
		return err
	}

	sm.refreshGauges()
	return nil
}

// drainLoads выполняет не более loadBudget реальных загрузок за тик.
// Протухшие записи (ячейка успела выйти из требуемого множества)
// пропускаются без расхода бюджета.
func (sm *StreamManager) drainLoads(needed map[string]struct{}) error {
	performed := 0
	for performed < sm.loadBudget && len(sm.loadQueue) > 0 {
		key := sm.loadQueue[0]
		sm.loadQueue = sm.loadQueue[1:]

		rec, exists := sm.cells[key]
		if !exists || rec.State != StateQueuedForLoad {
			continue
		}

		if _, ok := needed[key]; !ok {
			// Ячейка больше не нужна: QueuedForLoad -> Absent без загрузки
			delete(sm.cells, key)
			sm.stats.skippedLoads.Add(1)
			continue
		}

		if err := sm.loadCell(rec); err != nil {
			return fmt.Errorf("загрузка ячейки %s: %w", key, err)
		}
		performed++
	}
	return nil
}

// drainUnloads выполняет не более unloadBudget реальных выгрузок за тик
func (sm *StreamManager) drainUnloads() error {
	performed := 0
	for performed < sm.unloadBudget && len(sm.unloadQueue) > 0 {
		key := sm.unloadQueue[0]
		sm.unloadQueue = sm.unloadQueue[1:]

		rec, exists := sm.cells[key]
		if !exists || rec.State != StateQueuedForUnload {
			continue
		}

		if err := sm.unloadCell(rec); err != nil {
			return fmt.Errorf("выгрузка ячейки %s: %w", key, err)
		}
		performed++
	}
	return nil
}

// loadCell классифицирует биом, синтезирует содержимое и прикрепляет
// ресурсы к коллабораторам: QueuedForLoad -> Resident
func (sm *StreamManager) loadCell(rec *CellRecord) error {
	biome := sm.classifier.ClassifyCell(rec.Cell, sm.cellSize)

	surface := sm.surfaces.Acquire()
	group := sm.groups.Acquire()
	volumes := sm.synth.Synthesize(rec.Cell, biome, surface, group)

	if err := sm.graph.Attach(surface); err != nil {
		return fmt.Errorf("сцена отклонила поверхность: %w", err)
	}
	if err := sm.graph.Attach(group); err != nil {
		return fmt.Errorf("сцена отклонила группу объектов: %w", err)
	}

	rec.Volumes = rec.Volumes[:0]
	for _, v := range volumes {
		if err := sm.collision.AddVolume(v); err != nil {
			return fmt.Errorf("мир коллизий отклонил объём: %w", err)
		}
		rec.Volumes = append(rec.Volumes, v.ID)
	}

	rec.Biome = biome
	rec.Surface = surface
	rec.Objects = group
	rec.Loaded = true
	rec.State = StateResident

	sm.stats.loads.Add(1)
	sm.stats.activeVolumes.Add(int32(len(volumes)))
	sm.stats.activeItems.Add(int32(len(group.Items)))

	logging.Debug("Ячейка %s загружена: биом=%s, объектов=%d, объёмов=%d",
		rec.Key, biome, len(group.Items), len(volumes))
	return nil
}

// unloadCell отсоединяет ресурсы ячейки от коллабораторов, возвращает
// поверхность и группу в пулы и удаляет запись: QueuedForUnload -> Absent.
// Коллизионные объёмы не пулируются: при перезагрузке ячейки они
// синтезируются заново.
func (sm *StreamManager) unloadCell(rec *CellRecord) error {
	if err := sm.graph.Detach(rec.Surface); err != nil {
		return fmt.Errorf("сцена отклонила открепление поверхности: %w", err)
	}
	if err := sm.graph.Detach(rec.Objects); err != nil {
		return fmt.Errorf("сцена отклонила открепление группы: %w", err)
	}
	for _, id := range rec.Volumes {
		if err := sm.collision.RemoveVolume(id); err != nil {
			return fmt.Errorf("мир коллизий отклонил удаление объёма: %w", err)
		}
	}

	sm.stats.activeVolumes.Add(-int32(len(rec.Volumes)))
	sm.stats.activeItems.Add(-int32(len(rec.Objects.Items)))

	sm.surfaces.Release(rec.Surface)
	sm.groups.Release(rec.Objects)

	delete(sm.cells, rec.Key)
	sm.stats.unloads.Add(1)

	logging.Debug("Ячейка %s выгружена", rec.Key)
	return nil
}

// refreshGauges обновляет атомарные датчики и срез ячеек для внешних читателей
func (sm *StreamManager) refreshGauges() {
	resident := int32(0)
	queuedLoad := int32(0)
	queuedUnload := int32(0)

	infos := make([]CellInfo, 0, len(sm.cells))
	for _, rec := range sm.cells {
		switch rec.State {
		case StateResident:
			resident++
		case StateQueuedForLoad:
			queuedLoad++
		case StateQueuedForUnload:
			queuedUnload++
		}

		info := CellInfo{Key: rec.Key, State: rec.State.String()}
		if rec.Loaded {
			info.Biome = rec.Biome.String()
			info.Items = len(rec.Objects.Items)
			info.Volumes = len(rec.Volumes)
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })

	sm.stats.residentCells.Store(resident)
	sm.stats.queuedLoads.Store(queuedLoad)
	sm.stats.queuedUnloads.Store(queuedUnload)
	sm.stats.pooledSurfaces.Store(int32(sm.surfaces.Len()))
	sm.stats.pooledGroups.Store(int32(sm.groups.Len()))
	sm.snapshot.Store(infos)
}

// Stats возвращает мгновенный срез счётчиков. Безопасно из любой горутины.
func (sm *StreamManager) Stats() StatsSnapshot {
	return StatsSnapshot{
		Ticks:            sm.stats.ticks.Load(),
		Loads:            sm.stats.loads.Load(),
		Unloads:          sm.stats.unloads.Load(),
		SkippedLoads:     sm.stats.skippedLoads.Load(),
		CancelledUnloads: sm.stats.cancelledUnloads.Load(),
		ResidentCells:    sm.stats.residentCells.Load(),
		QueuedLoads:      sm.stats.queuedLoads.Load(),
		QueuedUnloads:    sm.stats.queuedUnloads.Load(),
		ActiveVolumes:    sm.stats.activeVolumes.Load(),
		ActiveItems:      sm.stats.activeItems.Load(),
		PooledSurfaces:   sm.stats.pooledSurfaces.Load(),
		PooledGroups:     sm.stats.pooledGroups.Load(),
		SurfacesReused:   sm.surfaces.Reused(),
		SurfacesCreated:  sm.surfaces.Created(),
		GroupsReused:     sm.groups.Reused(),
		GroupsCreated:    sm.groups.Created(),
	}
}

// Cells возвращает последний срез состояния ячеек. Безопасно из любой горутины.
func (sm *StreamManager) Cells() []CellInfo {
	if v := sm.snapshot.Load(); v != nil {
		return v.([]CellInfo)
	}
	return nil
}

// Observer возвращает положение наблюдателя на момент последнего тика.
// Безопасно из любой горутины.
func (sm *StreamManager) Observer() ObserverInfo {
	if v := sm.observer.Load(); v != nil {
		return v.(ObserverInfo)
	}
	return ObserverInfo{}
}

// GetStats возвращает статистику менеджера
func (sm *StreamManager) GetStats() string {
	s := sm.Stats()
	return fmt.Sprintf("StreamManager: %d resident, %d/%d queued, %d loads (%d skipped), %d unloads (%d cancelled), pool %d/%d",
		s.ResidentCells, s.QueuedLoads, s.QueuedUnloads,
		s.Loads, s.SkippedLoads, s.Unloads, s.CancelledUnloads,
		s.PooledSurfaces, s.PooledGroups)
}

// Seed возвращает сид мира
func (sm *StreamManager) Seed() int64 {
	return sm.seed
}

// CellSize возвращает длину стороны ячейки
func (sm *StreamManager) CellSize() int {
	return sm.cellSize
}

// Radius возвращает радиус загрузки в ячейках
func (sm *StreamManager) Radius() int {
	return sm.radius
}

// removeKey удаляет первое вхождение ключа из очереди
func removeKey(queue []string, key string) []string {
	for i, k := range queue {
		if k == key {
			return append(queue[:i], queue[i+1:]...)
		}
	}
	return queue
}
