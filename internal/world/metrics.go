package world

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/worldstream/internal/logging"
)

// StatsProvider источник счётчиков стриминга для экспортёра.
// Экспортёр не делает предположений о конкретной реализации менеджера.
type StatsProvider interface {
	Stats() StatsSnapshot
}

// MetricsExporter управляет HTTP-эндпоинтом Prometheus и периодически
// переливает счётчики менеджера в Gauge/Counter.
type MetricsExporter struct {
	provider StatsProvider
	quit     chan struct{}
	done     chan struct{}

	// Prometheus metrics
	loaded    prometheus.Counter
	unloaded  prometheus.Counter
	skipped   prometheus.Counter
	cancelled prometheus.Counter
	ticks     prometheus.Counter

	resident      prometheus.Gauge
	queuedLoads   prometheus.Gauge
	queuedUnloads prometheus.Gauge
	volumes       prometheus.Gauge
	items         prometheus.Gauge

	pooled     *prometheus.GaugeVec
	poolReused *prometheus.CounterVec
}

// NewMetricsExporter создаёт экспортёр, но не запускает HTTP-сервер.
func NewMetricsExporter(provider StatsProvider) *MetricsExporter {
	me := &MetricsExporter{
		provider: provider,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		loaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "worldstream",
			Name:      "cells_loaded_total",
			Help:      "Общее число загруженных ячеек.",
		}),
		unloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "worldstream",
			Name:      "cells_unloaded_total",
			Help:      "Общее число выгруженных ячеек.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "worldstream",
			Name:      "loads_skipped_total",
			Help:      "Загрузок, пропущенных из-за выхода ячейки из требуемого множества.",
		}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "worldstream",
			Name:      "unloads_cancelled_total",
			Help:      "Выгрузок, отменённых из-за возврата наблюдателя.",
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "worldstream",
			Name:      "ticks_total",
			Help:      "Общее число тиков стриминга.",
		}),
		resident: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "worldstream",
			Name:      "cells_resident",
			Help:      "Количество резидентных ячеек.",
		}),
		queuedLoads: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "worldstream",
			Name:      "cells_queued_for_load",
			Help:      "Количество ячеек в очереди загрузки.",
		}),
		queuedUnloads: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "worldstream",
			Name:      "cells_queued_for_unload",
			Help:      "Количество ячеек в очереди выгрузки.",
		}),
		volumes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "worldstream",
			Name:      "collision_volumes_active",
			Help:      "Количество активных коллизионных объёмов.",
		}),
		items: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "worldstream",
			Name:      "scene_items_active",
			Help:      "Количество визуальных объектов в резидентных ячейках.",
		}),
		pooled: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "worldstream",
			Name:      "pool_free",
			Help:      "Размер свободного списка пула по типу ресурса.",
		}, []string{"resource"}),
		poolReused: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worldstream",
			Name:      "pool_reused_total",
			Help:      "Ресурсов, выданных из пула повторно, по типу ресурса.",
		}, []string{"resource"}),
	}

	// Регистрируем метрики в глобальном регистре Prometheus.
	prometheus.MustRegister(
		me.loaded, me.unloaded, me.skipped, me.cancelled, me.ticks,
		me.resident, me.queuedLoads, me.queuedUnloads, me.volumes, me.items,
		me.pooled, me.poolReused,
	)
	return me
}

// StartHTTP запускает HTTP-эндпоинт Prometheus на указанном адресе
// (например, ":2112"). Метод неблокирующий: сервер стартует в отдельной горутине.
func (m *MetricsExporter) StartHTTP(addr string) {
	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := http.ListenAndServe(addr, promhttp.Handler()); err != nil {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	go m.loop()
}

// Stop останавливает обновление метрик. HTTP-сервер при этом не завершается:
// он живёт на отдельном порту и умирает вместе с процессом.
func (m *MetricsExporter) Stop() {
	close(m.quit)
	<-m.done
}

func (m *MetricsExporter) loop() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	defer close(m.done)

	// Counter принимает только приращения, поэтому храним прошлый срез.
	var prev StatsSnapshot

	for {
		select {
		case <-ticker.C:
			stats := m.provider.Stats()

			if d := stats.Loads - prev.Loads; d > 0 {
				m.loaded.Add(float64(d))
			}
			if d := stats.Unloads - prev.Unloads; d > 0 {
				m.unloaded.Add(float64(d))
			}
			if d := stats.SkippedLoads - prev.SkippedLoads; d > 0 {
				m.skipped.Add(float64(d))
			}
			if d := stats.CancelledUnloads - prev.CancelledUnloads; d > 0 {
				m.cancelled.Add(float64(d))
			}
			if d := stats.Ticks - prev.Ticks; d > 0 {
				m.ticks.Add(float64(d))
			}
			if d := stats.SurfacesReused - prev.SurfacesReused; d > 0 {
				m.poolReused.WithLabelValues("surface").Add(float64(d))
			}
			if d := stats.GroupsReused - prev.GroupsReused; d > 0 {
				m.poolReused.WithLabelValues("group").Add(float64(d))
			}

			m.resident.Set(float64(stats.ResidentCells))
			m.queuedLoads.Set(float64(stats.QueuedLoads))
			m.queuedUnloads.Set(float64(stats.QueuedUnloads))
			m.volumes.Set(float64(stats.ActiveVolumes))
			m.items.Set(float64(stats.ActiveItems))
			m.pooled.WithLabelValues("surface").Set(float64(stats.PooledSurfaces))
			m.pooled.WithLabelValues("group").Set(float64(stats.PooledGroups))

			prev = stats
		case <-m.quit:
			return
		}
	}
}
