package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/worldstream/internal/api"
	"github.com/annel0/worldstream/internal/config"
	"github.com/annel0/worldstream/internal/logging"
	"github.com/annel0/worldstream/internal/observability"
	"github.com/annel0/worldstream/internal/physics"
	"github.com/annel0/worldstream/internal/scene"
	"github.com/annel0/worldstream/internal/vec"
	"github.com/annel0/worldstream/internal/world"
)

// Перекрёстки дорожной сетки лежат на чётных линиях, через ячейку
const crossingSpacing = 200.0

// roadWalker детерминированный наблюдатель, катающийся по дорожной сетке.
// Едет от перекрёстка к перекрёстку, на каждом решает, куда повернуть.
type roadWalker struct {
	pos    vec.Vec2Float
	dir    vec.Vec2Float // единичный осевой вектор
	target vec.Vec2Float // следующий перекрёсток
	rng    *rand.Rand
}

func newRoadWalker(seed int64) *roadWalker {
	w := &roadWalker{
		pos: vec.Vec2Float{X: 50, Y: 50}, // перекрёсток в ячейке (0,0)
		dir: vec.Vec2Float{X: 1, Y: 0},
		rng: rand.New(rand.NewSource(seed)),
	}
	w.target = w.pos.Add(w.dir.Mul(crossingSpacing))
	return w
}

// step продвигает наблюдателя вдоль дороги на заданную дистанцию
func (w *roadWalker) step(distance float64) vec.Vec2Float {
	for distance > 0 {
		remaining := w.pos.DistanceTo(w.target)
		if distance < remaining {
			w.pos = w.pos.Add(w.dir.Mul(distance))
			break
		}

		// Доехали до перекрёстка: решаем, куда дальше
		w.pos = w.target
		distance -= remaining
		w.chooseDirection()
		w.target = w.pos.Add(w.dir.Mul(crossingSpacing))
	}
	return w.pos
}

// chooseDirection на перекрёстке: прямо в половине случаев, иначе поворот.
// Разворот не выбирается, чтобы наблюдатель не топтался на месте.
func (w *roadWalker) chooseDirection() {
	r := w.rng.Float64()
	switch {
	case r < 0.5:
		// прямо
	case r < 0.75:
		w.dir = vec.Vec2Float{X: -w.dir.Y, Y: w.dir.X}
	default:
		w.dir = vec.Vec2Float{X: w.dir.Y, Y: -w.dir.X}
	}
}

func main() {
	// Инициализируем систему логирования
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🎮 Запуск сервера стриминга мира...")

	// === КОНФИГУРАЦИЯ ===
	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logging.Error("❌ Ошибка загрузки конфигурации: %v", err)
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	seed := cfg.World.GetSeed()
	restAddr := fmt.Sprintf(":%d", cfg.Server.GetRESTPort())
	metricsAddr := fmt.Sprintf(":%d", cfg.Server.GetMetricsPort())

	logging.Info("📡 Конфигурация: seed=%d, ячейка=%d, радиус=%d, бюджет=%d/%d, REST=%s, метрики=%s",
		seed, cfg.World.CellSize, cfg.World.Radius,
		cfg.World.LoadBudget, cfg.World.UnloadBudget, restAddr, metricsAddr)

	// === ТЕЛЕМЕТРИЯ ===
	if cfg.Server.Telemetry {
		shutdown, err := observability.InitTelemetry(context.Background(), "worldstream")
		if err != nil {
			logging.Error("❌ Ошибка инициализации телеметрии: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logging.Error("Ошибка остановки телеметрии: %v", err)
				}
			}()
		}
	}

	// === ИНИЦИАЛИЗАЦИЯ КОМПОНЕНТОВ ===

	logging.Debug("Создание коллабораторов мира...")
	graph := scene.NewGraph()
	collision := physics.NewCollisionWorld()

	logging.Debug("Создание менеджера стриминга...")
	streamManager, err := world.NewStreamManager(&cfg.World, graph, collision)
	if err != nil {
		logging.Error("❌ Ошибка создания менеджера стриминга: %v", err)
		log.Fatalf("❌ Ошибка создания менеджера стриминга: %v", err)
	}

	// Экспорт метрик мира в Prometheus
	exporter := world.NewMetricsExporter(streamManager)
	exporter.StartHTTP(metricsAddr)

	// Сервер статуса
	logging.Debug("Запуск сервера статуса...")
	statusServer := api.NewStatusServer(restAddr, streamManager)
	if err := statusServer.Start(); err != nil {
		logging.Error("❌ Ошибка запуска сервера статуса: %v", err)
		log.Fatalf("❌ Ошибка запуска сервера статуса: %v", err)
	}

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   🌍 Мир: seed=%d, тик=%dмс, скорость наблюдателя=%.1f",
		seed, cfg.World.TickMS, cfg.World.ObserverSpeed)
	logging.Info("   🌐 Статус: http://localhost%s/api/status", restAddr)
	logging.Info("   📈 Метрики: http://localhost%s/metrics", metricsAddr)
	logging.Info("   ❤️  Health check: http://localhost%s/health", restAddr)

	// === ЦИКЛ УПРАВЛЕНИЯ ===
	// Наблюдатель катается по дорожной сетке, менеджер стриминга тикает
	// в одной горутине: весь мир меняется только отсюда.
	walker := newRoadWalker(seed)
	stepLen := cfg.World.ObserverSpeed * float64(cfg.World.TickMS) / 1000.0

	ticker := time.NewTicker(time.Duration(cfg.World.TickMS) * time.Millisecond)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticks := 0

loop:
	for {
		select {
		case <-ticker.C:
			pos := walker.step(stepLen)
			if err := streamManager.Update(pos); err != nil {
				// Нарушение контракта коллабораторов: мир неконсистентен,
				// продолжать нельзя
				logging.Error("❌ Фатальная ошибка стриминга: %v", err)
				break loop
			}

			ticks++
			if ticks%200 == 0 {
				obs := streamManager.Observer()
				logging.Info("📊 Наблюдатель в %s (%s) | %s", obs.Cell, obs.Biome, streamManager.GetStats())
			}

		case sig := <-sigCh:
			logging.Info("📡 Получен сигнал %v, завершение работы...", sig)
			break loop
		}
	}

	// === GRACEFUL SHUTDOWN ===
	logging.Debug("Остановка сервисов...")

	if err := statusServer.Stop(); err != nil {
		logging.Error("❌ Ошибка остановки сервера статуса: %v", err)
	}
	exporter.Stop()

	logging.Info("📊 Итог: %s", streamManager.GetStats())
	logging.Info("👋 Сервер успешно остановлен")
}
