package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/worldstream/internal/config"
	"github.com/annel0/worldstream/internal/physics"
	"github.com/annel0/worldstream/internal/scene"
	"github.com/annel0/worldstream/internal/vec"
	"github.com/annel0/worldstream/internal/world"
)

// stubWorld детерминированная заглушка мира для ручек статуса
type stubWorld struct {
	stats world.StatsSnapshot
	cells []world.CellInfo
	obs   world.ObserverInfo
}

func (s *stubWorld) Stats() world.StatsSnapshot   { return s.stats }
func (s *stubWorld) Cells() []world.CellInfo      { return s.cells }
func (s *stubWorld) Observer() world.ObserverInfo { return s.obs }
func (s *stubWorld) Seed() int64                  { return 12345 }
func (s *stubWorld) CellSize() int                { return 100 }
func (s *stubWorld) Radius() int                  { return 2 }

// newTestStatusServer изолирует регистр Prometheus: каждый сервер
// регистрирует свои метрики, в общем регистре они бы сталкивались
func newTestStatusServer(ws WorldStatus) *StatusServer {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	return NewStatusServer(":0", ws)
}

func doGet(t *testing.T, ss *StatusServer, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest("GET", path, nil)
	require.NoError(t, err)
	ss.router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) GenericResponse {
	t.Helper()
	var resp GenericResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Ответ должен быть валидным JSON")
	return resp
}

func TestStatusServer_Health(t *testing.T) {
	ss := newTestStatusServer(&stubWorld{})

	w := doGet(t, ss, "/health")

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestStatusServer_Status(t *testing.T) {
	ws := &stubWorld{
		stats: world.StatsSnapshot{
			Ticks:         120,
			Loads:         30,
			ResidentCells: 25,
		},
		obs: world.ObserverInfo{X: 250, Z: 150, Cell: "2,1", Biome: "forest"},
	}
	ss := newTestStatusServer(ws)

	w := doGet(t, ss, "/api/status")
	require.Equal(t, 200, w.Code)

	resp := decodeResponse(t, w)
	assert.True(t, resp.Success, "Статус должен отдаваться успешно")

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "Данные должны быть объектом")

	worldData, ok := data["world"].(map[string]interface{})
	require.True(t, ok, "Секция мира обязательна")
	assert.Equal(t, float64(12345), worldData["seed"], "Сид мира")
	assert.Equal(t, float64(100), worldData["cell_size"], "Размер ячейки")
	assert.Equal(t, float64(2), worldData["radius"], "Радиус загрузки")

	observer, ok := worldData["observer"].(map[string]interface{})
	require.True(t, ok, "Секция наблюдателя обязательна")
	assert.Equal(t, "2,1", observer["cell"], "Ячейка наблюдателя")
	assert.Equal(t, "forest", observer["biome"], "Биом под наблюдателем")

	stats, ok := worldData["stats"].(map[string]interface{})
	require.True(t, ok, "Счётчики мира обязательны")
	assert.Equal(t, float64(120), stats["ticks"], "Число тиков")
	assert.Equal(t, float64(25), stats["resident_cells"], "Резидентные ячейки")

	serverData, ok := data["server"].(map[string]interface{})
	require.True(t, ok, "Секция сервера обязательна")
	assert.NotEmpty(t, serverData["uptime"], "Время работы сервера")
	assert.NotEmpty(t, serverData["memory_mb"], "Память процесса")

	_, ok = data["memory_details"].(map[string]interface{})
	assert.True(t, ok, "Развёрнутая статистика памяти обязательна")
}

func TestStatusServer_Cells(t *testing.T) {
	ws := &stubWorld{
		cells: []world.CellInfo{
			{Key: "0,0", State: "resident", Biome: "city", Items: 12, Volumes: 6},
			{Key: "0,1", State: "queued_for_load"},
		},
	}
	ss := newTestStatusServer(ws)

	w := doGet(t, ss, "/api/cells")
	require.Equal(t, 200, w.Code)

	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["count"], "Число ячеек в срезе")

	cells, ok := data["cells"].([]interface{})
	require.True(t, ok, "Срез ячеек обязателен")
	require.Len(t, cells, 2)

	first, ok := cells[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "0,0", first["key"])
	assert.Equal(t, "resident", first["state"])
	assert.Equal(t, "city", first["biome"])
	assert.Equal(t, float64(12), first["items"])
}

func TestStatusServer_MetricsEndpoint(t *testing.T) {
	ss := newTestStatusServer(&stubWorld{})

	w := doGet(t, ss, "/metrics")

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "# HELP", "Ответ должен быть в текстовом формате Prometheus")
}

func TestStatusServer_ReadOnlyCORS(t *testing.T) {
	ss := newTestStatusServer(&stubWorld{})

	w := httptest.NewRecorder()
	req, err := http.NewRequest("OPTIONS", "/api/status", nil)
	require.NoError(t, err)
	ss.router.ServeHTTP(w, req)

	assert.Equal(t, 204, w.Code, "Preflight должен завершаться без тела")
	assert.Equal(t, "GET, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"),
		"API статуса разрешает только чтение")
}

func TestStatusServer_TraceHeader(t *testing.T) {
	ss := newTestStatusServer(&stubWorld{})

	w := doGet(t, ss, "/health")

	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"), "Каждый ответ несёт идентификатор трассы")
}

func TestStatusServer_WithStreamManager(t *testing.T) {
	// Сервер статуса поверх настоящего менеджера стриминга:
	// срез ячеек и счётчики согласованы с миром
	cfg := &config.WorldConfig{Seed: 12345, CellSize: 100, Radius: 2, LoadBudget: 1, UnloadBudget: 1}
	sm, err := world.NewStreamManager(cfg, scene.NewGraph(), physics.NewCollisionWorld())
	require.NoError(t, err, "Менеджер стриминга должен сконструироваться")

	for i := 0; i < 30; i++ {
		require.NoError(t, sm.Update(vec.Vec2Float{X: 0, Y: 0}))
	}

	ss := newTestStatusServer(sm)

	w := doGet(t, ss, "/api/cells")
	require.Equal(t, 200, w.Code)

	resp := decodeResponse(t, w)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(25), data["count"], "Резидентен весь квадрат загрузки")

	w = doGet(t, ss, "/api/status")
	require.Equal(t, 200, w.Code)

	resp = decodeResponse(t, w)
	data, ok = resp.Data.(map[string]interface{})
	require.True(t, ok)

	worldData := data["world"].(map[string]interface{})
	stats := worldData["stats"].(map[string]interface{})
	assert.Equal(t, float64(25), stats["resident_cells"], "Счётчики согласованы со срезом")

	observer := worldData["observer"].(map[string]interface{})
	assert.Equal(t, "0,0", observer["cell"], "Ячейка наблюдателя после тиков в начале координат")
}
