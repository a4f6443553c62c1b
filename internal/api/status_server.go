package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/worldstream/internal/logging"
	"github.com/annel0/worldstream/internal/middleware"
	"github.com/annel0/worldstream/internal/world"
)

// WorldStatus срез состояния мира, который сервер статуса умеет отдавать.
// Менеджер стриминга реализует его поверх атомарных снимков, поэтому
// обработчики не конкурируют с циклом управления.
type WorldStatus interface {
	Stats() world.StatsSnapshot
	Cells() []world.CellInfo
	Observer() world.ObserverInfo
	Seed() int64
	CellSize() int
	Radius() int
}

// GenericResponse общий конверт ответов API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// StatusServer отдаёт состояние мира и процесса по HTTP:
// /health, /api/status, /api/cells и /metrics для Prometheus.
// Все ручки только читают, мир через них менять нельзя.
type StatusServer struct {
	router     *gin.Engine
	world      WorldStatus
	port       string
	metrics    *ServerMetrics
	httpServer *http.Server
}

// NewStatusServer собирает роутер со всем observability-обвесом
func NewStatusServer(port string, ws WorldStatus) *StatusServer {
	if port == "" {
		port = ":8088"
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New() // без стандартного logger/recovery
	router.Use(gin.Recovery())

	router.Use(middleware.NewRequestLogger().Handler())
	router.Use(otelgin.Middleware("status_api"))

	promMw := middleware.NewPrometheusMiddleware("status_api")
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	server := &StatusServer{
		router:  router,
		world:   ws,
		port:    port,
		metrics: NewServerMetrics(),
	}

	server.setupRoutes()

	return server
}

// setupRoutes настраивает маршруты сервера статуса
func (ss *StatusServer) setupRoutes() {
	// CORS только на чтение: API статуса ничего не меняет
	ss.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	ss.router.GET("/health", ss.handleHealth)

	api := ss.router.Group("/api")
	{
		api.GET("/status", ss.handleStatus)
		api.GET("/cells", ss.handleCells)
	}
}

// handleHealth проверка живости
func (ss *StatusServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// handleStatus возвращает состояние мира и метрики процесса
func (ss *StatusServer) handleStatus(c *gin.Context) {
	memoryMB, _ := ss.metrics.GetMemoryUsage()
	cpuPercent, _ := ss.metrics.GetCPUUsage()
	systemCPU, _ := ss.metrics.GetSystemCPUUsage()

	data := map[string]interface{}{
		"world": map[string]interface{}{
			"seed":      ss.world.Seed(),
			"cell_size": ss.world.CellSize(),
			"radius":    ss.world.Radius(),
			"observer":  ss.world.Observer(),
			"stats":     ss.world.Stats(),
		},
		"server": map[string]interface{}{
			"uptime":      ss.metrics.GetUptime(),
			"memory_mb":   fmt.Sprintf("%.2f", memoryMB),
			"cpu_percent": fmt.Sprintf("%.2f", cpuPercent),
			"system_cpu":  fmt.Sprintf("%.2f", systemCPU),
			"server_time": time.Now().Unix(),
		},
		"memory_details": ss.metrics.GetDetailedMemoryStats(),
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Статус мира получен",
		Data:    data,
	})
}

// handleCells возвращает срез состояния ячеек вокруг наблюдателя
func (ss *StatusServer) handleCells(c *gin.Context) {
	cells := ss.world.Cells()

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Срез ячеек получен",
		Data: map[string]interface{}{
			"count": len(cells),
			"cells": cells,
		},
	})
}

// Start запускает сервер статуса в фоновой горутине
func (ss *StatusServer) Start() error {
	logger := logging.GetAPILogger()

	ss.httpServer = &http.Server{
		Addr:    ss.port,
		Handler: ss.router,
	}

	go func() {
		if err := ss.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Сервер статуса упал: %v", err)
		}
	}()

	logger.Info("✅ Сервер статуса запущен на http://localhost%s", ss.port)
	logger.Info("📋 Доступные эндпоинты:")
	logger.Info("   GET /health     - проверка живости")
	logger.Info("   GET /api/status - состояние мира и процесса")
	logger.Info("   GET /api/cells  - срез ячеек вокруг наблюдателя")
	logger.Info("   GET /metrics    - метрики Prometheus")

	return nil
}

// Stop останавливает сервер, дождавшись активных запросов
func (ss *StatusServer) Stop() error {
	if ss.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return ss.httpServer.Shutdown(ctx)
}
