package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.

type Config struct {
	World  WorldConfig  `yaml:"world"`
	Server ServerConfig `yaml:"server"`
}

// WorldConfig параметры детерминированной генерации и стриминга мира.
type WorldConfig struct {
	Seed          int64   `yaml:"seed"`
	CellSize      int     `yaml:"cell_size"`
	Radius        int     `yaml:"radius"`
	LoadBudget    int     `yaml:"load_budget"`
	UnloadBudget  int     `yaml:"unload_budget"`
	TickMS        int     `yaml:"tick_ms"`
	ObserverSpeed float64 `yaml:"observer_speed"`
}

type ServerConfig struct {
	RESTPort    int  `yaml:"rest_port"`
	MetricsPort int  `yaml:"metrics_port"`
	Telemetry   bool `yaml:"telemetry"`
}

// Дефолтные значения. Нулевое поле в YAML трактуется как «не задано».
const (
	DefaultSeed          = 12345
	DefaultCellSize      = 100
	DefaultRadius        = 2
	DefaultLoadBudget    = 1
	DefaultUnloadBudget  = 1
	DefaultTickMS        = 50
	DefaultObserverSpeed = 18.0
)

// GetSeed возвращает сид мира с приоритетом: config -> env -> default
func (w *WorldConfig) GetSeed() int64 {
	if w.Seed != 0 {
		return w.Seed
	}

	if envVal := os.Getenv("WORLD_SEED"); envVal != "" {
		if seed, err := strconv.ParseInt(envVal, 10, 64); err == nil {
			return seed
		}
	}

	return DefaultSeed
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "WORLD_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "WORLD_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Default возвращает конфигурацию со всеми дефолтными значениями.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults заполняет незаданные (нулевые) поля дефолтами.
// Сид и порты не трогаем: для них работают геттеры с env fallback.
func (c *Config) applyDefaults() {
	if c.World.CellSize == 0 {
		c.World.CellSize = DefaultCellSize
	}
	if c.World.Radius == 0 {
		c.World.Radius = DefaultRadius
	}
	if c.World.LoadBudget == 0 {
		c.World.LoadBudget = DefaultLoadBudget
	}
	if c.World.UnloadBudget == 0 {
		c.World.UnloadBudget = DefaultUnloadBudget
	}
	if c.World.TickMS == 0 {
		c.World.TickMS = DefaultTickMS
	}
	if c.World.ObserverSpeed == 0 {
		c.World.ObserverSpeed = DefaultObserverSpeed
	}
}

// Validate проверяет конфигурацию. Любое некорректное значение —
// фатальная ошибка при старте, мир с таким конфигом не создаётся.
func (c *Config) Validate() error {
	if c.World.CellSize <= 0 {
		return fmt.Errorf("некорректный размер ячейки: %d", c.World.CellSize)
	}
	if c.World.Radius < 1 {
		return fmt.Errorf("некорректный радиус загрузки: %d", c.World.Radius)
	}
	if c.World.LoadBudget < 1 {
		return fmt.Errorf("бюджет загрузки должен быть не меньше 1, получен %d", c.World.LoadBudget)
	}
	if c.World.UnloadBudget < 1 {
		return fmt.Errorf("бюджет выгрузки должен быть не меньше 1, получен %d", c.World.UnloadBudget)
	}
	if c.World.TickMS < 1 {
		return fmt.Errorf("некорректный период тика: %d мс", c.World.TickMS)
	}
	if c.World.ObserverSpeed < 0 {
		return fmt.Errorf("скорость наблюдателя не может быть отрицательной: %v", c.World.ObserverSpeed)
	}
	return nil
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV WORLD_CONFIG
// или возвращает дефолтную конфигурацию.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("WORLD_CONFIG")
		if path == "" {
			return Default(), nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
