package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/annel0/indoor-nav/internal/narration"
	"github.com/annel0/indoor-nav/internal/pathfinding"
	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации сервиса навигации.
type Config struct {
	Routing   RoutingConfig   `yaml:"routing"`
	Narration NarrationConfig `yaml:"narration"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// RoutingConfig веса и лимиты поиска. Нулевые значения заменяются значениями по умолчанию.
type RoutingConfig struct {
	MoveCost             float64 `yaml:"move_cost"`
	StairCostPerStep     float64 `yaml:"stair_cost_per_step"`
	ElevatorCostPerFloor float64 `yaml:"elevator_cost_per_floor"`
	FloorChangePenalty   float64 `yaml:"floor_change_penalty"`
	EscalatorFactor      float64 `yaml:"escalator_factor"`
	StrictHeuristic      *bool   `yaml:"strict_heuristic"`
	PlanarMaxExpansions  int     `yaml:"planar_max_expansions"`
	MaxExpansions        int     `yaml:"max_expansions"`
}

// NarrationConfig нормы времени для оценки маршрута
type NarrationConfig struct {
	MoveSeconds     float64 `yaml:"move_seconds"`
	StairSeconds    float64 `yaml:"stair_seconds"`
	ElevatorSeconds float64 `yaml:"elevator_seconds"`
	OtherSeconds    float64 `yaml:"other_seconds"`
}

type ServerConfig struct {
	RESTPort    int    `yaml:"rest_port"`
	MetricsPort int    `yaml:"metrics_port"`
	MapsDir     string `yaml:"maps_dir"`
}

// StorageConfig выбирает backend хранилища снимков: memory, badger, redis или maria
type StorageConfig struct {
	Backend    string `yaml:"backend"`
	BadgerPath string `yaml:"badger_path"`
	RedisAddr  string `yaml:"redis_addr"`
	RedisDB    int    `yaml:"redis_db"`
	RedisTTL   int    `yaml:"redis_ttl_seconds"`
	MariaDSN   string `yaml:"maria_dsn"`

	// Кеш декодированных снимков перед backend
	CacheEnabled    bool   `yaml:"cache_enabled"`
	CacheTTL        int    `yaml:"cache_ttl_seconds"`
	InvalidationURL string `yaml:"invalidation_nats_url"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default конфигурация без файла
func Default() *Config {
	return &Config{
		Storage:   StorageConfig{Backend: "memory"},
		Telemetry: TelemetryConfig{ServiceName: "indoor-nav"},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// CostModel веса A* с подстановкой значений по умолчанию
func (r RoutingConfig) CostModel() pathfinding.CostModel {
	m := pathfinding.DefaultCostModel()
	if r.MoveCost > 0 {
		m.MoveCost = r.MoveCost
	}
	if r.StairCostPerStep > 0 {
		m.StairCostPerStep = r.StairCostPerStep
	}
	if r.ElevatorCostPerFloor > 0 {
		m.ElevatorCostPerFloor = r.ElevatorCostPerFloor
	}
	if r.FloorChangePenalty > 0 {
		m.FloorChangePenalty = r.FloorChangePenalty
	}
	if r.EscalatorFactor > 0 {
		m.EscalatorFactor = r.EscalatorFactor
	}
	if r.StrictHeuristic != nil {
		m.StrictHeuristic = *r.StrictHeuristic
	}
	return m
}

// Timing нормы времени нарратора с подстановкой значений по умолчанию
func (n NarrationConfig) Timing() narration.Timing {
	t := narration.DefaultTiming()
	if n.MoveSeconds > 0 {
		t.MoveSeconds = n.MoveSeconds
	}
	if n.StairSeconds > 0 {
		t.StairSeconds = n.StairSeconds
	}
	if n.ElevatorSeconds > 0 {
		t.ElevatorSeconds = n.ElevatorSeconds
	}
	if n.OtherSeconds > 0 {
		t.OtherSeconds = n.OtherSeconds
	}
	return t
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "NAV_REST_PORT", 8090)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "NAV_METRICS_PORT", 2113)
}

// RetentionDuration срок хранения событий; 24 часа если не задан
func (e EventBusConfig) RetentionDuration() time.Duration {
	if e.Retention <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(e.Retention) * time.Hour
}

// RedisTTLDuration время жизни снимка в Redis; 0 - без истечения
func (s StorageConfig) RedisTTLDuration() time.Duration {
	return time.Duration(s.RedisTTL) * time.Second
}

// CacheTTLDuration время жизни снимка в кеше; 0 - значение кеша по умолчанию
func (s StorageConfig) CacheTTLDuration() time.Duration {
	return time.Duration(s.CacheTTL) * time.Second
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV NAV_CONFIG или возвращает nil, nil.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("NAV_CONFIG")
		if path == "" {
			return nil, nil // конфиг не задан - использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}

	return cfg, nil
}
